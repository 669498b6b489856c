package decimals

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/document"
)

// ScaleCoin scales the integer amount of a coin object when its denom is
// denom. It reports whether the coin was scaled.
func ScaleCoin(coin *document.Object, denom string, extra uint) (bool, error) {
	return scaleCoin(coin, denom, extra, ScaleInteger)
}

// ScaleCoins scales every coin of denom in a coin list and returns how many were scaled.
func ScaleCoins(coins []*document.Node, denom string, extra uint) (int, error) {
	return scaleList(coins, denom, extra, ScaleInteger)
}

// ScaleDecCoins is ScaleCoins for decimal coins.
func ScaleDecCoins(coins []*document.Node, denom string, extra uint) (int, error) {
	return scaleList(coins, denom, extra, ScaleDecimal)
}

// ScaleIntegerField scales the integer string stored under key.
func ScaleIntegerField(obj *document.Object, key string, extra uint) error {
	return scaleField(obj, key, extra, ScaleInteger)
}

// ScaleDecimalField scales the decimal string stored under key.
func ScaleDecimalField(obj *document.Object, key string, extra uint) error {
	return scaleField(obj, key, extra, ScaleDecimal)
}

type scaleFn func(amount string, extra uint) (string, error)

func scaleList(coins []*document.Node, denom string, extra uint, fn scaleFn) (int, error) {
	objs, err := document.Objects(coins, "coins")
	if err != nil {
		return 0, err
	}
	n := 0
	for i, coin := range objs {
		scaled, err := scaleCoin(coin, denom, extra, fn)
		if err != nil {
			return n, errorsmod.Wrap(err, describe("coins", i))
		}
		if scaled {
			n++
		}
	}
	return n, nil
}

func scaleCoin(coin *document.Object, denom string, extra uint, fn scaleFn) (bool, error) {
	coinDenom, err := coin.StringField("denom")
	if err != nil {
		return false, err
	}
	if coinDenom != denom {
		return false, nil
	}
	if err := scaleField(coin, "amount", extra, fn); err != nil {
		return false, err
	}
	return true, nil
}

func scaleField(obj *document.Object, key string, extra uint, fn scaleFn) error {
	amount, err := obj.StringField(key)
	if err != nil {
		return err
	}
	scaled, err := fn(amount, extra)
	if err != nil {
		return errorsmod.Wrap(err, key)
	}
	obj.Set(key, document.String(scaled))
	return nil
}
