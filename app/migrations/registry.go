package migrations

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/kiichain/genesis-migrator/app/config"
	"github.com/kiichain/genesis-migrator/app/decimals"
	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/types"
)

// ModuleContext is what a rule gets to work with besides the module state.
type ModuleContext struct {
	Config config.Config
	Logger log.Logger
	Report *MigrationReport

	// BondDenom is the staking bond denom after the denom rewrite, empty
	// when the genesis has no staking params.
	BondDenom string
}

// Rule rewrites the state of one module and returns the new state. Rules
// may modify state in place and return it.
type Rule func(mc *ModuleContext, state *document.Node) (*document.Node, error)

// Entry is the registry row of a module.
type Entry struct {
	Action Action
	Rule   Rule
}

// NewModule is a module that is added to every migrated genesis.
type NewModule struct {
	Name    string
	Payload func() *document.Node
}

// Registry maps every legacy module name to its migration.
type Registry struct {
	entries map[string]Entry
	added   []NewModule
}

// NewRegistry builds a registry. Transform entries must carry a rule.
func NewRegistry(entries map[string]Entry, added []NewModule) (*Registry, error) {
	for name, e := range entries {
		switch e.Action {
		case ActionDrop, ActionNoOp:
		case ActionTransform:
			if e.Rule == nil {
				return nil, errorsmod.Wrapf(types.ErrInvalidConfig, "module %s: transform without rule", name)
			}
		default:
			return nil, errorsmod.Wrapf(types.ErrInvalidConfig, "module %s: invalid action %s", name, e.Action)
		}
	}
	seen := make(map[string]struct{}, len(added))
	for _, m := range added {
		if _, ok := seen[m.Name]; ok {
			return nil, errorsmod.Wrapf(types.ErrInvalidConfig, "module %s added twice", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return &Registry{entries: entries, added: added}, nil
}

// DefaultRegistry returns the registry of the legacy kiichain modules.
func DefaultRegistry() *Registry {
	drop := Entry{Action: ActionDrop}
	noop := Entry{Action: ActionNoOp}
	transform := func(rule Rule) Entry {
		return Entry{Action: ActionTransform, Rule: rule}
	}

	r, err := NewRegistry(map[string]Entry{
		"accesscontrol": drop,
		"auth":          transform(migrateAuth),
		"authz":         transform(migrateAuthz),
		"bank":          transform(migrateBank),
		"capability":    noop,
		"crisis":        transform(migrateCrisis),
		"distribution":  transform(migrateDistribution),
		"epoch":         drop,
		"evidence":      noop,
		"evm":           transform(migrateEVM),
		"feegrant":      transform(migrateFeegrant),
		"genutil":       noop,
		"gov":           transform(migrateGov),
		"ibc":           transform(migrateIBC),
		"mint":          drop,
		"params":        drop,
		"slashing":      transform(migrateSlashing),
		"staking":       transform(migrateStaking),
		"tokenfactory":  transform(migrateTokenfactory),
		"transfer":      transform(migrateTransfer),
		"upgrade":       noop,
		"vesting":       noop,
		"wasm":          transform(migrateWasm),
	}, AddedModules())
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the entry of module. Unknown modules are a schema error.
func (r *Registry) Lookup(module string) (Entry, error) {
	e, ok := r.entries[module]
	if !ok {
		return Entry{}, errorsmod.Wrapf(types.ErrSchema, "no migration registered for module %q", module)
	}
	return e, nil
}

// Added returns the modules appended after migration, in order.
func (r *Registry) Added() []NewModule {
	return append([]NewModule(nil), r.added...)
}

// CheckModules fails on the first module of appState that has no entry.
func (r *Registry) CheckModules(appState *document.Object) error {
	for _, name := range appState.Keys() {
		if _, err := r.Lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// moduleObject returns the module state as an object.
func moduleObject(module string, state *document.Node) (*document.Object, error) {
	obj, ok := state.AsObject()
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrSchema, "%s: expected object, got %s", module, state.Kind())
	}
	return obj, nil
}

func (mc *ModuleContext) scaleCoin(coin *document.Object) (bool, error) {
	scaled, err := decimals.ScaleCoin(coin, mc.Config.Denom, decimals.ExtraDecimals)
	if scaled {
		mc.Report.Stats.ScaledCoins++
	}
	return scaled, err
}

func (mc *ModuleContext) scaleCoins(coins []*document.Node) error {
	n, err := decimals.ScaleCoins(coins, mc.Config.Denom, decimals.ExtraDecimals)
	mc.Report.Stats.ScaledCoins += n
	return err
}

func (mc *ModuleContext) scaleDecCoins(coins []*document.Node) error {
	n, err := decimals.ScaleDecCoins(coins, mc.Config.Denom, decimals.ExtraDecimals)
	mc.Report.Stats.ScaledCoins += n
	return err
}

// scaleCoinsAt scales the coin list stored under key.
func (mc *ModuleContext) scaleCoinsAt(obj *document.Object, key string) error {
	coins, err := obj.ArrayField(key)
	if err != nil {
		return err
	}
	return errorsmod.Wrap(mc.scaleCoins(coins), key)
}

// scaleDecCoinsAt scales the decimal coin list stored under key.
func (mc *ModuleContext) scaleDecCoinsAt(obj *document.Object, key string) error {
	coins, err := obj.ArrayField(key)
	if err != nil {
		return err
	}
	return errorsmod.Wrap(mc.scaleDecCoins(coins), key)
}

// stakeScaled reports whether amounts denominated in the bond denom are
// rescaled. It warns once per module when they are not.
func (mc *ModuleContext) stakeScaled(module string) bool {
	if mc.BondDenom == mc.Config.Denom {
		return true
	}
	mc.warn(module+" amounts left unscaled, bond denom is not the designated denom",
		"bond_denom", mc.BondDenom,
		"denom", mc.Config.Denom,
	)
	return false
}

// warn records a warning for the report. Nothing is logged until the
// migration has succeeded.
func (mc *ModuleContext) warn(msg string, keyvals ...any) {
	mc.Report.Warnings = append(mc.Report.Warnings, Warning{Message: msg, Fields: keyvals})
}
