package migrations

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/types"
)

// Default evidence params of the new chain. The legacy values are not kept.
const (
	evidenceMaxAgeNumBlocks = "100000"
	evidenceMaxAgeDuration  = "172800000000000"
	evidenceMaxBytes        = "1048576"
)

// MigrateConsensus moves the root consensus_params and validators into the
// consensus object of the new genesis layout and removes the old keys.
func MigrateConsensus(root *document.Object) error {
	legacy, err := root.ObjectField("consensus_params")
	if err != nil {
		return err
	}
	validators, err := root.Field("validators")
	if err != nil {
		return err
	}

	block, err := legacy.Field("block")
	if err != nil {
		return errorsmod.Wrap(err, "consensus_params")
	}
	validator, err := legacy.Field("validator")
	if err != nil {
		return errorsmod.Wrap(err, "consensus_params")
	}
	appVersion, err := objectPath(legacy, "version", "app_version")
	if err != nil {
		return errorsmod.Wrap(err, "consensus_params")
	}
	voteExtHeight, err := objectPath(legacy, "abci", "vote_extensions_enable_height")
	if err != nil {
		return errorsmod.Wrap(err, "consensus_params")
	}
	height, err := scalarString(voteExtHeight)
	if err != nil {
		return errorsmod.Wrap(err, "consensus_params.abci.vote_extensions_enable_height")
	}

	evidence := document.NewObject()
	evidence.Set("max_age_num_blocks", document.String(evidenceMaxAgeNumBlocks))
	evidence.Set("max_age_duration", document.String(evidenceMaxAgeDuration))
	evidence.Set("max_bytes", document.String(evidenceMaxBytes))

	version := document.NewObject()
	version.Set("app", appVersion)

	abci := document.NewObject()
	abci.Set("vote_extensions_enable_height", document.String(height))

	params := document.NewObject()
	params.Set("block", block)
	params.Set("evidence", document.FromObject(evidence))
	params.Set("validator", validator)
	params.Set("version", document.FromObject(version))
	params.Set("abci", document.FromObject(abci))

	consensus := document.NewObject()
	consensus.Set("validators", validators)
	consensus.Set("params", document.FromObject(params))
	root.Set("consensus", document.FromObject(consensus))

	root.Delete("consensus_params")
	root.Delete("validators")
	return nil
}

// objectPath returns the value at path below obj.
func objectPath(obj *document.Object, path ...string) (*document.Node, error) {
	return document.FromObject(obj).Get(path...)
}

// scalarString renders a string or number value as a string.
func scalarString(n *document.Node) (string, error) {
	if s, ok := n.AsString(); ok {
		return s, nil
	}
	if s, ok := n.AsNumber(); ok {
		return s, nil
	}
	return "", errorsmod.Wrapf(types.ErrSchema, "expected string or number, got %s", n.Kind())
}
