package migrations

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/document"
)

// Gov v1 params the legacy chain has no equivalent for.
const (
	govMinInitialDepositRatio = "0.000000000000000000"
	govProposalCancelRatio    = "0.500000000000000000"
	govMinDepositRatio        = "0.010000000000000000"
)

// migrateGov merges the split legacy params into a single v1 params object
// and starts the new chain without proposals.
func migrateGov(mc *ModuleContext, state *document.Node) (*document.Node, error) {
	gov, err := moduleObject("gov", state)
	if err != nil {
		return nil, err
	}

	params, err := govParams(mc, gov)
	if err != nil {
		return nil, errorsmod.Wrap(err, "gov")
	}
	gov.Set("params", params)

	gov.Set("starting_proposal_id", document.String("1"))
	gov.Set("deposits", document.Array())
	gov.Set("votes", document.Array())
	gov.Set("proposals", document.Array())

	gov.Set("deposit_params", document.Null())
	gov.Set("voting_params", document.Null())
	gov.Set("tally_params", document.Null())
	gov.Set("constitution", document.String(""))
	return state, nil
}

func govParams(mc *ModuleContext, gov *document.Object) (*document.Node, error) {
	deposit, err := gov.ObjectField("deposit_params")
	if err != nil {
		return nil, err
	}
	voting, err := gov.ObjectField("voting_params")
	if err != nil {
		return nil, err
	}
	tally, err := gov.ObjectField("tally_params")
	if err != nil {
		return nil, err
	}

	if err := mc.scaleCoinsAt(deposit, "min_deposit"); err != nil {
		return nil, errorsmod.Wrap(err, "deposit_params")
	}
	if err := mc.scaleCoinsAt(deposit, "min_expedited_deposit"); err != nil {
		return nil, errorsmod.Wrap(err, "deposit_params")
	}

	params := document.NewObject()
	copyFields := func(from *document.Object, what string, pairs ...[2]string) error {
		for _, p := range pairs {
			v, err := from.Field(p[0])
			if err != nil {
				return errorsmod.Wrap(err, what)
			}
			params.Set(p[1], v)
		}
		return nil
	}

	if err := copyFields(deposit, "deposit_params",
		[2]string{"min_deposit", "min_deposit"},
		[2]string{"max_deposit_period", "max_deposit_period"},
	); err != nil {
		return nil, err
	}
	if err := copyFields(voting, "voting_params", [2]string{"voting_period", "voting_period"}); err != nil {
		return nil, err
	}
	if err := copyFields(tally, "tally_params",
		[2]string{"quorum", "quorum"},
		[2]string{"threshold", "threshold"},
		[2]string{"veto_threshold", "veto_threshold"},
	); err != nil {
		return nil, err
	}
	params.Set("min_initial_deposit_ratio", document.String(govMinInitialDepositRatio))
	params.Set("proposal_cancel_ratio", document.String(govProposalCancelRatio))
	params.Set("proposal_cancel_dest", document.String(""))
	if err := copyFields(voting, "voting_params", [2]string{"expedited_voting_period", "expedited_voting_period"}); err != nil {
		return nil, err
	}
	if err := copyFields(tally, "tally_params", [2]string{"expedited_threshold", "expedited_threshold"}); err != nil {
		return nil, err
	}
	if err := copyFields(deposit, "deposit_params", [2]string{"min_expedited_deposit", "expedited_min_deposit"}); err != nil {
		return nil, err
	}
	params.Set("burn_vote_quorum", document.Bool(false))
	params.Set("burn_proposal_deposit_prevote", document.Bool(false))
	params.Set("burn_vote_veto", document.Bool(true))
	params.Set("min_deposit_ratio", document.String(govMinDepositRatio))

	return document.FromObject(params), nil
}
