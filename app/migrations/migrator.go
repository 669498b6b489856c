// Package migrations converts a legacy kiichain genesis into the genesis of
// the EVM based chain, module by module.
package migrations

import (
	"strconv"
	"time"

	"github.com/hashicorp/go-metrics"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/cosmos/cosmos-sdk/telemetry"

	"github.com/kiichain/genesis-migrator/app/config"
	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/resolver"
	"github.com/kiichain/genesis-migrator/app/rewrite"
	"github.com/kiichain/genesis-migrator/app/types"
)

// Migrator handles the genesis migration process
type Migrator struct {
	logger         log.Logger
	cfg            config.Config
	registry       *Registry
	dryRun         bool // If true, the migration runs but the caller does not write the result
	skipValidation bool
}

// NewMigrator creates a new migrator instance using the default registry
func NewMigrator(logger log.Logger, cfg config.Config) *Migrator {
	return &Migrator{
		logger:   logger,
		cfg:      cfg,
		registry: DefaultRegistry(),
	}
}

// WithRegistry replaces the module registry.
func (m *Migrator) WithRegistry(r *Registry) *Migrator {
	m.registry = r
	return m
}

// SetDryRun enables or disables dry-run mode
// In dry-run mode every phase runs but no output is written
func (m *Migrator) SetDryRun(enabled bool) {
	m.dryRun = enabled
	if enabled {
		m.logger.Warn("⚠️  DRY-RUN MODE ENABLED - No genesis file will be written")
	}
}

// SetSkipValidation disables the post-migration checks
func (m *Migrator) SetSkipValidation(skip bool) {
	m.skipValidation = skip
	if skip {
		m.logger.Warn("⚠️  Post-migration validation disabled")
	}
}

// Migrate converts genesis and returns the new document together with the
// migration report and the validation results. genesis is not modified. Any
// error aborts the whole migration and no document is returned; failed
// validation still returns its results.
func (m *Migrator) Migrate(genesis *document.Node) (*document.Node, *MigrationReport, []ValidationResult, error) {
	if err := m.cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	m.logger.Info("Starting genesis migration",
		"chain_id", m.cfg.ChainID,
		"denom", m.cfg.Denom,
		"dry_run", m.dryRun,
	)

	report := &MigrationReport{DryRun: m.dryRun}
	startTime := time.Now()
	report.Stats.StartTime = startTime

	out := genesis.Clone()
	root, ok := out.AsObject()
	if !ok {
		return nil, nil, nil, errorsmod.Wrapf(types.ErrSchema, "genesis: expected object, got %s", out.Kind())
	}
	if err := m.migrateMetadata(root); err != nil {
		return nil, nil, nil, err
	}

	// Phase 1: Address resolution
	resolveStart := time.Now()
	resolved, err := resolver.Resolve(out, resolver.Params{
		Prefix:                m.cfg.AccountPrefix,
		EarlyAccountThreshold: m.cfg.EarlyAccountThreshold,
	})
	if err != nil {
		return nil, nil, nil, errorsmod.Wrap(err, "address resolution")
	}
	report.ResolveDuration = time.Since(resolveStart)
	telemetry.MeasureSince(resolveStart, "migrate", "resolve")
	report.SkipNotices = resolved.Skipped
	report.Collisions = resolved.Collisions
	report.Stats.Associations = resolved.Associations
	report.Stats.Replacements = len(resolved.Replacements)
	report.Stats.SkippedAccounts = len(resolved.Skipped)
	report.Stats.Exclusions = resolved.Exclusions.Count()

	m.logger.Info("Address resolution complete",
		"associations", resolved.Associations,
		"replacements", len(resolved.Replacements),
		"skipped", len(resolved.Skipped),
		"collisions", len(resolved.Collisions),
		"duration", report.ResolveDuration,
	)

	// Phase 2: Address and denom rewrite
	rewriteStart := time.Now()
	denoms := rewrite.Map(m.cfg.Renames())
	// the passes run one after the other, so a shared key would be rewritten twice
	if _, err := rewrite.Compose(resolved.Replacements, denoms); err != nil {
		return nil, nil, nil, err
	}
	report.Stats.AddressRewrites = rewrite.Count(out, resolved.Replacements)
	out = rewrite.Rewrite(out, resolved.Replacements)
	report.Stats.DenomRewrites = rewrite.Count(out, denoms)
	out = rewrite.Rewrite(out, denoms)
	report.RewriteDuration = time.Since(rewriteStart)
	telemetry.MeasureSince(rewriteStart, "migrate", "rewrite")

	m.logger.Info("Rewrite complete",
		"address_rewrites", report.Stats.AddressRewrites,
		"denom_rewrites", report.Stats.DenomRewrites,
		"duration", report.RewriteDuration,
	)

	// Phase 3: Consensus
	consensusStart := time.Now()
	root, _ = out.AsObject()
	if err := MigrateConsensus(root); err != nil {
		return nil, nil, nil, errorsmod.Wrap(err, "consensus")
	}
	report.ConsensusDuration = time.Since(consensusStart)
	telemetry.MeasureSince(consensusStart, "migrate", "consensus")

	// Phase 4: Modules
	modulesStart := time.Now()
	appState, err := root.ObjectField("app_state")
	if err != nil {
		return nil, nil, nil, err
	}
	if err := m.migrateModules(appState, report); err != nil {
		return nil, nil, nil, err
	}
	report.ModulesDuration = time.Since(modulesStart)
	telemetry.MeasureSince(modulesStart, "migrate", "modules")

	// Phase 5: Validation
	var results []ValidationResult
	if !m.skipValidation {
		validationStart := time.Now()
		results, err = NewValidator(m.logger).ValidateMigration(ValidationInput{
			Input:        genesis,
			Output:       out,
			Replacements: resolved.Replacements,
			DenomRenames: denoms,
			Exclusions:   resolved.Exclusions,
			Added:        m.registry.Added(),
		})
		report.ValidationDuration = time.Since(validationStart)
		telemetry.MeasureSince(validationStart, "migrate", "validation")
		if err != nil {
			return nil, nil, results, err
		}
	}

	report.Stats.EndTime = time.Now()
	report.Stats.Duration = time.Since(startTime)
	telemetry.MeasureSince(startTime, "migrate", "total")
	telemetry.SetGauge(float32(report.Stats.Replacements), "migrate", "replacements")

	m.logger.Info("Migration complete",
		"modules", report.Stats.TotalModules,
		"transformed", report.Stats.TransformedModules,
		"dropped", report.Stats.DroppedModules,
		"added", report.Stats.AddedModules,
		"duration", report.Stats.Duration,
	)
	return out, report, results, nil
}

// migrateMetadata sets the static root fields of the new chain.
func (m *Migrator) migrateMetadata(root *document.Object) error {
	root.Set("app_name", document.String(m.cfg.AppName))
	root.Set("app_version", document.String(m.cfg.AppVersion))
	root.Set("chain_id", document.String(m.cfg.ChainID))

	v, err := root.Field("initial_height")
	if err != nil {
		return err
	}
	text, err := scalarString(v)
	if err != nil {
		return errorsmod.Wrap(err, "initial_height")
	}
	height, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return errorsmod.Wrapf(types.ErrSchema, "initial_height: %s", err)
	}
	root.Set("initial_height", document.Number(strconv.FormatInt(height, 10)))
	root.Set("app_hash", document.Null())
	return nil
}

// migrateModules runs the registry over every module of appState and then
// appends the added modules in order.
func (m *Migrator) migrateModules(appState *document.Object, report *MigrationReport) error {
	if err := m.registry.CheckModules(appState); err != nil {
		return err
	}

	mc := &ModuleContext{
		Config: m.cfg,
		Logger: m.logger,
		Report: report,
	}
	if bondDenom, err := document.FromObject(appState).GetString("staking", "params", "bond_denom"); err == nil {
		mc.BondDenom = bondDenom
	}

	for _, name := range appState.Keys() {
		entry, err := m.registry.Lookup(name)
		if err != nil {
			return err
		}
		report.Stats.TotalModules++

		switch entry.Action {
		case ActionDrop:
			appState.Delete(name)
			report.Stats.DroppedModules++

		case ActionNoOp:
			report.Stats.UnchangedModules++

		case ActionTransform:
			state, _ := appState.Get(name)
			migrated, err := entry.Rule(mc, state)
			if err != nil {
				return errorsmod.Wrapf(err, "module %s", name)
			}
			appState.Set(name, migrated)
			report.Stats.TransformedModules++
		}

		report.Modules = append(report.Modules, ModuleOutcome{Module: name, Action: entry.Action})
		telemetry.IncrCounterWithLabels([]string{"migrate", "modules"}, 1, []metrics.Label{telemetry.NewLabel("action", entry.Action.String())})
		m.logger.Debug("Module migrated", "module", name, "action", entry.Action.String())
	}

	for _, added := range m.registry.Added() {
		if appState.Has(added.Name) {
			mc.warn("added module already present, replacing its state", "module", added.Name)
		}
		appState.Set(added.Name, added.Payload())
		report.Stats.AddedModules++
		telemetry.IncrCounterWithLabels([]string{"migrate", "modules"}, 1, []metrics.Label{telemetry.NewLabel("action", ActionAdd.String())})
		report.Modules = append(report.Modules, ModuleOutcome{Module: added.Name, Action: ActionAdd})
	}
	return nil
}
