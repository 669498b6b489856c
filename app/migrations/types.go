package migrations

import (
	"fmt"
	"strings"
	"time"

	"github.com/kiichain/genesis-migrator/app/decimals"
	"github.com/kiichain/genesis-migrator/app/reconcile"
	"github.com/kiichain/genesis-migrator/app/resolver"
)

// Action is what the registry does with a module's state
type Action int

const (
	// ActionDrop removes the module state from the genesis
	ActionDrop Action = iota

	// ActionNoOp keeps the module state as it is
	ActionNoOp

	// ActionTransform rewrites the module state with a rule
	ActionTransform

	// ActionAdd inserts the state of a module the legacy chain did not have
	ActionAdd
)

// String returns the name of the action
func (a Action) String() string {
	switch a {
	case ActionDrop:
		return "drop"
	case ActionNoOp:
		return "noop"
	case ActionTransform:
		return "transform"
	case ActionAdd:
		return "add"
	default:
		return "unknown"
	}
}

// ModuleOutcome records how a single module was handled
type ModuleOutcome struct {
	Module string
	Action Action
}

// MigrationStats tracks statistics during migration
type MigrationStats struct {
	TotalModules       int
	DroppedModules     int
	UnchangedModules   int
	TransformedModules int
	AddedModules       int

	// Address re-keying
	Associations    int
	Replacements    int                     // Entries in the replacement map
	SkippedAccounts int                     // Associations left alone because the address is excluded
	Exclusions      map[resolver.Reason]int // Excluded addresses per reason
	AddressRewrites int                     // String values replaced by the address pass
	DenomRewrites   int                     // String values replaced by the denom pass

	// Balances
	Fragments   decimals.MergeStats
	ScaledCoins int // Designated coins and amounts rescaled outside of bank balances

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// ClawbackReport describes the balance reconciliation
type ClawbackReport struct {
	Source  string
	Rescue  string
	Denom   string
	Outcome reconcile.Outcome
}

// MigrationReport contains the full migration report
type MigrationReport struct {
	Stats       MigrationStats
	Modules     []ModuleOutcome
	SkipNotices []resolver.SkipNotice
	Collisions  []resolver.Collision
	Clawback    *ClawbackReport // Nil when no clawback is configured
	Warnings    []Warning
	DryRun      bool

	// Phase timings
	ResolveDuration    time.Duration
	RewriteDuration    time.Duration
	ConsensusDuration  time.Duration
	ModulesDuration    time.Duration
	ValidationDuration time.Duration
}

// Warning is a non-fatal finding of the module phase. Fields alternate keys
// and values, as for a log call.
type Warning struct {
	Message string
	Fields  []any
}

func (w Warning) String() string {
	var sb strings.Builder
	sb.WriteString(w.Message)
	for i := 0; i+1 < len(w.Fields); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", w.Fields[i], w.Fields[i+1])
	}
	return sb.String()
}

// ValidationResult represents a single post-migration check
type ValidationResult struct {
	Check   string
	Valid   bool
	Error   error
	Checked int // Number of items inspected by the check
}
