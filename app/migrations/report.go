package migrations

import (
	"fmt"
	"sort"
	"strings"

	"cosmossdk.io/log"

	"github.com/kiichain/genesis-migrator/app/resolver"
)

// maxListed is how many skip notices or collisions the log report prints.
const maxListed = 10

// ReportGenerator generates human-readable migration reports
type ReportGenerator struct {
	logger log.Logger
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(logger log.Logger) *ReportGenerator {
	return &ReportGenerator{
		logger: logger,
	}
}

// GenerateReport logs a full migration report. It is only called once the
// migration succeeded, so notices never precede a failure.
func (r *ReportGenerator) GenerateReport(report *MigrationReport, validationResults []ValidationResult) {
	r.logger.Info("=================================================================")
	if report.DryRun {
		r.logger.Warn("           GENESIS MIGRATION REPORT (DRY-RUN)")
		r.logger.Warn("=================================================================")
		r.logger.Warn("⚠️  DRY-RUN MODE - NO GENESIS FILE WAS WRITTEN")
		r.logger.Warn("=================================================================")
	} else {
		r.logger.Info("               GENESIS MIGRATION REPORT")
		r.logger.Info("=================================================================")
	}
	r.logger.Info("")

	stats := report.Stats

	r.logSection("MODULES")
	r.logger.Info(fmt.Sprintf("Total Modules:       %d", stats.TotalModules))
	r.logger.Info(fmt.Sprintf("Transformed:         %d", stats.TransformedModules))
	r.logger.Info(fmt.Sprintf("Unchanged:           %d", stats.UnchangedModules))
	r.logger.Info(fmt.Sprintf("Dropped:             %d", stats.DroppedModules))
	r.logger.Info(fmt.Sprintf("Added:               %d", stats.AddedModules))
	for _, m := range report.Modules {
		r.logger.Info(fmt.Sprintf("  %-24s %s", m.Module, m.Action))
	}
	r.logger.Info("")

	r.logSection("ADDRESSES")
	r.logger.Info(fmt.Sprintf("Associations:        %d", stats.Associations))
	r.logger.Info(fmt.Sprintf("Re-keyed:            %d (%.2f%%)",
		stats.Replacements,
		r.percentage(stats.Replacements, stats.Associations)))
	r.logger.Info(fmt.Sprintf("Skipped:             %d (%.2f%%)",
		stats.SkippedAccounts,
		r.percentage(stats.SkippedAccounts, stats.Associations)))
	for _, reason := range sortedReasons(stats.Exclusions) {
		r.logger.Info(fmt.Sprintf("  excluded %-15s %d", string(reason)+":", stats.Exclusions[reason]))
	}
	r.logger.Info(fmt.Sprintf("Address Rewrites:    %d", stats.AddressRewrites))
	r.logger.Info(fmt.Sprintf("Denom Rewrites:      %d", stats.DenomRewrites))
	r.logger.Info("")

	if len(report.SkipNotices) > 0 {
		r.logSection("SKIPPED ACCOUNTS")
		for i, n := range report.SkipNotices {
			if i == maxListed {
				r.logger.Info(fmt.Sprintf("  ... and %d more", len(report.SkipNotices)-maxListed))
				break
			}
			r.logger.Info(fmt.Sprintf("  %s will not be migrated - reason: %s", n.Address, n.Reason))
		}
		r.logger.Info("")
	}

	if len(report.Collisions) > 0 {
		r.logSection("COLLISIONS")
		for i, c := range report.Collisions {
			if i == maxListed {
				r.logger.Warn(fmt.Sprintf("  ... and %d more", len(report.Collisions)-maxListed))
				break
			}
			r.logger.Warn(fmt.Sprintf("  %s %s <- %s", c.Kind, c.Address, strings.Join(c.Sources, ", ")))
		}
		r.logger.Info("")
	}

	r.logSection("BALANCES")
	r.logger.Info(fmt.Sprintf("Wei Fragments:       %d", stats.Fragments.Fragments))
	r.logger.Info(fmt.Sprintf("  merged:            %d", stats.Fragments.Merged))
	r.logger.Info(fmt.Sprintf("  new coins:         %d", stats.Fragments.NewCoins))
	r.logger.Info(fmt.Sprintf("  new records:       %d", stats.Fragments.NewRecords))
	r.logger.Info(fmt.Sprintf("Scaled Balances:     %d", stats.Fragments.Scaled))
	r.logger.Info(fmt.Sprintf("Scaled Coins:        %d", stats.ScaledCoins))
	r.logger.Info("")

	if c := report.Clawback; c != nil {
		r.logSection("CLAWBACK")
		r.logger.Info(fmt.Sprintf("Source:              %s", c.Source))
		r.logger.Info(fmt.Sprintf("Rescue:              %s", c.Rescue))
		if c.Outcome.Applied {
			r.logger.Info(fmt.Sprintf("Original Balance:    %s%s", c.Outcome.Original, c.Denom))
			r.logger.Info(fmt.Sprintf("Moved:               %s%s", c.Outcome.Remainder, c.Denom))
			r.logger.Info(fmt.Sprintf("Rescue Created:      %v", c.Outcome.RescueCreated))
		} else {
			r.logger.Info("Nothing to move")
		}
		r.logger.Info("")
	}

	r.logSection("PHASE DURATIONS")
	r.logger.Info(fmt.Sprintf("Resolve:             %s", report.ResolveDuration))
	r.logger.Info(fmt.Sprintf("Rewrite:             %s", report.RewriteDuration))
	r.logger.Info(fmt.Sprintf("Consensus:           %s", report.ConsensusDuration))
	r.logger.Info(fmt.Sprintf("Modules:             %s", report.ModulesDuration))
	if report.ValidationDuration > 0 {
		r.logger.Info(fmt.Sprintf("Validation:          %s", report.ValidationDuration))
	}
	r.logger.Info(fmt.Sprintf("Total Duration:      %s", stats.Duration))
	r.logger.Info("")

	if len(validationResults) > 0 {
		r.logSection("VALIDATION RESULTS")
		for _, vr := range validationResults {
			if vr.Valid {
				r.logger.Info(fmt.Sprintf("✅ %-22s %d checked", vr.Check, vr.Checked))
			} else {
				r.logger.Error(fmt.Sprintf("❌ %-22s %v", vr.Check, vr.Error))
			}
		}
		r.logger.Info("")
	}

	r.logSection("SUMMARY")
	if len(report.Warnings) == 0 && len(report.Collisions) == 0 {
		r.logger.Info("✅ Migration completed successfully!")
	} else {
		r.logger.Warn("⚠️  Migration completed with warnings")
		for _, w := range report.Warnings {
			r.logger.Warn("⚠️  "+w.Message, w.Fields...)
		}
		if len(report.Collisions) > 0 {
			r.logger.Warn(fmt.Sprintf("⚠️  %d address collisions need review", len(report.Collisions)))
		}
	}

	r.logger.Info("")
	r.logger.Info("=================================================================")
}

// GenerateQuickSummary logs a one-line summary followed by the warnings
func (r *ReportGenerator) GenerateQuickSummary(report *MigrationReport) {
	stats := report.Stats
	r.logger.Info("Migration Summary",
		"modules", stats.TotalModules,
		"added", stats.AddedModules,
		"replacements", stats.Replacements,
		"skipped", stats.SkippedAccounts,
		"fragments", stats.Fragments.Fragments,
		"warnings", len(report.Warnings),
		"duration", stats.Duration,
	)
	for _, w := range report.Warnings {
		r.logger.Warn("⚠️  "+w.Message, w.Fields...)
	}
}

// logSection logs a section header
func (r *ReportGenerator) logSection(title string) {
	r.logger.Info(fmt.Sprintf("--- %s ---", title))
}

// percentage calculates a percentage
func (r *ReportGenerator) percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func sortedReasons(counts map[resolver.Reason]int) []resolver.Reason {
	reasons := make([]resolver.Reason, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

// FormatReport returns a formatted string report (for writing to a file)
func FormatReport(report *MigrationReport, validationResults []ValidationResult) string {
	var sb strings.Builder

	sb.WriteString("=================================================================\n")
	sb.WriteString("               GENESIS MIGRATION REPORT\n")
	sb.WriteString("=================================================================\n\n")

	if report.DryRun {
		sb.WriteString("Dry-Run: true\n\n")
	}

	stats := report.Stats
	sb.WriteString("MODULES\n")
	for _, m := range report.Modules {
		sb.WriteString(fmt.Sprintf("  %-24s %s\n", m.Module, m.Action))
	}
	sb.WriteString("\n")

	sb.WriteString("ADDRESSES\n")
	sb.WriteString(fmt.Sprintf("Associations:        %d\n", stats.Associations))
	sb.WriteString(fmt.Sprintf("Re-keyed:            %d\n", stats.Replacements))
	sb.WriteString(fmt.Sprintf("Skipped:             %d\n", stats.SkippedAccounts))
	sb.WriteString(fmt.Sprintf("Address Rewrites:    %d\n", stats.AddressRewrites))
	sb.WriteString(fmt.Sprintf("Denom Rewrites:      %d\n\n", stats.DenomRewrites))

	if len(report.SkipNotices) > 0 {
		sb.WriteString("SKIPPED ACCOUNTS\n")
		for _, n := range report.SkipNotices {
			sb.WriteString(fmt.Sprintf("  - %s (%s)\n", n.Address, n.Reason))
		}
		sb.WriteString("\n")
	}

	if len(report.Collisions) > 0 {
		sb.WriteString("COLLISIONS\n")
		for _, c := range report.Collisions {
			sb.WriteString(fmt.Sprintf("  - %s %s <- %s\n", c.Kind, c.Address, strings.Join(c.Sources, ", ")))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("BALANCES\n")
	sb.WriteString(fmt.Sprintf("Wei Fragments:       %d\n", stats.Fragments.Fragments))
	sb.WriteString(fmt.Sprintf("Scaled Balances:     %d\n", stats.Fragments.Scaled))
	sb.WriteString(fmt.Sprintf("Scaled Coins:        %d\n\n", stats.ScaledCoins))

	if c := report.Clawback; c != nil && c.Outcome.Applied {
		sb.WriteString("CLAWBACK\n")
		sb.WriteString(fmt.Sprintf("Moved %s%s from %s to %s\n\n", c.Outcome.Remainder, c.Denom, c.Source, c.Rescue))
	}

	if len(validationResults) > 0 {
		sb.WriteString("VALIDATION\n")
		for _, vr := range validationResults {
			status := "ok"
			if !vr.Valid {
				status = fmt.Sprintf("failed: %v", vr.Error)
			}
			sb.WriteString(fmt.Sprintf("  %-22s %s\n", vr.Check, status))
		}
		sb.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("WARNINGS\n")
		for _, w := range report.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", w.String()))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Duration:            %s\n", stats.Duration))
	sb.WriteString("=================================================================\n")

	return sb.String()
}
