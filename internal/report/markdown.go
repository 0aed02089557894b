package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/onboard-cli/internal/model"
)

// FormatReport generates a human-readable verification report.
func FormatReport(run *model.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Verification Report: %s\n", run.Candidate)
	fmt.Fprintf(&b, "Run ID: %s\n\n", run.RunID)

	// Summary.
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Risk level: %s\n", run.Assessment.RiskLevel)
	fmt.Fprintf(&b, "- Fields validated: %d\n", len(run.Verdicts))
	if run.Golden != nil {
		fmt.Fprintf(&b, "- Golden record fields: %d\n", run.Golden.Len())
		fmt.Fprintf(&b, "- Source conflicts: %d\n", len(run.Golden.Conflicts()))
	}
	if run.Degraded {
		b.WriteString("- NOTE: semantic similarity was unavailable for part of this run; affected fields used exact matching\n")
	}
	fmt.Fprintf(&b, "- Rationale: %s\n\n", run.Assessment.Rationale)

	if run.Summary != "" {
		b.WriteString("## Executive Summary\n")
		b.WriteString(run.Summary)
		b.WriteString("\n\n")
	}

	// Phase results.
	b.WriteString("## Phases\n")
	for _, p := range run.Phases {
		fmt.Fprintf(&b, "- %s: %s (%dms)\n", p.Name, p.Status, p.Duration)
		if p.Error != "" {
			fmt.Fprintf(&b, "  Error: %s\n", p.Error)
		}
	}
	b.WriteString("\n")

	// Golden record with provenance.
	b.WriteString("## Golden Record\n")
	if run.Golden == nil || run.Golden.Len() == 0 {
		b.WriteString("No fields consolidated.\n\n")
	} else {
		for _, f := range run.Golden.Fields() {
			marker := ""
			if f.HasConflict {
				marker = " ⚠ conflict"
			}
			fmt.Fprintf(&b, "- **%s**: %s (from %s)%s\n", f.Field, f.ChosenValue, f.ChosenSource, marker)
			if f.HasConflict {
				for _, cv := range f.CandidateValues {
					fmt.Fprintf(&b, "  - %s: %q\n", cv.Source, cv.Value)
				}
			}
		}
		b.WriteString("\n")
	}

	// Discrepancy table: only non-matching verdicts.
	b.WriteString("## Discrepancies\n")
	flagged := 0
	for _, v := range run.Verdicts {
		if v.Status == model.StatusMatch {
			continue
		}
		flagged++
		fmt.Fprintf(&b, "- **%s** [%s]: form %q vs golden %q (%s)\n",
			v.Field, v.Status, v.FormValue, v.GoldenValue, v.Reason)
	}
	if flagged == 0 {
		b.WriteString("No discrepancies found. All data verified successfully.\n")
	}

	return b.String()
}
