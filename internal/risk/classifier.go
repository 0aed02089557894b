// Package risk derives the compliance risk level from a verdict list.
package risk

import (
	"fmt"
	"strings"

	"github.com/sells-group/onboard-cli/internal/model"
)

// Rules holds the classification cut-offs. Zero is a legitimate cut-off
// ("any mismatch is HIGH"); negative values are clamped to zero.
type Rules struct {
	// HighMismatches: strictly more mismatched fields than this is HIGH.
	HighMismatches int
	// MediumAmbiguous: strictly more ambiguous fields than this is MEDIUM
	// (any mismatch at all is also MEDIUM).
	MediumAmbiguous int
}

// DefaultRules returns the standard rule table: >2 mismatches HIGH,
// >=1 mismatch or >3 ambiguous MEDIUM, otherwise LOW.
func DefaultRules() Rules {
	return Rules{HighMismatches: 2, MediumAmbiguous: 3}
}

// Classify applies the default rule table.
func Classify(verdicts []model.ValidationVerdict) model.RiskAssessment {
	return ClassifyWith(DefaultRules(), verdicts)
}

// ClassifyWith derives a RiskAssessment from verdicts. Rules are evaluated
// in fixed order and the first match wins: the HIGH check runs strictly
// before the MEDIUM check, so a verdict set that satisfies both is HIGH.
// Pure function; an empty verdict list is valid and yields LOW.
func ClassifyWith(rules Rules, verdicts []model.ValidationVerdict) model.RiskAssessment {
	// A cut-off of 0 is meaningful; only negatives are nonsense, and they
	// must not make a clean run trip the ">" comparisons below.
	if rules.HighMismatches < 0 {
		rules.HighMismatches = 0
	}
	if rules.MediumAmbiguous < 0 {
		rules.MediumAmbiguous = 0
	}

	assessment := model.RiskAssessment{
		IncorrectFields: []model.FieldName{},
		AmbiguousFields: []model.FieldName{},
		MissingFields:   []model.FieldName{},
	}
	for _, verdict := range verdicts {
		switch verdict.Status {
		case model.StatusMismatch:
			assessment.IncorrectFields = append(assessment.IncorrectFields, verdict.Field)
		case model.StatusAmbiguous:
			assessment.AmbiguousFields = append(assessment.AmbiguousFields, verdict.Field)
		case model.StatusMissing:
			assessment.MissingFields = append(assessment.MissingFields, verdict.Field)
		}
	}

	incorrect := len(assessment.IncorrectFields)
	ambiguous := len(assessment.AmbiguousFields)

	switch {
	case len(verdicts) == 0:
		assessment.RiskLevel = model.RiskLow
		assessment.Rationale = "no fields validated; defaulting to LOW risk"
	case incorrect > rules.HighMismatches:
		assessment.RiskLevel = model.RiskHigh
		assessment.Rationale = fmt.Sprintf("rule 1: %d mismatched fields exceed the limit of %d (%s)",
			incorrect, rules.HighMismatches, joinFields(assessment.IncorrectFields))
	case incorrect >= 1:
		assessment.RiskLevel = model.RiskMedium
		assessment.Rationale = fmt.Sprintf("rule 2: %d mismatched field(s) (%s)",
			incorrect, joinFields(assessment.IncorrectFields))
	case ambiguous > rules.MediumAmbiguous:
		assessment.RiskLevel = model.RiskMedium
		assessment.Rationale = fmt.Sprintf("rule 2: %d ambiguous fields exceed the limit of %d (%s)",
			ambiguous, rules.MediumAmbiguous, joinFields(assessment.AmbiguousFields))
	default:
		assessment.RiskLevel = model.RiskLow
		assessment.Rationale = "rule 3: all validated fields matched"
	}

	if n := len(assessment.MissingFields); n > 0 {
		assessment.Rationale += fmt.Sprintf("; %d field(s) missing from golden record (%s)",
			n, joinFields(assessment.MissingFields))
	}

	return assessment
}

func joinFields(fields []model.FieldName) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
