package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/onboard-cli/internal/model"
)

func verdictsOf(statuses ...model.VerdictStatus) []model.ValidationVerdict {
	out := make([]model.ValidationVerdict, len(statuses))
	for i, s := range statuses {
		out[i] = model.ValidationVerdict{
			Field:  model.FieldName(string(rune('a' + i))),
			Status: s,
		}
	}
	return out
}

func TestClassify_ThreeMismatchesIsHigh(t *testing.T) {
	got := Classify(verdictsOf(model.StatusMismatch, model.StatusMismatch, model.StatusMismatch))
	assert.Equal(t, model.RiskHigh, got.RiskLevel)
	assert.Len(t, got.IncorrectFields, 3)
	assert.Contains(t, got.Rationale, "rule 1")
}

func TestClassify_HighRuleEvaluatedBeforeMedium(t *testing.T) {
	// 3 mismatches + 4 ambiguous satisfies both rule 1 and rule 2; rule 1
	// must win.
	got := Classify(verdictsOf(
		model.StatusMismatch, model.StatusMismatch, model.StatusMismatch,
		model.StatusAmbiguous, model.StatusAmbiguous, model.StatusAmbiguous, model.StatusAmbiguous,
	))
	assert.Equal(t, model.RiskHigh, got.RiskLevel)
}

func TestClassify_OneMismatchManyAmbiguousIsMedium(t *testing.T) {
	// 1 mismatch does not trip rule 1 (1 <= 2), so rule 2 fires.
	got := Classify(verdictsOf(
		model.StatusMismatch,
		model.StatusAmbiguous, model.StatusAmbiguous, model.StatusAmbiguous,
		model.StatusAmbiguous, model.StatusAmbiguous,
	))
	assert.Equal(t, model.RiskMedium, got.RiskLevel)
}

func TestClassify_AmbiguousOnly(t *testing.T) {
	assert.Equal(t, model.RiskLow,
		Classify(verdictsOf(model.StatusAmbiguous, model.StatusAmbiguous, model.StatusAmbiguous)).RiskLevel,
		"3 ambiguous is within the limit")
	assert.Equal(t, model.RiskMedium,
		Classify(verdictsOf(model.StatusAmbiguous, model.StatusAmbiguous, model.StatusAmbiguous, model.StatusAmbiguous)).RiskLevel,
		"4 ambiguous exceeds the limit")
}

func TestClassify_MissingCountsTowardNeitherButIsReported(t *testing.T) {
	got := Classify(verdictsOf(model.StatusMatch, model.StatusMissing, model.StatusMissing))
	assert.Equal(t, model.RiskLow, got.RiskLevel)
	assert.Empty(t, got.IncorrectFields)
	assert.Empty(t, got.AmbiguousFields)
	assert.Len(t, got.MissingFields, 2)
	assert.Contains(t, got.Rationale, "missing from golden record")
}

func TestClassify_EmptyVerdictList(t *testing.T) {
	got := Classify(nil)
	assert.Equal(t, model.RiskLow, got.RiskLevel)
	assert.NotEmpty(t, got.Rationale)
	assert.Contains(t, got.Rationale, "no fields validated")
}

func TestClassify_AllMatchesIsLow(t *testing.T) {
	got := Classify(verdictsOf(model.StatusMatch, model.StatusMatch))
	assert.Equal(t, model.RiskLow, got.RiskLevel)
	assert.Contains(t, got.Rationale, "rule 3")
}

func TestClassifyWith_CustomRules(t *testing.T) {
	rules := Rules{HighMismatches: 1, MediumAmbiguous: 1}
	got := ClassifyWith(rules, verdictsOf(model.StatusMismatch, model.StatusMismatch))
	assert.Equal(t, model.RiskHigh, got.RiskLevel)
}

func TestClassifyWith_ZeroCutoffs(t *testing.T) {
	rules := Rules{HighMismatches: 0, MediumAmbiguous: 0}

	// A zero cut-off means any single occurrence trips the rule.
	got := ClassifyWith(rules, verdictsOf(model.StatusMismatch))
	assert.Equal(t, model.RiskHigh, got.RiskLevel)

	got = ClassifyWith(rules, verdictsOf(model.StatusAmbiguous))
	assert.Equal(t, model.RiskMedium, got.RiskLevel)

	// A clean run still classifies LOW under the strictest rules.
	got = ClassifyWith(rules, verdictsOf(model.StatusMatch, model.StatusMatch))
	assert.Equal(t, model.RiskLow, got.RiskLevel)
}

func TestClassifyWith_NegativeCutoffsClampToZero(t *testing.T) {
	rules := Rules{HighMismatches: -1, MediumAmbiguous: -5}
	got := ClassifyWith(rules, verdictsOf(model.StatusMatch))
	assert.Equal(t, model.RiskLow, got.RiskLevel, "negatives must not trip rules on a clean run")
}
