// Package golden consolidates source-tagged field observations into a single
// conflict-annotated golden record per candidate.
package golden

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/onboard-cli/internal/model"
	"github.com/sells-group/onboard-cli/internal/normalize"
)

// Builder consolidates observations against a fixed field schema. It is the
// only writer of GoldenRecords; everything downstream treats them as
// read-only.
type Builder struct {
	registry *model.FieldRegistry
}

// NewBuilder creates a Builder over the given field schema.
func NewBuilder(registry *model.FieldRegistry) *Builder {
	return &Builder{registry: registry}
}

// Build consolidates observations into a GoldenRecord.
//
// Within each field group, observations are ordered by source priority
// descending, then extraction time descending, so the chosen value always
// comes from the most trusted source, most recent first within a source.
// All distinct normalized values survive as candidate values in that same
// order; two or more distinct values mark the field as conflicted.
//
// Output is identical for any permutation of the input. Observations with
// empty values are skipped; an observation for an unrecognized field fails
// the whole call with UnknownFieldError.
func (b *Builder) Build(observations []model.Observation) (*model.GoldenRecord, error) {
	groups := make(map[model.FieldName][]model.Observation)
	for _, obs := range observations {
		if !b.registry.Known(obs.Field) {
			return nil, eris.Wrap(&model.UnknownFieldError{Field: obs.Field}, "golden: build")
		}
		if strings.TrimSpace(obs.Value) == "" {
			continue
		}
		groups[obs.Field] = append(groups[obs.Field], obs)
	}

	fields := make([]model.GoldenField, 0, len(groups))
	for _, spec := range b.registry.Fields() {
		group, ok := groups[spec.Name]
		if !ok {
			continue
		}
		fields = append(fields, b.consolidate(spec, group))
	}

	record := model.NewGoldenRecord(fields)
	if n := len(record.Conflicts()); n > 0 {
		zap.L().Debug("golden: conflicts detected",
			zap.Int("fields", record.Len()),
			zap.Int("conflicts", n),
		)
	}
	return record, nil
}

// consolidate resolves a single field group. The tertiary sort on the
// normalized value makes ordering total even when two sources report
// different values at the same instant.
func (b *Builder) consolidate(spec model.FieldSpec, group []model.Observation) model.GoldenField {
	canon := canonicalizer(spec)

	sorted := make([]model.Observation, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		if pi, pj := sorted[i].Source.Priority(), sorted[j].Source.Priority(); pi != pj {
			return pi > pj
		}
		if !sorted[i].ExtractedAt.Equal(sorted[j].ExtractedAt) {
			return sorted[i].ExtractedAt.After(sorted[j].ExtractedAt)
		}
		if ci, cj := canon(sorted[i].Value), canon(sorted[j].Value); ci != cj {
			return ci < cj
		}
		return sorted[i].Value < sorted[j].Value
	})

	seen := make(map[string]bool, len(sorted))
	candidates := make([]model.CandidateValue, 0, len(sorted))
	for _, obs := range sorted {
		key := canon(obs.Value)
		if seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, model.CandidateValue{
			Value:  obs.Value,
			Source: obs.Source,
		})
	}

	return model.GoldenField{
		Field:           spec.Name,
		ChosenValue:     sorted[0].Value,
		ChosenSource:    sorted[0].Source,
		CandidateValues: candidates,
		HasConflict:     len(candidates) > 1,
	}
}

// canonicalizer returns the normalization rule for a field: identifier
// stripping for ID-like fields, canonical dates for temporal fields where
// parsable, plain value folding otherwise.
func canonicalizer(spec model.FieldSpec) func(string) string {
	switch {
	case spec.StripID:
		return normalize.Identifier
	case spec.Temporal:
		return func(s string) string {
			if d, err := normalize.Date(s); err == nil {
				return d
			}
			return normalize.Value(s)
		}
	default:
		return normalize.Value
	}
}
