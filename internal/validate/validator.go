// Package validate checks a candidate's form submission against the golden
// record and produces one verdict per submitted field.
package validate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/onboard-cli/internal/model"
	"github.com/sells-group/onboard-cli/internal/normalize"
)

// Default similarity thresholds; stated here for reproducibility.
const (
	DefaultMatchThreshold     = 0.85
	DefaultAmbiguousThreshold = 0.60
)

// Thresholds maps a similarity score to a verdict status:
// score >= Match is MATCH, score >= Ambiguous is AMBIGUOUS, below is
// MISMATCH.
type Thresholds struct {
	Match     float64
	Ambiguous float64
}

// DefaultThresholds returns the standard 0.85/0.60 cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{Match: DefaultMatchThreshold, Ambiguous: DefaultAmbiguousThreshold}
}

// Validator compares form values against a golden record using an injected
// similarity capability. It is a pure function over its inputs: neither the
// record nor the form map is mutated.
type Validator struct {
	registry    *model.FieldRegistry
	similarity  Similarity
	thresholds  Thresholds
	maxInFlight int
}

// Option configures a Validator.
type Option func(*Validator)

// WithThresholds overrides the default similarity cut-offs.
func WithThresholds(t Thresholds) Option {
	return func(v *Validator) { v.thresholds = t }
}

// WithMaxInFlight caps concurrent similarity calls. Values below 2 keep
// validation sequential.
func WithMaxInFlight(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxInFlight = n
		}
	}
}

// New creates a Validator. A nil similarity capability is allowed and puts
// the validator permanently in exact-match fallback mode.
func New(registry *model.FieldRegistry, similarity Similarity, opts ...Option) *Validator {
	v := &Validator{
		registry:    registry,
		similarity:  similarity,
		thresholds:  DefaultThresholds(),
		maxInFlight: 1,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate produces one verdict per field in the form submission, in
// canonical field declaration order regardless of map iteration order.
//
// Similarity capability failures never fail the run: the affected field
// degrades to exact normalized equality and the degradation is recorded on
// the verdict. Only an unknown form field (a schema violation) or context
// cancellation returns an error; on cancellation the verdicts computed so
// far are returned alongside it.
func (v *Validator) Validate(ctx context.Context, golden *model.GoldenRecord, form map[model.FieldName]string) ([]model.ValidationVerdict, error) {
	fields := make([]model.FieldName, 0, len(form))
	for name := range form {
		if !v.registry.Known(name) {
			return nil, eris.Wrap(&model.UnknownFieldError{Field: name}, "validate")
		}
		fields = append(fields, name)
	}
	sort.Slice(fields, func(i, j int) bool {
		return v.registry.CanonicalIndex(fields[i]) < v.registry.CanonicalIndex(fields[j])
	})

	verdicts := make([]model.ValidationVerdict, len(fields))
	done := make([]bool, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.maxInFlight)
	for i, name := range fields {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = v.checkField(gctx, name, form[name], golden)
			done[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Cancelled mid-run: each verdict stands on its own, so the
		// completed prefix remains valid partial output.
		partial := make([]model.ValidationVerdict, 0, len(verdicts))
		for i, ok := range done {
			if ok {
				partial = append(partial, verdicts[i])
			}
		}
		return partial, eris.Wrap(err, "validate: cancelled")
	}

	return verdicts, nil
}

// checkField produces the verdict for one field. It never returns an error:
// every failure mode maps to a verdict status.
func (v *Validator) checkField(ctx context.Context, name model.FieldName, formValue string, golden *model.GoldenRecord) model.ValidationVerdict {
	verdict := model.ValidationVerdict{
		Field:     name,
		FormValue: formValue,
	}

	gf, ok := golden.Field(name)
	if !ok {
		verdict.Status = model.StatusMissing
		verdict.Reason = "no value in golden record"
		return verdict
	}
	verdict.GoldenValue = gf.ChosenValue

	spec := v.registry.Spec(name)
	if spec.Temporal {
		return v.checkTemporal(verdict)
	}

	if v.similarity == nil {
		return v.exactFallback(spec, verdict, "similarity capability not configured")
	}

	score, err := v.similarity.Score(ctx, gf.ChosenValue, formValue)
	if err != nil {
		zap.L().Warn("validate: similarity capability failed, degrading to exact match",
			zap.String("field", string(name)),
			zap.Error(err),
		)
		return v.exactFallback(spec, verdict, "similarity unavailable")
	}

	verdict.Similarity = score
	switch {
	case score >= v.thresholds.Match:
		verdict.Status = model.StatusMatch
	case score >= v.thresholds.Ambiguous:
		verdict.Status = model.StatusAmbiguous
	default:
		verdict.Status = model.StatusMismatch
	}
	verdict.Reason = fmt.Sprintf("semantic similarity %.4f", score)
	return verdict
}

// checkTemporal compares date fields by canonical representation. Embedding
// similarity is meaningless for dates, and OCR/LLM feeds produce malformed
// ones routinely, so any parse failure downgrades to AMBIGUOUS instead of
// failing the run.
func (v *Validator) checkTemporal(verdict model.ValidationVerdict) model.ValidationVerdict {
	goldenDate, gErr := normalize.Date(verdict.GoldenValue)
	formDate, fErr := normalize.Date(verdict.FormValue)

	switch {
	case gErr != nil || fErr != nil:
		verdict.Status = model.StatusAmbiguous
		verdict.Reason = "unparsable date value"
	case goldenDate == formDate:
		verdict.Status = model.StatusMatch
		verdict.Similarity = 1
		verdict.Reason = "canonical dates equal"
	default:
		verdict.Status = model.StatusMismatch
		verdict.Reason = fmt.Sprintf("canonical dates differ: %s vs %s", goldenDate, formDate)
	}
	return verdict
}

// exactFallback is the degraded path when no similarity capability is
// usable: exact equality after normalization, binary MATCH/MISMATCH. It
// must never fail; degraded quality beats a crashed compliance run.
func (v *Validator) exactFallback(spec *model.FieldSpec, verdict model.ValidationVerdict, reason string) model.ValidationVerdict {
	canon := normalize.Value
	if spec.StripID {
		canon = normalize.Identifier
	}

	if canon(verdict.GoldenValue) == canon(verdict.FormValue) {
		verdict.Status = model.StatusMatch
		verdict.Similarity = 1
	} else {
		verdict.Status = model.StatusMismatch
		verdict.Similarity = 0
	}
	verdict.Reason = reason + "; exact-match fallback"
	return verdict
}

// Degraded reports whether any verdict in the list was produced by the
// exact-match fallback path.
func Degraded(verdicts []model.ValidationVerdict) bool {
	for _, verdict := range verdicts {
		if strings.Contains(verdict.Reason, "exact-match fallback") {
			return true
		}
	}
	return false
}
