// Package pipeline orchestrates a full verification run: ingest the dossier
// documents, consolidate observations into a golden record, validate the
// candidate's form against it, and classify the risk.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/onboard-cli/internal/extract"
	"github.com/sells-group/onboard-cli/internal/golden"
	"github.com/sells-group/onboard-cli/internal/model"
	"github.com/sells-group/onboard-cli/internal/ocr"
	"github.com/sells-group/onboard-cli/internal/report"
	"github.com/sells-group/onboard-cli/internal/risk"
	"github.com/sells-group/onboard-cli/internal/validate"
)

// Dossier names the input documents for one candidate. Only the form is
// mandatory; any other missing document skips its ingestion phase.
type Dossier struct {
	Candidate      string
	FormPath       string
	ResumePath     string
	IDCardPath     string
	TranscriptPath string
}

// Pipeline wires the phases together. All collaborators are interfaces or
// small structs so runs are testable without network access.
type Pipeline struct {
	ocr           ocr.Extractor
	llm           *extract.LLMExtractor
	registry      *model.FieldRegistry
	builder       *golden.Builder
	validator     *validate.Validator
	rules         risk.Rules
	summarizer    *report.Summarizer
	ingestTimeout time.Duration
}

// Option customizes pipeline behavior.
type Option func(*Pipeline)

// WithIngestTimeout bounds the parallel document-ingestion phase. A source
// that misses the deadline is recorded as failed; the run proceeds without
// it. Zero means no bound.
func WithIngestTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.ingestTimeout = d
	}
}

// New creates a Pipeline. The summarizer may be nil.
func New(ocrExt ocr.Extractor, llm *extract.LLMExtractor, registry *model.FieldRegistry, validator *validate.Validator, rules risk.Rules, summarizer *report.Summarizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		ocr:        ocrExt,
		llm:        llm,
		registry:   registry,
		builder:    golden.NewBuilder(registry),
		validator:  validator,
		rules:      rules,
		summarizer: summarizer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the full verification for one dossier. The returned RunResult
// always carries a RiskAssessment: ingestion failures skip sources rather
// than aborting, and only a missing form or an unknown-field schema violation
// fails the run.
func (p *Pipeline) Run(ctx context.Context, dossier Dossier) (*model.RunResult, error) {
	run := &model.RunResult{
		RunID:     uuid.NewString(),
		Candidate: dossier.Candidate,
		CreatedAt: time.Now().UTC(),
	}
	log := zap.L().With(zap.String("run_id", run.RunID), zap.String("candidate", dossier.Candidate))

	var phasesMu sync.Mutex
	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) {
		start := time.Now()
		phaseResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		if fnErr != nil {
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else if phaseResult.Status == "" {
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		phasesMu.Lock()
		run.Phases = append(run.Phases, *phaseResult)
		phasesMu.Unlock()
	}

	// The form is the validation subject; without it there is no run.
	var form *extract.OnboardingForm
	var formErr error
	trackPhase("load_form", func() (*model.PhaseResult, error) {
		form, formErr = extract.LoadForm(dossier.FormPath)
		return nil, formErr
	})
	if formErr != nil {
		return nil, eris.Wrap(formErr, "pipeline: load form")
	}
	if run.Candidate == "" {
		run.Candidate = form.PersonalDetails.Name
	}

	// Ingest the remaining sources in parallel. A failed source is recorded
	// on its phase and the run proceeds with whatever was readable.
	var obsMu sync.Mutex
	observations := form.Observations(run.CreatedAt)

	addObs := func(obs []model.Observation) {
		obsMu.Lock()
		observations = append(observations, obs...)
		obsMu.Unlock()
	}

	ingestCtx := ctx
	if p.ingestTimeout > 0 {
		var cancel context.CancelFunc
		ingestCtx, cancel = context.WithTimeout(ctx, p.ingestTimeout)
		defer cancel()
	}
	g, gCtx := errgroup.WithContext(ingestCtx)

	g.Go(func() error {
		trackPhase("ingest_resume", func() (*model.PhaseResult, error) {
			return p.ingestViaLLM(gCtx, dossier.ResumePath, model.SourceResume, addObs)
		})
		return nil
	})

	g.Go(func() error {
		trackPhase("ingest_transcript", func() (*model.PhaseResult, error) {
			return p.ingestViaLLM(gCtx, dossier.TranscriptPath, model.SourceTranscript, addObs)
		})
		return nil
	})

	g.Go(func() error {
		trackPhase("ingest_id_card", func() (*model.PhaseResult, error) {
			if dossier.IDCardPath == "" {
				return skippedPhase("no ID card provided"), nil
			}
			text, err := p.ocr.ExtractText(gCtx, dossier.IDCardPath)
			if err != nil {
				return nil, err
			}
			obs := extract.IDCardFields(text, time.Now().UTC())
			addObs(obs)
			return &model.PhaseResult{
				Metadata: map[string]any{"observations": len(obs)},
			}, nil
		})
		return nil
	})

	// Ingest closures record failures on their own phase and return nil, so
	// Wait only synchronizes; it cannot fail the run.
	_ = g.Wait()

	var record *model.GoldenRecord
	var buildErr error
	trackPhase("consolidate", func() (*model.PhaseResult, error) {
		record, buildErr = p.builder.Build(observations)
		if buildErr != nil {
			return nil, buildErr
		}
		return &model.PhaseResult{
			Metadata: map[string]any{
				"fields":    record.Len(),
				"conflicts": len(record.Conflicts()),
			},
		}, nil
	})
	if buildErr != nil {
		return nil, eris.Wrap(buildErr, "pipeline: consolidate")
	}
	run.Golden = record

	var verdicts []model.ValidationVerdict
	var validateErr error
	trackPhase("validate", func() (*model.PhaseResult, error) {
		verdicts, validateErr = p.validator.Validate(ctx, record, form.Values())
		if validateErr != nil {
			return nil, validateErr
		}
		return &model.PhaseResult{
			Metadata: map[string]any{"verdicts": len(verdicts)},
		}, nil
	})
	if validateErr != nil {
		return nil, eris.Wrap(validateErr, "pipeline: validate")
	}
	run.Verdicts = verdicts
	run.Degraded = validate.Degraded(verdicts)

	trackPhase("classify", func() (*model.PhaseResult, error) {
		run.Assessment = risk.ClassifyWith(p.rules, verdicts)
		return &model.PhaseResult{
			Metadata: map[string]any{"risk_level": string(run.Assessment.RiskLevel)},
		}, nil
	})

	trackPhase("summarize", func() (*model.PhaseResult, error) {
		if p.summarizer == nil {
			return skippedPhase("summarizer disabled"), nil
		}
		summary, err := p.summarizer.Summarize(ctx, run)
		if err != nil {
			// Summary is decorative; the run result stands without it.
			return skippedPhase("summary unavailable: " + err.Error()), nil
		}
		run.Summary = summary
		return nil, nil
	})

	log.Info("pipeline: run complete",
		zap.String("risk_level", string(run.Assessment.RiskLevel)),
		zap.Bool("degraded", run.Degraded),
	)
	return run, nil
}

// ingestViaLLM reads one free-text document (OCR for PDFs, direct read for
// plain text) and extracts observations from it.
func (p *Pipeline) ingestViaLLM(ctx context.Context, path string, source model.SourceKind, addObs func([]model.Observation)) (*model.PhaseResult, error) {
	if path == "" {
		return skippedPhase("no " + string(source) + " provided"), nil
	}

	var text string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		extracted, err := p.ocr.ExtractText(ctx, path)
		if err != nil {
			return nil, err
		}
		text = extracted
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: read %s", path)
		}
		text = string(data)
	}

	obs, err := p.llm.Extract(ctx, source, text)
	if err != nil {
		return nil, err
	}
	addObs(obs)
	return &model.PhaseResult{
		Metadata: map[string]any{"observations": len(obs)},
	}, nil
}

func skippedPhase(reason string) *model.PhaseResult {
	return &model.PhaseResult{
		Status:   model.PhaseStatusSkipped,
		Metadata: map[string]any{"reason": reason},
	}
}
