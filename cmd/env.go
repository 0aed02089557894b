package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/onboard-cli/internal/extract"
	"github.com/sells-group/onboard-cli/internal/model"
	"github.com/sells-group/onboard-cli/internal/ocr"
	"github.com/sells-group/onboard-cli/internal/pipeline"
	"github.com/sells-group/onboard-cli/internal/report"
	"github.com/sells-group/onboard-cli/internal/risk"
	"github.com/sells-group/onboard-cli/internal/validate"
	"github.com/sells-group/onboard-cli/pkg/anthropic"
	"github.com/sells-group/onboard-cli/pkg/jina"
)

// buildPipeline assembles the verification pipeline from config.
func buildPipeline(mode string) (*pipeline.Pipeline, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	registry := model.DefaultRegistry()
	if cfg.Fields.SchemaPath != "" {
		r, err := model.LoadRegistry(cfg.Fields.SchemaPath)
		if err != nil {
			return nil, eris.Wrap(err, "cmd: load field schema")
		}
		registry = r
	}

	ocrExt, err := ocr.NewExtractor(cfg.OCR, cfg.Mistral.Key)
	if err != nil {
		return nil, err
	}

	if cfg.Anthropic.Key == "" {
		return nil, eris.New("cmd: anthropic.key is required")
	}
	anthClient := anthropic.NewClient(cfg.Anthropic.Key)
	llm := extract.NewLLMExtractor(anthClient, registry, cfg.Anthropic.HaikuModel, cfg.Anthropic.MaxTokens)

	// Without an embeddings key the validator runs permanently degraded on
	// exact matching; that is a supported mode, not an error.
	var similarity validate.Similarity
	if cfg.Jina.Key != "" {
		similarity = validate.NewEmbeddingSimilarity(jina.NewClient(cfg.Jina.Key,
			jina.WithBaseURL(cfg.Jina.BaseURL),
			jina.WithModel(cfg.Jina.Model),
			jina.WithRateLimit(cfg.Jina.RateLimit, cfg.Jina.Burst),
		))
	} else {
		zap.L().Warn("cmd: no jina.key configured; similarity validation degrades to exact matching")
	}

	validator := validate.New(registry, similarity,
		validate.WithThresholds(validate.Thresholds{
			Match:     cfg.Validation.MatchThreshold,
			Ambiguous: cfg.Validation.AmbiguousThreshold,
		}),
		validate.WithMaxInFlight(cfg.Validation.MaxInFlight),
	)

	rules := risk.Rules{
		HighMismatches:  cfg.Risk.HighMismatches,
		MediumAmbiguous: cfg.Risk.MediumAmbiguous,
	}

	summarizer := report.NewSummarizer(anthClient, cfg.Anthropic.SummaryModel, cfg.Anthropic.MaxTokens)

	return pipeline.New(ocrExt, llm, registry, validator, rules, summarizer,
		pipeline.WithIngestTimeout(time.Duration(cfg.Pipeline.IngestTimeoutSecs)*time.Second),
	), nil
}
