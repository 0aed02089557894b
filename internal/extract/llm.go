package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/onboard-cli/internal/model"
	"github.com/sells-group/onboard-cli/pkg/anthropic"
)

const extractSystemPrompt = `You are a data extraction engine for HR onboarding documents.
Extract candidate attributes only when they are explicitly stated in the text. Never invent values.
Respond with a single JSON object mapping field names to string values. Omit fields that are absent.
Recognized field names: full_name, date_of_birth, id_type, id_number, address, pincode, email, phone, institution, degree, graduation_year, company, designation, start_date, end_date.`

// LLMExtractor pulls structured field values out of free text (resumes, HR
// call transcripts) via the Anthropic API.
type LLMExtractor struct {
	client    anthropic.Client
	registry  *model.FieldRegistry
	model     string
	maxTokens int64
}

// NewLLMExtractor creates an extractor using the given model.
func NewLLMExtractor(client anthropic.Client, registry *model.FieldRegistry, modelID string, maxTokens int64) *LLMExtractor {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &LLMExtractor{
		client:    client,
		registry:  registry,
		model:     modelID,
		maxTokens: maxTokens,
	}
}

// Extract produces observations tagged with the given source from one
// document's text. Fields the model reports outside the recognized schema
// are dropped with a warning rather than failing the run.
func (e *LLMExtractor) Extract(ctx context.Context, source model.SourceKind, text string) ([]model.Observation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	temp := 0.0
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Temperature: &temp,
		System: []anthropic.SystemBlock{
			{Text: extractSystemPrompt, CacheControl: &anthropic.CacheControl{TTL: "5m"}},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf("Document type: %s\n\n%s", source, text)},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "extract: %s extraction", source)
	}
	resp.Usage.LogCost(e.model, "extract_"+string(source))

	var fields map[string]string
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &fields); err != nil {
		return nil, eris.Wrapf(err, "extract: parse %s extraction response", source)
	}

	now := time.Now().UTC()
	obs := make([]model.Observation, 0, len(fields))
	for _, spec := range e.registry.Fields() {
		value, ok := fields[string(spec.Name)]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		obs = append(obs, model.Observation{
			Field:       spec.Name,
			Value:       strings.TrimSpace(value),
			Source:      source,
			Confidence:  1,
			ExtractedAt: now,
		})
		delete(fields, string(spec.Name))
	}
	for name := range fields {
		if !e.registry.Known(model.FieldName(name)) {
			zap.L().Warn("extract: model reported unrecognized field",
				zap.String("field", name),
				zap.String("source", string(source)),
			)
		}
	}

	return obs, nil
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
