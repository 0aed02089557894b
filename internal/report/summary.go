package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/onboard-cli/internal/model"
	"github.com/sells-group/onboard-cli/pkg/anthropic"
)

const summarySystemPrompt = `You write brief executive summaries of candidate verification runs for HR compliance reviewers.
Summarize the risk level, the key discrepancies, and any caveats in at most four sentences of plain prose. No markdown, no lists.`

// Summarizer produces an executive summary of a run via the Anthropic API.
type Summarizer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewSummarizer creates a Summarizer. A nil client disables summarization.
func NewSummarizer(client anthropic.Client, modelID string, maxTokens int64) *Summarizer {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Summarizer{client: client, model: modelID, maxTokens: maxTokens}
}

// Summarize returns a short narrative for the run. Failures degrade to an
// empty summary with a warning; the report stands without it.
func (s *Summarizer) Summarize(ctx context.Context, run *model.RunResult) (string, error) {
	if s == nil || s.client == nil {
		return "", nil
	}

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    []anthropic.SystemBlock{{Text: summarySystemPrompt}},
		Messages: []anthropic.Message{
			{Role: "user", Content: summaryInput(run)},
		},
	})
	if err != nil {
		zap.L().Warn("report: summary generation failed, continuing without it", zap.Error(err))
		return "", eris.Wrap(err, "report: summarize")
	}
	resp.Usage.LogCost(s.model, "summary")

	return strings.TrimSpace(resp.Text()), nil
}

// summaryInput renders the facts the model is allowed to summarize.
func summaryInput(run *model.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s\n", run.Candidate)
	fmt.Fprintf(&b, "Risk level: %s\n", run.Assessment.RiskLevel)
	fmt.Fprintf(&b, "Rationale: %s\n", run.Assessment.Rationale)
	if run.Degraded {
		b.WriteString("Caveat: semantic similarity was unavailable; some fields used exact matching only.\n")
	}
	b.WriteString("Verdicts:\n")
	for _, v := range run.Verdicts {
		fmt.Fprintf(&b, "- %s: %s (form %q, golden %q)\n", v.Field, v.Status, v.FormValue, v.GoldenValue)
	}
	return b.String()
}
