// Package report renders run results as JSON, markdown, and spreadsheets.
package report

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/onboard-cli/internal/model"
)

// exportRecord is the wire shape of an exported run. Everything is slices in
// canonical field order so two exports of the same run are byte-identical;
// no timestamps, no map iteration.
type exportRecord struct {
	RunID     string              `json:"run_id"`
	Candidate string              `json:"candidate"`
	Fields    []model.GoldenField `json:"fields"`
	Conflicts []model.FieldName   `json:"conflicts"`
	Verdicts  []exportVerdict     `json:"verdicts"`
	Risk      exportRisk          `json:"risk"`
	Degraded  bool                `json:"degraded"`
}

type exportVerdict struct {
	Field       model.FieldName     `json:"field"`
	GoldenValue string              `json:"golden_value"`
	FormValue   string              `json:"form_value"`
	Similarity  float64             `json:"similarity_score"`
	Status      model.VerdictStatus `json:"status"`
	Reason      string              `json:"reason,omitempty"`
}

type exportRisk struct {
	Level           model.RiskLevel   `json:"risk_level"`
	IncorrectFields []model.FieldName `json:"incorrect_fields"`
	AmbiguousFields []model.FieldName `json:"ambiguous_fields"`
	MissingFields   []model.FieldName `json:"missing_fields"`
	Rationale       string            `json:"rationale"`
}

// ExportJSON serializes a run result to indented JSON with stable ordering.
func ExportJSON(run *model.RunResult) ([]byte, error) {
	if run == nil {
		return nil, eris.New("report: nil run result")
	}

	rec := exportRecord{
		RunID:     run.RunID,
		Candidate: run.Candidate,
		Fields:    []model.GoldenField{},
		Conflicts: []model.FieldName{},
		Verdicts:  make([]exportVerdict, 0, len(run.Verdicts)),
		Risk: exportRisk{
			Level:           run.Assessment.RiskLevel,
			IncorrectFields: orEmpty(run.Assessment.IncorrectFields),
			AmbiguousFields: orEmpty(run.Assessment.AmbiguousFields),
			MissingFields:   orEmpty(run.Assessment.MissingFields),
			Rationale:       run.Assessment.Rationale,
		},
		Degraded: run.Degraded,
	}

	if run.Golden != nil {
		rec.Fields = run.Golden.Fields()
		rec.Conflicts = run.Golden.Conflicts()
	}
	for _, v := range run.Verdicts {
		rec.Verdicts = append(rec.Verdicts, exportVerdict{
			Field:       v.Field,
			GoldenValue: v.GoldenValue,
			FormValue:   v.FormValue,
			Similarity:  v.Similarity,
			Status:      v.Status,
			Reason:      v.Reason,
		})
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "report: marshal export")
	}
	return data, nil
}

func orEmpty(fields []model.FieldName) []model.FieldName {
	if fields == nil {
		return []model.FieldName{}
	}
	return fields
}
