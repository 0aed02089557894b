package model

// VerdictStatus classifies form-vs-golden agreement for a single field.
type VerdictStatus string

const (
	StatusMatch     VerdictStatus = "MATCH"
	StatusMismatch  VerdictStatus = "MISMATCH"
	StatusAmbiguous VerdictStatus = "AMBIGUOUS"
	StatusMissing   VerdictStatus = "MISSING"
)

// ValidationVerdict is the validator's per-field outcome. One is produced
// for every field present in the candidate's form submission.
type ValidationVerdict struct {
	Field       FieldName     `json:"field"`
	GoldenValue string        `json:"golden_value"`
	FormValue   string        `json:"form_value"`
	Similarity  float64       `json:"similarity_score"`
	Status      VerdictStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"` // audit detail: rule applied, parse failure, degraded fallback
}

// RiskLevel is the coarse compliance signal derived from verdicts.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// RiskAssessment is the classifier output: one risk level plus the evidence
// trail. Derived purely from the verdict list; no hidden state.
type RiskAssessment struct {
	RiskLevel       RiskLevel   `json:"risk_level"`
	IncorrectFields []FieldName `json:"incorrect_fields"`
	AmbiguousFields []FieldName `json:"ambiguous_fields"`
	MissingFields   []FieldName `json:"missing_fields"`
	Rationale       string      `json:"rationale"`
}
