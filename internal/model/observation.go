package model

import "time"

// SourceKind identifies which document class reported a field value.
type SourceKind string

const (
	SourceIDDocument SourceKind = "id_document"
	SourceResume     SourceKind = "resume"
	SourceForm       SourceKind = "form"
	SourceTranscript SourceKind = "transcript"
)

// Priority returns the fixed trust ranking of a source; higher wins.
// The order is a total order over the known kinds and is used only to break
// ties between observations, never to discard them. Unknown kinds rank below
// everything so malformed feeds cannot outvote real documents.
func (s SourceKind) Priority() int {
	switch s {
	case SourceIDDocument:
		return 4
	case SourceResume:
		return 3
	case SourceForm:
		return 2
	case SourceTranscript:
		return 1
	default:
		return 0
	}
}

// Observation is one field value as reported by one specific source document.
// Immutable once created; the builder never mutates its input.
type Observation struct {
	Field       FieldName  `json:"field"`
	Value       string     `json:"value"`
	Source      SourceKind `json:"source"`
	Confidence  float64    `json:"confidence"`
	ExtractedAt time.Time  `json:"extracted_at"`
}
