package model

// CandidateValue is one distinct normalized value seen for a field, tagged
// with the highest-priority source that produced it.
type CandidateValue struct {
	Value  string     `json:"value"`
	Source SourceKind `json:"source"`
}

// GoldenField is the consolidated view of one field across all sources.
// ChosenValue comes from the highest-priority source with a non-empty
// observation; CandidateValues preserves every distinct normalized value in
// source-priority order for the audit trail.
type GoldenField struct {
	Field           FieldName        `json:"field"`
	ChosenValue     string           `json:"chosen_value"`
	ChosenSource    SourceKind       `json:"chosen_source"`
	CandidateValues []CandidateValue `json:"candidate_values"`
	HasConflict     bool             `json:"has_conflict"`
}

// GoldenRecord is the single consolidated, conflict-annotated view of a
// candidate's field values. It is built once per run and immutable after
// construction; rebuilding requires a fresh observation set.
type GoldenRecord struct {
	fields    []GoldenField
	index     map[FieldName]int
	conflicts []FieldName
}

// NewGoldenRecord assembles a record from consolidated fields. The caller
// (the builder) supplies fields already sorted in canonical declaration
// order; conflicts are derived, not passed in.
func NewGoldenRecord(fields []GoldenField) *GoldenRecord {
	r := &GoldenRecord{
		fields: make([]GoldenField, len(fields)),
		index:  make(map[FieldName]int, len(fields)),
	}
	copy(r.fields, fields)
	for i, f := range r.fields {
		r.index[f.Field] = i
		if f.HasConflict {
			r.conflicts = append(r.conflicts, f.Field)
		}
	}
	return r
}

// Field returns the consolidated entry for a field name. The second return
// is false when no source produced a value for that field; absence is not
// an error.
func (r *GoldenRecord) Field(name FieldName) (GoldenField, bool) {
	i, ok := r.index[name]
	if !ok {
		return GoldenField{}, false
	}
	return r.fields[i], true
}

// Fields returns all consolidated entries in canonical declaration order.
func (r *GoldenRecord) Fields() []GoldenField {
	out := make([]GoldenField, len(r.fields))
	copy(out, r.fields)
	return out
}

// Conflicts returns the names of all fields where sources disagreed, in
// canonical declaration order.
func (r *GoldenRecord) Conflicts() []FieldName {
	out := make([]FieldName, len(r.conflicts))
	copy(out, r.conflicts)
	return out
}

// Len returns the number of fields with at least one observation.
func (r *GoldenRecord) Len() int {
	return len(r.fields)
}
