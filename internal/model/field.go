package model

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FieldName identifies a recognized candidate attribute.
type FieldName string

// Recognized fields, in canonical declaration order. Verdicts and exports
// are always emitted in this order so downstream diffs are stable.
const (
	FieldFullName       FieldName = "full_name"
	FieldDateOfBirth    FieldName = "date_of_birth"
	FieldIDType         FieldName = "id_type"
	FieldIDNumber       FieldName = "id_number"
	FieldAddress        FieldName = "address"
	FieldPincode        FieldName = "pincode"
	FieldEmail          FieldName = "email"
	FieldPhone          FieldName = "phone"
	FieldInstitution    FieldName = "institution"
	FieldDegree         FieldName = "degree"
	FieldGraduationYear FieldName = "graduation_year"
	FieldCompany        FieldName = "company"
	FieldDesignation    FieldName = "designation"
	FieldStartDate      FieldName = "start_date"
	FieldEndDate        FieldName = "end_date"
)

// FieldSpec describes how a single field is normalized and compared.
type FieldSpec struct {
	Name     FieldName `yaml:"name"`
	Label    string    `yaml:"label"`
	Temporal bool      `yaml:"temporal"`   // compared as canonical dates, never by embedding
	StripID  bool      `yaml:"strip_id"`   // punctuation/whitespace stripped before comparison
	Required bool      `yaml:"required"`   // flagged in reports when absent from the golden record
}

// UnknownFieldError reports an observation or form entry for a field outside
// the recognized schema. This is a caller bug, not a data-quality problem,
// and is the only hard failure the engine surfaces.
type UnknownFieldError struct {
	Field FieldName
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", string(e.Field))
}

// FieldRegistry is the indexed set of recognized fields. It fixes the
// canonical field ordering for the life of a run.
type FieldRegistry struct {
	specs  []FieldSpec
	byName map[FieldName]*FieldSpec
	index  map[FieldName]int
}

// NewFieldRegistry creates a FieldRegistry with indexed lookups.
func NewFieldRegistry(specs []FieldSpec) *FieldRegistry {
	r := &FieldRegistry{
		specs:  specs,
		byName: make(map[FieldName]*FieldSpec, len(specs)),
		index:  make(map[FieldName]int, len(specs)),
	}
	for i := range r.specs {
		s := &r.specs[i]
		r.byName[s.Name] = s
		r.index[s.Name] = i
	}
	return r
}

// DefaultRegistry returns the built-in candidate field schema.
func DefaultRegistry() *FieldRegistry {
	return NewFieldRegistry([]FieldSpec{
		{Name: FieldFullName, Label: "Full Name", Required: true},
		{Name: FieldDateOfBirth, Label: "Date of Birth", Temporal: true, Required: true},
		{Name: FieldIDType, Label: "ID Type"},
		{Name: FieldIDNumber, Label: "ID Number", StripID: true, Required: true},
		{Name: FieldAddress, Label: "Address"},
		{Name: FieldPincode, Label: "Pincode", StripID: true},
		{Name: FieldEmail, Label: "Email", Required: true},
		{Name: FieldPhone, Label: "Phone", StripID: true, Required: true},
		{Name: FieldInstitution, Label: "Institution"},
		{Name: FieldDegree, Label: "Degree"},
		{Name: FieldGraduationYear, Label: "Graduation Year"},
		{Name: FieldCompany, Label: "Company"},
		{Name: FieldDesignation, Label: "Designation"},
		{Name: FieldStartDate, Label: "Start Date", Temporal: true},
		{Name: FieldEndDate, Label: "End Date", Temporal: true},
	})
}

// LoadRegistry reads a field schema from a YAML file. The file replaces the
// built-in schema wholesale; there is no merging.
func LoadRegistry(path string) (*FieldRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read field schema %s", path)
	}

	var wrapper struct {
		Fields []FieldSpec `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "model: parse field schema")
	}
	if len(wrapper.Fields) == 0 {
		return nil, eris.Errorf("model: field schema %s declares no fields", path)
	}

	seen := make(map[FieldName]bool, len(wrapper.Fields))
	for _, s := range wrapper.Fields {
		if s.Name == "" {
			return nil, eris.New("model: field schema entry missing name")
		}
		if seen[s.Name] {
			return nil, eris.Errorf("model: duplicate field %q in schema", s.Name)
		}
		seen[s.Name] = true
	}

	return NewFieldRegistry(wrapper.Fields), nil
}

// Known reports whether the field belongs to the recognized schema.
func (r *FieldRegistry) Known(name FieldName) bool {
	_, ok := r.byName[name]
	return ok
}

// Spec returns the spec for a field, or nil if the field is unknown.
func (r *FieldRegistry) Spec(name FieldName) *FieldSpec {
	return r.byName[name]
}

// CanonicalIndex returns the declaration position of a field, or -1 if unknown.
func (r *FieldRegistry) CanonicalIndex(name FieldName) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// Fields returns the registered specs in canonical declaration order.
func (r *FieldRegistry) Fields() []FieldSpec {
	out := make([]FieldSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Len returns the number of registered fields.
func (r *FieldRegistry) Len() int {
	return len(r.specs)
}
