package extract

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/onboard-cli/internal/model"
)

// OnboardingForm mirrors the JSON the onboarding form writes to disk.
type OnboardingForm struct {
	PersonalDetails struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Phone         string `json:"phone"`
		DOB           string `json:"dob"`
		IDTypeClaimed string `json:"id_type_claimed"`
	} `json:"personal_details"`
	Education []struct {
		Institution    string `json:"institution"`
		Degree         string `json:"degree"`
		GraduationYear int    `json:"graduation_year"`
	} `json:"education"`
	Employment []struct {
		Company   string `json:"company"`
		Role      string `json:"role"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	} `json:"employment"`
}

// LoadForm reads and parses an onboarding form JSON file.
func LoadForm(path string) (*OnboardingForm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read form %s", path)
	}

	var form OnboardingForm
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, eris.Wrapf(err, "extract: parse form %s", path)
	}
	if form.PersonalDetails.Name == "" {
		return nil, eris.Errorf("extract: form %s has no candidate name", path)
	}
	return &form, nil
}

// Values flattens the form into the field map the validator consumes.
// Only the first education and employment entries are claimed on the form
// today; empty values are omitted entirely.
func (f *OnboardingForm) Values() map[model.FieldName]string {
	out := map[model.FieldName]string{}
	put := func(name model.FieldName, value string) {
		if v := strings.TrimSpace(value); v != "" {
			out[name] = v
		}
	}

	put(model.FieldFullName, f.PersonalDetails.Name)
	put(model.FieldEmail, f.PersonalDetails.Email)
	put(model.FieldPhone, f.PersonalDetails.Phone)
	put(model.FieldDateOfBirth, f.PersonalDetails.DOB)
	put(model.FieldIDType, f.PersonalDetails.IDTypeClaimed)

	if len(f.Education) > 0 {
		edu := f.Education[0]
		put(model.FieldInstitution, edu.Institution)
		put(model.FieldDegree, edu.Degree)
		if edu.GraduationYear > 0 {
			put(model.FieldGraduationYear, strconv.Itoa(edu.GraduationYear))
		}
	}
	if len(f.Employment) > 0 {
		emp := f.Employment[0]
		put(model.FieldCompany, emp.Company)
		put(model.FieldDesignation, emp.Role)
		put(model.FieldStartDate, emp.StartDate)
		put(model.FieldEndDate, emp.EndDate)
	}

	return out
}

// Observations converts the form values into FORM-tagged observations so the
// candidate's own claims participate in consolidation.
func (f *OnboardingForm) Observations(extractedAt time.Time) []model.Observation {
	values := f.Values()
	obs := make([]model.Observation, 0, len(values))
	for _, spec := range model.DefaultRegistry().Fields() {
		if v, ok := values[spec.Name]; ok {
			obs = append(obs, model.Observation{
				Field:       spec.Name,
				Value:       v,
				Source:      model.SourceForm,
				Confidence:  1,
				ExtractedAt: extractedAt,
			})
		}
	}
	return obs
}
