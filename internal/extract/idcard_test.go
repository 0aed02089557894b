package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/onboard-cli/internal/model"
)

func byField(obs []model.Observation) map[model.FieldName]model.Observation {
	out := map[model.FieldName]model.Observation{}
	for _, o := range obs {
		out[o.Field] = o
	}
	return out
}

func TestIDCardFields_Aadhaar(t *testing.T) {
	text := "Government of India\nSarah Johnson\nDOB: 04/05/1999\n2345 6789 0123\n560001"

	obs := IDCardFields(text, time.Now())
	fields := byField(obs)

	require.Len(t, obs, 3)
	assert.Equal(t, "Aadhar", fields[model.FieldIDType].Value)
	assert.Equal(t, "2345 6789 0123", fields[model.FieldIDNumber].Value)
	assert.Equal(t, "560001", fields[model.FieldPincode].Value)
	for _, o := range obs {
		assert.Equal(t, model.SourceIDDocument, o.Source)
	}
}

func TestIDCardFields_PAN(t *testing.T) {
	text := "INCOME TAX DEPARTMENT\nPermanent Account Number\nabcde 1234 f\nSarah Johnson"

	fields := byField(IDCardFields(text, time.Now()))

	assert.Equal(t, "PAN", fields[model.FieldIDType].Value)
	assert.Equal(t, "ABCDE1234F", fields[model.FieldIDNumber].Value, "PAN matching collapses spaces and uppercases")
}

func TestIDCardFields_AadhaarWinsOverLaterPAN(t *testing.T) {
	text := "2345 6789 0123\nABCDE1234F"

	fields := byField(IDCardFields(text, time.Now()))
	assert.Equal(t, "Aadhar", fields[model.FieldIDType].Value)
	assert.Equal(t, "2345 6789 0123", fields[model.FieldIDNumber].Value)
}

func TestIDCardFields_AadhaarCannotStartWithZeroOrOne(t *testing.T) {
	obs := IDCardFields("1234 5678 9012", time.Now())
	assert.Empty(t, obs)
}

func TestIDCardFields_PincodeRequiresWholeLine(t *testing.T) {
	// A phone fragment containing six digits must not become a pincode.
	obs := IDCardFields("call 987654 3210 now", time.Now())
	assert.Empty(t, byField(obs)[model.FieldPincode].Value)

	fields := byField(IDCardFields("560001", time.Now()))
	assert.Equal(t, "560001", fields[model.FieldPincode].Value)
}

func TestIDCardFields_PincodeCannotStartWithZero(t *testing.T) {
	obs := IDCardFields("056001", time.Now())
	assert.Empty(t, obs)
}

func TestIDCardFields_EmptyText(t *testing.T) {
	assert.Empty(t, IDCardFields("", time.Now()))
}
