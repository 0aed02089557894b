// Package extract turns raw document text into source-tagged field
// observations for the golden record builder.
package extract

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/onboard-cli/internal/model"
)

// ID document patterns. Aadhaar numbers never start with 0 or 1 and are
// printed as three space-separated groups of four digits.
var (
	aadhaarPattern = regexp.MustCompile(`[2-9][0-9]{3}\s[0-9]{4}\s[0-9]{4}`)
	panPattern     = regexp.MustCompile(`[A-Z]{5}[0-9]{4}[A-Z]`)
	pincodePattern = regexp.MustCompile(`\b[1-9][0-9]{5}\b`)
)

// IDCardFields scans OCR text from an ID card scan and returns observations
// for id_type, id_number and pincode. The first Aadhaar match wins over any
// PAN match on a later line; a card carries exactly one primary ID.
func IDCardFields(text string, extractedAt time.Time) []model.Observation {
	var idType, idNumber, pincode string

	for _, line := range strings.Split(text, "\n") {
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		condensed := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))

		if idNumber == "" {
			if m := aadhaarPattern.FindString(raw); m != "" {
				idType = "Aadhar"
				idNumber = m
			} else if m := panPattern.FindString(condensed); m != "" {
				idType = "PAN"
				idNumber = m
			}
		}

		// Pincodes appear on their own line on Indian ID cards; requiring
		// the whole line avoids matching phone number fragments.
		if pincode == "" && len(raw) == 6 && pincodePattern.MatchString(raw) {
			pincode = raw
		}
	}

	now := extractedAt
	var obs []model.Observation
	if idNumber != "" {
		obs = append(obs,
			model.Observation{Field: model.FieldIDType, Value: idType, Source: model.SourceIDDocument, Confidence: 1, ExtractedAt: now},
			model.Observation{Field: model.FieldIDNumber, Value: idNumber, Source: model.SourceIDDocument, Confidence: 1, ExtractedAt: now},
		)
	}
	if pincode != "" {
		obs = append(obs, model.Observation{
			Field: model.FieldPincode, Value: pincode, Source: model.SourceIDDocument, Confidence: 1, ExtractedAt: now,
		})
	}

	if len(obs) == 0 {
		zap.L().Warn("extract: no ID fields recognized on card scan")
	}
	return obs
}
