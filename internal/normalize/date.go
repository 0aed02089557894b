package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Canonical is the single date representation all temporal fields are
// normalized to before comparison.
const Canonical = "2006-01-02"

// Layouts accepted without ambiguity. Day-first/month-first numeric forms
// are intentionally absent: OCR and LLM feeds carry no locale, so a value
// like 13/02/2021 cannot be proven to mean February 13th. Those forms go
// through parseNumeric below instead.
var unambiguousLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
}

var numericSeparators = strings.NewReplacer("/", "-", ".", "-", " ", "-")

// Date normalizes a date string to the canonical YYYY-MM-DD form. A value
// whose day/month assignment cannot be proven is an error, never a guess;
// the validator downgrades such failures to an AMBIGUOUS verdict.
// Idempotent on canonical input.
func Date(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", eris.New("normalize: empty date")
	}

	for _, layout := range unambiguousLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(Canonical), nil
		}
	}

	return parseNumeric(v)
}

// parseNumeric handles separator-delimited all-numeric dates. Year-first
// forms are canonical by construction. Year-last forms are accepted only
// when day and month are equal, the one case where locale order cannot
// change the meaning.
func parseNumeric(v string) (string, error) {
	parts := strings.Split(numericSeparators.Replace(v), "-")
	if len(parts) != 3 {
		return "", eris.Errorf("normalize: unrecognized date %q", v)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", eris.Errorf("normalize: unrecognized date %q", v)
		}
		nums[i] = n
	}

	switch {
	case len(parts[0]) == 4:
		return buildDate(nums[0], nums[1], nums[2], v)
	case len(parts[2]) == 4:
		if nums[0] != nums[1] {
			return "", eris.Errorf("normalize: ambiguous day/month in %q", v)
		}
		return buildDate(nums[2], nums[1], nums[0], v)
	default:
		return "", eris.Errorf("normalize: unrecognized date %q", v)
	}
}

// buildDate validates components by round-tripping through time.Date, which
// rejects impossible dates like February 31st without silently rolling over.
func buildDate(year, month, day int, raw string) (string, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", eris.Errorf("normalize: invalid date %q", raw)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", eris.Errorf("normalize: invalid date %q", raw)
	}
	return t.Format(Canonical), nil
}
