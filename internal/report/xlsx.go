package report

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/onboard-cli/internal/model"
)

// WriteXLSX writes a two-sheet workbook: the consolidated golden record and
// the per-field verdicts. Rows follow canonical field order.
func WriteXLSX(run *model.RunResult, path string) error {
	if run == nil {
		return eris.New("report: nil run result")
	}

	f := xlsx.NewFile()

	golden, err := f.AddSheet("Golden Record")
	if err != nil {
		return eris.Wrap(err, "report: add golden sheet")
	}
	header := golden.AddRow()
	for _, h := range []string{"Field", "Value", "Source", "Conflict", "Candidates"} {
		header.AddCell().SetString(h)
	}
	if run.Golden != nil {
		for _, gf := range run.Golden.Fields() {
			row := golden.AddRow()
			row.AddCell().SetString(string(gf.Field))
			row.AddCell().SetString(gf.ChosenValue)
			row.AddCell().SetString(string(gf.ChosenSource))
			row.AddCell().SetBool(gf.HasConflict)
			row.AddCell().SetString(candidateSummary(gf.CandidateValues))
		}
	}

	verdicts, err := f.AddSheet("Verdicts")
	if err != nil {
		return eris.Wrap(err, "report: add verdicts sheet")
	}
	header = verdicts.AddRow()
	for _, h := range []string{"Field", "Status", "Form Value", "Golden Value", "Similarity", "Reason"} {
		header.AddCell().SetString(h)
	}
	for _, v := range run.Verdicts {
		row := verdicts.AddRow()
		row.AddCell().SetString(string(v.Field))
		row.AddCell().SetString(string(v.Status))
		row.AddCell().SetString(v.FormValue)
		row.AddCell().SetString(v.GoldenValue)
		row.AddCell().SetFloatWithFormat(v.Similarity, "0.0000")
		row.AddCell().SetString(v.Reason)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func candidateSummary(values []model.CandidateValue) string {
	out := ""
	for i, cv := range values {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s=%s", cv.Source, cv.Value)
	}
	return out
}
