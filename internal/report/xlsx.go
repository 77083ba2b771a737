package report

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
	"github.com/ocean-chem/longhurst-cli/internal/model"
)

// WriteSummaryXLSX writes a run summary workbook with two sheets:
// "Summary" holds the run metadata and outcome totals, "Provinces" holds
// per-province match counts with full province names.
func WriteSummaryXLSX(path string, run *model.Run, summary *model.Summary) error {
	f := xlsx.NewFile()

	if err := writeSummarySheet(f, run, summary); err != nil {
		return err
	}
	if err := writeProvincesSheet(f, summary); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	return nil
}

func writeSummarySheet(f *xlsx.File, run *model.Run, summary *model.Summary) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	addKV := func(key, value string) {
		row := sheet.AddRow()
		row.AddCell().Value = key
		row.AddCell().Value = value
	}
	addCount := func(key string, n int) {
		row := sheet.AddRow()
		row.AddCell().Value = key
		row.AddCell().SetInt(n)
	}

	addKV("Run ID", run.ID)
	addKV("Kind", string(run.Kind))
	addKV("Boundary source", run.Source)
	addKV("Registry", run.Registry)
	addKV("Status", string(run.Status))
	addKV("Created", run.CreatedAt.Format("2006-01-02 15:04:05 UTC"))

	sheet.AddRow()
	addCount("Total points", summary.Total)
	addCount("Matched", summary.Matched)
	addCount("No match", summary.NoMatch)
	addCount("Ambiguous", summary.Ambiguous)
	addCount("Failed", summary.Failed)

	if len(summary.AmbiguousCodes) > 0 {
		sheet.AddRow()
		addKV("Provinces in ambiguous cells", joinCodes(summary.AmbiguousCodes))
	}

	return nil
}

func writeProvincesSheet(f *xlsx.File, summary *model.Summary) error {
	sheet, err := f.AddSheet("Provinces")
	if err != nil {
		return eris.Wrap(err, "report: add provinces sheet")
	}

	header := sheet.AddRow()
	header.AddCell().Value = "Code"
	header.AddCell().Value = "Province"
	header.AddCell().Value = "Matches"

	codes := make([]string, 0, len(summary.CodeCounts))
	for code := range summary.CodeCounts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		name, err := longhurst.ProvinceName(code)
		if err != nil {
			name = ""
		}
		row := sheet.AddRow()
		row.AddCell().Value = code
		row.AddCell().Value = name
		row.AddCell().SetInt(summary.CodeCounts[code])
	}

	return nil
}

func joinCodes(codes []string) string {
	out := ""
	for i, c := range codes {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
