package output

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Sheet names in the exported workbook.
const (
	ProspectsSheet = "Prospects"
	SummarySheet   = "Summary"
)

var prospectHeader = []string{"Rank", "Company", "Domain", "Confidence", "Source", "Why Good Fit", "What They Do"}

// WriteXLSX saves the prospect list and a run summary as a workbook.
func WriteXLSX(path string, result *model.RunResult) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet(ProspectsSheet)
	if err != nil {
		return eris.Wrap(err, "xlsx: add prospects sheet")
	}
	addStrings(sheet.AddRow(), prospectHeader...)
	for i, p := range result.Prospects {
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		addStrings(row, p.Name, p.Domain)
		row.AddCell().SetFloatWithFormat(p.Confidence, "0.00")
		addStrings(row, string(p.Source), p.WhyGoodFit, p.WhatTheyDo)
	}

	summary, err := f.AddSheet(SummarySheet)
	if err != nil {
		return eris.Wrap(err, "xlsx: add summary sheet")
	}
	for _, kv := range []struct {
		label string
		value float64
	}{
		{"Queries", float64(len(result.Queries))},
		{"Candidates found", float64(result.CandidatesFound)},
		{"Classified", float64(result.Classified)},
		{"Accepted from search", float64(result.AcceptedFromWeb)},
		{"Fallback proposed", float64(result.FallbackProposed)},
		{"Fallback verified", float64(result.FallbackVerified)},
		{"Rejected: not buyer", float64(result.Rejections.NotBuyer)},
		{"Rejected: wrong industry", float64(result.Rejections.WrongIndustry)},
		{"Rejected: wrong geography", float64(result.Rejections.WrongGeo)},
		{"Rejected: low confidence", float64(result.Rejections.LowConfidence)},
		{"Rejected: error", float64(result.Rejections.Error)},
		{"Average confidence", result.AverageConfidence},
		{"LLM calls", float64(result.Usage.LLMCalls)},
		{"Estimated cost (USD)", result.Usage.CostUSD},
	} {
		row := summary.AddRow()
		addStrings(row, kv.label)
		row.AddCell().SetFloat(kv.value)
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
