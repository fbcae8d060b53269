package roster

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/aggregate"
	"github.com/sells-group/prospect-cli/internal/model"
)

// ExportXLSX writes a two-sheet workbook: one row per lead, plus an
// aggregate summary sheet.
func ExportXLSX(items []model.BatchItem, summary aggregate.Summary, path string) error {
	f := xlsx.NewFile()

	leads, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "roster: add leads sheet")
	}

	headerRow := leads.AddRow()
	for _, col := range exportHeader {
		headerRow.AddCell().Value = col
	}
	for _, item := range items {
		row := leads.AddRow()
		for _, val := range exportRow(item) {
			row.AddCell().Value = val
		}
	}

	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "roster: add summary sheet")
	}

	addStat := func(label string, value any) {
		row := sheet.AddRow()
		row.AddCell().Value = label
		switch v := value.(type) {
		case int:
			row.AddCell().SetInt(v)
		case float64:
			row.AddCell().SetFloat(v)
		case string:
			row.AddCell().Value = v
		}
	}

	addStat("Total Analyzed", summary.TotalAnalyzed)
	addStat("Completed", summary.Completed)
	addStat("Failed", summary.Failed)
	addStat("Mean Confidence", summary.MeanConfidence)
	addStat("High Priority Leads", summary.HighPriorityLeads)
	addStat("Medium Priority Leads", summary.MediumPriorityLeads)
	addStat("Low Priority Leads", summary.LowPriorityLeads)

	sheet.AddRow()
	for _, rank := range summary.TopSpecialties {
		row := sheet.AddRow()
		row.AddCell().Value = rank.Specialty
		row.AddCell().SetInt(rank.Count)
		row.AddCell().SetFloat(rank.MeanConfidence)
	}

	sheet.AddRow()
	for _, rec := range summary.Recommendations {
		sheet.AddRow().AddCell().Value = rec
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "roster: save xlsx")
	}
	return nil
}
