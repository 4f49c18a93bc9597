package report

import (
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
)

const (
	scenarioSheet = "Scenarios"
	stepSheet     = "Steps"
)

// XLSX writes results.xlsx with a scenario sheet and a step sheet.
type XLSX struct{}

func (XLSX) Name() string { return "xlsx" }

func (XLSX) Write(dir string, results *scenario.Results) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scenarioSheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(stepSheet); err != nil {
		return "", err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", err
	}

	rows := [][]any{{"Scenario", "Outcome", "Duration (s)", "Error type", "Message", "URL", "Screenshot"}}
	for _, r := range results.Scenarios {
		rows = append(rows, []any{
			r.Name, string(r.Outcome), r.Duration.Seconds(), failureType(r.Err), r.Message(), r.URL, r.Screenshot,
		})
	}
	if err := writeRows(f, scenarioSheet, rows, header); err != nil {
		return "", err
	}

	rows = [][]any{{"Scenario", "Step", "Outcome", "Duration (s)", "Message"}}
	for _, r := range results.Scenarios {
		for _, s := range r.Steps {
			msg := ""
			if s.Err != nil {
				msg = s.Err.Error()
			}
			rows = append(rows, []any{r.Name, s.Name, string(s.Outcome), s.Duration.Seconds(), msg})
		}
	}
	if err := writeRows(f, stepSheet, rows, header); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "results.xlsx")
	return path, f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}
