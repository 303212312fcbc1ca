package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/user/bimmer_log_analyzer_go/internal/analysis"
	"github.com/user/bimmer_log_analyzer_go/internal/apperr"
)

const (
	signalsSheet = "Signals"
	skippedSheet = "Skipped"
)

var signalsHeader = []interface{}{"Signal", "Column", "Valid values", "Distinct values", "Min", "Max", "Average"}

// statCell keeps finite statistics numeric; spreadsheets have no infinity.
func statCell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return analysis.FormatStat(v)
	}
	return v
}

// WriteSummaryWorkbook saves the statistics of every charted signal, and
// the names of the skipped ones, as an .xlsx workbook at path.
func WriteSummaryWorkbook(path string, results *analysis.AnalysisResults) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", signalsSheet); err != nil {
		return apperr.Render("workbook sheet", err)
	}
	if err := f.SetSheetRow(signalsSheet, "A1", &signalsHeader); err != nil {
		return apperr.Render("workbook header", err)
	}
	for i, sig := range results.Signals {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperr.Render("workbook row", err)
		}
		row := []interface{}{sig.Name, sig.ColumnIndex + 1, sig.NumValid, sig.NumDistinct, statCell(sig.Min), statCell(sig.Max), statCell(sig.Mean)}
		if err := f.SetSheetRow(signalsSheet, cell, &row); err != nil {
			return apperr.Render(fmt.Sprintf("workbook row for %q", sig.Name), err)
		}
	}
	if err := f.SetColWidth(signalsSheet, "A", "A", 32); err != nil {
		return apperr.Render("workbook layout", err)
	}

	if _, err := f.NewSheet(skippedSheet); err != nil {
		return apperr.Render("workbook sheet", err)
	}
	if err := f.SetCellValue(skippedSheet, "A1", "Signal"); err != nil {
		return apperr.Render("workbook header", err)
	}
	for i, name := range results.Skipped {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperr.Render("workbook row", err)
		}
		if err := f.SetCellValue(skippedSheet, cell, name); err != nil {
			return apperr.Render("workbook row", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperr.IO("write", path, err)
	}
	return nil
}
