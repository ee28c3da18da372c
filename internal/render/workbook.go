package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/models"
)

const (
	sheetData    = "Analysis"
	sheetSummary = "Summary"
)

// Workbook writes state as an xlsx workbook: one row per year on the
// Analysis sheet and the selection on the Summary sheet.
func Workbook(w io.Writer, state models.Reader) error {
	if !state.Valid() {
		return ErrInvalidDataset
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", sheetData)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	all := chartSeries(state)
	headers := []string{"Year"}
	for _, s := range all {
		headers = append(headers, s.name)
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetData, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetData, col, col, 36); err != nil {
			return fmt.Errorf("failed to size column: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetData, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	for y := state.StartYear(); y <= state.EndYear(); y++ {
		if err := f.SetCellValue(sheetData, fmt.Sprintf("A%d", row), y); err != nil {
			return fmt.Errorf("failed to write year %d: %w", y, err)
		}
		for i, s := range all {
			cell, _ := excelize.CoordinatesToCellName(i+2, row)
			if err := f.SetCellValue(sheetData, cell, cellValue(s.series.Get(y))); err != nil {
				return fmt.Errorf("failed to write %s for %d: %w", s.name, y, err)
			}
		}
		row++
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	country := catalog.CountryAt(state.Country())
	indicator := catalog.IndicatorAt(state.Indicator())
	summary := [][2]interface{}{
		{"Country", fmt.Sprintf("%s (%s)", country.Name, country.Code)},
		{"Analysis", indicator.Name},
		{"Indicator", indicator.Code},
		{"Start year", state.StartYear()},
		{"End year", state.EndYear()},
	}
	for i, kv := range summary {
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", i+1), kv[0]); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", i+1), kv[1]); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	_ = f.SetColWidth(sheetSummary, "A", "B", 28)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(v models.DataValue) interface{} {
	if f, ok := v.Float(); ok {
		return f
	}
	return v.String()
}
