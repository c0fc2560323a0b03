package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"salesdash/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Données Filtrées"

const marginRateColumn = "Taux de Marge (%)"

var exportColumnWidths = []float64{
	12, 8, 25, 15, 10,
	10, 15, 20, 12, 12,
	20, 8, 12, 12, 15,
	15, 15, 15, 10, 15,
	12, 8, 10,
}

// WriteWorkbook writes the computed records as a single-sheet xlsx file.
func WriteWorkbook(w io.Writer, records []domain.ComputedRecord) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename export sheet: %w", err)
	}

	headers := exportHeaders()
	if err := file.SetSheetRow(exportSheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	for idx, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return fmt.Errorf("row %d cell name: %w", idx+2, err)
		}
		values := exportValues(record)
		if err := file.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", idx+2, err)
		}
	}

	for idx, width := range exportColumnWidths {
		col, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return fmt.Errorf("column %d name: %w", idx+1, err)
		}
		if err := file.SetColWidth(exportSheet, col, col, width); err != nil {
			return fmt.Errorf("set column %s width: %w", col, err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes the same columns as WriteWorkbook in CSV form.
func WriteCSV(w io.Writer, records []domain.ComputedRecord) error {
	writer := csv.NewWriter(w)
	headers := exportHeaders()
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	line := make([]string, len(headers))
	for _, record := range records {
		for idx, col := range record.Flat() {
			line[idx] = formatCell(col)
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportHeaders() []string {
	cols := domain.ComputedRecord{}.Flat()
	headers := make([]string, len(cols))
	for idx, col := range cols {
		headers[idx] = col.Label
	}
	return headers
}

func exportValues(record domain.ComputedRecord) []any {
	cols := record.Flat()
	values := make([]any, len(cols))
	for idx, col := range cols {
		if col.Label == marginRateColumn {
			values[idx] = formatCell(col)
			continue
		}
		values[idx] = col.Value
	}
	return values
}

func formatCell(col domain.Column) string {
	switch v := col.Value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		if col.Label == marginRateColumn {
			return decimal.NewFromFloat(v).StringFixed(2)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
