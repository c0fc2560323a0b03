package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnreadableFile wraps every failure to read an upload as rows.
var ErrUnreadableFile = errors.New("unreadable file")

// ReadRows loads the first sheet of a workbook, or a CSV file, as raw rows.
// The file extension picks the reader; unknown extensions try the workbook
// format first and CSV second.
func ReadRows(fileName string, reader io.Reader) ([][]string, error) {
	rows, err := readRows(fileName, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	return rows, nil
}

func readRows(fileName string, reader io.Reader) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}

	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName)))
	switch ext {
	case ".csv":
		return parseCSVRows(data)
	case ".xlsx", ".xlsm":
		return parseExcelRows(data)
	case ".xls":
		return nil, fmt.Errorf("legacy .xls workbooks are not supported; save the file as .xlsx")
	default:
		if rows, excelErr := parseExcelRows(data); excelErr == nil {
			return rows, nil
		}
		if rows, csvErr := parseCSVRows(data); csvErr == nil {
			return rows, nil
		}
		return nil, fmt.Errorf("unsupported or invalid spreadsheet format")
	}
}

func parseCSVRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = sniffCSVComma(data)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}
	return rows, nil
}

// sniffCSVComma uses the first line: semicolon separated exports are common
// with French locale spreadsheets.
func sniffCSVComma(data []byte) rune {
	firstLine := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		firstLine = data[:idx]
	}
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		return ';'
	}
	return ','
}

func parseExcelRows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}
	return rows, nil
}
