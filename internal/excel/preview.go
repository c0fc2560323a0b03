package excel

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"salesdash/internal/domain"
	"salesdash/internal/normalize"
	"salesdash/internal/parser"
)

var (
	ErrInsufficientData    = errors.New("file needs a header row and at least one data row")
	ErrNoRecognizedColumns = errors.New("no recognized column; check the file headers")
)

type MappedColumn struct {
	Position int          `json:"position"`
	Header   string       `json:"header"`
	Field    domain.Field `json:"field"`
}

// Preview is what the user confirms before an import replaces the dataset.
type Preview struct {
	FileName        string               `json:"file_name"`
	Headers         []string             `json:"headers"`
	MappedColumns   []MappedColumn       `json:"mapped_columns"`
	UnmappedColumns []string             `json:"unmapped_columns"`
	HeaderMapping   map[int]domain.Field `json:"header_mapping"`
	Rows            [][]string           `json:"-"`
	TotalRows       int                  `json:"total_rows"`
}

func PreviewFile(fileName string, reader io.Reader) (Preview, error) {
	rows, err := ReadRows(fileName, reader)
	if err != nil {
		return Preview{}, err
	}
	return BuildPreview(fileName, rows)
}

// BuildPreview maps the header row and keeps the data rows that have at
// least one non-blank cell.
func BuildPreview(fileName string, rows [][]string) (Preview, error) {
	if len(rows) < 2 {
		return Preview{}, ErrInsufficientData
	}

	headers := make([]string, len(rows[0]))
	copy(headers, rows[0])

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		data = append(data, row)
	}
	if len(data) == 0 {
		return Preview{}, ErrInsufficientData
	}

	mapping := normalize.MapHeaders(headers)
	if len(mapping) == 0 {
		return Preview{}, ErrNoRecognizedColumns
	}

	mapped := make([]MappedColumn, 0, len(mapping))
	unmapped := make([]string, 0, len(headers)-len(mapping))
	for idx, header := range headers {
		if field, ok := mapping[idx]; ok {
			mapped = append(mapped, MappedColumn{Position: idx, Header: header, Field: field})
			continue
		}
		unmapped = append(unmapped, header)
	}
	sort.Slice(mapped, func(i, j int) bool { return mapped[i].Position < mapped[j].Position })

	return Preview{
		FileName:        fileName,
		Headers:         headers,
		MappedColumns:   mapped,
		UnmappedColumns: unmapped,
		HeaderMapping:   mapping,
		Rows:            data,
		TotalRows:       len(data),
	}, nil
}

// Commit converts every retained row. The caller replaces the whole dataset
// with the result.
func Commit(preview Preview) []domain.SalesRecord {
	records := make([]domain.SalesRecord, 0, len(preview.Rows))
	for _, row := range preview.Rows {
		records = append(records, parser.RowToRecord(row, preview.HeaderMapping))
	}
	return records
}

// Summary is a one-line description used in logs and CLI output.
func (p Preview) Summary() string {
	return fmt.Sprintf("%s: %d rows, %d mapped columns, %d unmapped", p.FileName, p.TotalRows, len(p.MappedColumns), len(p.UnmappedColumns))
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
