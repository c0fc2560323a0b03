package parser

import (
	"strings"

	"salesdash/internal/domain"
	"salesdash/internal/normalize"
)

// MinColumns is the number of positional fields a bulk text line must carry.
const MinColumns = 19

// DetectDelimiter picks the separator of a pasted line: tab, then semicolon,
// then pipe. Lines with none of them are treated as tab separated.
func DetectDelimiter(line string) string {
	switch {
	case strings.Contains(line, "\t"):
		return "\t"
	case strings.Contains(line, ";"):
		return ";"
	case strings.Contains(line, "|"):
		return "|"
	default:
		return "\t"
	}
}

// ParseLine converts one delimited text line into a SalesRecord using the
// fixed positional column order. It reports false when the line has fewer
// than MinColumns fields or no POS code.
func ParseLine(line string) (domain.SalesRecord, bool) {
	cols := strings.Split(line, DetectDelimiter(line))
	if len(cols) < MinColumns {
		return domain.SalesRecord{}, false
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	if cols[0] == "" {
		return domain.SalesRecord{}, false
	}

	year := normalize.CleanInt(cols[16])
	if year == 0 {
		year = domain.DefaultYear
	}

	return domain.SalesRecord{
		CodePOS:             cols[0],
		Index:               normalize.CleanInt(cols[1]),
		NameOfPOS:           cols[2],
		CategoryOfPOS:       cols[3],
		TypeOfPOS:           cols[4],
		Zone:                cols[5],
		District:            cols[6],
		DistributionChannel: cols[7],
		Brand:               cols[8],
		Segment:             cols[9],
		Product:             cols[10],
		SellOut:             normalize.CleanNumber(cols[11]),
		PurchasePrice:       normalize.CleanNumber(cols[12]),
		SalePrice:           normalize.CleanNumber(cols[13]),
		Status:              cols[14],
		CodeWeek:            cols[15],
		Annee:               year,
		Mois:                cols[17],
		Quarter:             cols[18],
	}, true
}

// RowToRecord builds a record from a spreadsheet row and its header mapping.
// Unmapped fields keep their defaults and the row is never rejected;
// validation is left to the caller.
func RowToRecord(row []string, mapping map[int]domain.Field) domain.SalesRecord {
	record := domain.DefaultRecord()
	for idx, field := range mapping {
		kind, ok := domain.KindOf(field)
		if !ok {
			continue
		}
		raw := readCell(row, idx)
		switch kind {
		case domain.KindNumeric:
			record.SetNumber(field, normalize.CleanNumber(raw))
		default:
			record.SetText(field, strings.TrimSpace(raw))
		}
	}
	return record
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
