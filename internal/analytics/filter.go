package analytics

import (
	"slices"
	"strings"

	"salesdash/internal/domain"
)

// DefaultPageSize is the row count of one page of the raw data table.
const DefaultPageSize = 15

// Apply keeps the records matching every active dimension of the filter
// set. Within one dimension any listed value matches. Order is preserved.
func Apply(records []domain.ComputedRecord, filters domain.FilterSet) []domain.ComputedRecord {
	if filters.IsEmpty() {
		return records
	}

	out := make([]domain.ComputedRecord, 0, len(records))
	for _, record := range records {
		if Matches(record.SalesRecord, filters) {
			out = append(out, record)
		}
	}
	return out
}

func Matches(r domain.SalesRecord, f domain.FilterSet) bool {
	return allowed(f.Segment, r.Segment) &&
		allowed(f.Product, r.Product) &&
		allowed(f.Zone, r.Zone) &&
		allowed(f.District, r.District) &&
		allowed(f.TypeOfPOS, r.TypeOfPOS) &&
		allowed(f.CategoryOfPOS, r.CategoryOfPOS) &&
		allowed(f.Brand, r.Brand) &&
		allowed(f.Mois, r.Mois) &&
		allowed(f.Quarter, r.Quarter) &&
		allowed(f.CodeWeek, r.CodeWeek) &&
		allowed(f.CodePOS, r.CodePOS) &&
		allowed(f.Annee, r.Annee)
}

func allowed[T comparable](values []T, value T) bool {
	return len(values) == 0 || slices.Contains(values, value)
}

// Search matches the query against POS name, POS code, product, brand and
// zone, case-insensitively. A blank query returns the input unchanged.
func Search(records []domain.ComputedRecord, query string) []domain.ComputedRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}

	out := make([]domain.ComputedRecord, 0)
	for _, record := range records {
		for _, candidate := range []string{record.NameOfPOS, record.CodePOS, record.Product, record.Brand, record.Zone} {
			if strings.Contains(strings.ToLower(candidate), query) {
				out = append(out, record)
				break
			}
		}
	}
	return out
}

type Page struct {
	Items      []domain.ComputedRecord `json:"items"`
	Page       int                     `json:"page"`
	PerPage    int                     `json:"per_page"`
	TotalPages int                     `json:"total_pages"`
	TotalItems int                     `json:"total_items"`
}

// Paginate returns one 1-based page. Out of range page numbers are clamped
// and an empty input still reports one page.
func Paginate(records []domain.ComputedRecord, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	totalPages := (len(records) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	page = max(1, min(page, totalPages))

	lo := min((page-1)*perPage, len(records))
	hi := min(lo+perPage, len(records))
	items := make([]domain.ComputedRecord, hi-lo)
	copy(items, records[lo:hi])

	return Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalItems: len(records),
	}
}
