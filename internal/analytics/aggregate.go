package analytics

import (
	"sort"

	"salesdash/internal/domain"

	"github.com/shopspring/decimal"
)

// Groups is the result of GroupBy. Keys come back in the order they were
// first seen.
type Groups[T any] struct {
	keys  []string
	items map[string][]T
}

func GroupBy[T any](items []T, key func(T) string) *Groups[T] {
	g := &Groups[T]{items: make(map[string][]T)}
	for _, item := range items {
		k := key(item)
		if _, ok := g.items[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.items[k] = append(g.items[k], item)
	}
	return g
}

func (g *Groups[T]) Keys() []string {
	return g.keys
}

func (g *Groups[T]) Get(key string) []T {
	return g.items[key]
}

func (g *Groups[T]) Len() int {
	return len(g.keys)
}

type Measure int

const (
	MeasureSellOut Measure = iota
	MeasureRevenue
	MeasureTotalMargin
)

func (m Measure) of(r domain.ComputedRecord) float64 {
	switch m {
	case MeasureRevenue:
		return r.CA
	case MeasureTotalMargin:
		return r.MargeTotale
	default:
		return r.SellOut
	}
}

func SumField(records []domain.ComputedRecord, m Measure) float64 {
	total := 0.0
	for _, r := range records {
		total += m.of(r)
	}
	return finite(total)
}

// Round rounds half up to an integer, the way dashboard figures are shown.
// Non-finite input yields 0.
func Round(v float64) float64 {
	if v = finite(v); v == 0 {
		return 0
	}
	return decimal.NewFromFloat(v).Add(decimal.NewFromFloat(0.5)).Floor().InexactFloat64()
}

// Reducer turns one group of records into a single value.
type Reducer func([]domain.ComputedRecord) float64

func Sum(m Measure) Reducer {
	return func(records []domain.ComputedRecord) float64 {
		return SumField(records, m)
	}
}

func RoundedSum(m Measure) Reducer {
	return func(records []domain.ComputedRecord) float64 {
		return Round(SumField(records, m))
	}
}

// AverageMargin is total margin per unit sold, rounded. Groups with no
// volume yield 0.
func AverageMargin(records []domain.ComputedRecord) float64 {
	volume := SumField(records, MeasureSellOut)
	if volume <= 0 {
		return 0
	}
	return Round(SumField(records, MeasureTotalMargin) / volume)
}

// Top groups records by key, reduces each group and returns the n largest
// values in descending order. Ties keep their first-seen order and n <= 0
// returns every group.
func Top(records []domain.ComputedRecord, key func(domain.ComputedRecord) string, reduce Reducer, n int) []domain.KeyValue {
	groups := GroupBy(records, key)
	out := make([]domain.KeyValue, 0, groups.Len())
	for _, k := range groups.Keys() {
		out = append(out, domain.KeyValue{Key: k, Value: reduce(groups.Get(k))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func ByField(field domain.Field) func(domain.ComputedRecord) string {
	return func(r domain.ComputedRecord) string {
		return r.Text(field)
	}
}
