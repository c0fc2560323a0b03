package analytics

import (
	"math"

	"salesdash/internal/domain"
)

// Compute derives the financial fields of a record. The margin rate is 0
// when there is no revenue. A product that overflows float64 counts as 0.
func Compute(record domain.SalesRecord) domain.ComputedRecord {
	ca := finite(record.SellOut * record.SalePrice)
	unit := finite(record.SalePrice - record.PurchasePrice)
	total := finite(unit * record.SellOut)

	rate := 0.0
	if ca > 0 {
		rate = finite(total / ca * 100)
	}

	return domain.ComputedRecord{
		SalesRecord:   record,
		CA:            ca,
		MargeUnitaire: unit,
		MargeTotale:   total,
		TauxMarge:     rate,
	}
}

func ComputeAll(records []domain.SalesRecord) []domain.ComputedRecord {
	out := make([]domain.ComputedRecord, len(records))
	for idx, record := range records {
		out[idx] = Compute(record)
	}
	return out
}

// finite maps NaN and the infinities to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
