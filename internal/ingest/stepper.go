package ingest

import (
	"context"
	"runtime"
)

type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
	Batch     int `json:"batch"`
	Batches   int `json:"batches"`
}

// Stepper runs a task over [0,total) in fixed-size windows. Windows run one
// after the other and Yield is called after each of them, so a host can
// report progress or let other work run between batches.
type Stepper struct {
	BatchSize int
	Yield     func(Progress)
}

// Run returns the number of windows processed. A step error stops the run.
func (s Stepper) Run(ctx context.Context, total int, step func(ctx context.Context, lo, hi int) error) (int, error) {
	size := s.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	yield := s.Yield
	if yield == nil {
		yield = func(Progress) { runtime.Gosched() }
	}

	batches := (total + size - 1) / size
	for batch := 0; batch < batches; batch++ {
		lo := batch * size
		hi := min(lo+size, total)
		if err := step(ctx, lo, hi); err != nil {
			return batch, err
		}
		yield(Progress{
			Processed: hi,
			Total:     total,
			Batch:     batch + 1,
			Batches:   batches,
		})
	}
	return batches, nil
}
