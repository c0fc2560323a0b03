package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"salesdash/internal/domain"
)

// DatasetKey names the dataset in every tier.
const DatasetKey = "smartphone-sales-data"

type Tier string

const (
	TierFast     Tier = "fast"
	TierFallback Tier = "fallback"
	TierMemory   Tier = "memory"
)

// SaveOutcome reports where a dataset ended up. Persisted is false when
// only the in-memory copy holds it.
type SaveOutcome struct {
	Tier      Tier `json:"tier"`
	Persisted bool `json:"persisted"`
}

// Gateway keeps the dataset in memory and writes it through to the fast
// tier, or to the fallback tier when the fast tier refuses it.
type Gateway struct {
	fast     *FileStore
	fallback Backend
	logger   *slog.Logger
	sample   func() []domain.SalesRecord

	mu     sync.Mutex
	cache  []domain.SalesRecord
	loaded bool
}

func NewGateway(fast *FileStore, fallback Backend, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		fast:     fast,
		fallback: fallback,
		logger:   logger,
		sample:   SampleData,
	}
}

// Load returns the cached dataset, reading the fast tier first and the
// fallback tier second. When both are empty the sample dataset is used and
// written to the fast tier. When the fallback tier fails the sample is
// served without being cached or stored, and the next Load asks again.
func (g *Gateway) Load(ctx context.Context) ([]domain.SalesRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.loaded {
		return clone(g.cache), nil
	}

	if records, ok := g.loadFast(); ok {
		g.setCache(records)
		return clone(records), nil
	}

	if g.fallback != nil {
		records, err := g.fallback.LoadRecords(ctx)
		if err != nil {
			g.logger.Warn("fallback store unavailable; serving sample data", "error", err)
			return g.sample(), nil
		}
		if len(records) > 0 {
			g.setCache(records)
			return clone(records), nil
		}
	}

	records := g.sample()
	g.setCache(records)
	if _, err := g.writeFast(records); err != nil {
		g.logger.Warn("seed fast store with sample data", "error", err)
	}
	return clone(records), nil
}

// Save persists an appended dataset.
func (g *Gateway) Save(ctx context.Context, records []domain.SalesRecord) SaveOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.persist(ctx, records, "save")
}

// Replace persists a dataset that replaces the previous one wholesale.
// Besides writing the new data it drops the copy held by the tier it did
// not write to, so a later Load cannot pick up the old dataset.
func (g *Gateway) Replace(ctx context.Context, records []domain.SalesRecord) SaveOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	outcome := g.persist(ctx, records, "replace")
	if outcome.Tier == TierFast && g.fallback != nil {
		if err := g.fallback.ClearRecords(ctx); err != nil {
			g.logger.Warn("drop stale fallback dataset", "error", err)
		}
	}
	return outcome
}

// Clear empties every tier. The next Load falls back to the sample data.
func (g *Gateway) Clear(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cache = nil
	g.loaded = false
	if g.fast != nil {
		if err := g.fast.Delete(DatasetKey); err != nil {
			g.logger.Warn("clear fast store", "error", err)
		}
	}
	if g.fallback != nil {
		if err := g.fallback.ClearRecords(ctx); err != nil {
			g.logger.Warn("clear fallback store", "error", err)
		}
	}
}

func (g *Gateway) persist(ctx context.Context, records []domain.SalesRecord, op string) SaveOutcome {
	g.setCache(records)

	ok, err := g.writeFast(records)
	if ok {
		return SaveOutcome{Tier: TierFast, Persisted: true}
	}
	if err != nil && !errors.Is(err, ErrQuotaExceeded) {
		g.logger.Warn("fast store write failed", "op", op, "error", err)
	}

	if g.fallback == nil {
		return SaveOutcome{Tier: TierMemory}
	}
	if err := g.fallback.ReplaceRecords(ctx, records); err != nil {
		g.logger.Error("fallback store write failed; dataset kept in memory only", "op", op, "records", len(records), "error", err)
		return SaveOutcome{Tier: TierMemory}
	}
	g.logger.Info("dataset stored in fallback tier", "op", op, "records", len(records))
	return SaveOutcome{Tier: TierFallback, Persisted: true}
}

// writeFast reports whether the fast tier accepted the dataset. On any
// failure the previous fast entry is removed so it cannot shadow newer data.
func (g *Gateway) writeFast(records []domain.SalesRecord) (bool, error) {
	if g.fast == nil {
		return false, nil
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return false, err
	}
	if err := g.fast.Put(DatasetKey, blob); err != nil {
		if delErr := g.fast.Delete(DatasetKey); delErr != nil {
			g.logger.Warn("remove stale fast entry", "error", delErr)
		}
		return false, err
	}
	return true, nil
}

func (g *Gateway) loadFast() ([]domain.SalesRecord, bool) {
	if g.fast == nil {
		return nil, false
	}
	blob, ok, err := g.fast.Get(DatasetKey)
	if err != nil {
		g.logger.Warn("fast store read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var records []domain.SalesRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		g.logger.Warn("fast store holds an unreadable dataset", "error", err)
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}
	return records, true
}

func (g *Gateway) setCache(records []domain.SalesRecord) {
	g.cache = clone(records)
	g.loaded = true
}

func clone(records []domain.SalesRecord) []domain.SalesRecord {
	return append([]domain.SalesRecord(nil), records...)
}
