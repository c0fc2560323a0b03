package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"salesdash/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func records(n int) []domain.SalesRecord {
	out := make([]domain.SalesRecord, n)
	for idx := range out {
		r := domain.DefaultRecord()
		r.CodePOS = "KIN-T"
		r.Index = idx
		r.Brand = "Samsung"
		r.SellOut = 1
		out[idx] = r
	}
	return out
}

func TestFileStorePutGetDelete(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 64)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok, err := fs.Get("missing"); ok || err != nil {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := fs.Put("k", []byte("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, ok, err := fs.Get("k")
	if err != nil || !ok || string(data) != "hello" {
		t.Fatalf("Get=%q ok=%v err=%v", data, ok, err)
	}

	if err := fs.Put("k", make([]byte, 65)); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("oversized Put err=%v", err)
	}
	if data, _, _ := fs.Get("k"); string(data) != "hello" {
		t.Fatalf("refused write must not touch the entry, got %q", data)
	}

	if err := fs.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := fs.Delete("k"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if err := fs.Put("../escape", nil); err == nil {
		t.Fatalf("path-like keys must be rejected")
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if fs.Quota() != DefaultQuotaBytes {
		t.Fatalf("Quota=%d", fs.Quota())
	}
	for n := 0; n < 3; n++ {
		if err := fs.Put("data", []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "data.json" {
		t.Fatalf("entries=%v", entries)
	}
}

func newGateway(t *testing.T, quota int64) (*Gateway, *FileStore, *MemoryBackend) {
	t.Helper()
	fs, err := NewFileStore(t.TempDir(), quota)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	backend := NewMemoryBackend()
	return NewGateway(fs, backend, quietLogger()), fs, backend
}

func TestGatewayFreshStartSeedsSample(t *testing.T) {
	g, fs, _ := newGateway(t, 0)
	got, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(SampleData()) {
		t.Fatalf("got %d records, want sample", len(got))
	}
	if _, ok, _ := fs.Get(DatasetKey); !ok {
		t.Fatalf("sample should be written to the fast tier")
	}
}

func TestGatewaySaveUsesFastTier(t *testing.T) {
	ctx := context.Background()
	g, fs, backend := newGateway(t, 0)

	outcome := g.Save(ctx, records(3))
	if outcome != (SaveOutcome{Tier: TierFast, Persisted: true}) {
		t.Fatalf("outcome=%+v", outcome)
	}
	if stored, _ := backend.LoadRecords(ctx); len(stored) != 0 {
		t.Fatalf("fallback should stay empty")
	}

	reopened := NewGateway(fs, backend, quietLogger())
	got, err := reopened.Load(ctx)
	if err != nil || len(got) != 3 {
		t.Fatalf("reload=%d err=%v", len(got), err)
	}
}

func TestGatewayFallsBackWhenOverQuota(t *testing.T) {
	ctx := context.Background()
	g, fs, backend := newGateway(t, 1024)

	if outcome := g.Save(ctx, records(1)); outcome.Tier != TierFast {
		t.Fatalf("small dataset outcome=%+v", outcome)
	}
	outcome := g.Save(ctx, records(50))
	if outcome != (SaveOutcome{Tier: TierFallback, Persisted: true}) {
		t.Fatalf("large dataset outcome=%+v", outcome)
	}
	if _, ok, _ := fs.Get(DatasetKey); ok {
		t.Fatalf("stale fast entry should be removed on overflow")
	}

	reopened := NewGateway(fs, backend, quietLogger())
	got, err := reopened.Load(ctx)
	if err != nil || len(got) != 50 {
		t.Fatalf("reload=%d err=%v", len(got), err)
	}
}

func TestGatewayReplaceDropsStaleFallback(t *testing.T) {
	ctx := context.Background()
	g, _, backend := newGateway(t, 1024)

	g.Replace(ctx, records(50))
	if stored, _ := backend.LoadRecords(ctx); len(stored) != 50 {
		t.Fatalf("fallback=%d", len(stored))
	}
	if outcome := g.Replace(ctx, records(2)); outcome.Tier != TierFast {
		t.Fatalf("outcome=%+v", outcome)
	}
	if stored, _ := backend.LoadRecords(ctx); len(stored) != 0 {
		t.Fatalf("stale fallback dataset should be dropped, got %d", len(stored))
	}
}

func TestGatewayKeepsDataInMemoryWhenFallbackFails(t *testing.T) {
	ctx := context.Background()
	g, _, backend := newGateway(t, 1024)
	backend.FailWith(errors.New("disk full"))

	outcome := g.Save(ctx, records(50))
	if outcome != (SaveOutcome{Tier: TierMemory}) {
		t.Fatalf("outcome=%+v", outcome)
	}
	got, err := g.Load(ctx)
	if err != nil || len(got) != 50 {
		t.Fatalf("in-memory dataset=%d err=%v", len(got), err)
	}
}

func TestGatewayClearRestoresSample(t *testing.T) {
	ctx := context.Background()
	g, _, backend := newGateway(t, 1024)
	g.Save(ctx, records(50))

	g.Clear(ctx)
	if stored, _ := backend.LoadRecords(ctx); len(stored) != 0 {
		t.Fatalf("fallback should be cleared")
	}
	got, err := g.Load(ctx)
	if err != nil || len(got) != len(SampleData()) {
		t.Fatalf("after clear=%d err=%v", len(got), err)
	}
}

func TestGatewayLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newGateway(t, 0)
	g.Save(ctx, records(2))

	got, _ := g.Load(ctx)
	got[0].Brand = "changed"
	again, _ := g.Load(ctx)
	if again[0].Brand != "Samsung" {
		t.Fatalf("caller mutation leaked into the cache")
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "sales.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	if got, err := s.LoadRecords(ctx); err != nil || len(got) != 0 {
		t.Fatalf("empty store=%v err=%v", got, err)
	}
	if err := s.ReplaceRecords(ctx, records(4)); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	if err := s.ReplaceRecords(ctx, records(2)); err != nil {
		t.Fatalf("second ReplaceRecords: %v", err)
	}
	got, err := s.LoadRecords(ctx)
	if err != nil || len(got) != 2 || got[1].Index != 1 {
		t.Fatalf("loaded=%v err=%v", got, err)
	}
	if err := s.ClearRecords(ctx); err != nil {
		t.Fatalf("ClearRecords: %v", err)
	}
	if got, _ := s.LoadRecords(ctx); len(got) != 0 {
		t.Fatalf("after clear=%v", got)
	}
}

func TestSampleData(t *testing.T) {
	sample := SampleData()
	months := map[string]bool{}
	for _, r := range sample {
		if r.CodePOS == "" || r.SellOut <= 0 || r.Annee != domain.DefaultYear {
			t.Fatalf("bad sample record %+v", r)
		}
		months[r.Mois] = true
	}
	if len(months) < 2 {
		t.Fatalf("sample should span several months")
	}
}

func TestGatewayUnavailableFallbackIsNotShadowed(t *testing.T) {
	ctx := context.Background()
	g, fs, backend := newGateway(t, 0)
	if err := backend.ReplaceRecords(ctx, records(4)); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	backend.FailWith(errors.New("connection refused"))

	got, err := g.Load(ctx)
	if err != nil || len(got) != len(SampleData()) {
		t.Fatalf("outage should serve the sample, got %d err=%v", len(got), err)
	}
	if _, ok, _ := fs.Get(DatasetKey); ok {
		t.Fatalf("sample must not be written to the fast tier during an outage")
	}

	backend.FailWith(nil)
	got, err = g.Load(ctx)
	if err != nil || len(got) != 4 {
		t.Fatalf("recovered fallback should be read, got %d err=%v", len(got), err)
	}
}
