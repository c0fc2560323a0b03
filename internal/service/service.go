package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"salesdash/internal/analytics"
	"salesdash/internal/domain"
	"salesdash/internal/excel"
	"salesdash/internal/ingest"
	"salesdash/internal/store"
)

var (
	ErrInvalidRecord   = errors.New("invalid record")
	ErrPreviewNotFound = errors.New("import preview not found or expired")
)

const (
	DefaultPreviewTTL  = 15 * time.Minute
	previewSampleCount = 5
)

// DataStore is the persistence the service writes through. Save is used
// for appends and Replace for whole-dataset imports.
type DataStore interface {
	Load(ctx context.Context) ([]domain.SalesRecord, error)
	Save(ctx context.Context, records []domain.SalesRecord) store.SaveOutcome
	Replace(ctx context.Context, records []domain.SalesRecord) store.SaveOutcome
	Clear(ctx context.Context)
}

type MutationResult struct {
	Added   int               `json:"added"`
	Total   int               `json:"total"`
	Storage store.SaveOutcome `json:"storage"`
}

type BulkResult struct {
	ingest.Result
	Total   int               `json:"total"`
	Storage store.SaveOutcome `json:"storage"`
}

type PreviewResult struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
	Preview   excel.Preview        `json:"preview"`
	Sample    []domain.SalesRecord `json:"sample"`
}

type Options struct {
	Ingester   *ingest.Ingester
	PreviewTTL time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

// Service owns the single dataset. Every mutation runs under one lock, so a
// clear or replace issued during a bulk ingestion waits for it to finish.
type Service struct {
	store    DataStore
	ingester *ingest.Ingester
	previews *previewCache
	logger   *slog.Logger

	mu sync.Mutex
}

func New(ds DataStore, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Ingester == nil {
		opts.Ingester = ingest.New(ingest.WithLogger(opts.Logger))
	}
	if opts.PreviewTTL <= 0 {
		opts.PreviewTTL = DefaultPreviewTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    ds,
		ingester: opts.Ingester,
		previews: newPreviewCache(opts.PreviewTTL, opts.Now),
		logger:   opts.Logger,
	}
}

// ValidateManualRecord applies the manual entry rules: POS code, POS name
// and product are required and sell-out must be positive.
func ValidateManualRecord(record domain.SalesRecord) error {
	var missing []string
	if strings.TrimSpace(record.CodePOS) == "" {
		missing = append(missing, string(domain.FieldCodePOS))
	}
	if strings.TrimSpace(record.NameOfPOS) == "" {
		missing = append(missing, string(domain.FieldNameOfPOS))
	}
	if strings.TrimSpace(record.Product) == "" {
		missing = append(missing, string(domain.FieldProduct))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	if record.SellOut <= 0 {
		return fmt.Errorf("%w: sellOut must be greater than 0", ErrInvalidRecord)
	}
	return nil
}

func (s *Service) AddRecord(ctx context.Context, record domain.SalesRecord) (MutationResult, error) {
	record = trimRecord(record)
	if err := ValidateManualRecord(record); err != nil {
		return MutationResult{}, err
	}
	if record.Annee == 0 {
		record.Annee = domain.DefaultYear
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total, outcome, err := s.appendLocked(ctx, []domain.SalesRecord{record})
	if err != nil {
		return MutationResult{}, err
	}
	s.logger.Info("record added", "code_pos", record.CodePOS, "total", total, "tier", outcome.Tier)
	return MutationResult{Added: 1, Total: total, Storage: outcome}, nil
}

// BulkImport parses pasted text and appends the valid lines to the dataset.
// When no line is valid nothing is stored and the ingestion counts are
// returned along with the error.
func (s *Service) BulkImport(ctx context.Context, text string) (BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.ingester.Ingest(ctx, text)
	if err != nil {
		return BulkResult{Result: result}, err
	}

	total, outcome, err := s.appendLocked(ctx, result.Records)
	if err != nil {
		return BulkResult{Result: result}, err
	}
	return BulkResult{Result: result, Total: total, Storage: outcome}, nil
}

func (s *Service) appendLocked(ctx context.Context, records []domain.SalesRecord) (int, store.SaveOutcome, error) {
	existing, err := s.store.Load(ctx)
	if err != nil {
		return 0, store.SaveOutcome{}, fmt.Errorf("load dataset: %w", err)
	}
	combined := make([]domain.SalesRecord, 0, len(existing)+len(records))
	combined = append(combined, existing...)
	combined = append(combined, records...)
	return len(combined), s.store.Save(ctx, combined), nil
}

// PreviewImport reads a spreadsheet and keeps its preview until it is
// committed, discarded or expired.
func (s *Service) PreviewImport(fileName string, r io.Reader) (PreviewResult, error) {
	preview, err := excel.PreviewFile(fileName, r)
	if err != nil {
		return PreviewResult{}, err
	}

	sample := excel.Commit(excel.Preview{
		HeaderMapping: preview.HeaderMapping,
		Rows:          preview.Rows[:min(previewSampleCount, len(preview.Rows))],
	})
	token, expires := s.previews.put(preview)
	s.logger.Info("import preview ready", "token", token, "summary", preview.Summary())

	return PreviewResult{
		Token:     token,
		ExpiresAt: expires,
		Preview:   preview,
		Sample:    sample,
	}, nil
}

// CommitImport replaces the whole dataset with the rows of a preview.
func (s *Service) CommitImport(ctx context.Context, token string) (MutationResult, error) {
	preview, ok := s.previews.take(token)
	if !ok {
		return MutationResult{}, ErrPreviewNotFound
	}
	records := excel.Commit(preview)

	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := s.store.Replace(ctx, records)
	s.logger.Info("spreadsheet import committed", "file", preview.FileName, "records", len(records), "tier", outcome.Tier)
	return MutationResult{Added: len(records), Total: len(records), Storage: outcome}, nil
}

func (s *Service) DiscardPreview(token string) error {
	if !s.previews.drop(token) {
		return ErrPreviewNotFound
	}
	return nil
}

func (s *Service) PendingPreviews() int {
	return s.previews.size()
}

// Clear removes every stored record. The dataset reverts to the sample data
// and its size is returned.
func (s *Service) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Clear(ctx)
	records, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("reload dataset: %w", err)
	}
	s.logger.Info("dataset cleared", "sample_records", len(records))
	return len(records), nil
}

func (s *Service) computed(ctx context.Context, filters domain.FilterSet) ([]domain.ComputedRecord, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return analytics.Apply(analytics.ComputeAll(records), filters), nil
}

func (s *Service) Records(ctx context.Context, filters domain.FilterSet, search string, page int) (analytics.Page, error) {
	records, err := s.computed(ctx, filters)
	if err != nil {
		return analytics.Page{}, err
	}
	return analytics.Paginate(analytics.Search(records, search), page, analytics.DefaultPageSize), nil
}

func (s *Service) Dashboard(ctx context.Context, filters domain.FilterSet) (analytics.Dashboard, error) {
	records, err := s.computed(ctx, filters)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	return analytics.BuildDashboard(records), nil
}

func (s *Service) ProductMonthly(ctx context.Context, filters domain.FilterSet, product string) ([]domain.KeyValue, error) {
	records, err := s.computed(ctx, filters)
	if err != nil {
		return nil, err
	}
	return analytics.ProductMonthly(records, product), nil
}

// FilterOptions lists the values available under the current filters.
func (s *Service) FilterOptions(ctx context.Context, filters domain.FilterSet) (analytics.FilterOptions, error) {
	records, err := s.computed(ctx, filters)
	if err != nil {
		return analytics.FilterOptions{}, err
	}
	return analytics.ComputeFilterOptions(records), nil
}

// Export returns the filtered computed records, optionally narrowed by a
// search query, for the spreadsheet and CSV writers.
func (s *Service) Export(ctx context.Context, filters domain.FilterSet, search string) ([]domain.ComputedRecord, error) {
	records, err := s.computed(ctx, filters)
	if err != nil {
		return nil, err
	}
	return analytics.Search(records, search), nil
}

func trimRecord(r domain.SalesRecord) domain.SalesRecord {
	for _, spec := range domain.Fields {
		if spec.Kind == domain.KindText {
			r.SetText(spec.Field, strings.TrimSpace(r.Text(spec.Field)))
		}
	}
	return r
}
