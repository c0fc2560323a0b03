package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"salesdash/internal/domain"
	"salesdash/internal/parser"

	"golang.org/x/sync/errgroup"
)

const DefaultBatchSize = 500

var (
	ErrEmptyInput   = errors.New("no data to import")
	ErrNoValidLines = fmt.Errorf("no line has the %d required columns", parser.MinColumns)
)

// headerHints flags a first line as a header row. This is a substring
// heuristic: a data line containing one of these words is skipped too.
var headerHints = []string{"code", "pos", "index", "brand", "marque"}

type Result struct {
	Records       []domain.SalesRecord `json:"-"`
	Imported      int                  `json:"imported"`
	TotalLines    int                  `json:"total_lines"`
	ErrorCount    int                  `json:"error_count"`
	HeaderSkipped bool                 `json:"header_skipped"`
	Batches       int                  `json:"batches"`
}

type Ingester struct {
	batchSize  int
	workers    int
	logger     *slog.Logger
	onProgress func(Progress)
}

type Option func(*Ingester)

func WithBatchSize(size int) Option {
	return func(i *Ingester) {
		if size > 0 {
			i.batchSize = size
		}
	}
}

// WithWorkers sets how many goroutines parse the lines of one batch.
func WithWorkers(workers int) Option {
	return func(i *Ingester) {
		if workers > 0 {
			i.workers = workers
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingester) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithProgress(fn func(Progress)) Option {
	return func(i *Ingester) {
		i.onProgress = fn
	}
}

func New(opts ...Option) *Ingester {
	i := &Ingester{
		batchSize: DefaultBatchSize,
		workers:   1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest parses pasted text into records. Malformed lines are counted and
// dropped. Once started the run is not cancelled by ctx; it always processes
// every batch.
func (i *Ingester) Ingest(ctx context.Context, text string) (Result, error) {
	var result Result

	lines := SplitLines(text)
	if len(lines) == 0 {
		return result, ErrEmptyInput
	}
	if LooksLikeHeader(lines[0]) {
		lines = lines[1:]
		result.HeaderSkipped = true
	}
	if len(lines) == 0 {
		return result, ErrEmptyInput
	}
	result.TotalLines = len(lines)

	start := time.Now()
	parsed := make([]domain.SalesRecord, len(lines))
	valid := make([]bool, len(lines))

	stepper := Stepper{
		BatchSize: i.batchSize,
		Yield: func(p Progress) {
			i.logger.Debug("ingest batch done", "batch", p.Batch, "batches", p.Batches, "processed", p.Processed)
			if i.onProgress != nil {
				i.onProgress(p)
			}
			runtime.Gosched()
		},
	}
	batches, err := stepper.Run(context.WithoutCancel(ctx), len(lines), func(ctx context.Context, lo, hi int) error {
		return i.parseWindow(ctx, lines[lo:hi], parsed[lo:hi], valid[lo:hi])
	})
	if err != nil {
		return result, fmt.Errorf("parse batch: %w", err)
	}
	result.Batches = batches

	records := make([]domain.SalesRecord, 0, len(lines))
	for idx, ok := range valid {
		if !ok {
			result.ErrorCount++
			continue
		}
		records = append(records, parsed[idx])
	}
	result.Records = records
	result.Imported = len(records)

	i.logger.Info("bulk ingestion complete",
		"lines", result.TotalLines,
		"records", result.Imported,
		"errors", result.ErrorCount,
		"header_skipped", result.HeaderSkipped,
		"batches", result.Batches,
		"duration", time.Since(start),
	)

	if len(records) == 0 {
		return result, ErrNoValidLines
	}
	return result, nil
}

func (i *Ingester) parseWindow(ctx context.Context, lines []string, out []domain.SalesRecord, valid []bool) error {
	if i.workers <= 1 {
		for idx, line := range lines {
			out[idx], valid[idx] = parser.ParseLine(line)
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for idx := range lines {
		idx := idx
		g.Go(func() error {
			out[idx], valid[idx] = parser.ParseLine(lines[idx])
			return nil
		})
	}
	return g.Wait()
}

// SplitLines normalizes line endings and drops blank lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func LooksLikeHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, hint := range headerHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
