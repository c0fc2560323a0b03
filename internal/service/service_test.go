package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"salesdash/internal/domain"
	"salesdash/internal/excel"
	"salesdash/internal/ingest"
	"salesdash/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, opts Options) (*Service, *store.Gateway) {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	gw := store.NewGateway(fs, store.NewMemoryBackend(), quietLogger())
	opts.Logger = quietLogger()
	return New(gw, opts), gw
}

func bulkLine(code, brand string, qty int) string {
	return strings.Join([]string{
		code, "1", "Boutique " + code, "RETAILER", "SHOP", "OUEST", "Kalamu", "DIRECT",
		brand, "SMARTPHONE", "Spark 20", fmt.Sprint(qty), "95", "115", "MCS", "2025W03", "2025", "JANVIER", "Q1",
	}, "\t")
}

func manual() domain.SalesRecord {
	r := domain.DefaultRecord()
	r.CodePOS = " KIN-9000 "
	r.NameOfPOS = "Boutique Test"
	r.Product = "Galaxy A05"
	r.Brand = "Samsung"
	r.SellOut = 2
	r.SalePrice = 100
	return r
}

func TestAddRecordAppends(t *testing.T) {
	ctx := context.Background()
	svc, gw := newService(t, Options{})

	res, err := svc.AddRecord(ctx, manual())
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	sampleSize := len(store.SampleData())
	if res.Added != 1 || res.Total != sampleSize+1 || !res.Storage.Persisted {
		t.Fatalf("result=%+v", res)
	}
	records, _ := gw.Load(ctx)
	if last := records[len(records)-1]; last.CodePOS != "KIN-9000" {
		t.Fatalf("manual record should be trimmed and appended last, got %q", last.CodePOS)
	}
}

func TestAddRecordValidation(t *testing.T) {
	svc, _ := newService(t, Options{})
	cases := []func(*domain.SalesRecord){
		func(r *domain.SalesRecord) { r.CodePOS = "  " },
		func(r *domain.SalesRecord) { r.NameOfPOS = "" },
		func(r *domain.SalesRecord) { r.Product = "" },
		func(r *domain.SalesRecord) { r.SellOut = 0 },
		func(r *domain.SalesRecord) { r.SellOut = -1 },
	}
	for idx, mutate := range cases {
		r := manual()
		mutate(&r)
		if _, err := svc.AddRecord(context.Background(), r); !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("case %d: err=%v, want ErrInvalidRecord", idx, err)
		}
	}
}

func TestBulkImportAppends(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, Options{})
	text := strings.Join([]string{
		bulkLine("KIN-0100", "Tecno", 3),
		"broken\tline",
		bulkLine("KIN-0101", "Itel", 4),
	}, "\n")

	res, err := svc.BulkImport(ctx, text)
	if err != nil {
		t.Fatalf("BulkImport: %v", err)
	}
	if res.Imported != 2 || res.ErrorCount != 1 || res.Total != len(store.SampleData())+2 {
		t.Fatalf("result=%+v", res)
	}
}

func TestBulkImportNoValidLinesStoresNothing(t *testing.T) {
	ctx := context.Background()
	svc, gw := newService(t, Options{})
	before, _ := gw.Load(ctx)

	res, err := svc.BulkImport(ctx, "a\tb\nc\td")
	if !errors.Is(err, ingest.ErrNoValidLines) {
		t.Fatalf("err=%v", err)
	}
	if res.ErrorCount != 2 {
		t.Fatalf("counts should be reported, got %+v", res)
	}
	after, _ := gw.Load(ctx)
	if len(after) != len(before) {
		t.Fatalf("dataset changed: %d -> %d", len(before), len(after))
	}

	if _, err := svc.BulkImport(ctx, "   "); !errors.Is(err, ingest.ErrEmptyInput) {
		t.Fatalf("blank text err=%v", err)
	}
}

func workbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	var csvBody strings.Builder
	for _, row := range rows {
		csvBody.WriteString(strings.Join(row, ";"))
		csvBody.WriteString("\n")
	}
	return bytes.NewBufferString(csvBody.String())
}

func TestPreviewAndCommitReplaces(t *testing.T) {
	ctx := context.Background()
	svc, gw := newService(t, Options{})

	file := workbook(t, [][]string{
		{"Code POS", "Nom", "Marque", "Produit", "Sell Out", "Commentaire"},
		{"LUB-1", "Boutique Lubumbashi", "Tecno", "Spark 20", "5", "x"},
		{"", "", "", "", "", ""},
		{"LUB-2", "Galerie Kenya", "Samsung", "Galaxy A05", "2", "y"},
	})
	preview, err := svc.PreviewImport("ventes.csv", file)
	if err != nil {
		t.Fatalf("PreviewImport: %v", err)
	}
	if preview.Token == "" || preview.Preview.TotalRows != 2 || len(preview.Sample) != 2 {
		t.Fatalf("preview=%+v", preview)
	}
	if len(preview.Preview.UnmappedColumns) != 1 {
		t.Fatalf("unmapped=%v", preview.Preview.UnmappedColumns)
	}
	if svc.PendingPreviews() != 1 {
		t.Fatalf("pending=%d", svc.PendingPreviews())
	}

	res, err := svc.CommitImport(ctx, preview.Token)
	if err != nil {
		t.Fatalf("CommitImport: %v", err)
	}
	if res.Total != 2 || res.Added != 2 {
		t.Fatalf("commit=%+v", res)
	}
	records, _ := gw.Load(ctx)
	if len(records) != 2 || records[0].CodePOS != "LUB-1" || records[0].Segment != "SMARTPHONE" {
		t.Fatalf("dataset should be replaced: %+v", records)
	}

	if _, err := svc.CommitImport(ctx, preview.Token); !errors.Is(err, ErrPreviewNotFound) {
		t.Fatalf("second commit err=%v", err)
	}
}

func TestPreviewErrors(t *testing.T) {
	svc, _ := newService(t, Options{})
	if _, err := svc.PreviewImport("a.csv", workbook(t, [][]string{{"Marque"}})); !errors.Is(err, excel.ErrInsufficientData) {
		t.Fatalf("err=%v", err)
	}
	if _, err := svc.PreviewImport("a.csv", workbook(t, [][]string{{"foo", "bar"}, {"1", "2"}})); !errors.Is(err, excel.ErrNoRecognizedColumns) {
		t.Fatalf("err=%v", err)
	}
	if svc.PendingPreviews() != 0 {
		t.Fatalf("failed previews must not be kept")
	}
}

func TestPreviewExpiresAndDiscard(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc, _ := newService(t, Options{PreviewTTL: time.Minute, Now: clock})
	file := func() io.Reader {
		return workbook(t, [][]string{{"Marque", "Sell Out"}, {"Tecno", "1"}})
	}

	first, err := svc.PreviewImport("a.csv", file())
	if err != nil {
		t.Fatalf("PreviewImport: %v", err)
	}
	if !first.ExpiresAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("expires=%s", first.ExpiresAt)
	}
	now = now.Add(2 * time.Minute)
	if _, err := svc.CommitImport(context.Background(), first.Token); !errors.Is(err, ErrPreviewNotFound) {
		t.Fatalf("expired preview err=%v", err)
	}

	second, _ := svc.PreviewImport("a.csv", file())
	if err := svc.DiscardPreview(second.Token); err != nil {
		t.Fatalf("DiscardPreview: %v", err)
	}
	if err := svc.DiscardPreview(second.Token); !errors.Is(err, ErrPreviewNotFound) {
		t.Fatalf("second discard err=%v", err)
	}
}

func TestClearRestoresSample(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, Options{})
	if _, err := svc.AddRecord(ctx, manual()); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	n, err := svc.Clear(ctx)
	if err != nil || n != len(store.SampleData()) {
		t.Fatalf("Clear=%d err=%v", n, err)
	}
}

func TestReadViewsApplyFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, Options{})
	filters := domain.FilterSet{Brand: []string{"Tecno"}}

	dash, err := svc.Dashboard(ctx, filters)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.KPIs.LeaderBrand != "Tecno" || len(dash.Brands) != 1 {
		t.Fatalf("dashboard=%+v", dash.KPIs)
	}

	page, err := svc.Records(ctx, filters, "spark", 1)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	for _, item := range page.Items {
		if item.Brand != "Tecno" || !strings.Contains(strings.ToLower(item.Product), "spark") {
			t.Fatalf("unexpected row %+v", item.SalesRecord)
		}
	}
	if page.TotalItems == 0 {
		t.Fatalf("expected matching rows in the sample")
	}

	opts, err := svc.FilterOptions(ctx, filters)
	if err != nil || len(opts.Brand) != 1 {
		t.Fatalf("options=%v err=%v", opts.Brand, err)
	}

	monthly, err := svc.ProductMonthly(ctx, domain.FilterSet{}, "Spark 20")
	if err != nil || len(monthly) == 0 {
		t.Fatalf("monthly=%v err=%v", monthly, err)
	}

	rows, err := svc.Export(ctx, filters, "")
	if err != nil || len(rows) != dash.RecordCount {
		t.Fatalf("export=%d dashboard=%d err=%v", len(rows), dash.RecordCount, err)
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc, gw := newService(t, Options{})

	var wg sync.WaitGroup
	for n := 0; n < 20; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r := manual()
			r.CodePOS = fmt.Sprintf("KIN-C%02d", n)
			if _, err := svc.AddRecord(ctx, r); err != nil {
				t.Errorf("AddRecord: %v", err)
			}
		}(n)
	}
	wg.Wait()

	records, _ := gw.Load(ctx)
	if len(records) != len(store.SampleData())+20 {
		t.Fatalf("lost updates: %d records", len(records))
	}
}
