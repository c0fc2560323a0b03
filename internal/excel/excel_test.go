package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"salesdash/internal/domain"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for idx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestPreviewFileDropsBlankRows(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Nom", "Marque", "Ventes"},
		{"Boutique A", "Samsung", 10},
		{"", "", ""},
		{"Boutique B", "Tecno", 4},
		{nil, nil, nil},
		{"Boutique C", "Infinix", "2,5"},
	})

	preview, err := PreviewFile("ventes.xlsx", buf)
	if err != nil {
		t.Fatalf("PreviewFile error: %v", err)
	}
	if preview.TotalRows != 3 || len(preview.Rows) != 3 {
		t.Fatalf("TotalRows=%d rows=%d, want 3", preview.TotalRows, len(preview.Rows))
	}
	if len(preview.MappedColumns) != 3 || len(preview.UnmappedColumns) != 0 {
		t.Fatalf("mapped=%v unmapped=%v", preview.MappedColumns, preview.UnmappedColumns)
	}
	if preview.MappedColumns[2].Field != domain.FieldSellOut {
		t.Fatalf("Ventes mapped to %q", preview.MappedColumns[2].Field)
	}

	records := Commit(preview)
	if len(records) != 3 {
		t.Fatalf("Commit returned %d records", len(records))
	}
	if records[0].NameOfPOS != "Boutique A" || records[0].Brand != "Samsung" || records[0].SellOut != 10 {
		t.Fatalf("record 0=%+v", records[0])
	}
	if records[2].SellOut != 2.5 {
		t.Fatalf("record 2 sellOut=%v", records[2].SellOut)
	}
	if records[1].Segment != "SMARTPHONE" {
		t.Fatalf("unmapped fields should keep defaults: %+v", records[1])
	}
}

func TestBuildPreviewUnmappedColumns(t *testing.T) {
	rows := [][]string{
		{"Commentaire", "Prix Achat", "prix_vente", "Prix Achat"},
		{"x", "10", "12", "99"},
	}
	preview, err := BuildPreview("a.csv", rows)
	if err != nil {
		t.Fatalf("BuildPreview error: %v", err)
	}
	if len(preview.MappedColumns) != 2 {
		t.Fatalf("mapped=%v", preview.MappedColumns)
	}
	if len(preview.UnmappedColumns) != 2 || preview.UnmappedColumns[0] != "Commentaire" {
		t.Fatalf("unmapped=%v", preview.UnmappedColumns)
	}
	records := Commit(preview)
	if records[0].PurchasePrice != 10 || records[0].SalePrice != 12 {
		t.Fatalf("first matching header should win: %+v", records[0])
	}
}

func TestBuildPreviewErrors(t *testing.T) {
	cases := []struct {
		name string
		rows [][]string
		want error
	}{
		{"empty", nil, ErrInsufficientData},
		{"header only", [][]string{{"Marque"}}, ErrInsufficientData},
		{"only blank data", [][]string{{"Marque"}, {""}, {" "}}, ErrInsufficientData},
		{"unknown headers", [][]string{{"foo", "bar"}, {"1", "2"}}, ErrNoRecognizedColumns},
	}
	for _, tc := range cases {
		if _, err := BuildPreview("f.xlsx", tc.rows); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err=%v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestReadRowsCSV(t *testing.T) {
	input := "\ufeffMarque;Sell Out;Prix Vente\nSamsung;3;\"1 234,50\"\n"
	rows, err := ReadRows("data.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows error: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "Marque" || rows[1][2] != "1 234,50" {
		t.Fatalf("rows=%q", rows)
	}
}

func TestReadRowsUnknownExtensionFallsBackToCSV(t *testing.T) {
	rows, err := ReadRows("upload", strings.NewReader("brand,product\nTecno,Spark 20\n"))
	if err != nil {
		t.Fatalf("ReadRows error: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "Spark 20" {
		t.Fatalf("rows=%q", rows)
	}
}

func TestReadRowsRejectsEmptyAndLegacy(t *testing.T) {
	if _, err := ReadRows("a.xlsx", strings.NewReader("")); !errors.Is(err, ErrUnreadableFile) {
		t.Fatalf("empty input err=%v", err)
	}
	if _, err := ReadRows("a.xls", strings.NewReader("data")); !errors.Is(err, ErrUnreadableFile) {
		t.Fatalf(".xls err=%v", err)
	}
}

func sampleComputed() []domain.ComputedRecord {
	return []domain.ComputedRecord{
		{
			SalesRecord: domain.SalesRecord{
				CodePOS: "KIN-1", Index: 1, NameOfPOS: "Boutique A", Brand: "Samsung",
				Product: "Galaxy A05", SellOut: 4, PurchasePrice: 80, SalePrice: 100,
				Annee: 2025, Mois: "MARS", Quarter: "Q1",
			},
			CA: 400, MargeUnitaire: 20, MargeTotale: 80, TauxMarge: 20,
		},
		{
			SalesRecord: domain.SalesRecord{CodePOS: "KIN-2", Brand: "Tecno", SellOut: 3, SalePrice: 90, PurchasePrice: 60, Annee: 2025},
			CA: 270, MargeUnitaire: 30, MargeTotale: 90, TauxMarge: 33.333333,
		},
	}
}

func TestWriteWorkbookRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteWorkbook(buf, sampleComputed()); err != nil {
		t.Fatalf("WriteWorkbook error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != exportSheet {
		t.Fatalf("sheets=%v", sheets)
	}
	rate, err := f.GetCellValue(exportSheet, "R3")
	if err != nil || rate != "33.33" {
		t.Fatalf("margin rate cell=%q err=%v", rate, err)
	}

	preview, err := PreviewFile("export.xlsx", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("PreviewFile on export: %v", err)
	}
	if len(preview.MappedColumns) != len(domain.Fields) {
		t.Fatalf("export should re-import every canonical column, got %d", len(preview.MappedColumns))
	}
	records := Commit(preview)
	if len(records) != 2 || records[0] != sampleComputed()[0].SalesRecord {
		t.Fatalf("round trip mismatch: %+v", records)
	}
}

func TestWriteCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, sampleComputed()); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}
	rows, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 || len(rows[0]) != 23 {
		t.Fatalf("rows=%d cols=%d", len(rows), len(rows[0]))
	}
	if rows[0][17] != marginRateColumn || rows[2][17] != "33.33" || rows[1][14] != "400" {
		t.Fatalf("unexpected csv rows: %q", rows)
	}
}
