package store

import "salesdash/internal/domain"

type sampleRow struct {
	code, name, zone, district, channel string
	brand, product                      string
	sellOut, buy, sell                  float64
	week, mois, quarter                 string
}

var sampleRows = []sampleRow{
	{"KIN-0001", "Boutique Victoire", "OUEST", "Kalamu", "DIRECT", "Samsung", "Galaxy A05", 14, 82, 99, "2025W02", "JANVIER", "Q1"},
	{"KIN-0001", "Boutique Victoire", "OUEST", "Kalamu", "DIRECT", "Tecno", "Spark 20", 21, 95, 115, "2025W03", "JANVIER", "Q1"},
	{"KIN-0002", "Galerie Gombe Mobile", "NORD", "Gombe", "DISTRIBUTEUR", "Apple", "iPhone 13", 4, 540, 610, "2025W03", "JANVIER", "Q1"},
	{"KIN-0002", "Galerie Gombe Mobile", "NORD", "Gombe", "DISTRIBUTEUR", "Samsung", "Galaxy A15", 9, 138, 165, "2025W04", "JANVIER", "Q1"},
	{"KIN-0003", "Lemba Telecom", "EST", "Lemba", "GROSSISTE", "Infinix", "Hot 40i", 18, 102, 121, "2025W05", "JANVIER", "Q1"},
	{"KIN-0003", "Lemba Telecom", "EST", "Lemba", "GROSSISTE", "Itel", "A70", 30, 61, 72, "2025W06", "FÉVRIER", "Q1"},
	{"KIN-0004", "Matete Smart Center", "EST", "Matete", "DIRECT", "Tecno", "Camon 20", 11, 168, 199, "2025W06", "FÉVRIER", "Q1"},
	{"KIN-0004", "Matete Smart Center", "EST", "Matete", "DIRECT", "Samsung", "Galaxy A05", 16, 82, 99, "2025W07", "FÉVRIER", "Q1"},
	{"KIN-0005", "Ngaliema Phone House", "OUEST", "Ngaliema", "DISTRIBUTEUR", "Apple", "iPhone 14", 3, 690, 780, "2025W08", "FÉVRIER", "Q1"},
	{"KIN-0005", "Ngaliema Phone House", "OUEST", "Ngaliema", "DISTRIBUTEUR", "Infinix", "Smart 8", 25, 70, 84, "2025W09", "FÉVRIER", "Q1"},
	{"KIN-0006", "Limete Digital", "SUD", "Limete", "GROSSISTE", "Itel", "S23", 19, 88, 104, "2025W10", "MARS", "Q1"},
	{"KIN-0006", "Limete Digital", "SUD", "Limete", "GROSSISTE", "Tecno", "Spark 20", 27, 95, 115, "2025W11", "MARS", "Q1"},
	{"KIN-0007", "Bandal Connect", "SUD", "Bandalungwa", "DIRECT", "Samsung", "Galaxy A15", 12, 138, 165, "2025W11", "MARS", "Q1"},
	{"KIN-0007", "Bandal Connect", "SUD", "Bandalungwa", "DIRECT", "Infinix", "Hot 40i", 15, 102, 121, "2025W12", "MARS", "Q1"},
	{"KIN-0008", "Masina Mobile Plus", "EST", "Masina", "", "Tecno", "Pop 8", 33, 58, 69, "2025W12", "MARS", "Q1"},
	{"KIN-0008", "Masina Mobile Plus", "EST", "Masina", "", "Itel", "A70", 28, 61, 72, "2025W13", "MARS", "Q1"},
}

// SampleData is the dataset served on a fresh start, before anything has
// been stored.
func SampleData() []domain.SalesRecord {
	records := make([]domain.SalesRecord, 0, len(sampleRows))
	for idx, row := range sampleRows {
		r := domain.DefaultRecord()
		r.CodePOS = row.code
		r.Index = idx + 1
		r.NameOfPOS = row.name
		r.Zone = row.zone
		r.District = row.district
		r.DistributionChannel = row.channel
		r.Brand = row.brand
		r.Product = row.product
		r.SellOut = row.sellOut
		r.PurchasePrice = row.buy
		r.SalePrice = row.sell
		r.CodeWeek = row.week
		r.Mois = row.mois
		r.Quarter = row.quarter
		records = append(records, r)
	}
	return records
}
