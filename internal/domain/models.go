package domain

type SalesRecord struct {
	CodePOS             string  `json:"codePOS"`
	Index               int     `json:"index"`
	NameOfPOS           string  `json:"nameOfPOS"`
	CategoryOfPOS       string  `json:"categoryOfPOS"`
	TypeOfPOS           string  `json:"typeOfPOS"`
	Zone                string  `json:"zone"`
	District            string  `json:"district"`
	DistributionChannel string  `json:"distributionChannel"`
	Brand               string  `json:"brand"`
	Segment             string  `json:"segment"`
	Product             string  `json:"product"`
	SellOut             float64 `json:"sellOut"`
	PurchasePrice       float64 `json:"purchasePrice"`
	SalePrice           float64 `json:"salePrice"`
	Status              string  `json:"status"`
	CodeWeek            string  `json:"codeWeek"`
	Annee               int     `json:"annee"`
	Mois                string  `json:"mois"`
	Quarter             string  `json:"quarter"`
}

// ComputedRecord is a SalesRecord with its derived financial fields. It is
// rebuilt from the record on every read and never persisted.
type ComputedRecord struct {
	SalesRecord
	CA            float64 `json:"ca"`
	MargeUnitaire float64 `json:"margeUnitaire"`
	MargeTotale   float64 `json:"margeTotale"`
	TauxMarge     float64 `json:"tauxMarge"`
}

// DefaultYear is used when a year cannot be read from the input.
const DefaultYear = 2025

// DefaultRecord is the starting point for manual entry and header-mapped
// spreadsheet rows.
func DefaultRecord() SalesRecord {
	return SalesRecord{
		CategoryOfPOS: "RETAILER",
		TypeOfPOS:     "SHOP",
		Segment:       "SMARTPHONE",
		Status:        "MCS",
		Annee:         DefaultYear,
	}
}

type FilterSet struct {
	Segment       []string `json:"segment"`
	Product       []string `json:"product"`
	Zone          []string `json:"zone"`
	District      []string `json:"district"`
	TypeOfPOS     []string `json:"typeOfPOS"`
	CategoryOfPOS []string `json:"categoryOfPOS"`
	Brand         []string `json:"brand"`
	Mois          []string `json:"mois"`
	Quarter       []string `json:"quarter"`
	CodeWeek      []string `json:"codeWeek"`
	CodePOS       []string `json:"codePOS"`
	Annee         []int    `json:"annee"`
}

func (f FilterSet) IsEmpty() bool {
	return len(f.Segment) == 0 &&
		len(f.Product) == 0 &&
		len(f.Zone) == 0 &&
		len(f.District) == 0 &&
		len(f.TypeOfPOS) == 0 &&
		len(f.CategoryOfPOS) == 0 &&
		len(f.Brand) == 0 &&
		len(f.Mois) == 0 &&
		len(f.Quarter) == 0 &&
		len(f.CodeWeek) == 0 &&
		len(f.CodePOS) == 0 &&
		len(f.Annee) == 0
}

type KeyValue struct {
	Key   string  `json:"key"`
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
}
