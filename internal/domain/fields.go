package domain

import "strconv"

// Field is the name of one of the 19 canonical SalesRecord attributes.
type Field string

const (
	FieldCodePOS             Field = "codePOS"
	FieldIndex               Field = "index"
	FieldNameOfPOS           Field = "nameOfPOS"
	FieldCategoryOfPOS       Field = "categoryOfPOS"
	FieldTypeOfPOS           Field = "typeOfPOS"
	FieldZone                Field = "zone"
	FieldDistrict            Field = "district"
	FieldDistributionChannel Field = "distributionChannel"
	FieldBrand               Field = "brand"
	FieldSegment             Field = "segment"
	FieldProduct             Field = "product"
	FieldSellOut             Field = "sellOut"
	FieldPurchasePrice       Field = "purchasePrice"
	FieldSalePrice           Field = "salePrice"
	FieldStatus              Field = "status"
	FieldCodeWeek            Field = "codeWeek"
	FieldAnnee               Field = "annee"
	FieldMois                Field = "mois"
	FieldQuarter             Field = "quarter"
)

type FieldKind int

const (
	KindText FieldKind = iota
	KindNumeric
)

func (k FieldKind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

type FieldSpec struct {
	Field Field
	Label string
	Kind  FieldKind
}

// Fields lists the canonical fields in positional (bulk text) order.
var Fields = []FieldSpec{
	{FieldCodePOS, "Code POS", KindText},
	{FieldIndex, "Index", KindNumeric},
	{FieldNameOfPOS, "Nom du POS", KindText},
	{FieldCategoryOfPOS, "Catégorie POS", KindText},
	{FieldTypeOfPOS, "Type POS", KindText},
	{FieldZone, "Zone", KindText},
	{FieldDistrict, "District", KindText},
	{FieldDistributionChannel, "Canal Distribution", KindText},
	{FieldBrand, "Marque", KindText},
	{FieldSegment, "Segment", KindText},
	{FieldProduct, "Produit", KindText},
	{FieldSellOut, "Sell Out", KindNumeric},
	{FieldPurchasePrice, "Prix Achat ($)", KindNumeric},
	{FieldSalePrice, "Prix Vente ($)", KindNumeric},
	{FieldStatus, "Statut", KindText},
	{FieldCodeWeek, "Code Semaine", KindText},
	{FieldAnnee, "Année", KindNumeric},
	{FieldMois, "Mois", KindText},
	{FieldQuarter, "Trimestre", KindText},
}

var fieldKinds = func() map[Field]FieldKind {
	kinds := make(map[Field]FieldKind, len(Fields))
	for _, spec := range Fields {
		kinds[spec.Field] = spec.Kind
	}
	return kinds
}()

// LabelOf returns the display label of a field, or the field name itself
// when it is not canonical.
func LabelOf(field Field) string {
	for _, spec := range Fields {
		if spec.Field == field {
			return spec.Label
		}
	}
	return string(field)
}

// KindOf reports the value kind of a canonical field. The boolean is false
// for names outside the table.
func KindOf(field Field) (FieldKind, bool) {
	kind, ok := fieldKinds[field]
	return kind, ok
}

// SetText assigns a text field. Numeric fields are left untouched.
func (r *SalesRecord) SetText(field Field, value string) {
	switch field {
	case FieldCodePOS:
		r.CodePOS = value
	case FieldNameOfPOS:
		r.NameOfPOS = value
	case FieldCategoryOfPOS:
		r.CategoryOfPOS = value
	case FieldTypeOfPOS:
		r.TypeOfPOS = value
	case FieldZone:
		r.Zone = value
	case FieldDistrict:
		r.District = value
	case FieldDistributionChannel:
		r.DistributionChannel = value
	case FieldBrand:
		r.Brand = value
	case FieldSegment:
		r.Segment = value
	case FieldProduct:
		r.Product = value
	case FieldStatus:
		r.Status = value
	case FieldCodeWeek:
		r.CodeWeek = value
	case FieldMois:
		r.Mois = value
	case FieldQuarter:
		r.Quarter = value
	}
}

// SetNumber assigns a numeric field. Integer fields are truncated toward zero.
func (r *SalesRecord) SetNumber(field Field, value float64) {
	switch field {
	case FieldIndex:
		r.Index = int(value)
	case FieldSellOut:
		r.SellOut = value
	case FieldPurchasePrice:
		r.PurchasePrice = value
	case FieldSalePrice:
		r.SalePrice = value
	case FieldAnnee:
		r.Annee = int(value)
	}
}

// Text returns the string form of any canonical field, used for grouping
// and filtering by field name.
func (r SalesRecord) Text(field Field) string {
	switch field {
	case FieldCodePOS:
		return r.CodePOS
	case FieldIndex:
		return strconv.Itoa(r.Index)
	case FieldNameOfPOS:
		return r.NameOfPOS
	case FieldCategoryOfPOS:
		return r.CategoryOfPOS
	case FieldTypeOfPOS:
		return r.TypeOfPOS
	case FieldZone:
		return r.Zone
	case FieldDistrict:
		return r.District
	case FieldDistributionChannel:
		return r.DistributionChannel
	case FieldBrand:
		return r.Brand
	case FieldSegment:
		return r.Segment
	case FieldProduct:
		return r.Product
	case FieldSellOut:
		return strconv.FormatFloat(r.SellOut, 'f', -1, 64)
	case FieldPurchasePrice:
		return strconv.FormatFloat(r.PurchasePrice, 'f', -1, 64)
	case FieldSalePrice:
		return strconv.FormatFloat(r.SalePrice, 'f', -1, 64)
	case FieldStatus:
		return r.Status
	case FieldCodeWeek:
		return r.CodeWeek
	case FieldAnnee:
		return strconv.Itoa(r.Annee)
	case FieldMois:
		return r.Mois
	case FieldQuarter:
		return r.Quarter
	}
	return ""
}

// Column is one named value of a flattened ComputedRecord.
type Column struct {
	Label string
	Value any
}

// Flat returns the export column order used by the spreadsheet and CSV
// writers.
func (c ComputedRecord) Flat() []Column {
	return []Column{
		{"Code POS", c.CodePOS},
		{"Index", c.Index},
		{"Nom POS", c.NameOfPOS},
		{"Catégorie POS", c.CategoryOfPOS},
		{"Type POS", c.TypeOfPOS},
		{"Zone", c.Zone},
		{"District", c.District},
		{"Canal Distribution", c.DistributionChannel},
		{"Marque", c.Brand},
		{"Segment", c.Segment},
		{"Produit", c.Product},
		{"Sell Out", c.SellOut},
		{"Prix Achat", c.PurchasePrice},
		{"Prix Vente", c.SalePrice},
		{"Chiffre d'Affaires", c.CA},
		{"Marge Unitaire", c.MargeUnitaire},
		{"Marge Totale", c.MargeTotale},
		{"Taux de Marge (%)", c.TauxMarge},
		{"Statut", c.Status},
		{"Code Semaine", c.CodeWeek},
		{"Mois", c.Mois},
		{"Année", c.Annee},
		{"Trimestre", c.Quarter},
	}
}
