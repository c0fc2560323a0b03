package normalize

import (
	"strings"

	"salesdash/internal/domain"
)

var headerAliases = map[string]domain.Field{
	"codepos":  domain.FieldCodePOS,
	"code pos": domain.FieldCodePOS,
	"pos code": domain.FieldCodePOS,
	"code":     domain.FieldCodePOS,
	"index":    domain.FieldIndex,
	"idx":      domain.FieldIndex,

	"nameofpos":   domain.FieldNameOfPOS,
	"name of pos": domain.FieldNameOfPOS,
	"pos name":    domain.FieldNameOfPOS,
	"nom du pos":  domain.FieldNameOfPOS,
	"nom pos":     domain.FieldNameOfPOS,
	"nom":         domain.FieldNameOfPOS,
	"name":        domain.FieldNameOfPOS,

	"categoryofpos":   domain.FieldCategoryOfPOS,
	"category of pos": domain.FieldCategoryOfPOS,
	"category":        domain.FieldCategoryOfPOS,
	"categorie":       domain.FieldCategoryOfPOS,
	"categorie pos":   domain.FieldCategoryOfPOS,
	"catégorie pos":   domain.FieldCategoryOfPOS,
	"catégorie":       domain.FieldCategoryOfPOS,
	"typeofpos":       domain.FieldTypeOfPOS,
	"type of pos":     domain.FieldTypeOfPOS,
	"type":            domain.FieldTypeOfPOS,
	"type pos":        domain.FieldTypeOfPOS,

	"zone":                 domain.FieldZone,
	"district":             domain.FieldDistrict,
	"distributionchannel":  domain.FieldDistributionChannel,
	"distribution channel": domain.FieldDistributionChannel,
	"canal distribution":   domain.FieldDistributionChannel,
	"canal":                domain.FieldDistributionChannel,
	"channel":              domain.FieldDistributionChannel,

	"brand":    domain.FieldBrand,
	"marque":   domain.FieldBrand,
	"segment":  domain.FieldSegment,
	"product":  domain.FieldProduct,
	"produit":  domain.FieldProduct,
	"sellout":  domain.FieldSellOut,
	"sell out": domain.FieldSellOut,
	"ventes":   domain.FieldSellOut,
	"quantite": domain.FieldSellOut,
	"quantité": domain.FieldSellOut,
	"quantity": domain.FieldSellOut,
	"qty":      domain.FieldSellOut,

	"purchaseprice":  domain.FieldPurchasePrice,
	"purchase price": domain.FieldPurchasePrice,
	"prix achat":     domain.FieldPurchasePrice,
	"prix achat ($)": domain.FieldPurchasePrice,
	"prix d'achat":   domain.FieldPurchasePrice,
	"prixachat":      domain.FieldPurchasePrice,
	"saleprice":      domain.FieldSalePrice,
	"sale price":     domain.FieldSalePrice,
	"prix vente":     domain.FieldSalePrice,
	"prix vente ($)": domain.FieldSalePrice,
	"prix de vente":  domain.FieldSalePrice,
	"prixvente":      domain.FieldSalePrice,

	"status":       domain.FieldStatus,
	"statut":       domain.FieldStatus,
	"codeweek":     domain.FieldCodeWeek,
	"code week":    domain.FieldCodeWeek,
	"code semaine": domain.FieldCodeWeek,
	"semaine":      domain.FieldCodeWeek,
	"week":         domain.FieldCodeWeek,
	"annee":        domain.FieldAnnee,
	"année":        domain.FieldAnnee,
	"year":         domain.FieldAnnee,
	"an":           domain.FieldAnnee,
	"mois":         domain.FieldMois,
	"month":        domain.FieldMois,
	"quarter":      domain.FieldQuarter,
	"trimestre":    domain.FieldQuarter,
}

// NormalizeHeader turns a free-text column label into an alias lookup key.
func NormalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = headerSeparators.Replace(value)
	return strings.Join(strings.Fields(value), " ")
}

var headerSeparators = strings.NewReplacer("_", " ", "-", " ", ".", " ")

// Resolve looks up a normalized header key in the alias table.
func Resolve(key string) (domain.Field, bool) {
	field, ok := headerAliases[key]
	return field, ok
}

// MapHeaders maps column positions to canonical fields. When two headers
// resolve to the same field only the first one is kept.
func MapHeaders(headers []string) map[int]domain.Field {
	mapped := make(map[int]domain.Field)
	used := make(map[domain.Field]struct{})
	for idx, col := range headers {
		normalized := NormalizeHeader(col)
		if normalized == "" {
			continue
		}
		field, ok := Resolve(normalized)
		if !ok {
			continue
		}
		if _, exists := used[field]; exists {
			continue
		}
		used[field] = struct{}{}
		mapped[idx] = field
	}
	return mapped
}
