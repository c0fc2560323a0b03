package analytics

import (
	"sort"

	"salesdash/internal/domain"
)

const (
	topN           = 10
	posNameMax     = 25
	posNameKeep    = 22
	noLeaderBrand  = "—"
	trendModeWeek  = "week"
	trendModeMonth = "month"
)

type KPIs struct {
	TotalVolume  float64 `json:"total_volume"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalMargin  float64 `json:"total_margin"`
	MarginRate   float64 `json:"margin_rate"`
	UniquePOS    int     `json:"unique_pos"`
	LeaderBrand  string  `json:"leader_brand"`
}

func ComputeKPIs(records []domain.ComputedRecord) KPIs {
	k := KPIs{
		TotalVolume:  SumField(records, MeasureSellOut),
		TotalRevenue: SumField(records, MeasureRevenue),
		TotalMargin:  SumField(records, MeasureTotalMargin),
		LeaderBrand:  noLeaderBrand,
	}
	if k.TotalRevenue > 0 {
		k.MarginRate = finite(k.TotalMargin / k.TotalRevenue * 100)
	}

	pos := make(map[string]struct{})
	for _, r := range records {
		pos[r.CodePOS] = struct{}{}
	}
	k.UniquePOS = len(pos)

	brands := GroupBy(records, ByField(domain.FieldBrand))
	best := 0.0
	for _, brand := range brands.Keys() {
		if vol := SumField(brands.Get(brand), MeasureSellOut); vol > best {
			best = vol
			k.LeaderBrand = brand
		}
	}
	return k
}

type BrandStat struct {
	Brand         string  `json:"brand"`
	Volume        float64 `json:"volume"`
	Revenue       float64 `json:"revenue"`
	AverageMargin float64 `json:"average_margin"`
}

// BrandBreakdown lists every brand by descending volume.
func BrandBreakdown(records []domain.ComputedRecord) []BrandStat {
	brands := GroupBy(records, ByField(domain.FieldBrand))
	out := make([]BrandStat, 0, brands.Len())
	for _, brand := range brands.Keys() {
		items := brands.Get(brand)
		out = append(out, BrandStat{
			Brand:         brand,
			Volume:        SumField(items, MeasureSellOut),
			Revenue:       Round(SumField(items, MeasureRevenue)),
			AverageMargin: AverageMargin(items),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Volume > out[j].Volume })
	return out
}

type TrendPoint struct {
	Key    string             `json:"key"`
	Label  string             `json:"label"`
	Brands map[string]float64 `json:"brands"`
}

type Trend struct {
	Mode   string       `json:"mode"`
	Brands []string     `json:"brands"`
	Points []TrendPoint `json:"points"`
}

// ComputeTrend buckets sell-out per brand over time. With a single distinct
// month the buckets are weeks, otherwise months in calendar order.
func ComputeTrend(records []domain.ComputedRecord) Trend {
	brands := GroupBy(records, ByField(domain.FieldBrand)).Keys()
	months := GroupBy(records, ByField(domain.FieldMois))

	trend := Trend{Mode: trendModeMonth, Brands: brands}
	var buckets *Groups[domain.ComputedRecord]
	if months.Len() == 1 {
		trend.Mode = trendModeWeek
		buckets = GroupBy(records, ByField(domain.FieldCodeWeek))
	} else {
		buckets = months
	}

	keys := append([]string(nil), buckets.Keys()...)
	if trend.Mode == trendModeWeek {
		sort.Strings(keys)
	} else {
		sortMonths(keys)
	}

	trend.Points = make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		point := TrendPoint{Key: key, Brands: make(map[string]float64, len(brands))}
		if trend.Mode == trendModeWeek {
			point.Label = WeekLabel(key)
		} else {
			point.Label = MonthLabel(key)
		}
		byBrand := GroupBy(buckets.Get(key), ByField(domain.FieldBrand))
		for _, brand := range brands {
			point.Brands[brand] = SumField(byBrand.Get(brand), MeasureSellOut)
		}
		trend.Points = append(trend.Points, point)
	}
	return trend
}

func sortMonths(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool { return MonthIndex(keys[i]) < MonthIndex(keys[j]) })
}

type Geo struct {
	Zones     []domain.KeyValue `json:"zones"`
	Districts []domain.KeyValue `json:"districts"`
	Channels  []domain.KeyValue `json:"channels"`
}

func ComputeGeo(records []domain.ComputedRecord) Geo {
	channels := Top(records, ByField(domain.FieldDistributionChannel), Sum(MeasureSellOut), 0)
	named := channels[:0]
	for _, c := range channels {
		if c.Key != "" {
			named = append(named, c)
		}
	}
	return Geo{
		Zones:     Top(records, ByField(domain.FieldZone), Sum(MeasureSellOut), 0),
		Districts: Top(records, ByField(domain.FieldDistrict), RoundedSum(MeasureRevenue), topN),
		Channels:  named,
	}
}

type ProductViews struct {
	ByVolume  []domain.KeyValue `json:"by_volume"`
	ByRevenue []domain.KeyValue `json:"by_revenue"`
	ByMargin  []domain.KeyValue `json:"by_average_margin"`
}

func ComputeProductViews(records []domain.ComputedRecord) ProductViews {
	key := ByField(domain.FieldProduct)
	return ProductViews{
		ByVolume:  Top(records, key, Sum(MeasureSellOut), topN),
		ByRevenue: Top(records, key, RoundedSum(MeasureRevenue), topN),
		ByMargin:  Top(records, key, AverageMargin, topN),
	}
}

// ProductMonthly is the month by month volume of one product.
func ProductMonthly(records []domain.ComputedRecord, product string) []domain.KeyValue {
	selected := make([]domain.ComputedRecord, 0)
	for _, r := range records {
		if r.Product == product {
			selected = append(selected, r)
		}
	}
	months := GroupBy(selected, ByField(domain.FieldMois))
	keys := append([]string(nil), months.Keys()...)
	sortMonths(keys)

	out := make([]domain.KeyValue, 0, len(keys))
	for _, mois := range keys {
		out = append(out, domain.KeyValue{
			Key:   mois,
			Label: MonthLabel(mois),
			Value: SumField(months.Get(mois), MeasureSellOut),
		})
	}
	return out
}

type POSStat struct {
	Display string  `json:"display"`
	Name    string  `json:"name"`
	Code    string  `json:"code"`
	Value   float64 `json:"value"`
}

type POSViews struct {
	ByVolume  []POSStat `json:"by_volume"`
	ByRevenue []POSStat `json:"by_revenue"`
	ByMargin  []POSStat `json:"by_total_margin"`
}

func ComputePOSViews(records []domain.ComputedRecord) POSViews {
	return POSViews{
		ByVolume:  topPOS(records, Sum(MeasureSellOut)),
		ByRevenue: topPOS(records, RoundedSum(MeasureRevenue)),
		ByMargin:  topPOS(records, RoundedSum(MeasureTotalMargin)),
	}
}

type posKey struct {
	name string
	code string
}

func topPOS(records []domain.ComputedRecord, reduce Reducer) []POSStat {
	keys := make(map[string]posKey)
	top := Top(records, func(r domain.ComputedRecord) string {
		k := r.NameOfPOS + "\x00" + r.CodePOS
		keys[k] = posKey{name: r.NameOfPOS, code: r.CodePOS}
		return k
	}, reduce, topN)

	out := make([]POSStat, 0, len(top))
	for _, kv := range top {
		pk := keys[kv.Key]
		out = append(out, POSStat{
			Display: DisplayPOSName(pk.name),
			Name:    pk.name,
			Code:    pk.code,
			Value:   kv.Value,
		})
	}
	return out
}

// DisplayPOSName shortens names longer than 25 characters to 22 characters
// followed by "...".
func DisplayPOSName(name string) string {
	r := []rune(name)
	if len(r) <= posNameMax {
		return name
	}
	return string(r[:posNameKeep]) + "..."
}

type POSOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type FilterOptions struct {
	Segment       []string    `json:"segment"`
	Product       []string    `json:"product"`
	Zone          []string    `json:"zone"`
	District      []string    `json:"district"`
	TypeOfPOS     []string    `json:"typeOfPOS"`
	CategoryOfPOS []string    `json:"categoryOfPOS"`
	Brand         []string    `json:"brand"`
	Mois          []string    `json:"mois"`
	Quarter       []string    `json:"quarter"`
	CodeWeek      []string    `json:"codeWeek"`
	POS           []POSOption `json:"pos"`
	Annee         []int       `json:"annee"`
}

// ComputeFilterOptions lists the sorted distinct non-empty values of each
// filter dimension.
func ComputeFilterOptions(records []domain.ComputedRecord) FilterOptions {
	unique := func(field domain.Field) []string {
		seen := make(map[string]struct{})
		out := make([]string, 0)
		for _, r := range records {
			v := r.Text(field)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
		sort.Strings(out)
		return out
	}

	pos := make([]POSOption, 0)
	seenPOS := make(map[POSOption]struct{})
	years := make([]int, 0)
	seenYears := make(map[int]struct{})
	for _, r := range records {
		opt := POSOption{Code: r.CodePOS, Name: r.NameOfPOS}
		if _, ok := seenPOS[opt]; !ok {
			seenPOS[opt] = struct{}{}
			pos = append(pos, opt)
		}
		if _, ok := seenYears[r.Annee]; !ok {
			seenYears[r.Annee] = struct{}{}
			years = append(years, r.Annee)
		}
	}
	sort.SliceStable(pos, func(i, j int) bool { return pos[i].Name < pos[j].Name })
	sort.Ints(years)

	return FilterOptions{
		Segment:       unique(domain.FieldSegment),
		Product:       unique(domain.FieldProduct),
		Zone:          unique(domain.FieldZone),
		District:      unique(domain.FieldDistrict),
		TypeOfPOS:     unique(domain.FieldTypeOfPOS),
		CategoryOfPOS: unique(domain.FieldCategoryOfPOS),
		Brand:         unique(domain.FieldBrand),
		Mois:          unique(domain.FieldMois),
		Quarter:       unique(domain.FieldQuarter),
		CodeWeek:      unique(domain.FieldCodeWeek),
		POS:           pos,
		Annee:         years,
	}
}

type Dashboard struct {
	RecordCount int          `json:"record_count"`
	KPIs        KPIs         `json:"kpis"`
	Brands      []BrandStat  `json:"brands"`
	Trend       Trend        `json:"trend"`
	Geo         Geo          `json:"geo"`
	Products    ProductViews `json:"products"`
	POS         POSViews     `json:"pos"`
}

func BuildDashboard(records []domain.ComputedRecord) Dashboard {
	return Dashboard{
		RecordCount: len(records),
		KPIs:        ComputeKPIs(records),
		Brands:      BrandBreakdown(records),
		Trend:       ComputeTrend(records),
		Geo:         ComputeGeo(records),
		Products:    ComputeProductViews(records),
		POS:         ComputePOSViews(records),
	}
}
