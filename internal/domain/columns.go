package domain

import (
	"strings"
)

// ColumnPredicate decides whether a header cell names a logical column.
type ColumnPredicate func(header string) bool

// HeaderContains matches headers that contain every part, ignoring case.
func HeaderContains(parts ...string) ColumnPredicate {
	upper := make([]string, len(parts))
	for i, p := range parts {
		upper[i] = strings.ToUpper(p)
	}
	return func(header string) bool {
		h := strings.ToUpper(header)
		for _, p := range upper {
			if !strings.Contains(h, p) {
				return false
			}
		}
		return true
	}
}

// HeaderEquals matches headers equal to any of names after trimming, ignoring case.
func HeaderEquals(names ...string) ColumnPredicate {
	return func(header string) bool {
		h := strings.TrimSpace(header)
		for _, n := range names {
			if strings.EqualFold(h, n) {
				return true
			}
		}
		return false
	}
}

// ColumnResolver locates one logical column in a header row. Candidates are
// tried in priority order; within a candidate the header is scanned left to
// right and the first match wins.
type ColumnResolver struct {
	Name       string
	Candidates []ColumnPredicate
}

// Resolve returns the index of the first matching header cell.
func (r ColumnResolver) Resolve(header []string) (int, bool) {
	for _, match := range r.Candidates {
		for i, h := range header {
			if strings.TrimSpace(h) == "" {
				continue
			}
			if match(h) {
				return i, true
			}
		}
	}
	return -1, false
}

// ColumnSet resolves several logical columns against the same header.
type ColumnSet []ColumnResolver

// Resolve maps every logical column name to its header index. All columns
// are required; the error lists every one that failed.
func (s ColumnSet) Resolve(header []string) (map[string]int, error) {
	out := make(map[string]int, len(s))
	var missing []string
	for _, r := range s {
		idx, ok := r.Resolve(header)
		if !ok {
			missing = append(missing, r.Name)
			continue
		}
		out[r.Name] = idx
	}
	if len(missing) > 0 {
		return nil, &SchemaResolutionError{Missing: missing}
	}
	return out, nil
}

// Logical column names shared by the resolvers.
const (
	colDate          = "date"
	colTime          = "time"
	colPrecipitation = "precipitation"
	colTemperature   = "temperature"
	colLocalPrice    = "local_price"
	colForeignPrice  = "foreign_price"
	colMarketingYear = "marketing_year"
	colOffer         = "offer"
	colDemand        = "demand"
	colValidity      = "validity"
	colMinimumPrice  = "minimum_price"
	colRegion        = "region"
)

// WeatherColumnSet resolves the four columns every INMET file must provide.
// Older files label the date "DATA (YYYY-MM-DD)", newer ones just "Data".
var WeatherColumnSet = ColumnSet{
	{Name: colDate, Candidates: []ColumnPredicate{HeaderContains("DATA", "YYYY"), HeaderEquals("DATA")}},
	{Name: colTime, Candidates: []ColumnPredicate{HeaderContains("HORA")}},
	{Name: colPrecipitation, Candidates: []ColumnPredicate{HeaderContains("PRECIPITAÇÃO"), HeaderContains("PRECIPITACAO")}},
	{Name: colTemperature, Candidates: []ColumnPredicate{HeaderContains("TEMPERATURA DO AR")}},
}

// PriceColumnSet is the fixed rename map of the daily price workbook.
var PriceColumnSet = ColumnSet{
	{Name: colDate, Candidates: []ColumnPredicate{HeaderEquals("data", "date")}},
	{Name: colLocalPrice, Candidates: []ColumnPredicate{HeaderEquals("preco_brl", "preco_r", "price_local")}},
	{Name: colForeignPrice, Candidates: []ColumnPredicate{HeaderEquals("preco_usd", "preco_us", "price_foreign")}},
}

// SupplyDemandColumnSet locates the marketing year, offer and demand columns.
var SupplyDemandColumnSet = ColumnSet{
	{Name: colMarketingYear, Candidates: []ColumnPredicate{HeaderEquals("Safra.Safra", "safra", "marketing_year")}},
	{Name: colOffer, Candidates: []ColumnPredicate{HeaderEquals("Oferta", "offer", "supply")}},
	{Name: colDemand, Candidates: []ColumnPredicate{HeaderEquals("Demanda", "demand")}},
}

// RegionalPriceColumnSet locates the columns of the regional minimum-price table.
var RegionalPriceColumnSet = ColumnSet{
	{Name: colValidity, Candidates: []ColumnPredicate{HeaderContains("VIGÊNCIA", "INICIAL"), HeaderContains("VIGENCIA", "INICIAL")}},
	{Name: colMinimumPrice, Candidates: []ColumnPredicate{HeaderContains("PREÇO", "MÍNIMO"), HeaderContains("PRECO", "MINIMO")}},
	{Name: colRegion, Candidates: []ColumnPredicate{HeaderContains("UF"), HeaderContains("REGI")}},
}
