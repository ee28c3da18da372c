// Package catalog holds the static lookup tables that map user-facing selections
// (countries, indicators, years, views) to the codes the World Bank indicator
// service expects.
//
// Selectors are plain indices into ordered tables. An out-of-range selector is a
// programming error, so lookups panic instead of clamping.
package catalog

import "fmt"

const (
	// MinYear is the first year offered for analysis.
	MinYear = 2000
	// MaxYear is the last year offered for analysis.
	MaxYear = 2021
)

// CountrySelector indexes Countries.
type CountrySelector int

// IndicatorSelector indexes Indicators. PrimaryIndicator is always fetched;
// any other selector adds a secondary series compared against it.
type IndicatorSelector int

// PrimaryIndicator is the mandatory forest area indicator.
const PrimaryIndicator IndicatorSelector = 0

// IsPrimary reports whether only the primary series is requested.
func (s IndicatorSelector) IsPrimary() bool {
	return s == PrimaryIndicator
}

// Country is a selectable country and its ISO3 code.
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Indicator is a selectable World Bank indicator.
type Indicator struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Label string `json:"label"` // chart axis label
}

// Countries is the ordered country table.
var Countries = []Country{
	{Name: "Canada", Code: "CAN"},
	{Name: "USA", Code: "USA"},
	{Name: "France", Code: "FRA"},
	{Name: "China", Code: "CHN"},
	{Name: "Brazil", Code: "BRA"},
	{Name: "India", Code: "IND"},
	{Name: "Germany", Code: "DEU"},
	{Name: "Japan", Code: "JPN"},
	{Name: "United Kingdom", Code: "GBR"},
	{Name: "Mexico", Code: "MEX"},
}

// Indicators is the ordered indicator table; index 0 is the primary series.
var Indicators = []Indicator{
	{Name: "Forest Area", Code: "AG.LND.FRST.ZS", Label: "Forest area (% of land area)"},
	{Name: "CO2 Emissions vs Forest Area", Code: "EN.ATM.CO2E.PC", Label: "CO2 emissions (metric tons per capita)"},
	{Name: "Air Pollution vs Forest Area", Code: "EN.ATM.PM25.MC.M3", Label: "PM2.5 air pollution (micrograms per cubic meter)"},
	{Name: "GDP per Capita vs Forest Area", Code: "NY.GDP.PCAP.CD", Label: "GDP per capita (current US$)"},
	{Name: "Energy Use vs Forest Area", Code: "EG.USE.PCAP.KG.OE", Label: "Energy use (kg of oil equivalent per capita)"},
	{Name: "Health Expenditure vs Forest Area", Code: "SH.XPD.CHEX.PC.CD", Label: "Current health expenditure per capita (current US$)"},
	{Name: "Education Expenditure vs Forest Area", Code: "SE.XPD.TOTL.GD.ZS", Label: "Government expenditure on education, total (% of GDP)"},
}

// Views lists the renderings a collaborator can produce from a valid dataset.
var Views = []string{"Report", "Bar Chart", "Line Chart", "Scatter Plot"}

// CountryAt returns the country for sel. It panics when sel is out of range.
func CountryAt(sel CountrySelector) Country {
	if int(sel) < 0 || int(sel) >= len(Countries) {
		panic(fmt.Sprintf("catalog: country selector %d out of range [0,%d)", sel, len(Countries)))
	}
	return Countries[sel]
}

// CountryCode returns the service code for sel.
func CountryCode(sel CountrySelector) string {
	return CountryAt(sel).Code
}

// IndicatorAt returns the indicator for sel. It panics when sel is out of range.
func IndicatorAt(sel IndicatorSelector) Indicator {
	if int(sel) < 0 || int(sel) >= len(Indicators) {
		panic(fmt.Sprintf("catalog: indicator selector %d out of range [0,%d)", sel, len(Indicators)))
	}
	return Indicators[sel]
}

// ValidCountry reports whether sel can be passed to CountryAt.
func ValidCountry(sel CountrySelector) bool {
	return int(sel) >= 0 && int(sel) < len(Countries)
}

// ValidIndicator reports whether sel can be passed to IndicatorAt.
func ValidIndicator(sel IndicatorSelector) bool {
	return int(sel) >= 0 && int(sel) < len(Indicators)
}

// CountryByCode finds a country selector by ISO3 code.
func CountryByCode(code string) (CountrySelector, bool) {
	for i, c := range Countries {
		if c.Code == code {
			return CountrySelector(i), true
		}
	}
	return 0, false
}

// IndicatorByCode finds an indicator selector by service code.
func IndicatorByCode(code string) (IndicatorSelector, bool) {
	for i, ind := range Indicators {
		if ind.Code == code {
			return IndicatorSelector(i), true
		}
	}
	return 0, false
}

// Years returns every year from min to max inclusive, ascending.
func Years(min, max int) []int {
	if max < min {
		return []int{}
	}
	years := make([]int, 0, max-min+1)
	for y := min; y <= max; y++ {
		years = append(years, y)
	}
	return years
}

// ValidYear reports whether y is one of the selectable years.
func ValidYear(y int) bool {
	return y >= MinYear && y <= MaxYear
}

// DefaultYear is the first selectable year.
func DefaultYear() int {
	return Years(MinYear, MaxYear)[0]
}
