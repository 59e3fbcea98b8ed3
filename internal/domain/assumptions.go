package domain

// Static reference tables for eligibility and return assumptions. The
// recommendation and goal engines read these; nothing mutates them.

// RiskHierarchy expands a category into the ordered list of categories the
// user may draw funds from: itself first, then every safer band. Higher
// tolerance subsumes safer funds, never the reverse.
var RiskHierarchy = map[RiskCategory][]RiskCategory{
	CategoryHigh:     {CategoryHigh, CategoryMedium, CategoryModerate, CategoryLow},
	CategoryMedium:   {CategoryMedium, CategoryModerate, CategoryLow},
	CategoryModerate: {CategoryModerate, CategoryLow},
	CategoryLow:      {CategoryLow},
}

// DurationHierarchy expands a horizon bucket into the dataset buckets it may
// draw funds from: itself plus every shorter bucket.
var DurationHierarchy = map[string][]string{
	DurationShort: {DurationShort},
	DurationMid:   {DurationMid, DurationShort},
	DurationLong:  {DurationLong, DurationMid, DurationShort},
}

// FundTypeRule restricts which fund types (and, when Categories is
// non-empty, which fund categories) fit a horizon bucket.
type FundTypeRule struct {
	Types      []string
	Categories []string
}

// AllowedFundTypes is keyed by horizon bucket. The short bucket only admits
// debt-like categories; equity and index funds need more than a year.
var AllowedFundTypes = map[string]FundTypeRule{
	DurationShort: {
		Types:      []string{FundTypeDebt, FundTypeHybrid},
		Categories: []string{"Liquid", "Ultra Short Duration", "Short Duration Debt"},
	},
	DurationMid: {
		Types: []string{FundTypeDebt, FundTypeHybrid},
	},
	DurationLong: {
		Types: []string{FundTypeDebt, FundTypeHybrid, FundTypeEquity, FundTypeIndexETF},
	},
}

// ReturnAssumption holds the 10-year return scenarios for a category, in
// percent per annum. Conservative and best case are the median +/- 10%.
type ReturnAssumption struct {
	Conservative float64
	Expected     float64
	BestCase     float64
}

// CategoryReturns are 10-year rolling averages for Indian mutual fund
// categories, reviewed quarterly.
var CategoryReturns = map[RiskCategory]ReturnAssumption{
	CategoryLow:      {Conservative: 5.4, Expected: 6.0, BestCase: 6.6},
	CategoryModerate: {Conservative: 7.2, Expected: 8.0, BestCase: 8.8},
	CategoryMedium:   {Conservative: 8.1, Expected: 9.0, BestCase: 9.9},
	CategoryHigh:     {Conservative: 10.8, Expected: 12.0, BestCase: 13.2},
}

// CategoryVolatility is historical annualized volatility in percent.
var CategoryVolatility = map[RiskCategory]float64{
	CategoryLow:      3.5,
	CategoryModerate: 5.5,
	CategoryMedium:   7.5,
	CategoryHigh:     13.5,
}

// Recent1YMarketReturns feed the mean-reversion adjustment. Benchmark per
// category: low-duration bond, 50:50 hybrid, NIFTY 50, NIFTY Midcap 100.
var Recent1YMarketReturns = map[RiskCategory]float64{
	CategoryLow:      6.2,
	CategoryModerate: 10.5,
	CategoryMedium:   14.8,
	CategoryHigh:     18.2,
}

// BaselineAsOf records the calibration vintage of the tables above.
const BaselineAsOf = "2025-Q4"

// ReturnsFor falls back to the Medium band for unknown categories rather
// than failing a projection.
func ReturnsFor(c RiskCategory) ReturnAssumption {
	if a, ok := CategoryReturns[c]; ok {
		return a
	}
	return CategoryReturns[CategoryMedium]
}

// VolatilityFor falls back to the Medium band for unknown categories.
func VolatilityFor(c RiskCategory) float64 {
	if v, ok := CategoryVolatility[c]; ok {
		return v
	}
	return CategoryVolatility[CategoryMedium]
}
