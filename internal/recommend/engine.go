package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/domain"
)

const (
	// Recent market returns more than this many points above the 10y
	// baseline trigger a mean-reversion haircut on the expected return.
	meanReversionMargin  = 5.0
	meanReversionHaircut = 1.0

	volWeight = 0.7
	ageWeight = 0.3
)

type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Recommend returns the full ordered recommendation list for the request.
// An empty catalog match is a normal outcome and yields a nil slice.
func (e *Engine) Recommend(funds []domain.Fund, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	eligible := filterFunds(funds, req)
	if len(eligible) == 0 {
		return nil, nil
	}

	sortFunds(eligible)
	eligible = dedupeByName(eligible)

	now := e.now()
	out := make([]domain.Recommendation, len(eligible))
	for i, f := range eligible {
		out[i] = enrich(f, i+1, now)
	}
	return out, nil
}

func normalize(req domain.RecommendationRequest) (domain.RecommendationRequest, error) {
	if !req.RiskCategory.IsValid() {
		return req, fmt.Errorf("%w: unknown risk category %q", domain.ErrInvalidRequest, req.RiskCategory)
	}
	if req.Amount < domain.MinInvestmentAmount {
		return req, fmt.Errorf("%w: amount %d below minimum %d", domain.ErrInvalidRequest, req.Amount, domain.MinInvestmentAmount)
	}
	dur, ok := domain.ParseDuration(req.Duration)
	if !ok {
		return req, fmt.Errorf("%w: unknown duration %q", domain.ErrInvalidRequest, req.Duration)
	}
	req.Duration = dur
	return req, nil
}

func filterFunds(funds []domain.Fund, req domain.RecommendationRequest) []domain.Fund {
	allowedRisk := make(map[domain.RiskCategory]bool)
	for _, c := range domain.RiskHierarchy[req.RiskCategory] {
		allowedRisk[c] = true
	}

	allowedDurations := make(map[string]bool)
	for _, d := range domain.DurationHierarchy[req.Duration] {
		allowedDurations[d] = true
	}

	rule, hasRule := domain.AllowedFundTypes[req.Duration]
	allowedTypes := make(map[string]bool)
	allowedCategories := make(map[string]bool)
	if hasRule {
		for _, t := range rule.Types {
			allowedTypes[t] = true
		}
		for _, c := range rule.Categories {
			allowedCategories[c] = true
		}
	}

	out := make([]domain.Fund, 0, len(funds))
	for _, f := range funds {
		if !allowedRisk[f.RiskProfile] {
			continue
		}
		if f.MinInvestment > req.Amount {
			continue
		}
		if !allowedDurations[f.Duration] {
			continue
		}
		if hasRule {
			if !allowedTypes[f.Type] {
				continue
			}
			if len(allowedCategories) > 0 && !allowedCategories[f.Category] {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// sortFunds orders by rating desc, 5y return desc, 3y return desc, expense
// ratio asc. The sort is stable so catalog order breaks remaining ties.
func sortFunds(funds []domain.Fund) {
	sort.SliceStable(funds, func(i, j int) bool {
		a, b := funds[i], funds[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.Return5Y != b.Return5Y {
			return a.Return5Y > b.Return5Y
		}
		if a.Return3Y != b.Return3Y {
			return a.Return3Y > b.Return3Y
		}
		return a.ExpenseRatio < b.ExpenseRatio
	})
}

func dedupeByName(funds []domain.Fund) []domain.Fund {
	seen := make(map[string]bool, len(funds))
	out := funds[:0]
	for _, f := range funds {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return out
}

func enrich(f domain.Fund, position int, now time.Time) domain.Recommendation {
	daysOld := catalog.DaysOld(f, now)
	freshness := domain.ClassifyFreshness(daysOld)
	level := confidenceLevel(f, freshness)

	return domain.Recommendation{
		Fund:           f,
		Position:       position,
		AdjustedReturn: AdjustedExpectedReturn(f.RiskProfile),
		Confidence:     level,
		ConfidencePct:  ConfidencePercent(level),
		Freshness:      freshness,
		DaysOld:        daysOld,
	}
}

// AdjustedExpectedReturn applies mean reversion to the category's expected
// 10y return: a recent market run-up past the margin shaves one point off.
func AdjustedExpectedReturn(c domain.RiskCategory) float64 {
	base := domain.ReturnsFor(c).Expected
	recent, ok := domain.Recent1YMarketReturns[c]
	if !ok {
		recent = domain.Recent1YMarketReturns[domain.CategoryMedium]
	}
	if recent > base+meanReversionMargin {
		return base - meanReversionHaircut
	}
	return base
}

// confidenceLevel scores how far the fund's own volatility sits from its
// category benchmark (70% weight) and how fresh its data is (30% weight).
func confidenceLevel(f domain.Fund, fr domain.Freshness) string {
	benchmark := domain.VolatilityFor(f.RiskProfile)

	volScore := 1
	if benchmark > 0 && f.FundVolatility > 0 {
		switch ratio := f.FundVolatility / benchmark; {
		case ratio <= 0.8:
			volScore = 3
		case ratio <= 1.2:
			volScore = 2
		}
	} else if f.FundVolatility == 0 {
		// No per-fund volatility on file reads as tracking the benchmark.
		volScore = 2
	}

	ageScore := 1
	switch fr {
	case domain.FreshnessRecent:
		ageScore = 3
	case domain.FreshnessModerate:
		ageScore = 2
	}

	combined := float64(volScore)*volWeight + float64(ageScore)*ageWeight
	switch {
	case combined >= 2.5:
		return "High"
	case combined >= 1.5:
		return "Medium"
	default:
		return "Low"
	}
}

// ConfidencePercent maps a confidence level to its rough probability.
func ConfidencePercent(level string) int {
	switch level {
	case "High":
		return 70
	case "Medium":
		return 50
	case "Low":
		return 25
	}
	return 50
}

// Page slices an ordered recommendation list for display. Offset past the
// end returns nil; limit <= 0 falls back to the default display count.
func Page(recs []domain.Recommendation, limit, offset int) []domain.Recommendation {
	if limit <= 0 {
		limit = domain.DefaultDisplayCount
	}
	if limit > domain.MaxDisplayCount {
		limit = domain.MaxDisplayCount
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(recs) {
		return nil
	}
	end := offset + limit
	if end > len(recs) {
		end = len(recs)
	}
	return recs[offset:end]
}

// StaleCount reports how many recommendations carry stale catalog data.
func StaleCount(recs []domain.Recommendation) int {
	n := 0
	for _, r := range recs {
		if r.Freshness == domain.FreshnessStale {
			n++
		}
	}
	return n
}
