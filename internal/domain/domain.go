package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// RiskCategory is a risk tolerance band derived from the questionnaire score.
// The string values match the risk_profile column of the fund dataset.
type RiskCategory string

const (
	CategoryLow      RiskCategory = "Low Risk"
	CategoryModerate RiskCategory = "Moderate Risk"
	CategoryMedium   RiskCategory = "Medium Risk"
	CategoryHigh     RiskCategory = "High Risk"
)

func (c RiskCategory) IsValid() bool {
	switch c {
	case CategoryLow, CategoryModerate, CategoryMedium, CategoryHigh:
		return true
	}
	return false
}

// ParseRiskCategory accepts both the short form ("High") and the dataset
// form ("High Risk"), case-insensitively.
func ParseRiskCategory(s string) (RiskCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "low risk":
		return CategoryLow, true
	case "moderate", "moderate risk":
		return CategoryModerate, true
	case "medium", "medium risk":
		return CategoryMedium, true
	case "high", "high risk":
		return CategoryHigh, true
	}
	return "", false
}

// Duration buckets as stored in the fund dataset.
const (
	DurationShort = "< 6 months"
	DurationMid   = "6 months to 1 year"
	DurationLong  = "> 1 year"
)

// DurationOptions are the user-facing labels presented by the flow, in
// display order.
var DurationOptions = []string{
	"Less than 6 months",
	"6 months to 1 year",
	"More than 1 year",
}

// ParseDuration maps either a user-facing label or a dataset bucket onto
// the canonical dataset bucket.
func ParseDuration(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "less than 6 months", "< 6 months", "<6 months", "< 6months":
		return DurationShort, true
	case "6 months to 1 year", "6 months - 1 year", "6mo-1y":
		return DurationMid, true
	case "more than 1 year", "> 1 year", ">1 year", "> 1year":
		return DurationLong, true
	}
	return "", false
}

// Fund is a single row of the fund dataset. Immutable once loaded.
type Fund struct {
	RiskProfile        RiskCategory `json:"risk_profile"`
	Duration           string       `json:"duration"`
	Rank               int          `json:"rank"`
	Name               string       `json:"fund_name"`
	Category           string       `json:"fund_category"`
	Type               string       `json:"fund_type"`
	AUMCr              float64      `json:"aum_cr"`
	ExpenseRatio       float64      `json:"exp_ratio"`
	Return1Y           float64      `json:"return_1y"`
	Return3Y           float64      `json:"return_3y"`
	Return5Y           float64      `json:"return_5y"`
	MinInvestment      int64        `json:"min_investment"`
	Rating             int          `json:"rating"`
	Remarks            string       `json:"remarks,omitempty"`
	LastUpdated        time.Time    `json:"last_updated"`
	Category10YReturn  float64      `json:"category_10y_return"`
	CategoryVolatility float64      `json:"category_volatility"`
	FundVolatility     float64      `json:"fund_volatility"`
}

// Fund types present in the dataset.
const (
	FundTypeDebt     = "Debt"
	FundTypeEquity   = "Equity"
	FundTypeHybrid   = "Hybrid"
	FundTypeIndexETF = "Index/ETF"
)

// Freshness classifies the age of a fund's last_updated date.
type Freshness string

const (
	FreshnessRecent   Freshness = "recent"   // under 7 days
	FreshnessModerate Freshness = "moderate" // under 28 days
	FreshnessStale    Freshness = "stale"    // 28 days or older
)

// ClassifyFreshness buckets an age in days per the dataset freshness policy.
func ClassifyFreshness(daysOld int) Freshness {
	switch {
	case daysOld < 7:
		return FreshnessRecent
	case daysOld < 28:
		return FreshnessModerate
	default:
		return FreshnessStale
	}
}

// RecommendationRequest captures one user's recommendation inputs.
type RecommendationRequest struct {
	RiskCategory RiskCategory
	Amount       int64
	Duration     string
}

// Recommendation is a ranked fund plus projection metadata.
type Recommendation struct {
	Fund           Fund      `json:"fund"`
	Position       int       `json:"position"`
	AdjustedReturn float64   `json:"adjusted_return"`
	Confidence     string    `json:"confidence"`
	ConfidencePct  int       `json:"confidence_pct"`
	Freshness      Freshness `json:"freshness"`
	DaysOld        int       `json:"days_old"`
}

// Registration is a persisted user registration row.
type Registration struct {
	ID                     int64        `json:"id"`
	Name                   string       `json:"name,omitempty"`
	Email                  string       `json:"email"`
	City                   string       `json:"city,omitempty"`
	Country                string       `json:"country"`
	Consent                bool         `json:"consent"`
	ConsentTS              time.Time    `json:"consent_ts"`
	QuestionnaireCompleted bool         `json:"questionnaire_completed"`
	RecommendationsViewed  bool         `json:"recommendations_viewed"`
	RiskScore              int          `json:"risk_score"`
	RiskCategory           RiskCategory `json:"risk_category"`
	CreatedTS              time.Time    `json:"created_ts"`
	UserID                 string       `json:"user_id,omitempty"`
}

// Goal is a persisted goal-path projection. InitialCorpus is the user's
// starting amount; projections grow it alongside the monthly SIP.
type Goal struct {
	GoalID         string       `json:"goal_id"`
	RegistrationID int64        `json:"registration_id"`
	InitialCorpus  float64      `json:"corpus"`
	MonthlySIP     float64      `json:"monthly_sip"`
	HorizonYears   int          `json:"horizon_years"`
	RiskCategory   RiskCategory `json:"risk_category"`
	Conservative   float64      `json:"conservative_projection"`
	Expected       float64      `json:"expected_projection"`
	BestCase       float64      `json:"best_case_projection"`
	Confidence     string       `json:"confidence"`
	AdjustedReturn float64      `json:"adjusted_return"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	EmailSentAt    *time.Time   `json:"email_sent_at,omitempty"`
	RevisitedAt    *time.Time   `json:"revisited_at,omitempty"`
}

// Goal lifecycle states.
const (
	GoalStatusSaved     = "saved"
	GoalStatusEmailSent = "email_sent"
	GoalStatusRevisited = "revisited"
)

// OverviewMetrics aggregates the registration funnel for the admin surface.
type OverviewMetrics struct {
	TotalRegistrations     int            `json:"total_registrations"`
	UniqueEmails           int            `json:"unique_emails"`
	QuestionnaireCompleted int            `json:"questionnaire_completed"`
	RecommendationsViewed  int            `json:"recommendations_viewed"`
	CompletionRatePct      float64        `json:"completion_rate_pct"`
	ViewRatePct            float64        `json:"view_rate_pct"`
	ByCountry              map[string]int `json:"by_country"`
	TopCities              []CityCount    `json:"top_cities"`
	ByRiskCategory         map[string]int `json:"by_risk_category"`
}

type CityCount struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// GoalsAnalytics aggregates saved goals for the admin surface.
type GoalsAnalytics struct {
	TotalGoals     int            `json:"total_goals"`
	ByStatus       map[string]int `json:"by_status"`
	ByConfidence   map[string]int `json:"by_confidence"`
	ByRiskCategory map[string]int `json:"by_risk_category"`
	AvgCorpus      float64        `json:"avg_corpus"`
	AvgMonthlySIP  float64        `json:"avg_sip"`
	AvgHorizonYrs  float64        `json:"avg_horizon"`
	AvgExpected    float64        `json:"avg_expected"`
}

// Investment amounts below this are rejected at the boundary.
const MinInvestmentAmount int64 = 500

// Recommendation display window: the flow shows 3 first, "show more"
// grows the slice to at most 10 of the same ordered result.
const (
	DefaultDisplayCount = 3
	MaxDisplayCount     = 10
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// Sentinel errors shared across services and handlers.
var (
	ErrInvalidAnswers      = errors.New("invalid questionnaire answers")
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrCatalogLoad         = errors.New("fund catalog load failed")
	ErrNotFound            = errors.New("not found")
)
