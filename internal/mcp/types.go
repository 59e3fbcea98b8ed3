package mcp

import (
	"fmt"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/goal"
	"github.com/scaryPonens/fundadvisor/internal/service"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type riskAssessInput struct {
	Answers []int `json:"answers" jsonschema:"0-based option index per questionnaire question, one per question in order"`
}

type riskAssessOutput struct {
	Assessment service.RiskAssessment `json:"assessment"`
}

type riskQuickInput struct {
	Profile string `json:"profile" jsonschema:"fast-track profile: low, medium, or high"`
}

type riskQuickOutput struct {
	Assessment service.RiskAssessment `json:"assessment"`
}

type fundsRecommendInput struct {
	Category string `json:"category" jsonschema:"risk category: low, moderate, medium, or high"`
	Amount   int64  `json:"amount" jsonschema:"investment amount in rupees, minimum 500"`
	Duration string `json:"duration" jsonschema:"investment duration: less than 6 months, 6 months to 1 year, or more than 1 year"`
	Limit    int    `json:"limit,omitempty" jsonschema:"number of funds to return, max 10"`
}

type fundsRecommendOutput struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	Total           int                     `json:"total"`
}

type fundsSearchInput struct {
	Query string `json:"query" jsonschema:"free-text search over fund names, categories, and remarks"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of funds to return, max 50"`
}

type fundsListOutput struct {
	Funds []domain.Fund `json:"funds"`
	Count int           `json:"count"`
}

type goalProjectInput struct {
	Category     string  `json:"category" jsonschema:"risk category: low, moderate, medium, or high"`
	Corpus       float64 `json:"corpus,omitempty" jsonschema:"starting lump sum in rupees"`
	MonthlySIP   float64 `json:"monthly_sip,omitempty" jsonschema:"monthly SIP contribution in rupees"`
	HorizonYears int     `json:"horizon_years" jsonschema:"investment horizon, 1 to 50 years"`
	Target       float64 `json:"target,omitempty" jsonschema:"optional target corpus; adds a years-to-target estimate to the result"`
}

type goalTargetOutput struct {
	Reachable bool `json:"reachable"`
	Years     int  `json:"years,omitempty"`
}

type goalProjectOutput struct {
	Projection goal.Projection   `json:"projection"`
	Target     *goalTargetOutput `json:"target,omitempty"`
}

func normalizeCategory(raw string) (domain.RiskCategory, error) {
	category, ok := domain.ParseRiskCategory(raw)
	if !ok {
		return "", fmt.Errorf("unknown risk category: %s", raw)
	}
	return category, nil
}

func normalizeDuration(raw string) (string, error) {
	duration, ok := domain.ParseDuration(raw)
	if !ok {
		return "", fmt.Errorf("unsupported duration: %s", raw)
	}
	return duration, nil
}

func normalizeRecommendRequest(in fundsRecommendInput) (domain.RecommendationRequest, error) {
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return domain.RecommendationRequest{}, err
	}
	if in.Amount < domain.MinInvestmentAmount {
		return domain.RecommendationRequest{}, fmt.Errorf("amount must be at least %d", domain.MinInvestmentAmount)
	}
	duration, err := normalizeDuration(in.Duration)
	if err != nil {
		return domain.RecommendationRequest{}, err
	}
	return domain.RecommendationRequest{
		RiskCategory: category,
		Amount:       in.Amount,
		Duration:     duration,
	}, nil
}

func normalizeRecommendLimit(limit int) int {
	if limit <= 0 {
		return domain.DefaultDisplayCount
	}
	if limit > domain.MaxDisplayCount {
		return domain.MaxDisplayCount
	}
	return limit
}

func normalizeSearchLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

// normalizeGoalInput applies the planner's validation rules at the tool
// boundary so rejections read as input errors rather than internal ones.
func normalizeGoalInput(in goalProjectInput) (domain.RiskCategory, error) {
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return "", err
	}
	if in.Corpus < 0 || in.MonthlySIP < 0 {
		return "", fmt.Errorf("corpus and monthly sip must be non-negative")
	}
	if in.Corpus == 0 && in.MonthlySIP == 0 {
		return "", fmt.Errorf("either corpus or monthly sip must be positive")
	}
	if in.HorizonYears < goal.MinHorizonYears || in.HorizonYears > goal.MaxHorizonYears {
		return "", fmt.Errorf("horizon must be between %d and %d years", goal.MinHorizonYears, goal.MaxHorizonYears)
	}
	return category, nil
}
