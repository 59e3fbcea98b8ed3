package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/risk"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type riskBand struct {
	Category     domain.RiskCategory `json:"category"`
	BandLow      int                 `json:"band_low"`
	BandHigh     int                 `json:"band_high"`
	Conservative float64             `json:"conservative_return"`
	Expected     float64             `json:"expected_return"`
	BestCase     float64             `json:"best_case_return"`
	Volatility   float64             `json:"volatility"`
}

func riskBands() []riskBand {
	categories := []domain.RiskCategory{
		domain.CategoryLow,
		domain.CategoryModerate,
		domain.CategoryMedium,
		domain.CategoryHigh,
	}
	out := make([]riskBand, 0, len(categories))
	for _, c := range categories {
		lo, hi, _ := risk.BandFor(c)
		returns := domain.ReturnsFor(c)
		out = append(out, riskBand{
			Category:     c,
			BandLow:      lo,
			BandHigh:     hi,
			Conservative: returns.Conservative,
			Expected:     returns.Expected,
			BestCase:     returns.BestCase,
			Volatility:   domain.VolatilityFor(c),
		})
	}
	return out
}

func registerResources(server *mcp.Server, advisor AdvisorClient, funds CatalogReader) {
	server.AddResource(&mcp.Resource{
		URI:         "advisor://questionnaire",
		Name:        "questionnaire",
		Description: "The risk questionnaire with per-option scoring weights",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, risk.Questionnaire())
	})

	server.AddResource(&mcp.Resource{
		URI:         "advisor://risk-bands",
		Name:        "risk-bands",
		Description: "Score bands and assumed returns for each risk category",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, riskBands())
	})

	server.AddResource(&mcp.Resource{
		URI:         "catalog://funds",
		Name:        "funds",
		Description: "Every fund in the current catalog snapshot",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		if funds == nil {
			return nil, fmt.Errorf("fund catalog unavailable")
		}
		snap := funds.Snapshot()
		return jsonResource(req.Params.URI, fundsListOutput{Funds: snap.Funds(), Count: snap.Len()})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "catalog://funds/{category}",
		Name:        "funds-by-category",
		Description: "Funds whose risk profile matches a category: low, moderate, medium, or high",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		if funds == nil {
			return nil, fmt.Errorf("fund catalog unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "catalog" || parsed.Host != "funds" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		category, err := normalizeCategory(strings.Trim(strings.TrimSpace(parsed.Path), "/"))
		if err != nil {
			return nil, err
		}

		var matches []domain.Fund
		for _, f := range funds.Snapshot().Funds() {
			if f.RiskProfile == category {
				matches = append(matches, f)
			}
		}
		return jsonResource(req.Params.URI, fundsListOutput{Funds: matches, Count: len(matches)})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "catalog://search{?q,limit}",
		Name:        "funds-search",
		Description: "Full-text fund search; q is the query, limit caps the result count",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if advisor == nil {
			return nil, fmt.Errorf("advisor service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "catalog" || parsed.Host != "search" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		limit := defaultSearchLimit
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			limit = normalizeSearchLimit(n)
		}

		results, err := advisor.SearchFunds(ctx, parsed.Query().Get("q"), limit)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, fundsListOutput{Funds: results, Count: len(results)})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "advisor://recommendations{?category,amount,duration,limit}",
		Name:        "recommendations",
		Description: "Ranked funds for a category, amount, and duration query",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if advisor == nil {
			return nil, fmt.Errorf("advisor service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "advisor" || parsed.Host != "recommendations" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		input := fundsRecommendInput{
			Category: parsed.Query().Get("category"),
			Duration: parsed.Query().Get("duration"),
		}
		if rawAmount := strings.TrimSpace(parsed.Query().Get("amount")); rawAmount != "" {
			n, err := strconv.ParseInt(rawAmount, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid amount: %s", rawAmount)
			}
			input.Amount = n
		}
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			input.Limit = n
		}

		recReq, err := normalizeRecommendRequest(input)
		if err != nil {
			return nil, err
		}
		page, err := advisor.Recommendations(ctx, "", recReq, normalizeRecommendLimit(input.Limit), 0)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, fundsRecommendOutput{Recommendations: page.Recommendations, Total: page.Total})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
