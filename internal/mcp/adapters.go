package mcp

import (
	"context"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/service"
)

// AdvisorClient exposes the risk and recommendation flows served to MCP
// clients.
type AdvisorClient interface {
	ScoreAnswers(ctx context.Context, answers []int) (service.RiskAssessment, error)
	QuickAssess(ctx context.Context, profile string) (service.RiskAssessment, error)
	Recommendations(ctx context.Context, token string, req domain.RecommendationRequest, limit, offset int) (service.RecommendationPage, error)
	SearchFunds(ctx context.Context, query string, limit int) ([]domain.Fund, error)
}

// CatalogReader exposes the current fund snapshot for resource reads.
type CatalogReader interface {
	Snapshot() *catalog.Catalog
}
