package tui

import (
	"context"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/service"
)

// AdminQuerier provides funnel metrics and analytics to the TUI.
type AdminQuerier interface {
	Overview(ctx context.Context) (domain.OverviewMetrics, error)
	LatestRegistrations(ctx context.Context, limit int) ([]domain.Registration, error)
	GoalsAnalytics(ctx context.Context) (domain.GoalsAnalytics, error)
	CatalogStatus(ctx context.Context) (service.CatalogStatus, error)
}

// CatalogQuerier provides the loaded fund dataset to the TUI.
type CatalogQuerier interface {
	Snapshot() *catalog.Catalog
}

// Services bundles all service dependencies injected into the TUI.
type Services struct {
	Admin    AdminQuerier
	Catalog  CatalogQuerier
	Username string
}
