package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRegistrationLimit = 50
	maxRegistrationLimit     = 500
)

type AdminStore interface {
	Overview(ctx context.Context) (domain.OverviewMetrics, error)
	LatestRegistrations(ctx context.Context, limit int) ([]domain.Registration, error)
	ExportRegistrationsCSV(ctx context.Context, w io.Writer) error
	GoalsAnalytics(ctx context.Context) (domain.GoalsAnalytics, error)
	ExportGoalsCSV(ctx context.Context, w io.Writer) error
}

// CatalogStatus describes the loaded dataset for the ops surfaces.
type CatalogStatus struct {
	FundCount    int       `json:"fund_count"`
	SkippedRows  int       `json:"skipped_rows"`
	LoadedAt     time.Time `json:"loaded_at"`
	NewestUpdate time.Time `json:"newest_update"`
	DataAgeDays  int       `json:"data_age_days"`
	Stale        bool      `json:"stale"`
}

type AdminService struct {
	tracer      trace.Tracer
	store       AdminStore
	catalog     CatalogHandle
	anomalyOpts catalog.AnomalyOptions
}

func NewAdminService(
	tracer trace.Tracer,
	store AdminStore,
	catalogHandle CatalogHandle,
	anomalyOpts catalog.AnomalyOptions,
) *AdminService {
	return &AdminService{
		tracer:      tracer,
		store:       store,
		catalog:     catalogHandle,
		anomalyOpts: anomalyOpts,
	}
}

func (s *AdminService) Overview(ctx context.Context) (domain.OverviewMetrics, error) {
	_, span := s.tracer.Start(ctx, "admin-service.overview")
	defer span.End()

	if s.store == nil {
		return domain.OverviewMetrics{}, fmt.Errorf("admin service is not fully initialized")
	}
	return s.store.Overview(ctx)
}

func (s *AdminService) LatestRegistrations(ctx context.Context, limit int) ([]domain.Registration, error) {
	_, span := s.tracer.Start(ctx, "admin-service.latest-registrations")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("admin service is not fully initialized")
	}
	if limit <= 0 {
		limit = defaultRegistrationLimit
	}
	if limit > maxRegistrationLimit {
		limit = maxRegistrationLimit
	}
	return s.store.LatestRegistrations(ctx, limit)
}

func (s *AdminService) ExportRegistrations(ctx context.Context, w io.Writer) error {
	_, span := s.tracer.Start(ctx, "admin-service.export-registrations")
	defer span.End()

	if s.store == nil {
		return fmt.Errorf("admin service is not fully initialized")
	}
	return s.store.ExportRegistrationsCSV(ctx, w)
}

func (s *AdminService) GoalsAnalytics(ctx context.Context) (domain.GoalsAnalytics, error) {
	_, span := s.tracer.Start(ctx, "admin-service.goals-analytics")
	defer span.End()

	if s.store == nil {
		return domain.GoalsAnalytics{}, fmt.Errorf("admin service is not fully initialized")
	}
	return s.store.GoalsAnalytics(ctx)
}

func (s *AdminService) ExportGoals(ctx context.Context, w io.Writer) error {
	_, span := s.tracer.Start(ctx, "admin-service.export-goals")
	defer span.End()

	if s.store == nil {
		return fmt.Errorf("admin service is not fully initialized")
	}
	return s.store.ExportGoalsCSV(ctx, w)
}

// CatalogAnomalies scores the loaded dataset with an isolation forest and
// returns rows above the anomaly threshold.
func (s *AdminService) CatalogAnomalies(ctx context.Context) ([]catalog.Anomaly, error) {
	_, span := s.tracer.Start(ctx, "admin-service.catalog-anomalies")
	defer span.End()

	if s.catalog == nil {
		return nil, fmt.Errorf("admin service is not fully initialized")
	}
	return s.catalog.Snapshot().Anomalies(s.anomalyOpts)
}

func (s *AdminService) CatalogStatus(ctx context.Context) (CatalogStatus, error) {
	_, span := s.tracer.Start(ctx, "admin-service.catalog-status")
	defer span.End()

	if s.catalog == nil {
		return CatalogStatus{}, fmt.Errorf("admin service is not fully initialized")
	}

	snap := s.catalog.Snapshot()
	newest := snap.NewestUpdate()
	age := 0
	if !newest.IsZero() {
		if d := int(time.Now().UTC().Sub(newest).Hours() / 24); d > 0 {
			age = d
		}
	}
	return CatalogStatus{
		FundCount:    snap.Len(),
		SkippedRows:  snap.SkippedRows(),
		LoadedAt:     snap.LoadedAt(),
		NewestUpdate: newest,
		DataAgeDays:  age,
		Stale:        domain.ClassifyFreshness(age) == domain.FreshnessStale,
	}, nil
}
