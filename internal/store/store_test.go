package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "advisor.db")
	s, err := Open(path, trace.NewNoopTracerProvider().Tracer("store-test"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRegistration(email, city, country string, cat domain.RiskCategory, created time.Time) domain.Registration {
	return domain.Registration{
		Name:                   "Test User",
		Email:                  email,
		City:                   city,
		Country:                country,
		Consent:                true,
		ConsentTS:              created,
		QuestionnaireCompleted: true,
		RiskScore:              27,
		RiskCategory:           cat,
		CreatedTS:              created,
	}
}

func TestSaveAndListRegistrations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)

	first, err := s.SaveRegistration(ctx, testRegistration("a@example.com", "Pune", "India", domain.CategoryMedium, base))
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := s.SaveRegistration(ctx, testRegistration("b@example.com", "Mumbai", "India", domain.CategoryHigh, base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first == second || first <= 0 {
		t.Fatalf("ids not assigned: %d, %d", first, second)
	}

	regs, err := s.LatestRegistrations(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(regs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(regs))
	}
	if regs[0].Email != "b@example.com" {
		t.Errorf("newest first expected, got %q", regs[0].Email)
	}

	got := regs[1]
	if got.ID != first || got.Name != "Test User" || got.City != "Pune" {
		t.Errorf("row mangled: %+v", got)
	}
	if !got.Consent || !got.QuestionnaireCompleted || got.RecommendationsViewed {
		t.Errorf("flags mangled: %+v", got)
	}
	if got.RiskScore != 27 || got.RiskCategory != domain.CategoryMedium {
		t.Errorf("risk fields mangled: %+v", got)
	}
	if !got.CreatedTS.Equal(base) {
		t.Errorf("created_ts = %v, want %v", got.CreatedTS, base)
	}
}

func TestMarkRecommendationsViewed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRegistration(ctx, testRegistration("c@example.com", "", "India", domain.CategoryLow, time.Now().UTC()))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.MarkRecommendationsViewed(ctx, id); err != nil {
		t.Fatalf("mark viewed: %v", err)
	}

	regs, err := s.LatestRegistrations(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !regs[0].RecommendationsViewed {
		t.Error("recommendations_viewed not set")
	}

	if err := s.MarkRecommendationsViewed(ctx, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestOverview(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)

	rows := []domain.Registration{
		testRegistration("a@example.com", "Pune", "India", domain.CategoryMedium, base),
		testRegistration("b@example.com", "Pune", "India", domain.CategoryHigh, base),
		testRegistration("b@example.com", "Dubai", "UAE", domain.CategoryHigh, base),
		testRegistration("d@example.com", "", "India", domain.CategoryLow, base),
	}
	var firstID int64
	for i, r := range rows {
		id, err := s.SaveRegistration(ctx, r)
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if i == 0 {
			firstID = id
		}
	}
	if err := s.MarkRecommendationsViewed(ctx, firstID); err != nil {
		t.Fatalf("mark viewed: %v", err)
	}

	m, err := s.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if m.TotalRegistrations != 4 || m.UniqueEmails != 3 {
		t.Errorf("counts = %d total / %d unique, want 4/3", m.TotalRegistrations, m.UniqueEmails)
	}
	if m.QuestionnaireCompleted != 4 || m.RecommendationsViewed != 1 {
		t.Errorf("funnel counts = %d completed / %d viewed", m.QuestionnaireCompleted, m.RecommendationsViewed)
	}
	// 3 unique emails of 4 completions, 1 view of 3 registered.
	if m.CompletionRatePct != 75.0 {
		t.Errorf("completion rate = %v, want 75.0", m.CompletionRatePct)
	}
	if m.ViewRatePct != 33.3 {
		t.Errorf("view rate = %v, want 33.3", m.ViewRatePct)
	}
	if m.ByCountry["India"] != 3 || m.ByCountry["UAE"] != 1 {
		t.Errorf("by country = %v", m.ByCountry)
	}
	if m.ByRiskCategory[string(domain.CategoryHigh)] != 2 {
		t.Errorf("by risk category = %v", m.ByRiskCategory)
	}
	if len(m.TopCities) == 0 || m.TopCities[0].City != "Pune" || m.TopCities[0].Count != 2 {
		t.Errorf("top cities = %+v", m.TopCities)
	}
	// Blank cities are excluded from the city table.
	for _, cc := range m.TopCities {
		if cc.City == "" {
			t.Error("blank city leaked into top cities")
		}
	}
}

func TestExportRegistrationsCSV(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveRegistration(ctx, testRegistration("a@example.com", "Pune", "India", domain.CategoryMedium, time.Now().UTC())); err != nil {
		t.Fatalf("save: %v", err)
	}

	var buf bytes.Buffer
	if err := s.ExportRegistrationsCSV(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,name,email") {
		t.Errorf("header wrong: %q", lines[0])
	}
	if !strings.Contains(lines[1], "a@example.com") {
		t.Errorf("row missing email: %q", lines[1])
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.db")
	tracer := trace.NewNoopTracerProvider().Tracer("store-test")

	s1, err := Open(path, tracer)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := s1.SaveRegistration(context.Background(), testRegistration("a@example.com", "", "India", domain.CategoryLow, time.Now().UTC())); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Second open re-runs migrations against the existing schema.
	s2, err := Open(path, tracer)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	regs, err := s2.LatestRegistrations(context.Background(), 10)
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(regs) != 1 {
		t.Errorf("expected the saved row to survive reopen, got %d", len(regs))
	}
}
