package tui

import (
	"strings"
	"testing"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

func TestGoalsInitialState(t *testing.T) {
	m := NewGoalsModel(testServices(t))
	if m.HasData() {
		t.Fatal("expected no data initially")
	}
}

func TestGoalsUpdateAnalytics(t *testing.T) {
	m := NewGoalsModel(testServices(t))
	m.SetSize(120, 40)

	analytics := domain.GoalsAnalytics{
		TotalGoals:    12,
		ByStatus:      map[string]int{domain.GoalStatusSaved: 8, domain.GoalStatusEmailSent: 4},
		ByConfidence:  map[string]int{"High": 5, "Medium": 7},
		AvgCorpus:     250000,
		AvgMonthlySIP: 8000,
		AvgHorizonYrs: 7.5,
		AvgExpected:   1200000,
	}

	updated, _ := m.Update(goalsMsg(analytics))
	if !updated.HasData() {
		t.Fatal("expected data after analytics update")
	}
	if updated.loading {
		t.Fatal("expected loading to clear")
	}
}

func TestGoalsViewEmpty(t *testing.T) {
	m := NewGoalsModel(testServices(t))
	m.SetSize(120, 40)
	m.loading = false

	view := m.View()
	if view == "" {
		t.Fatal("expected non-empty view")
	}
}

func TestGoalsViewWithData(t *testing.T) {
	m := NewGoalsModel(testServices(t))
	m.SetSize(120, 40)
	m.loading = false
	m.analytics = domain.GoalsAnalytics{
		TotalGoals:    3,
		ByStatus:      map[string]int{domain.GoalStatusSaved: 3},
		ByConfidence:  map[string]int{"Medium": 3},
		AvgCorpus:     100000,
		AvgMonthlySIP: 5000,
		AvgHorizonYrs: 10,
		AvgExpected:   2000000,
	}

	view := m.View()
	if !strings.Contains(view, "Saved goals: 3") {
		t.Fatal("expected goal count in the view")
	}
	if !strings.Contains(view, "By Confidence") {
		t.Fatal("expected confidence section in the view")
	}
}
