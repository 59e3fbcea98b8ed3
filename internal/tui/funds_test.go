package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFundsCategoryCycling(t *testing.T) {
	m := NewFundsModel(testServices(t))
	m.SetSize(120, 40)

	if m.CategoryIndex() != 0 {
		t.Fatalf("expected category index 0, got %d", m.CategoryIndex())
	}

	// Press 'c' to cycle the category filter
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if updated.CategoryIndex() != 1 {
		t.Fatalf("expected category index 1 after pressing c, got %d", updated.CategoryIndex())
	}
	if cmd == nil {
		t.Fatal("expected a refetch command after the filter change")
	}
}

func TestFundsFetchAll(t *testing.T) {
	m := NewFundsModel(testServices(t))
	m.SetSize(120, 40)

	msg := m.fetchFundsCmd()()
	updated, _ := m.Update(msg)
	if updated.FundCount() != 2 {
		t.Fatalf("expected 2 funds from the snapshot, got %d", updated.FundCount())
	}
}

func TestFundsFetchFiltered(t *testing.T) {
	m := NewFundsModel(testServices(t))
	m.SetSize(120, 40)
	m.categoryIdx = 4 // High

	msg := m.fetchFundsCmd()()
	updated, _ := m.Update(msg)
	if updated.FundCount() != 1 {
		t.Fatalf("expected 1 high-risk fund, got %d", updated.FundCount())
	}
}

func TestFundsFetchWithoutCatalog(t *testing.T) {
	m := NewFundsModel(Services{})
	m.SetSize(120, 40)

	msg := m.fetchFundsCmd()()
	updated, _ := m.Update(msg)
	if updated.err == nil {
		t.Fatal("expected an error without a catalog")
	}
}

func TestFundsViewWithData(t *testing.T) {
	m := NewFundsModel(testServices(t))
	m.SetSize(120, 40)
	m.loading = false
	m.funds = []domain.Fund{{
		Rank:        1,
		Name:        "Quantum Momentum Fund",
		Category:    "Mid Cap",
		RiskProfile: domain.CategoryHigh,
		Return3Y:    18,
		Rating:      5,
		AUMCr:       1200,
		LastUpdated: time.Now().AddDate(0, 0, -1),
	}}

	view := m.View()
	if !strings.Contains(view, "Quantum Momentum Fund") {
		t.Fatal("expected fund row in the view")
	}
}

func TestFundsScrolling(t *testing.T) {
	m := NewFundsModel(testServices(t))
	m.SetSize(120, 20)
	m.loading = false

	for i := 0; i < 50; i++ {
		m.funds = append(m.funds, domain.Fund{
			Rank:        i + 1,
			Name:        "Fund",
			RiskProfile: domain.CategoryMedium,
		})
	}

	// Scroll down
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if updated.scrollOffset != 1 {
		t.Fatalf("expected scroll offset 1, got %d", updated.scrollOffset)
	}

	// Scroll up
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if updated.scrollOffset != 0 {
		t.Fatalf("expected scroll offset 0, got %d", updated.scrollOffset)
	}
}
