package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Funds message types.
type fundsMsg []domain.Fund
type fundsErrMsg struct{ err error }

var categoryOptions = []string{"ALL", "Low", "Moderate", "Medium", "High"}

// FundsModel is the Bubble Tea model for the fund catalog screen.
type FundsModel struct {
	services     Services
	funds        []domain.Fund
	categoryIdx  int
	scrollOffset int
	loading      bool
	err          error
	width        int
	height       int
}

// NewFundsModel creates a new fund catalog model.
func NewFundsModel(svc Services) FundsModel {
	return FundsModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial snapshot read.
func (m FundsModel) Init() tea.Cmd {
	return m.fetchFundsCmd()
}

// Update handles incoming messages.
func (m FundsModel) Update(msg tea.Msg) (FundsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case fundsMsg:
		m.funds = []domain.Fund(msg)
		m.loading = false
		m.scrollOffset = 0
		m.err = nil
		return m, nil

	case fundsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.FilterCategory):
			m.categoryIdx = (m.categoryIdx + 1) % len(categoryOptions)
			m.loading = true
			return m, m.fetchFundsCmd()

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchFundsCmd()

		case msg.String() == "j" || msg.String() == "down":
			maxVisible := m.visibleRows()
			if m.scrollOffset < len(m.funds)-maxVisible {
				m.scrollOffset++
			}
			return m, nil

		case msg.String() == "k" || msg.String() == "up":
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the fund catalog screen.
func (m FundsModel) View() string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("  Fund Catalog"))
	sections = append(sections, "")
	sections = append(sections, "  "+m.renderCategoryChip())
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", m.width-2)))

	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Loading..."))
		return strings.Join(sections, "\n")
	}

	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	if len(m.funds) == 0 {
		sections = append(sections, SubtextStyle.Render("  No funds in this category"))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, SubtextStyle.Render(
		fmt.Sprintf("  %2s %-32s %-14s %-8s %6s %2s %12s  %s",
			"#", "Fund", "Category", "Risk", "3Y", "★", "AUM", "Age"),
	))

	now := time.Now()
	maxVisible := m.visibleRows()
	end := m.scrollOffset + maxVisible
	if end > len(m.funds) {
		end = len(m.funds)
	}

	for i := m.scrollOffset; i < end; i++ {
		sections = append(sections, "  "+FormatFund(m.funds[i], now))
	}

	if len(m.funds) > maxVisible {
		sections = append(sections, SubtextStyle.Render(
			fmt.Sprintf("  Showing %d-%d of %d (j/k to scroll)", m.scrollOffset+1, end, len(m.funds)),
		))
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [c] category  [R] refresh  [j/k] scroll"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *FundsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// CategoryIndex returns the active category filter index (for testing).
func (m FundsModel) CategoryIndex() int { return m.categoryIdx }

// FundCount returns the number of loaded funds (for testing).
func (m FundsModel) FundCount() int { return len(m.funds) }

func (m FundsModel) renderCategoryChip() string {
	var parts []string
	parts = append(parts, SubtextStyle.Render("Risk: "))
	for i, opt := range categoryOptions {
		display := strings.ToUpper(opt)
		if i == m.categoryIdx {
			parts = append(parts, ActiveTabStyle.Render(display))
		} else {
			parts = append(parts, SubtextStyle.Render(display))
		}
		parts = append(parts, " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m FundsModel) fetchFundsCmd() tea.Cmd {
	category := categoryOptions[m.categoryIdx]
	return func() tea.Msg {
		if m.services.Catalog == nil {
			return fundsErrMsg{err: fmt.Errorf("fund catalog not available")}
		}
		snap := m.services.Catalog.Snapshot()
		if snap == nil {
			return fundsErrMsg{err: fmt.Errorf("fund catalog not loaded")}
		}

		funds := snap.Funds()
		if want, ok := domain.ParseRiskCategory(category); ok {
			kept := make([]domain.Fund, 0, len(funds))
			for _, f := range funds {
				if f.RiskProfile == want {
					kept = append(kept, f)
				}
			}
			funds = kept
		}
		return fundsMsg(funds)
	}
}

func (m FundsModel) visibleRows() int {
	// Account for header, chip, table header, help footer
	available := m.height - 10
	if available < 5 {
		return 5
	}
	return available
}
