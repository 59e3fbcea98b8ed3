package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/format"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Goals message types.
type goalsMsg domain.GoalsAnalytics
type goalsErrMsg struct{ err error }

var (
	goalStatusOrder     = []string{domain.GoalStatusSaved, domain.GoalStatusEmailSent, domain.GoalStatusRevisited}
	goalConfidenceOrder = []string{"High", "Medium", "Low"}
)

// GoalsModel is the Bubble Tea model for the goal analytics screen.
type GoalsModel struct {
	services  Services
	analytics domain.GoalsAnalytics
	loading   bool
	err       error
	width     int
	height    int
}

// NewGoalsModel creates a new goal analytics model.
func NewGoalsModel(svc Services) GoalsModel {
	return GoalsModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial fetch.
func (m GoalsModel) Init() tea.Cmd {
	return m.fetchGoalsCmd()
}

// Update handles incoming messages.
func (m GoalsModel) Update(msg tea.Msg) (GoalsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case goalsMsg:
		m.analytics = domain.GoalsAnalytics(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case goalsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Refresh) {
			m.loading = true
			return m, m.fetchGoalsCmd()
		}
	}

	return m, nil
}

// View renders the goal analytics screen.
func (m GoalsModel) View() string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("  Goal Analytics"))
	sections = append(sections, "")

	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Loading goal analytics..."))
		return strings.Join(sections, "\n")
	}

	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	a := m.analytics
	if a.TotalGoals == 0 {
		sections = append(sections, SubtextStyle.Render("  No goals saved yet."))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, fmt.Sprintf("  Saved goals: %d", a.TotalGoals))
	sections = append(sections, "")
	sections = append(sections, HeaderStyle.Render("  Averages"))
	sections = append(sections, fmt.Sprintf("  Corpus %s   SIP %s/mo   Horizon %.1f yr   Projected %s",
		format.Currency(a.AvgCorpus),
		format.Currency(a.AvgMonthlySIP),
		a.AvgHorizonYrs,
		format.Currency(a.AvgExpected),
	))

	barWidth := m.barWidth()

	sections = append(sections, "")
	sections = append(sections, HeaderStyle.Render("  By Status"))
	max := maxCount(a.ByStatus)
	for _, status := range goalStatusOrder {
		sections = append(sections, "  "+RenderCountBar(status, a.ByStatus[status], max, barWidth))
	}

	sections = append(sections, "")
	sections = append(sections, HeaderStyle.Render("  By Confidence"))
	max = maxCount(a.ByConfidence)
	for _, level := range goalConfidenceOrder {
		sections = append(sections, "  "+RenderCountBar(level, a.ByConfidence[level], max, barWidth))
	}

	sections = append(sections, "")
	sections = append(sections, HeaderStyle.Render("  By Risk Category"))
	max = maxCount(a.ByRiskCategory)
	for _, cat := range riskMixOrder {
		sections = append(sections, "  "+RenderCountBar(shortCategory(cat), a.ByRiskCategory[string(cat)], max, barWidth))
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [R] refresh"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *GoalsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// HasData reports whether any analytics are loaded (for testing).
func (m GoalsModel) HasData() bool { return m.analytics.TotalGoals > 0 }

func (m GoalsModel) barWidth() int {
	w := m.width/3 - 5
	if w < 10 {
		w = 10
	}
	if w > 30 {
		w = 30
	}
	return w
}

func (m GoalsModel) fetchGoalsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Admin == nil {
			return goalsErrMsg{err: fmt.Errorf("admin service not available")}
		}
		analytics, err := m.services.Admin.GoalsAnalytics(context.Background())
		if err != nil {
			return goalsErrMsg{err: err}
		}
		return goalsMsg(analytics)
	}
}

func maxCount(counts map[string]int) int {
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	return max
}
