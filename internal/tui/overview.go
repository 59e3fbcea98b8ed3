package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/service"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Overview message types.
type overviewMsg domain.OverviewMetrics
type overviewErrMsg struct{ err error }
type catalogStatusMsg service.CatalogStatus
type overviewTickMsg time.Time

// Risk mix bars keep the questionnaire band order rather than the map order.
var riskMixOrder = []domain.RiskCategory{
	domain.CategoryLow,
	domain.CategoryModerate,
	domain.CategoryMedium,
	domain.CategoryHigh,
}

// OverviewModel is the Bubble Tea model for the funnel overview screen.
type OverviewModel struct {
	services   Services
	metrics    domain.OverviewMetrics
	status     service.CatalogStatus
	haveStatus bool
	loading    bool
	err        error
	width      int
	height     int
}

// NewOverviewModel creates a new overview model.
func NewOverviewModel(svc Services) OverviewModel {
	return OverviewModel{
		services: svc,
		loading:  true,
	}
}

// Init fires initial data fetch commands.
func (m OverviewModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchOverviewCmd(),
		m.fetchStatusCmd(),
		m.tickCmd(),
	)
}

// Update handles incoming messages.
func (m OverviewModel) Update(msg tea.Msg) (OverviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewMsg:
		m.metrics = domain.OverviewMetrics(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case overviewErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case catalogStatusMsg:
		m.status = service.CatalogStatus(msg)
		m.haveStatus = true
		return m, nil

	case overviewTickMsg:
		return m, tea.Batch(
			m.fetchOverviewCmd(),
			m.fetchStatusCmd(),
			m.tickCmd(),
		)

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Refresh) {
			m.loading = true
			return m, tea.Batch(m.fetchOverviewCmd(), m.fetchStatusCmd())
		}
	}

	return m, nil
}

// View renders the overview.
func (m OverviewModel) View() string {
	if m.loading && m.metrics.TotalRegistrations == 0 {
		return SubtextStyle.Render("Loading metrics...")
	}
	if m.err != nil && m.metrics.TotalRegistrations == 0 {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	leftWidth := m.width*2/3 - 2
	if leftWidth < 40 {
		leftWidth = 40
	}
	rightWidth := m.width - leftWidth - 4
	if rightWidth < 20 {
		rightWidth = 20
	}

	funnelBox := BorderStyle.Width(leftWidth).Render(m.renderFunnel())
	datasetBox := BorderStyle.Width(rightWidth).Render(m.renderDataset())
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, funnelBox, datasetBox)

	riskBox := BorderStyle.Width(leftWidth).Render(m.renderRiskMix())
	countryBox := BorderStyle.Width(rightWidth).Render(m.renderCountries())
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top, riskBox, countryBox)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow)
}

// SetSize updates the model dimensions.
func (m *OverviewModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Metrics returns the loaded metrics (for testing).
func (m OverviewModel) Metrics() domain.OverviewMetrics { return m.metrics }

// HaveStatus reports whether a dataset status has arrived (for testing).
func (m OverviewModel) HaveStatus() bool { return m.haveStatus }

func (m OverviewModel) renderFunnel() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Conversion Funnel"))
	lines = append(lines, "")

	total := m.metrics.TotalRegistrations
	if total == 0 {
		lines = append(lines, SubtextStyle.Render("  No registrations yet"))
		return strings.Join(lines, "\n")
	}

	barWidth := m.barWidth()
	lines = append(lines, "  "+RenderFunnelBar("Registered", total, total, barWidth))
	lines = append(lines, "  "+RenderFunnelBar("Questionnaire done", m.metrics.QuestionnaireCompleted, total, barWidth))
	lines = append(lines, "  "+RenderFunnelBar("Recommendations seen", m.metrics.RecommendationsViewed, total, barWidth))
	lines = append(lines, "")
	lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  Unique emails: %d", m.metrics.UniqueEmails)))

	return strings.Join(lines, "\n")
}

func (m OverviewModel) renderDataset() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Dataset"))
	lines = append(lines, "")

	if !m.haveStatus {
		lines = append(lines, SubtextStyle.Render("  Status unavailable"))
		return strings.Join(lines, "\n")
	}

	ageStyle := FreshRecentStyle
	switch domain.ClassifyFreshness(m.status.DataAgeDays) {
	case domain.FreshnessModerate:
		ageStyle = FreshModerateStyle
	case domain.FreshnessStale:
		ageStyle = FreshStaleStyle
	}

	lines = append(lines, fmt.Sprintf("  Funds loaded: %d", m.status.FundCount))
	lines = append(lines, fmt.Sprintf("  Skipped rows: %d", m.status.SkippedRows))
	if !m.status.NewestUpdate.IsZero() {
		lines = append(lines, fmt.Sprintf("  Newest row:   %s %s",
			m.status.NewestUpdate.Format("2006-01-02"),
			ageStyle.Render(fmt.Sprintf("(%dd old)", m.status.DataAgeDays)),
		))
	}
	if m.status.Stale {
		lines = append(lines, "")
		lines = append(lines, FreshStaleStyle.Render("  DATA STALE"))
	}

	return strings.Join(lines, "\n")
}

func (m OverviewModel) renderRiskMix() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Risk Mix"))
	lines = append(lines, "")

	max := 0
	for _, cat := range riskMixOrder {
		if n := m.metrics.ByRiskCategory[string(cat)]; n > max {
			max = n
		}
	}
	if max == 0 {
		lines = append(lines, SubtextStyle.Render("  No scored registrations yet"))
		return strings.Join(lines, "\n")
	}

	barWidth := m.barWidth()
	for _, cat := range riskMixOrder {
		count := m.metrics.ByRiskCategory[string(cat)]
		lines = append(lines, "  "+RenderCountBar(shortCategory(cat), count, max, barWidth))
	}

	return strings.Join(lines, "\n")
}

func (m OverviewModel) renderCountries() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Top Countries"))
	lines = append(lines, "")

	if len(m.metrics.ByCountry) == 0 {
		lines = append(lines, SubtextStyle.Render("  No data"))
		return strings.Join(lines, "\n")
	}

	type countryCount struct {
		name  string
		count int
	}
	all := make([]countryCount, 0, len(m.metrics.ByCountry))
	for name, count := range m.metrics.ByCountry {
		all = append(all, countryCount{name: name, count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].name < all[j].name
	})

	count := len(all)
	if count > 5 {
		count = 5
	}
	max := all[0].count
	for i := 0; i < count; i++ {
		label := all[i].name
		if label == "" {
			label = "(none)"
		}
		lines = append(lines, "  "+RenderCountBar(truncate(label, 10), all[i].count, max, 12))
	}

	return strings.Join(lines, "\n")
}

func (m OverviewModel) barWidth() int {
	w := m.width/3 - 5
	if w < 10 {
		w = 10
	}
	if w > 30 {
		w = 30
	}
	return w
}

func (m OverviewModel) fetchOverviewCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Admin == nil {
			return overviewErrMsg{err: fmt.Errorf("admin service not available")}
		}
		metrics, err := m.services.Admin.Overview(context.Background())
		if err != nil {
			return overviewErrMsg{err: err}
		}
		return overviewMsg(metrics)
	}
}

func (m OverviewModel) fetchStatusCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Admin == nil {
			return nil
		}
		status, err := m.services.Admin.CatalogStatus(context.Background())
		if err != nil {
			return nil // Non-critical
		}
		return catalogStatusMsg(status)
	}
}

func (m OverviewModel) tickCmd() tea.Cmd {
	return tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
		return overviewTickMsg(t)
	})
}
