package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/scaryPonens/fundadvisor/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Registrations message types.
type registrationsMsg []domain.Registration
type registrationsErrMsg struct{ err error }

const registrationFetchLimit = 50

var stageOptions = []string{"ALL", "COMPLETED", "VIEWED", "DROPPED"}

// RegistrationsModel is the Bubble Tea model for the registrations screen.
// Filters narrow the fetched slice locally; only refresh hits the store.
type RegistrationsModel struct {
	services     Services
	regs         []domain.Registration
	stageIdx     int
	categoryIdx  int
	scrollOffset int
	loading      bool
	err          error
	width        int
	height       int
}

// NewRegistrationsModel creates a new registrations model.
func NewRegistrationsModel(svc Services) RegistrationsModel {
	return RegistrationsModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial fetch.
func (m RegistrationsModel) Init() tea.Cmd {
	return m.fetchRegistrationsCmd()
}

// Update handles incoming messages.
func (m RegistrationsModel) Update(msg tea.Msg) (RegistrationsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registrationsMsg:
		m.regs = []domain.Registration(msg)
		m.loading = false
		m.scrollOffset = 0
		m.err = nil
		return m, nil

	case registrationsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.FilterStage):
			m.stageIdx = (m.stageIdx + 1) % len(stageOptions)
			m.scrollOffset = 0
			return m, nil

		case key.Matches(msg, DefaultKeyMap.FilterCategory):
			m.categoryIdx = (m.categoryIdx + 1) % len(categoryOptions)
			m.scrollOffset = 0
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchRegistrationsCmd()

		case msg.String() == "j" || msg.String() == "down":
			maxVisible := m.visibleRows()
			if m.scrollOffset < len(m.filtered())-maxVisible {
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

// View renders the registrations screen.
func (m RegistrationsModel) View() string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("  Latest Registrations"))
	sections = append(sections, "")
	sections = append(sections, m.renderFilters())
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", m.width-2)))

	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Loading..."))
		return strings.Join(sections, "\n")
	}

	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	regs := m.filtered()
	if len(regs) == 0 {
		sections = append(sections, SubtextStyle.Render("  No registrations match the current filters"))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, SubtextStyle.Render(
		fmt.Sprintf("  %-6s %-30s %-14s %-8s %s %s  %s",
			"ID", "Email", "Country", "Risk", "Q", "V", "Registered"),
	))

	maxVisible := m.visibleRows()
	end := m.scrollOffset + maxVisible
	if end > len(regs) {
		end = len(regs)
	}

	for i := m.scrollOffset; i < end; i++ {
		sections = append(sections, "  "+FormatRegistration(regs[i]))
	}

	if len(regs) > maxVisible {
		sections = append(sections, SubtextStyle.Render(
			fmt.Sprintf("  Showing %d-%d of %d (j/k to scroll)", m.scrollOffset+1, end, len(regs)),
		))
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [f] stage  [c] category  [R] refresh  [j/k] scroll"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *RegistrationsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// FilterState returns current filter indices (for testing).
func (m RegistrationsModel) FilterState() (stageIdx, categoryIdx int) {
	return m.stageIdx, m.categoryIdx
}

// Count returns the number of fetched registrations (for testing).
func (m RegistrationsModel) Count() int { return len(m.regs) }

// VisibleCount returns the number of registrations passing the filters
// (for testing).
func (m RegistrationsModel) VisibleCount() int { return len(m.filtered()) }

func (m RegistrationsModel) renderFilters() string {
	stageChip := m.renderChip("Stage", stageOptions, m.stageIdx)
	catChip := m.renderChip("Risk", categoryOptions, m.categoryIdx)
	return "  " + lipgloss.JoinHorizontal(lipgloss.Top, stageChip, "  ", catChip)
}

func (m RegistrationsModel) renderChip(label string, options []string, active int) string {
	var parts []string
	parts = append(parts, SubtextStyle.Render(label+": "))
	for i, opt := range options {
		display := strings.ToUpper(opt)
		if len(display) > 9 {
			display = display[:9]
		}
		if i == active {
			parts = append(parts, ActiveTabStyle.Render(display))
		} else {
			parts = append(parts, SubtextStyle.Render(display))
		}
		parts = append(parts, " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m RegistrationsModel) filtered() []domain.Registration {
	var out []domain.Registration
	for _, r := range m.regs {
		if m.matchStage(r) && m.matchCategory(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m RegistrationsModel) matchStage(r domain.Registration) bool {
	switch stageOptions[m.stageIdx] {
	case "COMPLETED":
		return r.QuestionnaireCompleted
	case "VIEWED":
		return r.RecommendationsViewed
	case "DROPPED":
		return !r.QuestionnaireCompleted
	default:
		return true
	}
}

func (m RegistrationsModel) matchCategory(r domain.Registration) bool {
	if m.categoryIdx == 0 {
		return true
	}
	want, ok := domain.ParseRiskCategory(categoryOptions[m.categoryIdx])
	if !ok {
		return true
	}
	return r.RiskCategory == want
}

func (m RegistrationsModel) fetchRegistrationsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Admin == nil {
			return registrationsErrMsg{err: fmt.Errorf("admin service not available")}
		}
		regs, err := m.services.Admin.LatestRegistrations(context.Background(), registrationFetchLimit)
		if err != nil {
			return registrationsErrMsg{err: err}
		}
		return registrationsMsg(regs)
	}
}

func (m RegistrationsModel) visibleRows() int {
	// Account for header, filters, table header, help footer
	available := m.height - 10
	if available < 5 {
		return 5
	}
	return available
}
