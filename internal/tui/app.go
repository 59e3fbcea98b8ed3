package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab represents a screen tab in the TUI.
type Tab int

const (
	TabOverview Tab = iota
	TabRegistrations
	TabFunds
	TabGoals
)

var tabNames = []string{"1:Overview", "2:Registrations", "3:Funds", "4:Goals"}

// AppModel is the root Bubble Tea model that manages tab navigation and child screens.
type AppModel struct {
	services      Services
	activeTab     Tab
	overview      OverviewModel
	registrations RegistrationsModel
	funds         FundsModel
	goals         GoalsModel
	width         int
	height        int
	quitting      bool
}

// NewAppModel creates the root application model with all child screens.
func NewAppModel(svc Services) AppModel {
	return AppModel{
		services:      svc,
		activeTab:     TabOverview,
		overview:      NewOverviewModel(svc),
		registrations: NewRegistrationsModel(svc),
		funds:         NewFundsModel(svc),
		goals:         NewGoalsModel(svc),
	}
}

// Init initializes all child models.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.overview.Init(),
		m.registrations.Init(),
		m.funds.Init(),
		m.goals.Init(),
	)
}

// Update handles incoming messages, routing to the active tab.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.propagateSize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, DefaultKeyMap.Tab):
			m.activeTab = Tab((int(m.activeTab) + 1) % len(tabNames))
			return m, nil

		case key.Matches(msg, DefaultKeyMap.ShiftTab):
			next := int(m.activeTab) - 1
			if next < 0 {
				next = len(tabNames) - 1
			}
			m.activeTab = Tab(next)
			return m, nil

		case msg.String() == "1":
			m.activeTab = TabOverview
			return m, nil
		case msg.String() == "2":
			m.activeTab = TabRegistrations
			return m, nil
		case msg.String() == "3":
			m.activeTab = TabFunds
			return m, nil
		case msg.String() == "4":
			m.activeTab = TabGoals
			return m, nil
		}
	}

	// Route messages to all child models (they filter relevant ones)
	var cmds []tea.Cmd

	switch msg.(type) {
	case overviewMsg, overviewErrMsg, catalogStatusMsg, overviewTickMsg:
		var cmd tea.Cmd
		m.overview, cmd = m.overview.Update(msg)
		cmds = append(cmds, cmd)

	case registrationsMsg, registrationsErrMsg:
		var cmd tea.Cmd
		m.registrations, cmd = m.registrations.Update(msg)
		cmds = append(cmds, cmd)

	case fundsMsg, fundsErrMsg:
		var cmd tea.Cmd
		m.funds, cmd = m.funds.Update(msg)
		cmds = append(cmds, cmd)

	case goalsMsg, goalsErrMsg:
		var cmd tea.Cmd
		m.goals, cmd = m.goals.Update(msg)
		cmds = append(cmds, cmd)

	default:
		// Route keyboard and other messages to active tab only
		switch m.activeTab {
		case TabOverview:
			var cmd tea.Cmd
			m.overview, cmd = m.overview.Update(msg)
			cmds = append(cmds, cmd)
		case TabRegistrations:
			var cmd tea.Cmd
			m.registrations, cmd = m.registrations.Update(msg)
			cmds = append(cmds, cmd)
		case TabFunds:
			var cmd tea.Cmd
			m.funds, cmd = m.funds.Update(msg)
			cmds = append(cmds, cmd)
		case TabGoals:
			var cmd tea.Cmd
			m.goals, cmd = m.goals.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the tab bar and active screen.
func (m AppModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	tabBar := m.renderTabBar()

	var content string
	switch m.activeTab {
	case TabOverview:
		content = m.overview.View()
	case TabRegistrations:
		content = m.registrations.View()
	case TabFunds:
		content = m.funds.View()
	case TabGoals:
		content = m.goals.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content)
}

// SetSize updates dimensions on the root model and propagates to children.
func (m *AppModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.propagateSize()
}

// ActiveTab returns the currently active tab (for testing).
func (m AppModel) ActiveTab() Tab { return m.activeTab }

func (m *AppModel) propagateSize() {
	contentHeight := m.height - 2 // account for tab bar
	m.overview.SetSize(m.width, contentHeight)
	m.registrations.SetSize(m.width, contentHeight)
	m.funds.SetSize(m.width, contentHeight)
	m.goals.SetSize(m.width, contentHeight)
}

func (m AppModel) renderTabBar() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(name))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.services.Username != "" {
		bar = lipgloss.JoinHorizontal(lipgloss.Top, bar, SubtextStyle.Render("  "+m.services.Username))
	}
	return bar
}
