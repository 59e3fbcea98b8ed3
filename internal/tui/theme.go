package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tab bar styles
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	// Return colors
	ReturnUpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	ReturnDownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	ReturnFlatStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// Risk category colors
	CategoryLowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	CategoryModerateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))
	CategoryMediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	CategoryHighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	// Dataset freshness colors
	FreshRecentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	FreshModerateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	FreshStaleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)

	// Funnel stage markers
	StageDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	StagePendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// General styles
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	// Bar chart colors
	BarStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	FunnelGoodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	FunnelOkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	FunnelBadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)
