package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Define common styles
var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			PaddingLeft(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Layout arranges the stats panel and results table side by side above the
// event console
type Layout struct {
	stats   *StatsPanel
	results *ResultsTable
	console *EventConsole
	width   int
	height  int
}

// NewLayout creates and initializes a new layout with all panels
func NewLayout() *Layout {
	return &Layout{
		stats:   NewStatsPanel(),
		results: NewResultsTable(),
		console: NewEventConsole(),
	}
}

// SetSize adjusts the layout and all components to the given dimensions
func (l *Layout) SetSize(width, height int) {
	l.width = width
	l.height = height

	halfWidth := width / 2
	topHeight := height * 2 / 3

	l.stats.SetSize(halfWidth, topHeight)
	l.results.SetSize(width-halfWidth, topHeight)
	l.console.SetSize(width, height-topHeight)
}

// Init starts the stats panel spinner
func (l *Layout) Init() tea.Cmd {
	return l.stats.Init()
}

// Update forwards msg to every panel
func (l *Layout) Update(msg tea.Msg) tea.Cmd {
	return tea.Batch(
		l.stats.Update(msg),
		l.results.Update(msg),
		l.console.Update(msg),
	)
}

// View renders the panels
func (l *Layout) View() string {
	top := lipgloss.JoinHorizontal(lipgloss.Top, l.stats.View(), l.results.View())
	return lipgloss.JoinVertical(lipgloss.Left, top, l.console.View())
}
