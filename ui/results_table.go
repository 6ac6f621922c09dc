package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
)

// ResultsTable lists finished pages in registry order
type ResultsTable struct {
	viewport    viewport.Model
	results     []crawler.PageResult
	width       int
	height      int
	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
	style       lipgloss.Style
}

// NewResultsTable creates a new results table
func NewResultsTable() *ResultsTable {
	t := &ResultsTable{
		results: make([]crawler.PageResult, 0),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		cellStyle: lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(1),
		style: borderStyle.Copy().
			BorderForeground(lipgloss.Color("35")),
	}
	t.viewport = viewport.New(0, 0)
	return t
}

// SetSize updates the table dimensions
func (t *ResultsTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.viewport.Width = width - 4
	t.viewport.Height = height - 6
	t.updateContent()
}

// Update handles scrolling
func (t *ResultsTable) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			t.viewport.LineUp(1)
		case "down", "j":
			t.viewport.LineDown(1)
		case "pgup":
			t.viewport.HalfViewUp()
		case "pgdown":
			t.viewport.HalfViewDown()
		}
	}
	return nil
}

// View renders the table
func (t *ResultsTable) View() string {
	if len(t.results) == 0 {
		return t.style.Width(t.width).Height(t.height).Render(
			titleStyle.Render("Pages") + "\n\n" + infoStyle.Render("No results yet"))
	}

	stats := fmt.Sprintf("Pages: %d | Failed: %d", len(t.results), t.failedCount())
	return t.style.Width(t.width).Height(t.height).Render(
		titleStyle.Render("Pages") + "\n\n" + t.viewport.View() + "\n" + infoStyle.Render(stats),
	)
}

// AddResult adds a finished page
func (t *ResultsTable) AddResult(result crawler.PageResult) {
	atBottom := t.viewport.AtBottom()
	t.results = append(t.results, result)
	t.updateContent()
	if atBottom {
		t.viewport.GotoBottom()
	}
}

// Results returns the pages added so far
func (t *ResultsTable) Results() []crawler.PageResult {
	return t.results
}

func (t *ResultsTable) updateContent() {
	linkWidth := max(min(40, t.width/2), 8)

	header := t.headerStyle.Render(fmt.Sprintf("%-*s %-16s", linkWidth, "Page", "Status"))

	rows := make([]string, 0, len(t.results))
	for _, result := range t.results {
		row := t.cellStyle.Render(fmt.Sprintf("%-*s %-16s",
			linkWidth, truncate(result.Link, linkWidth),
			result.Status,
		))

		switch result.Status {
		case crawler.StatusFailed:
			row = errorStyle.Render(row)
		case crawler.StatusSkippedExternal, crawler.StatusSkippedExisting:
			row = warningStyle.Render(row)
		}
		rows = append(rows, row)
	}

	t.viewport.SetContent(header + "\n" + strings.Join(rows, "\n"))
}

func (t *ResultsTable) failedCount() int {
	count := 0
	for _, r := range t.results {
		if r.Status == crawler.StatusFailed {
			count++
		}
	}
	return count
}

func truncate(s string, w int) string {
	if len(s) <= w {
		return s
	}
	if w <= 3 {
		return s[:w]
	}
	return s[:w-3] + "..."
}
