package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LogLevel represents the severity of a console entry
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelWarning
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	default:
		return "INFO"
	}
}

// LogEntry represents a single console message
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Message   string
}

// EventConsole shows crawl events, filterable by level
type EventConsole struct {
	viewport  viewport.Model
	entries   []LogEntry
	width     int
	height    int
	style     lipgloss.Style
	showLevel LogLevel
}

var (
	errorLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)
)

// NewEventConsole creates a new console
func NewEventConsole() *EventConsole {
	e := &EventConsole{
		entries:   make([]LogEntry, 0),
		style:     borderStyle.Copy().BorderForeground(lipgloss.Color("196")),
		showLevel: LevelInfo,
	}
	e.viewport = viewport.New(0, 0)
	return e
}

// SetSize updates the console dimensions
func (e *EventConsole) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.viewport.Width = width - 4
	e.viewport.Height = max(height-5, 1)
	e.updateContent()
}

// AddEntry appends a message at level
func (e *EventConsole) AddEntry(level LogLevel, msg string) {
	e.entries = append(e.entries, LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
	})
	e.updateContent()
}

func (e *EventConsole) AddInfo(msg string)    { e.AddEntry(LevelInfo, msg) }
func (e *EventConsole) AddWarning(msg string) { e.AddEntry(LevelWarning, msg) }
func (e *EventConsole) AddError(msg string)   { e.AddEntry(LevelError, msg) }

// Update handles the level filter keys
func (e *EventConsole) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "1":
			e.showLevel = LevelInfo
		case "2":
			e.showLevel = LevelWarning
		case "3":
			e.showLevel = LevelError
		default:
			return nil
		}
		e.updateContent()
	}
	return nil
}

// View renders the console
func (e *EventConsole) View() string {
	footer := fmt.Sprintf("Filter: %s (1:Info 2:Warn 3:Error) | Errors: %d | Warnings: %d",
		e.showLevel, e.CountByLevel(LevelError), e.CountByLevel(LevelWarning))

	return e.style.Width(e.width).Render(
		e.viewport.View() + "\n" + infoStyle.Render(footer),
	)
}

// Visible returns the entries passing the current filter
func (e *EventConsole) Visible() []LogEntry {
	var visible []LogEntry
	for _, entry := range e.entries {
		if entry.Level >= e.showLevel {
			visible = append(visible, entry)
		}
	}
	return visible
}

// CountByLevel counts entries of exactly level
func (e *EventConsole) CountByLevel(level LogLevel) int {
	count := 0
	for _, entry := range e.entries {
		if entry.Level == level {
			count++
		}
	}
	return count
}

func (e *EventConsole) updateContent() {
	var sb strings.Builder
	for _, entry := range e.Visible() {
		var style lipgloss.Style
		switch entry.Level {
		case LevelError:
			style = errorLogStyle
		case LevelWarning:
			style = warningStyle
		default:
			style = infoStyle
		}
		fmt.Fprintf(&sb, "%s [%s] %s\n",
			timestampStyle.Render(entry.Timestamp.Format("15:04:05")),
			style.Render(entry.Level.String()),
			entry.Message,
		)
	}

	e.viewport.SetContent(sb.String())
	e.viewport.GotoBottom()
}
