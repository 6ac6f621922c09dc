package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
)

// Message types, sent by Observer and by the caller once the crawl returns
type (
	DiscoveredMsg    struct{ Total int }
	PageStartedMsg   struct{ URL string }
	PageFinishedMsg  struct{ Result crawler.PageResult }
	CrawlFinishedMsg struct {
		Report *crawler.Report
		Err    error
	}
)

// Observer forwards crawl progress into a running tea.Program
type Observer struct {
	send func(tea.Msg)
}

// NewObserver returns an Observer delivering messages through send,
// normally (*tea.Program).Send
func NewObserver(send func(tea.Msg)) *Observer {
	return &Observer{send: send}
}

func (o *Observer) PagesDiscovered(total int)              { o.send(DiscoveredMsg{Total: total}) }
func (o *Observer) PageStarted(url string)                 { o.send(PageStartedMsg{URL: url}) }
func (o *Observer) PageFinished(result crawler.PageResult) { o.send(PageFinishedMsg{Result: result}) }

var _ crawler.Observer = (*Observer)(nil)

// Model is the crawl dashboard
type Model struct {
	startURL string
	cancel   context.CancelFunc
	layout   *Layout
	ready    bool
	done     bool
	err      error
	report   *crawler.Report
}

// NewModel creates the dashboard for a crawl of startURL. cancel is called
// when the user quits before the crawl has finished.
func NewModel(startURL string, cancel context.CancelFunc) Model {
	return Model{
		startURL: startURL,
		cancel:   cancel,
		layout:   NewLayout(),
	}
}

// Init is the first function called. It returns an optional initial command.
func (m Model) Init() tea.Cmd {
	return m.layout.Init()
}

// Update handles all the updates and state transitions
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.SetSize(msg.Width, msg.Height)
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.done {
				m.layout.console.AddWarning("Stopping crawl...")
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}

	case DiscoveredMsg:
		m.layout.stats.Discovered(msg.Total)
		m.layout.console.AddInfo(fmt.Sprintf("Discovered %d pages from %s", msg.Total, m.startURL))

	case PageStartedMsg:
		m.layout.stats.Started(msg.URL)
		m.layout.console.AddInfo("Fetching " + msg.URL)

	case PageFinishedMsg:
		m.layout.stats.Finished(msg.Result)
		m.layout.results.AddResult(msg.Result)
		switch msg.Result.Status {
		case crawler.StatusFailed:
			m.layout.console.AddError(fmt.Sprintf("%s: %v", msg.Result.Link, msg.Result.Err))
		case crawler.StatusSkippedExternal:
			m.layout.console.AddWarning("Ignored external link " + msg.Result.Link)
		}

	case CrawlFinishedMsg:
		m.done = true
		m.report = msg.Report
		m.err = msg.Err
		if msg.Err != nil {
			m.layout.console.AddError(msg.Err.Error())
		} else {
			m.layout.console.AddInfo("Crawl finished")
		}
		return m, tea.Quit
	}

	cmds = append(cmds, m.layout.Update(msg))
	return m, tea.Batch(cmds...)
}

// View returns a string representation of the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing...\n"
	}
	return m.layout.View() + "\n" + helpStyle.Render("q: quit • ↑/↓: scroll • 1-3: filter")
}

// Done reports whether the crawl finished before the program exited
func (m Model) Done() bool {
	return m.done
}

// Err is the crawl error delivered with CrawlFinishedMsg
func (m Model) Err() error {
	return m.err
}

// Stats returns the dashboard statistics
func (m Model) Stats() CrawlStats {
	return m.layout.stats.Stats()
}
