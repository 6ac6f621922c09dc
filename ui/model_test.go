package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestObserverSendsMessages(t *testing.T) {
	var msgs []tea.Msg
	o := NewObserver(func(msg tea.Msg) { msgs = append(msgs, msg) })

	o.PagesDiscovered(2)
	o.PageStarted("https://docs.example.com/guide")
	o.PageFinished(crawler.PageResult{Link: "guide", Status: crawler.StatusFetched})

	require.Len(t, msgs, 3)
	assert.Equal(t, DiscoveredMsg{Total: 2}, msgs[0])
	assert.Equal(t, PageStartedMsg{URL: "https://docs.example.com/guide"}, msgs[1])
	assert.Equal(t, "guide", msgs[2].(PageFinishedMsg).Result.Link)
}

func TestModelTracksProgress(t *testing.T) {
	m := NewModel("https://docs.example.com", nil)
	assert.Equal(t, "Initializing...\n", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, DiscoveredMsg{Total: 3})
	m, _ = update(t, m, PageFinishedMsg{Result: crawler.PageResult{Link: "index", Status: crawler.StatusWritten}})
	m, _ = update(t, m, PageStartedMsg{URL: "https://docs.example.com/guide"})

	assert.Equal(t, "https://docs.example.com/guide", m.Stats().Current)

	m, _ = update(t, m, PageFinishedMsg{Result: crawler.PageResult{Link: "guide", Status: crawler.StatusFetched}})
	m, _ = update(t, m, PageFinishedMsg{Result: crawler.PageResult{Link: "broken", Status: crawler.StatusFailed, Err: errors.New("timeout")}})

	stats := m.Stats()
	assert.Equal(t, 3, stats.TotalPages)
	assert.Equal(t, 3, stats.ProcessedPages)
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Fetched)
	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, stats.Current)
	assert.InDelta(t, 1.0, stats.Ratio(), 1e-9)

	assert.Len(t, m.layout.results.Results(), 3)
	assert.Equal(t, 1, m.layout.console.CountByLevel(LevelError))

	view := m.View()
	assert.Contains(t, view, "Crawl Progress")
	assert.Contains(t, view, "guide")
}

func TestModelQuitCancelsCrawl(t *testing.T) {
	cancelled := false
	m := NewModel("https://docs.example.com", func() { cancelled = true })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, cancelled)
	assert.False(t, m.Done())
}

func TestModelQuitsWhenCrawlFinishes(t *testing.T) {
	cancelled := false
	m := NewModel("https://docs.example.com", func() { cancelled = true })

	crawlErr := errors.New("navigation failed")
	m, cmd := update(t, m, CrawlFinishedMsg{Err: crawlErr})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Done())
	assert.Equal(t, crawlErr, m.Err())

	// quitting after the crawl is over does not cancel anything
	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.False(t, cancelled)
}

func TestEventConsoleFilter(t *testing.T) {
	c := NewEventConsole()
	c.AddInfo("started")
	c.AddWarning("external")
	c.AddError("failed")

	assert.Len(t, c.Visible(), 3)
	c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	assert.Len(t, c.Visible(), 2)
	c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	require.Len(t, c.Visible(), 1)
	assert.Equal(t, "failed", c.Visible()[0].Message)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a-very...", truncate("a-very-long-link", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
