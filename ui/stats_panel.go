package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
)

// CrawlStats holds crawling statistics
type CrawlStats struct {
	TotalPages     int
	ProcessedPages int
	Fetched        int
	Written        int
	Existing       int
	External       int
	Planned        int
	Failed         int
	StartTime      time.Time
	// Current is the URL being fetched, empty between fetches.
	Current           string
	LastProcessedURLs []string
}

// Record counts a finished page
func (s *CrawlStats) Record(result crawler.PageResult) {
	s.ProcessedPages++
	s.Current = ""

	switch result.Status {
	case crawler.StatusFetched:
		s.Fetched++
	case crawler.StatusWritten:
		s.Written++
	case crawler.StatusSkippedExisting:
		s.Existing++
	case crawler.StatusSkippedExternal:
		s.External++
	case crawler.StatusPlanned:
		s.Planned++
	case crawler.StatusFailed:
		s.Failed++
	}

	s.LastProcessedURLs = append(s.LastProcessedURLs, result.Link)
	if len(s.LastProcessedURLs) > 5 {
		s.LastProcessedURLs = s.LastProcessedURLs[1:]
	}
}

// Ratio is the processed fraction of all discovered pages
func (s CrawlStats) Ratio() float64 {
	if s.TotalPages == 0 {
		return 0
	}
	return float64(s.ProcessedPages) / float64(s.TotalPages)
}

// StatsPanel displays crawling statistics
type StatsPanel struct {
	stats      CrawlStats
	bar        progress.Model
	spinner    spinner.Model
	width      int
	height     int
	style      lipgloss.Style
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
}

func NewStatsPanel() *StatsPanel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return &StatsPanel{
		stats: CrawlStats{
			LastProcessedURLs: make([]string, 0, 5),
		},
		bar:     progress.New(progress.WithDefaultGradient()),
		spinner: s,
		style: borderStyle.Copy().
			BorderForeground(lipgloss.Color("99")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
	}
}

func (s *StatsPanel) Init() tea.Cmd {
	return s.spinner.Tick
}

func (s *StatsPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.bar.Width = max(width-8, 10)
}

func (s *StatsPanel) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

func (s *StatsPanel) View() string {
	stats := []struct {
		label string
		value string
	}{
		{"Progress", fmt.Sprintf("%.1f%% (%d/%d)", s.stats.Ratio()*100, s.stats.ProcessedPages, s.stats.TotalPages)},
		{"Fetched", fmt.Sprintf("%d", s.stats.Fetched)},
		{"Written", fmt.Sprintf("%d", s.stats.Written)},
		{"Existing", fmt.Sprintf("%d", s.stats.Existing)},
		{"External", fmt.Sprintf("%d", s.stats.External)},
		{"Failed", fmt.Sprintf("%d", s.stats.Failed)},
		{"Elapsed Time", s.formatElapsedTime()},
	}
	if s.stats.Planned > 0 {
		stats = append(stats, struct {
			label string
			value string
		}{"Planned", fmt.Sprintf("%d", s.stats.Planned)})
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("Crawl Progress") + "\n\n")
	content.WriteString(s.bar.ViewAs(s.stats.Ratio()) + "\n\n")

	for _, stat := range stats {
		content.WriteString(fmt.Sprintf("%s %s\n",
			s.labelStyle.Render(fmt.Sprintf("%-14s", stat.label+":")),
			s.valueStyle.Render(stat.value),
		))
	}

	if s.stats.Current != "" {
		content.WriteString("\n" + s.spinner.View() + " " + s.stats.Current + "\n")
	}

	if len(s.stats.LastProcessedURLs) > 0 {
		content.WriteString("\nRecent pages:\n")
		for _, link := range s.stats.LastProcessedURLs {
			content.WriteString(infoStyle.Render("• "+link) + "\n")
		}
	}

	return s.style.Width(s.width).Height(s.height).Render(content.String())
}

// Stats returns a copy of the current statistics
func (s *StatsPanel) Stats() CrawlStats {
	return s.stats
}

// Discovered starts the run over with total pages
func (s *StatsPanel) Discovered(total int) {
	s.stats = CrawlStats{
		TotalPages:        total,
		StartTime:         time.Now(),
		LastProcessedURLs: make([]string, 0, 5),
	}
}

// Started marks url as being fetched
func (s *StatsPanel) Started(url string) {
	s.stats.Current = url
}

// Finished records a page result
func (s *StatsPanel) Finished(result crawler.PageResult) {
	s.stats.Record(result)
}

func (s *StatsPanel) formatElapsedTime() string {
	if s.stats.StartTime.IsZero() {
		return "00:00:00"
	}
	elapsed := time.Since(s.stats.StartTime)
	return fmt.Sprintf("%02d:%02d:%02d",
		int(elapsed.Hours()),
		int(elapsed.Minutes())%60,
		int(elapsed.Seconds())%60,
	)
}
