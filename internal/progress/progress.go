package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
)

// ProgressTracker prints materialization progress as a spinner for the page
// being fetched and an overall progress bar. It implements crawler.Observer.
type ProgressTracker struct {
	out             io.Writer
	overallProgress progress.Model
	spinner         *spinner.Spinner
	animate         bool

	mu             sync.Mutex
	totalPages     int
	processedPages int
	failedPages    int
}

// Option customizes a ProgressTracker
type Option func(*ProgressTracker)

// WithAnimation turns the spinner on or off. Animation should be disabled
// when out is not a terminal.
func WithAnimation(on bool) Option {
	return func(p *ProgressTracker) {
		p.animate = on
	}
}

// New creates a new ProgressTracker writing to out
func New(out io.Writer, opts ...Option) *ProgressTracker {
	p := &ProgressTracker{
		out:             out,
		overallProgress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		animate:         true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out))
	return p
}

// PagesDiscovered sets the total number of pages to process
func (p *ProgressTracker) PagesDiscovered(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalPages = total
	p.processedPages = 0
	p.failedPages = 0
	fmt.Fprintf(p.out, "Discovered %d pages\n", total)
}

// PageStarted indicates that a page is being fetched
func (p *ProgressTracker) PageStarted(url string) {
	if !p.animate {
		fmt.Fprintf(p.out, "Fetching: %s\n", url)
		return
	}
	p.spinner.Suffix = " " + url
	p.spinner.Start()
}

// PageFinished increments the number of processed pages
func (p *ProgressTracker) PageFinished(result crawler.PageResult) {
	if p.animate {
		p.spinner.Stop()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.processedPages++
	if result.Status == crawler.StatusFailed {
		p.failedPages++
	}

	if p.totalPages > 0 {
		fmt.Fprintf(p.out, "\rProgress: %s %d/%d pages",
			p.overallProgress.ViewAs(p.ratio()),
			p.processedPages,
			p.totalPages)
		if p.processedPages == p.totalPages {
			fmt.Fprintln(p.out)
		}
	}
}

// GetProgress returns the current progress as a fraction
func (p *ProgressTracker) GetProgress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ratio()
}

// Failed returns how many pages finished with a failure
func (p *ProgressTracker) Failed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failedPages
}

func (p *ProgressTracker) ratio() float64 {
	if p.totalPages == 0 {
		return 0
	}
	return float64(p.processedPages) / float64(p.totalPages)
}

var _ crawler.Observer = (*ProgressTracker)(nil)
