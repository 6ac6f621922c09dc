package crawler

import (
	"time"

	"github.com/go-scripts/gitbook-crawl/internal/link"
)

// Status is the outcome of materializing one page
type Status string

const (
	// StatusDiscovered marks pages of a discovery-only crawl.
	StatusDiscovered Status = "discovered"
	// StatusWritten marks in-memory content written without a fetch (the root).
	StatusWritten Status = "written"
	// StatusFetched marks pages fetched and written.
	StatusFetched         Status = "fetched"
	StatusSkippedExisting Status = "skipped-existing"
	StatusSkippedExternal Status = "skipped-external"
	// StatusPlanned marks pages a dry run would have fetched or written.
	StatusPlanned Status = "planned"
	StatusFailed  Status = "failed"
)

// PageResult describes what happened to one registry entry
type PageResult struct {
	Link   string
	Title  string
	Kind   link.Kind
	URL    string
	Path   string
	Status Status
	Err    error
}

// Report collects the per-page results of a crawl in registry order
type Report struct {
	StartURL  string
	OutputDir string
	Pages     []PageResult
	Started   time.Time
	Finished  time.Time
}

func newReport(config Configuration) *Report {
	return &Report{
		StartURL:  config.StartURL,
		OutputDir: config.OutputDir,
		Pages:     make([]PageResult, 0),
		Started:   time.Now(),
	}
}

func (r *Report) add(result PageResult) {
	r.Pages = append(r.Pages, result)
}

// Count returns how many pages ended with status
func (r *Report) Count(status Status) int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == status {
			n++
		}
	}
	return n
}

// Failed returns the pages that failed, in order
func (r *Report) Failed() []PageResult {
	var failed []PageResult
	for _, p := range r.Pages {
		if p.Status == StatusFailed {
			failed = append(failed, p)
		}
	}
	return failed
}

// Duration is the wall time between start and finish
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Observer is notified as pages are materialized. Calls happen on the crawl
// goroutine, in registry order.
type Observer interface {
	PagesDiscovered(total int)
	PageStarted(url string)
	PageFinished(result PageResult)
}

type nopObserver struct{}

func (nopObserver) PagesDiscovered(int)     {}
func (nopObserver) PageStarted(string)      {}
func (nopObserver) PageFinished(PageResult) {}
