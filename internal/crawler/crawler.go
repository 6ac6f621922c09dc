package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/gitbook-crawl/internal/fetcher"
	"github.com/go-scripts/gitbook-crawl/internal/registry"
	"github.com/go-scripts/gitbook-crawl/internal/types"
	"github.com/go-scripts/gitbook-crawl/internal/writer"
)

// Default region selectors of a sidebar documentation layout
const (
	DefaultMainSelector    = "main"
	DefaultSidebarSelector = "aside"
)

// Configuration holds the crawler settings
type Configuration struct {
	StartURL string
	// OutputDir is where pages are written. Empty runs discovery only.
	OutputDir           string
	IgnoreExternalLinks bool
	MainSelector        string
	SidebarSelector     string
	// KeepGoing records child page navigation and missing-region failures
	// and moves on instead of aborting.
	KeepGoing bool
	// DryRun plans materialization without fetching or writing anything.
	DryRun bool
	Fetch  fetcher.Options
}

// Crawler discovers sidebar pages and materializes them under OutputDir
type Crawler struct {
	config   Configuration
	launcher fetcher.Launcher
	writer   *writer.FileWriter
	observer Observer
	log      *log.Logger
}

// Option customizes a Crawler
type Option func(*Crawler)

// WithLogger sets the logger, log.Default() otherwise
func WithLogger(logger *log.Logger) Option {
	return func(c *Crawler) {
		c.log = logger
	}
}

// WithObserver registers an observer of materialization progress
func WithObserver(o Observer) Option {
	return func(c *Crawler) {
		c.observer = o
	}
}

// New creates a new Crawler instance
func New(config Configuration, launcher fetcher.Launcher, opts ...Option) (*Crawler, error) {
	if config.StartURL == "" {
		return nil, errors.New("start URL is required")
	}
	if launcher == nil {
		return nil, errors.New("a fetcher launcher is required")
	}
	if config.MainSelector == "" {
		config.MainSelector = DefaultMainSelector
	}
	if config.SidebarSelector == "" {
		config.SidebarSelector = DefaultSidebarSelector
	}

	c := &Crawler{
		config:   config,
		launcher: launcher,
		observer: nopObserver{},
		log:      log.Default(),
	}
	if config.OutputDir != "" {
		c.writer = writer.New(config.OutputDir)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run performs a full crawl: launch the browser, discover the sidebar pages,
// materialize them when an output directory is configured, and close the
// browser. A close failure is returned even when the crawl succeeded.
func (c *Crawler) Run(ctx context.Context) (report *Report, err error) {
	session, err := c.launcher.Launch(ctx, c.config.Fetch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing browser: %w", cerr))
		}
	}()

	page, err := session.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	reg, err := c.Discover(ctx, page)
	if err != nil {
		return nil, err
	}

	if c.writer == nil {
		c.log.Info("no output directory configured, discovery only", "pages", reg.Len())
		return c.discoveryReport(reg), nil
	}

	return c.Materialize(ctx, page, reg)
}

// Discover loads the root page and registers it together with every sidebar
// link. The root entry is registered first, with its content already set.
func (c *Crawler) Discover(ctx context.Context, page fetcher.Page) (*registry.Registry, error) {
	rootURL := c.config.StartURL

	if err := page.Goto(ctx, rootURL); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNavigation, rootURL, err)
	}

	title, err := page.Title(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading title of %s: %w", rootURL, err)
	}
	c.log.Info("loaded root page", "title", title, "url", rootURL)

	content, err := c.mainMarkup(ctx, page, rootURL)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	reg.Register(types.NewRootEntry(title, rootURL, content))

	sidebar, err := page.QueryRegion(ctx, c.config.SidebarSelector)
	if err != nil {
		return nil, fmt.Errorf("querying sidebar of %s: %w", rootURL, err)
	}
	if sidebar == nil {
		return nil, &RegionNotFoundError{Region: "sidebar", Selector: c.config.SidebarSelector, URL: rootURL}
	}

	anchors, err := sidebar.Links(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sidebar links of %s: %w", rootURL, err)
	}

	for _, a := range anchors {
		if a.Href == nil {
			continue
		}
		c.log.Debug("found link", "text", a.Text, "href", *a.Href)

		entry := types.NewPageEntry(a.Text, *a.Href, rootURL)
		if !reg.Register(entry) {
			c.log.Debug("duplicate link ignored", "link", entry.Link, "text", a.Text)
		}
	}

	c.log.Info("discovered pages", "count", reg.Len())
	return reg, nil
}

// mainMarkup returns the inner markup of the main-content region of the
// currently loaded document
func (c *Crawler) mainMarkup(ctx context.Context, page fetcher.Page, url string) (string, error) {
	region, err := page.QueryRegion(ctx, c.config.MainSelector)
	if err != nil {
		return "", fmt.Errorf("querying main content of %s: %w", url, err)
	}
	if region == nil {
		return "", &RegionNotFoundError{Region: "main", Selector: c.config.MainSelector, URL: url}
	}

	markup, err := region.InnerMarkup(ctx)
	if err != nil {
		return "", fmt.Errorf("reading main content of %s: %w", url, err)
	}
	return markup, nil
}

func (c *Crawler) discoveryReport(reg *registry.Registry) *Report {
	report := newReport(c.config)
	for _, entry := range reg.Entries() {
		report.add(PageResult{
			Link:   entry.Link,
			Title:  entry.Title,
			Kind:   entry.Kind,
			Status: StatusDiscovered,
		})
	}
	report.Finished = time.Now()
	return report
}
