// Package fetchertest provides an in-memory fetcher.Launcher for tests.
package fetchertest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-scripts/gitbook-crawl/internal/fetcher"
)

// ErrNotFound is returned by Goto for URLs the Site does not serve
var ErrNotFound = errors.New("page not found")

// Region is a queryable element of a fake document
type Region struct {
	Markup  string
	Anchors []fetcher.Anchor
}

// Document is a fake loaded page, regions keyed by selector
type Document struct {
	Title   string
	Regions map[string]Region
}

// Site serves Documents by URL and records what was asked of it
type Site struct {
	Pages map[string]Document

	// LaunchErr, GotoErrs and CloseErr inject failures.
	LaunchErr error
	GotoErrs  map[string]error
	CloseErr  error

	mu          sync.Mutex
	navigations []string
	launches    int
	closes      int
	lastOptions fetcher.Options
}

// NewSite creates a Site serving pages
func NewSite(pages map[string]Document) *Site {
	return &Site{Pages: pages, GotoErrs: make(map[string]error)}
}

// Href returns a pointer to s, for building anchors
func Href(s string) *string {
	return &s
}

// Launch implements fetcher.Launcher
func (s *Site) Launch(ctx context.Context, opts fetcher.Options) (fetcher.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.launches++
	s.lastOptions = opts
	if s.LaunchErr != nil {
		return nil, s.LaunchErr
	}
	return &session{site: s}, nil
}

// Navigations returns every URL passed to Goto, in order
func (s *Site) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.navigations))
	copy(out, s.navigations)
	return out
}

// Launches returns how many sessions were started
func (s *Site) Launches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launches
}

// Closes returns how many sessions were closed
func (s *Site) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// LastOptions returns the options of the most recent Launch
func (s *Site) LastOptions() fetcher.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOptions
}

type session struct {
	site *Site
}

func (s *session) OpenPage(ctx context.Context) (fetcher.Page, error) {
	return &page{site: s.site}, nil
}

func (s *session) Close() error {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()
	s.site.closes++
	return s.site.CloseErr
}

type page struct {
	site *Site
	doc  *Document
}

func (p *page) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.site.mu.Lock()
	defer p.site.mu.Unlock()

	p.site.navigations = append(p.site.navigations, url)
	p.doc = nil
	if err := p.site.GotoErrs[url]; err != nil {
		return err
	}
	doc, ok := p.site.Pages[url]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	p.doc = &doc
	return nil
}

func (p *page) Title(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", fetcher.ErrNoDocument
	}
	return p.doc.Title, nil
}

func (p *page) QueryRegion(ctx context.Context, selector string) (fetcher.Region, error) {
	if p.doc == nil {
		return nil, fetcher.ErrNoDocument
	}
	r, ok := p.doc.Regions[selector]
	if !ok {
		return nil, nil
	}
	return &region{r: r}, nil
}

type region struct {
	r Region
}

func (r *region) InnerMarkup(ctx context.Context) (string, error) {
	return r.r.Markup, nil
}

func (r *region) Links(ctx context.Context) ([]fetcher.Anchor, error) {
	return r.r.Anchors, nil
}
