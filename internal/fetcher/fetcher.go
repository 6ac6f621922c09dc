// Package fetcher loads documents and answers the structured queries the
// crawler needs: page title, the inner markup of a region and the anchors
// inside it.
//
// Three backends are provided. The chromedp and playwright backends drive a
// real Chromium instance and see the DOM after scripts have run. The static
// backend fetches documents over plain HTTP and queries them with goquery,
// which is enough for server-rendered documentation sites.
package fetcher

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Backend names accepted by NewLauncher
const (
	BackendChromedp   = "chromedp"
	BackendPlaywright = "playwright"
	BackendStatic     = "static"
)

// Options configure a browser session
type Options struct {
	Headless bool
	// ExecPath is the browser executable; empty lets the backend pick one.
	ExecPath string
	// Timeout bounds each navigation and query. Zero means no bound.
	Timeout   time.Duration
	UserAgent string
}

// Anchor is one <a> element found inside a region. Href is nil when the
// element has no href attribute.
type Anchor struct {
	Href *string `json:"href"`
	Text string  `json:"text"`
}

// Launcher starts browser sessions
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}

// Session is a running browser
type Session interface {
	OpenPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single navigable tab. Every navigation replaces the document the
// previous queries were answered from.
type Page interface {
	Goto(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	// QueryRegion returns the first element matching selector, or a nil
	// Region and nil error when nothing matches.
	QueryRegion(ctx context.Context, selector string) (Region, error)
}

// Region is an element of the loaded document
type Region interface {
	InnerMarkup(ctx context.Context) (string, error)
	Links(ctx context.Context) ([]Anchor, error)
}

// LauncherFunc adapts a function to the Launcher interface
type LauncherFunc func(ctx context.Context, opts Options) (Session, error)

// Launch calls f(ctx, opts)
func (f LauncherFunc) Launch(ctx context.Context, opts Options) (Session, error) {
	return f(ctx, opts)
}

var launchers = map[string]Launcher{
	BackendChromedp:   ChromeLauncher{},
	BackendPlaywright: PlaywrightLauncher{},
	BackendStatic:     StaticLauncher{},
}

// NewLauncher returns the launcher registered under name
func NewLauncher(name string) (Launcher, error) {
	l, ok := launchers[name]
	if !ok {
		return nil, fmt.Errorf("unknown browser backend %q (available: %v)", name, Backends())
	}
	return l, nil
}

// Backends lists the registered backend names
func Backends() []string {
	names := make([]string, 0, len(launchers))
	for name := range launchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// withTimeout derives a context bounded by timeout when it is positive
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
