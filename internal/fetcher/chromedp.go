package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeLauncher starts Chromium through chromedp
type ChromeLauncher struct{}

type chromeSession struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	opts          Options
	pages         []*chromePage
}

type chromePage struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
	timeout   time.Duration
}

type chromeRegion struct {
	page     *chromePage
	selector string
}

// Launch starts the browser process. The process lives until Close, even if
// ctx is cancelled earlier.
func (ChromeLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", opts.Headless),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so launch failures surface here. It must
	// run on browserCtx itself: the first Run ties the browser to its context.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("starting chromium: %w", err)
	}

	return &chromeSession{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		opts:          opts,
	}, nil
}

func (s *chromeSession) OpenPage(ctx context.Context) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	if err := ctx.Err(); err != nil {
		tabCancel()
		return nil, err
	}
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("opening tab: %w", err)
	}
	p := &chromePage{tabCtx: tabCtx, tabCancel: tabCancel, timeout: s.opts.Timeout}
	s.pages = append(s.pages, p)
	return p, nil
}

func (s *chromeSession) Close() error {
	for _, p := range s.pages {
		p.tabCancel()
	}
	err := chromedp.Cancel(s.browserCtx)
	s.browserCancel()
	s.allocCancel()
	if err != nil {
		return fmt.Errorf("closing chromium: %w", err)
	}
	return nil
}

// runCtx bounds a single chromedp call by the page timeout and by ctx.
// Cancelling the returned context aborts the call without closing the tab.
func (p *chromePage) runCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := withTimeout(p.tabCtx, p.timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromePage) Goto(ctx context.Context, url string) error {
	runCtx, cancel := p.runCtx(ctx)
	defer cancel()

	return chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
}

func (p *chromePage) Title(ctx context.Context) (string, error) {
	runCtx, cancel := p.runCtx(ctx)
	defer cancel()

	var title string
	if err := chromedp.Run(runCtx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (p *chromePage) QueryRegion(ctx context.Context, selector string) (Region, error) {
	runCtx, cancel := p.runCtx(ctx)
	defer cancel()

	var found bool
	js := fmt.Sprintf(`document.querySelector(%q) !== null`, selector)
	if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &found)); err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &chromeRegion{page: p, selector: selector}, nil
}

func (r *chromeRegion) InnerMarkup(ctx context.Context) (string, error) {
	runCtx, cancel := r.page.runCtx(ctx)
	defer cancel()

	var markup string
	if err := chromedp.Run(runCtx, chromedp.InnerHTML(r.selector, &markup, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return markup, nil
}

// anchorsJS lists the anchors of a region. getAttribute keeps hrefs exactly
// as written in the document and null when the attribute is missing.
const anchorsJS = `
(() => {
	const region = document.querySelector(%q);
	if (!region) {
		return "[]";
	}
	return JSON.stringify(Array.from(region.querySelectorAll('a')).map(a => ({
		href: a.getAttribute('href'),
		text: (a.textContent || '').trim()
	})));
})()`

func (r *chromeRegion) Links(ctx context.Context) ([]Anchor, error) {
	runCtx, cancel := r.page.runCtx(ctx)
	defer cancel()

	var anchorsJSON string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(anchorsJS, r.selector), &anchorsJSON)); err != nil {
		return nil, err
	}
	return decodeAnchors(anchorsJSON)
}

func decodeAnchors(data string) ([]Anchor, error) {
	var anchors []Anchor
	if err := json.Unmarshal([]byte(data), &anchors); err != nil {
		return nil, fmt.Errorf("parsing anchors: %w", err)
	}
	return anchors, nil
}
