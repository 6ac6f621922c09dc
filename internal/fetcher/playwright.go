package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightLauncher starts Chromium through the Playwright driver. The driver
// and browsers must already be installed (playwright install chromium).
type PlaywrightLauncher struct{}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

type playwrightPage struct {
	page playwright.Page
}

type playwrightRegion struct {
	handle playwright.ElementHandle
}

func (PlaywrightLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run(&playwright.RunOptions{
		SkipInstallBrowsers: true,
	})
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.ExecPath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecPath)
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("launching chromium: %w", err), pw.Stop())
	}

	return &playwrightSession{pw: pw, browser: browser, opts: opts}, nil
}

func (s *playwrightSession) OpenPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contextOpts := playwright.BrowserNewContextOptions{}
	if s.opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(s.opts.UserAgent)
	}
	browserContext, err := s.browser.NewContext(contextOpts)
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	ms := timeoutMillis(s.opts.Timeout)
	browserContext.SetDefaultNavigationTimeout(ms)
	browserContext.SetDefaultTimeout(ms)

	page, err := browserContext.NewPage()
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	return &playwrightPage{page: page}, nil
}

func (s *playwrightSession) Close() error {
	var errs []error
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
	}
	return errors.Join(errs...)
}

// Playwright calls are not context aware; ctx is checked before each call.

func (p *playwrightPage) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url)
	return err
}

func (p *playwrightPage) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Title()
}

func (p *playwrightPage) QueryRegion(ctx context.Context, selector string) (Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handle, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, nil
	}
	return &playwrightRegion{handle: handle}, nil
}

func (r *playwrightRegion) InnerMarkup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.handle.InnerHTML()
}

func (r *playwrightRegion) Links(ctx context.Context) ([]Anchor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	handles, err := r.handle.QuerySelectorAll("a")
	if err != nil {
		return nil, err
	}

	anchors := make([]Anchor, 0, len(handles))
	for _, a := range handles {
		// GetAttribute cannot tell a missing href from an empty one
		raw, err := a.Evaluate("e => e.getAttribute('href')")
		if err != nil {
			return nil, err
		}
		text, err := a.TextContent()
		if err != nil {
			return nil, err
		}

		anchor := Anchor{Text: strings.TrimSpace(text)}
		if href, ok := raw.(string); ok {
			anchor.Href = &href
		}
		anchors = append(anchors, anchor)
	}
	return anchors, nil
}

// timeoutMillis converts a timeout for playwright, where 0 disables its
// 30 second default
func timeoutMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d.Milliseconds())
}
