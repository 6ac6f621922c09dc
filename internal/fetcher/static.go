package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoDocument is returned when a static page is queried before Goto succeeded
var ErrNoDocument = errors.New("no document loaded")

// StaticLauncher fetches documents over HTTP without a browser. Headless and
// ExecPath have no effect. Scripts are not executed, so sites that build
// their navigation client-side need a browser backend.
type StaticLauncher struct {
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

type staticSession struct {
	client    *http.Client
	userAgent string
}

type staticPage struct {
	session *staticSession
	doc     *goquery.Document
}

type staticRegion struct {
	selection *goquery.Selection
}

func (l StaticLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &staticSession{client: client, userAgent: opts.UserAgent}, nil
}

func (s *staticSession) OpenPage(ctx context.Context) (Page, error) {
	return &staticPage{session: s}, nil
}

func (s *staticSession) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (p *staticPage) Goto(ctx context.Context, url string) error {
	p.doc = nil

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if p.session.userAgent != "" {
		req.Header.Set("User-Agent", p.session.userAgent)
	}

	resp, err := p.session.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", url, err)
	}
	p.doc = doc
	return nil
}

func (p *staticPage) Title(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", ErrNoDocument
	}
	return strings.TrimSpace(p.doc.Find("title").First().Text()), nil
}

func (p *staticPage) QueryRegion(ctx context.Context, selector string) (Region, error) {
	if p.doc == nil {
		return nil, ErrNoDocument
	}
	selection := p.doc.Find(selector).First()
	if selection.Length() == 0 {
		return nil, nil
	}
	return &staticRegion{selection: selection}, nil
}

func (r *staticRegion) InnerMarkup(ctx context.Context) (string, error) {
	return r.selection.Html()
}

func (r *staticRegion) Links(ctx context.Context) ([]Anchor, error) {
	anchors := make([]Anchor, 0)
	r.selection.Find("a").Each(func(_ int, a *goquery.Selection) {
		anchor := Anchor{Text: strings.TrimSpace(a.Text())}
		if href, ok := a.Attr("href"); ok {
			anchor.Href = &href
		}
		anchors = append(anchors, anchor)
	})
	return anchors, nil
}
