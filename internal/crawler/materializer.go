package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-scripts/gitbook-crawl/internal/fetcher"
	"github.com/go-scripts/gitbook-crawl/internal/link"
	"github.com/go-scripts/gitbook-crawl/internal/registry"
	"github.com/go-scripts/gitbook-crawl/internal/types"
	"github.com/go-scripts/gitbook-crawl/internal/writer"
)

// Materialize writes every registered page that is not on disk yet, in
// registry order, reusing page for every fetch. Pages whose file already
// exists are skipped, which makes re-runs against the same output directory
// idempotent.
//
// The returned report is never nil, also on error, and holds the results of
// every entry handled before the crawl stopped.
func (c *Crawler) Materialize(ctx context.Context, page fetcher.Page, reg *registry.Registry) (*Report, error) {
	report := newReport(c.config)
	if c.writer == nil {
		return report, errors.New("materialize needs an output directory")
	}

	entries := reg.Entries()
	c.observer.PagesDiscovered(len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			report.Finished = time.Now()
			return report, err
		}

		result, err := c.materializeEntry(ctx, page, reg, entry)
		report.add(result)
		c.observer.PageFinished(result)

		if err != nil {
			if c.config.KeepGoing && recoverable(err) {
				c.log.Warn("skipping page", "link", result.Link, "err", err)
				continue
			}
			report.Finished = time.Now()
			return report, err
		}
	}

	report.Finished = time.Now()
	c.log.Info("materialization finished",
		"fetched", report.Count(StatusFetched),
		"written", report.Count(StatusWritten),
		"existing", report.Count(StatusSkippedExisting),
		"external", report.Count(StatusSkippedExternal),
		"failed", report.Count(StatusFailed),
	)
	return report, nil
}

func (c *Crawler) materializeEntry(ctx context.Context, page fetcher.Page, reg *registry.Registry, entry *types.PageEntry) (PageResult, error) {
	// A literal "/" can reach this point from sources other than Normalize
	if entry.Link == "/" {
		if !reg.Rekey(entry, link.IndexKey) {
			c.log.Debug("root alias duplicates the index page", "title", entry.Title)
		}
	}

	result := PageResult{
		Link:  entry.Link,
		Title: entry.Title,
		Kind:  entry.Kind,
		Path:  c.writer.Path(entry.Link),
	}
	fail := func(err error) (PageResult, error) {
		result.Status = StatusFailed
		result.Err = err
		return result, err
	}

	exists, err := c.writer.Exists(entry.Link)
	if err != nil {
		return fail(err)
	}
	if exists {
		c.log.Debug("output exists, skipping", "path", result.Path)
		result.Status = StatusSkippedExisting
		return result, nil
	}

	if entry.HasContent() {
		return c.write(result, entry)
	}

	if entry.IsExternal() {
		if c.config.IgnoreExternalLinks {
			c.log.Debug("ignoring external link", "href", entry.Link)
			result.Status = StatusSkippedExternal
			return result, nil
		}
		return fail(fmt.Errorf("%w: %s", ErrUnsupportedExternalFetch, entry.Link))
	}

	result.URL = link.FetchURL(c.config.StartURL, entry.Link)
	if c.config.DryRun {
		c.log.Info("would fetch", "url", result.URL, "path", result.Path)
		result.Status = StatusPlanned
		return result, nil
	}

	c.observer.PageStarted(result.URL)
	c.log.Info("fetching page", "url", result.URL)

	if err := page.Goto(ctx, result.URL); err != nil {
		return fail(fmt.Errorf("%w: %s: %w", ErrNavigation, result.URL, err))
	}
	content, err := c.mainMarkup(ctx, page, result.URL)
	if err != nil {
		return fail(err)
	}
	entry.SetContent(content)

	result, err = c.write(result, entry)
	if result.Status == StatusWritten {
		result.Status = StatusFetched
	}
	return result, err
}

// write persists the entry's in-memory content
func (c *Crawler) write(result PageResult, entry *types.PageEntry) (PageResult, error) {
	if c.config.DryRun {
		c.log.Info("would write", "path", result.Path)
		result.Status = StatusPlanned
		return result, nil
	}

	path, err := c.writer.Write(entry.Link, *entry.Content)
	if errors.Is(err, writer.ErrExists) {
		result.Status = StatusSkippedExisting
		return result, nil
	}
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result, err
	}

	c.log.Info("wrote page", "path", path)
	result.Path = path
	result.Status = StatusWritten
	return result, nil
}
