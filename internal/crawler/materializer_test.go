package crawler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/gitbook-crawl/internal/fetcher"
	"github.com/go-scripts/gitbook-crawl/internal/fetcher/fetchertest"
	"github.com/go-scripts/gitbook-crawl/internal/registry"
	"github.com/go-scripts/gitbook-crawl/internal/types"
)

type recordingObserver struct {
	total    int
	started  []string
	finished []Status
}

func (o *recordingObserver) PagesDiscovered(total int) { o.total = total }
func (o *recordingObserver) PageStarted(url string)    { o.started = append(o.started, url) }
func (o *recordingObserver) PageFinished(r PageResult) { o.finished = append(o.finished, r.Status) }

// threePageSite has a sidebar of guide, broken and api, where broken fails to load
func threePageSite() *fetchertest.Site {
	site := fetchertest.NewSite(map[string]fetchertest.Document{
		rootURL: {
			Title: "Docs",
			Regions: map[string]fetchertest.Region{
				"main": {Markup: "<p>Welcome</p>"},
				"aside": {Anchors: []fetcher.Anchor{
					{Href: fetchertest.Href("/guide"), Text: "Guide"},
					{Href: fetchertest.Href("/broken"), Text: "Broken"},
					{Href: fetchertest.Href("/api/v1"), Text: "API"},
				}},
			},
		},
		rootURL + "/guide":  {Regions: map[string]fetchertest.Region{"main": {Markup: "guide"}}},
		rootURL + "/api/v1": {Regions: map[string]fetchertest.Region{"main": {Markup: "api"}}},
	})
	site.GotoErrs[rootURL+"/broken"] = errors.New("net::ERR_ABORTED")
	return site
}

func TestMaterializeFailFast(t *testing.T) {
	site := threePageSite()
	out := t.TempDir()
	c := newTestCrawler(t, Configuration{OutputDir: out}, site)

	report, err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrNavigation)

	// the api page after the broken one is never attempted
	assert.Equal(t, []string{"guide.html", "index.html"}, listFiles(t, out))
	require.Len(t, report.Pages, 3)
	assert.Equal(t, StatusFailed, report.Pages[2].Status)
	assert.NotContains(t, site.Navigations(), rootURL+"/api/v1")
}

func TestMaterializeKeepGoing(t *testing.T) {
	site := threePageSite()
	out := t.TempDir()
	c := newTestCrawler(t, Configuration{OutputDir: out, KeepGoing: true}, site)

	report, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"api/v1.html", "guide.html", "index.html"}, listFiles(t, out))
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Link)
	assert.ErrorIs(t, failed[0].Err, ErrNavigation)
	assert.Equal(t, 2, report.Count(StatusFetched))
}

func TestMaterializeKeepGoingMissingRegion(t *testing.T) {
	site := threePageSite()
	delete(site.GotoErrs, rootURL+"/broken")
	site.Pages[rootURL+"/broken"] = fetchertest.Document{Regions: map[string]fetchertest.Region{}}
	c := newTestCrawler(t, Configuration{OutputDir: t.TempDir(), KeepGoing: true}, site)

	report, err := c.Run(context.Background())
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, ErrRegionNotFound)
}

func TestMaterializeMissingRegionOnChildPage(t *testing.T) {
	site := threePageSite()
	delete(site.GotoErrs, rootURL+"/broken")
	site.Pages[rootURL+"/broken"] = fetchertest.Document{Regions: map[string]fetchertest.Region{}}
	c := newTestCrawler(t, Configuration{OutputDir: t.TempDir()}, site)

	_, err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrRegionNotFound)
	assert.ErrorContains(t, err, rootURL+"/broken")
}

func TestMaterializeNestedPaths(t *testing.T) {
	site := threePageSite()
	delete(site.GotoErrs, rootURL+"/broken")
	site.Pages[rootURL+"/broken"] = fetchertest.Document{Regions: map[string]fetchertest.Region{"main": {Markup: "fixed"}}}
	out := t.TempDir()
	c := newTestCrawler(t, Configuration{OutputDir: out}, site)

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "api", readFile(t, filepath.Join(out, "api", "v1.html")))
}

func TestMaterializeTrailingSlashRoot(t *testing.T) {
	site := docsSite()
	site.Pages[rootURL+"/"] = site.Pages[rootURL]
	c := newTestCrawler(t, Configuration{StartURL: rootURL + "/", OutputDir: t.TempDir(), IgnoreExternalLinks: true}, site)

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{rootURL + "/", rootURL + "/guide"}, site.Navigations())
}

func TestMaterializeRewritesRootAlias(t *testing.T) {
	site := docsSite()
	out := t.TempDir()
	c := newTestCrawler(t, Configuration{OutputDir: out}, site)

	reg := registry.New()
	root := types.NewRootEntry("Docs", rootURL, "<p>Welcome</p>")
	alias := &types.PageEntry{Title: "Home", Link: "/"}
	reg.Register(root)
	reg.Register(alias)

	report, err := c.Materialize(context.Background(), openPage(t, site), reg)
	require.NoError(t, err)

	assert.Equal(t, "index", alias.Link)
	require.Len(t, report.Pages, 2)
	assert.Equal(t, StatusWritten, report.Pages[0].Status)
	assert.Equal(t, "index", report.Pages[1].Link)
	assert.Equal(t, StatusSkippedExisting, report.Pages[1].Status)
	assert.Empty(t, site.Navigations())
}

func TestMaterializeScenario(t *testing.T) {
	site := docsSite()
	out := t.TempDir()
	c := newTestCrawler(t, Configuration{OutputDir: out, IgnoreExternalLinks: true}, site)
	page := openPage(t, site)

	reg, err := c.Discover(context.Background(), page)
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())

	_, err = c.Materialize(context.Background(), page, reg)
	require.NoError(t, err)

	guide, _ := reg.Get("guide")
	require.True(t, guide.HasContent())
	assert.Equal(t, "<p>Guide</p>", *guide.Content)

	ext, _ := reg.Get("https://ext.example")
	assert.False(t, ext.HasContent())
	assert.Equal(t, []string{"guide.html", "index.html"}, listFiles(t, out))
}

func TestMaterializeNotifiesObserver(t *testing.T) {
	site := docsSite()
	obs := &recordingObserver{}
	c := newTestCrawler(t, Configuration{OutputDir: t.TempDir(), IgnoreExternalLinks: true}, site, WithObserver(obs))

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, obs.total)
	assert.Equal(t, []string{rootURL + "/guide"}, obs.started)
	assert.Equal(t, []Status{StatusWritten, StatusFetched, StatusSkippedExternal}, obs.finished)
}

func TestMaterializeFilesystemFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(out, []byte("not a directory"), 0644))

	site := docsSite()
	c := newTestCrawler(t, Configuration{OutputDir: out, KeepGoing: true}, site)

	report, err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrFilesystem)
	require.Len(t, report.Pages, 1)
	assert.Equal(t, StatusFailed, report.Pages[0].Status)
}

func TestMaterializeWithoutOutputDir(t *testing.T) {
	site := docsSite()
	c := newTestCrawler(t, Configuration{}, site)

	report, err := c.Materialize(context.Background(), openPage(t, site), registry.New())
	assert.Error(t, err)
	assert.NotNil(t, report)
}
