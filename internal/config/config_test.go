package config

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
	"github.com/go-scripts/gitbook-crawl/internal/fetcher"
)

func validConfig() crawler.Configuration {
	return crawler.Configuration{
		StartURL:        "https://docs.example.com",
		MainSelector:    "main",
		SidebarSelector: "aside",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*crawler.Configuration)
		browser string
		wantErr error
	}{
		{name: "valid", browser: fetcher.BackendChromedp},
		{name: "file url", browser: fetcher.BackendPlaywright, modify: func(c *crawler.Configuration) { c.StartURL = "file:///tmp/docs/index.html" }},
		{name: "relative url", browser: DefaultBrowser, modify: func(c *crawler.Configuration) { c.StartURL = "docs.example.com" }, wantErr: ErrInvalidURL},
		{name: "no host", browser: DefaultBrowser, modify: func(c *crawler.Configuration) { c.StartURL = "https://" }, wantErr: ErrInvalidURL},
		{name: "unknown browser", browser: "lynx", wantErr: ErrUnknownBrowser},
		{name: "blank main selector", browser: DefaultBrowser, modify: func(c *crawler.Configuration) { c.MainSelector = " " }, wantErr: ErrEmptySelector},
		{name: "blank sidebar selector", browser: DefaultBrowser, modify: func(c *crawler.Configuration) { c.SidebarSelector = "" }, wantErr: ErrEmptySelector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			if tt.modify != nil {
				tt.modify(&cfg)
			}
			err := Validate(cfg, tt.browser)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateNegativeTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Fetch.Timeout = -time.Second
	assert.ErrorContains(t, Validate(cfg, DefaultBrowser), "timeout")
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := validConfig()
	cfg.StartURL = ""
	cfg.MainSelector = ""

	err := Validate(cfg, "lynx")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.ErrorIs(t, err, ErrUnknownBrowser)
	assert.ErrorIs(t, err, ErrEmptySelector)
}

type testCLI struct {
	OutputDir string        `short:"o"`
	Browser   string        `default:"chromedp"`
	KeepGoing bool          `name:"keep-going"`
	Timeout   time.Duration `default:"0s"`
}

func parse(t *testing.T, yamlText string, args ...string) (testCLI, error) {
	t.Helper()

	var cli testCLI
	resolver, err := YAMLLoader(strings.NewReader(yamlText))
	require.NoError(t, err)

	parser, err := kong.New(&cli, kong.Resolvers(resolver), kong.Exit(func(int) {}))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	return cli, err
}

func TestYAMLLoader(t *testing.T) {
	cli, err := parse(t, "output-dir: site\nbrowser: static\nkeep_going: true\ntimeout: 30s\n")
	require.NoError(t, err)

	assert.Equal(t, "site", cli.OutputDir)
	assert.Equal(t, "static", cli.Browser)
	assert.True(t, cli.KeepGoing)
	assert.Equal(t, 30*time.Second, cli.Timeout)
}

func TestYAMLLoaderFlagsTakePrecedence(t *testing.T) {
	cli, err := parse(t, "output-dir: site\nbrowser: static\n", "-o", "out")
	require.NoError(t, err)

	assert.Equal(t, "out", cli.OutputDir)
	assert.Equal(t, "static", cli.Browser)
}

func TestYAMLLoaderEmptyFile(t *testing.T) {
	cli, err := parse(t, "")
	require.NoError(t, err)
	assert.Equal(t, "chromedp", cli.Browser)
}

func TestYAMLLoaderRejectsNestedValues(t *testing.T) {
	_, err := parse(t, "browser:\n  name: static\n")
	assert.ErrorContains(t, err, "scalar")
}

func TestYAMLLoaderInvalidYAML(t *testing.T) {
	_, err := YAMLLoader(strings.NewReader("browser: [unclosed"))
	assert.Error(t, err)
}
