package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/go-scripts/gitbook-crawl/internal/config"
	"github.com/go-scripts/gitbook-crawl/internal/crawler"
	"github.com/go-scripts/gitbook-crawl/internal/export"
	"github.com/go-scripts/gitbook-crawl/internal/fetcher"
	"github.com/go-scripts/gitbook-crawl/internal/progress"
	"github.com/go-scripts/gitbook-crawl/ui"
)

// CLI flags structure
type CLI struct {
	URL string `arg:"" help:"Root URL of the documentation site"`

	Executable          string `short:"e" help:"Path to the browser executable"`
	OutputDir           string `short:"o" help:"Directory to write pages to; discovery only when unset"`
	Headless            bool   `default:"true" negatable:"" help:"Run the browser headless"`
	IgnoreExternalLinks bool   `default:"true" negatable:"" help:"Skip sidebar links that point off-site"`

	Browser         string        `default:"chromedp" enum:"chromedp,playwright,static" help:"Fetcher backend (${enum})"`
	MainSelector    string        `default:"main" help:"CSS selector of the main content region"`
	SidebarSelector string        `default:"aside" help:"CSS selector of the sidebar region"`
	Timeout         time.Duration `default:"0s" help:"Per-navigation timeout, 0 for none"`
	UserAgent       string        `help:"User agent override"`
	KeepGoing       bool          `help:"Record failed pages and continue instead of aborting"`
	DryRun          bool          `help:"Report what would be fetched and written without doing it"`
	Report          string        `help:"Write a per-page report (.json or .csv)"`
	TUI             bool          `name:"tui" help:"Show an interactive dashboard"`
	LogLevel        string        `default:"info" enum:"debug,info,warn,error" help:"Log level (${enum})"`

	Config kong.ConfigFlag `short:"c" help:"YAML config file"`
}

// configuration maps the flags to crawler settings
func (c *CLI) configuration() crawler.Configuration {
	return crawler.Configuration{
		StartURL:            c.URL,
		OutputDir:           c.OutputDir,
		IgnoreExternalLinks: c.IgnoreExternalLinks,
		MainSelector:        c.MainSelector,
		SidebarSelector:     c.SidebarSelector,
		KeepGoing:           c.KeepGoing,
		DryRun:              c.DryRun,
		Fetch: fetcher.Options{
			Headless:  c.Headless,
			ExecPath:  c.Executable,
			Timeout:   c.Timeout,
			UserAgent: c.UserAgent,
		},
	}
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("gitbook-crawl"),
		kong.Description("Crawl a sidebar documentation site and save every page's main content as HTML."),
		kong.UsageOnError(),
		kong.Configuration(config.YAMLLoader, config.DefaultConfigFile),
	}, options...)
	return kong.New(cli, options...)
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           lvl,
	}), nil
}

// run crawls according to cli, prints the summary table to stdout and writes
// the report file when one was requested
func run(ctx context.Context, cli *CLI, stdout, stderr io.Writer) error {
	logger, err := newLogger(stderr, cli.LogLevel)
	if err != nil {
		return err
	}

	cfg := cli.configuration()
	if err := config.Validate(cfg, cli.Browser); err != nil {
		return err
	}

	var exporter export.Exporter
	if cli.Report != "" {
		if exporter, err = export.ForPath(cli.Report); err != nil {
			return err
		}
	}

	launcher, err := fetcher.NewLauncher(cli.Browser)
	if err != nil {
		return err
	}

	logger.Debug("starting crawl", "url", cfg.StartURL, "browser", cli.Browser, "output", cfg.OutputDir)

	var report *crawler.Report
	if cli.TUI {
		report, err = runTUI(ctx, cfg, launcher)
	} else {
		report, err = runPlain(ctx, cfg, launcher, logger, stderr)
	}

	if report != nil {
		export.PrintTable(stdout, report)
		if exporter != nil {
			if xerr := exporter.Export(report, cli.Report); xerr != nil {
				logger.Error("writing report failed", "file", cli.Report, "err", xerr)
				err = errors.Join(err, fmt.Errorf("writing report: %w", xerr))
			} else {
				logger.Info("report written", "file", cli.Report)
			}
		}
	}
	return err
}

func runPlain(ctx context.Context, cfg crawler.Configuration, launcher fetcher.Launcher, logger *log.Logger, stderr io.Writer) (*crawler.Report, error) {
	animate := false
	if f, ok := stderr.(*os.File); ok {
		animate = isatty.IsTerminal(f.Fd())
	}

	c, err := crawler.New(cfg, launcher,
		crawler.WithLogger(logger),
		crawler.WithObserver(progress.New(stderr, progress.WithAnimation(animate))),
	)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx)
}

// runTUI runs the crawl next to the dashboard. Quitting the dashboard cancels
// the crawl, and the dashboard quits once the crawl returns.
func runTUI(ctx context.Context, cfg crawler.Configuration, launcher fetcher.Launcher) (*crawler.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewModel(cfg.StartURL, cancel), tea.WithAltScreen())

	c, err := crawler.New(cfg, launcher,
		crawler.WithLogger(log.New(io.Discard)),
		crawler.WithObserver(ui.NewObserver(p.Send)),
	)
	if err != nil {
		return nil, err
	}

	var (
		report   *crawler.Report
		crawlErr error
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		report, crawlErr = c.Run(ctx)
		p.Send(ui.CrawlFinishedMsg{Report: report, Err: crawlErr})
		return nil
	})
	g.Go(func() error {
		if _, err := p.Run(); err != nil {
			cancel()
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, crawlErr
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, &cli, os.Stdout, os.Stderr)
	stop()
	kctx.FatalIfErrorf(err)
}
