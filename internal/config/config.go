// Package config holds the command line defaults, the optional YAML config
// file resolver and validation of the resulting crawl settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
	"github.com/go-scripts/gitbook-crawl/internal/fetcher"
)

// DefaultConfigFile is looked up in the working directory when --config is
// not given.
const DefaultConfigFile = ".gitbook-crawl.yaml"

// Defaults used by the command line
const (
	DefaultBrowser  = fetcher.BackendChromedp
	DefaultLogLevel = "info"
)

var (
	// ErrInvalidURL is returned for a start URL that is not absolute.
	ErrInvalidURL = errors.New("invalid start URL")
	// ErrUnknownBrowser is returned for an unsupported fetcher backend.
	ErrUnknownBrowser = errors.New("unknown browser backend")
	// ErrEmptySelector is returned when a region selector is blank.
	ErrEmptySelector = errors.New("selector must not be empty")
)

// Validate checks a crawl configuration and the backend it will run on
func Validate(cfg crawler.Configuration, browser string) error {
	var errs []error

	if err := validateURL(cfg.StartURL); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(fetcher.Backends(), browser) {
		errs = append(errs, fmt.Errorf("%w %q, expected one of %s",
			ErrUnknownBrowser, browser, strings.Join(fetcher.Backends(), ", ")))
	}
	if strings.TrimSpace(cfg.MainSelector) == "" {
		errs = append(errs, fmt.Errorf("main %w", ErrEmptySelector))
	}
	if strings.TrimSpace(cfg.SidebarSelector) == "" {
		errs = append(errs, fmt.Errorf("sidebar %w", ErrEmptySelector))
	}
	if cfg.Fetch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", cfg.Fetch.Timeout))
	}

	return errors.Join(errs...)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
		}
	case "file":
	default:
		return fmt.Errorf("%w: %q must be an http(s) or file URL", ErrInvalidURL, raw)
	}
	return nil
}
