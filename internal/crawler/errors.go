package crawler

import (
	"errors"
	"fmt"

	"github.com/go-scripts/gitbook-crawl/internal/writer"
)

// Crawl failures. None of them is retried; by default each one aborts the
// whole crawl. Use errors.Is to tell them apart.
var (
	// ErrLaunch is returned when the browser session could not start.
	ErrLaunch = errors.New("browser launch failed")

	// ErrNavigation is returned when loading the root or a child page fails.
	ErrNavigation = errors.New("navigation failed")

	// ErrRegionNotFound is returned when the main-content or sidebar element
	// is missing from a loaded page. The concrete error is *RegionNotFoundError.
	ErrRegionNotFound = errors.New("region not found")

	// ErrUnsupportedExternalFetch is returned when an external link reaches
	// the fetch step because external links are not being ignored.
	ErrUnsupportedExternalFetch = errors.New("external links are not supported")

	// ErrFilesystem is returned when creating a directory or writing a page fails.
	ErrFilesystem = writer.ErrFilesystem

	// ErrOutsideDir is returned for sidebar links whose output file would land
	// outside the output directory. It wraps ErrFilesystem.
	ErrOutsideDir = writer.ErrOutsideDir
)

// RegionNotFoundError reports which region was missing from which page
type RegionNotFoundError struct {
	Region   string
	Selector string
	URL      string
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("no %s element found on %s (selector %q)", e.Region, e.URL, e.Selector)
}

// Is makes errors.Is(err, ErrRegionNotFound) match
func (e *RegionNotFoundError) Is(target error) bool {
	return target == ErrRegionNotFound
}

// recoverable reports whether a page failure may be skipped in keep-going mode.
// Filesystem failures and forbidden external fetches always abort, except for
// a link rejected for escaping the output directory.
func recoverable(err error) bool {
	return errors.Is(err, ErrNavigation) ||
		errors.Is(err, ErrRegionNotFound) ||
		errors.Is(err, ErrOutsideDir)
}
