// Package link turns raw sidebar hrefs into registry keys and fetch targets.
package link

import (
	"fmt"
	"strings"
)

// IndexKey is the reserved registry key of the crawl root.
const IndexKey = "index"

// Kind classifies a sidebar href.
type Kind int

const (
	// Internal links are fetched relative to the crawl root.
	Internal Kind = iota
	// Root is the "/" alias of the crawl root page.
	Root
	// External links start with an http scheme and are never fetched.
	External
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case External:
		return "external"
	default:
		return "internal"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "root":
		*k = Root
	case "internal":
		*k = Internal
	case "external":
		*k = External
	default:
		return fmt.Errorf("unknown link kind %q", text)
	}
	return nil
}

// Normalized is the result of normalizing a raw href against the crawl root
type Normalized struct {
	Kind Kind
	// Key is the canonical relative path used for dedup and the output file name.
	Key string
	// FetchURL is empty for external links.
	FetchURL string
}

// Normalize classifies rawHref and derives its registry key and absolute fetch URL.
//
// The rules are checked in order: "/" is the root alias, anything starting with
// "http" is external, everything else is internal with one leading slash stripped.
func Normalize(rawHref, root string) Normalized {
	switch {
	case rawHref == "/":
		return Normalized{Kind: Root, Key: IndexKey, FetchURL: root}
	case IsExternal(rawHref):
		return Normalized{Kind: External, Key: rawHref}
	default:
		key := strings.TrimPrefix(rawHref, "/")
		return Normalized{Kind: Internal, Key: key, FetchURL: FetchURL(root, key)}
	}
}

// IsExternal reports whether href points off-site. Only the scheme prefix is
// checked, so an absolute URL to the crawl host itself is also external.
func IsExternal(href string) bool {
	return strings.HasPrefix(href, "http")
}

// FetchURL joins the crawl root and a relative key without producing "//".
func FetchURL(root, key string) string {
	return strings.TrimSuffix(root, "/") + "/" + strings.TrimPrefix(key, "/")
}

// FileName returns the output file name of a key, relative to the output directory.
func FileName(key string) string {
	return strings.TrimPrefix(key, "/") + ".html"
}
