package types

import (
	"encoding/json"

	"github.com/go-scripts/gitbook-crawl/internal/link"
)

// PageEntry represents one document discovered from the sidebar
type PageEntry struct {
	Title string `json:"title"`
	// Link is the canonical relative path; the root uses link.IndexKey.
	Link string `json:"link"`
	// Href is the raw anchor attribute the entry was discovered from.
	Href    string    `json:"href"`
	Kind    link.Kind `json:"kind"`
	Content *string   `json:"content,omitempty"`
	// Children is reserved for nested navigation and is always empty.
	Children []PageEntry `json:"children"`
}

// NewPageEntry builds an entry from a sidebar anchor
func NewPageEntry(title, href, root string) *PageEntry {
	n := link.Normalize(href, root)
	return &PageEntry{
		Title:    title,
		Link:     n.Key,
		Href:     href,
		Kind:     n.Kind,
		Children: []PageEntry{},
	}
}

// NewRootEntry builds the eagerly fetched root entry
func NewRootEntry(title, rootURL, content string) *PageEntry {
	return &PageEntry{
		Title:    title,
		Link:     link.IndexKey,
		Href:     rootURL,
		Kind:     link.Root,
		Content:  &content,
		Children: []PageEntry{},
	}
}

// HasContent reports whether the entry has been materialized
func (p *PageEntry) HasContent() bool {
	return p.Content != nil
}

// SetContent stores fetched markup on the entry
func (p *PageEntry) SetContent(content string) {
	p.Content = &content
}

// IsExternal reports whether the entry points off-site. Kind is derived from
// the raw href, so a key like "http-basics" from "/http-basics" stays internal.
func (p *PageEntry) IsExternal() bool {
	return p.Kind == link.External
}

// MarshalJSON keeps Children encoded as an empty list rather than null
func (p PageEntry) MarshalJSON() ([]byte, error) {
	type alias PageEntry
	a := alias(p)
	if a.Children == nil {
		a.Children = []PageEntry{}
	}
	return json.Marshal(a)
}
