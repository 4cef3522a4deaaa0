// Package metadata resolves bibliographic metadata for ISBNs through
// an ordered chain of external catalog sources fronted by an expiring
// cache.
package metadata

// Source names recorded on resolved metadata.
const (
	SourceGoogleBooks = "googlebooks"
	SourceOpenLibrary = "openlibrary"
	SourceNone        = "none"
)

// UnavailableTitle is the display title of the not-found sentinel.
const UnavailableTitle = "Details Unavailable"

// BookMetadata is the canonical shape every provider response is
// mapped into. Missing provider fields stay zero-valued; slices are
// never nil once a provider or the sentinel constructor produced the
// value.
type BookMetadata struct {
	ISBN          string   `json:"isbn"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	ThumbnailURL  string   `json:"thumbnail_url"`
	PublishedDate string   `json:"published_date"`
	Publisher     string   `json:"publisher"`
	PageCount     int      `json:"page_count"`
	Categories    []string `json:"categories"`
	Language      string   `json:"language"`
	Source        string   `json:"source"`
}

// Found reports whether the metadata came from a real source rather
// than the not-found sentinel.
func (m BookMetadata) Found() bool {
	return m.Source != "" && m.Source != SourceNone
}

// EnsureDefaults replaces nil slices so encoded results carry empty
// sequences rather than null.
func (m *BookMetadata) EnsureDefaults() {
	if m.Authors == nil {
		m.Authors = []string{}
	}
	if m.Categories == nil {
		m.Categories = []string{}
	}
}

// Unavailable is the explicit "lookup attempted, nothing found"
// result, distinct from "not yet looked up". It is returned to callers
// but never cached, so a later resolution retries the chain.
func Unavailable(isbn string) BookMetadata {
	return BookMetadata{
		ISBN:       isbn,
		Title:      UnavailableTitle,
		Authors:    []string{},
		Categories: []string{},
		Source:     SourceNone,
	}
}
