// Package model defines core data structures and types for the content pipeline.
package model

import "time"

// PageID is the opaque identifier a source page carries in the external system.
type PageID string

// PostSummary is the metadata extracted from one published entry. Slug is a
// pure function of Title (see util.Slugify); two titles that normalize to the
// same slug are indistinguishable to lookup-by-slug.
type PostSummary struct {
	Title       string
	Slug        string
	SourceID    PageID
	PublishedAt *time.Time
	Tags        []string
}

// Post is a fully assembled content entry. It is rebuilt on every fetch and
// never persisted back to the source.
type Post struct {
	PostSummary

	Blocks []Block
}

// Headings returns the post's heading blocks in document order.
func (p *Post) Headings() []Block {
	var out []Block
	for _, b := range p.Blocks {
		if b.Kind.HeadingLevel() > 0 {
			out = append(out, b)
		}
	}
	return out
}
