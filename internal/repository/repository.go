// Package repository assembles posts from the external source: fetch,
// normalize, macro-expand.
package repository

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/plugin"
)

// ErrNotFound is returned by GetBySlug when no published entry's derived slug
// matches. It is a normal result variant, distinct from upstream failures.
var ErrNotFound = errors.New("post not found")

type PostRepository interface {
	// ListPublished returns the published entries' metadata in source order.
	// Entries without a usable title are dropped, not errored.
	ListPublished(ctx context.Context) ([]model.PostSummary, error)

	// GetBySlug resolves slug against the published listing, fetches and
	// normalizes the entry's blocks, and macro-expands its text in place.
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)

	RegisterPlugin(p plugin.Renderer)
	AvailablePlugins() []string
}

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}
