package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/calepin/calepin/internal/assets"
	"github.com/calepin/calepin/internal/config"
	"github.com/calepin/calepin/internal/macro"
	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/normalize"
	"github.com/calepin/calepin/internal/notion"
	"github.com/calepin/calepin/internal/plugin"
	"github.com/calepin/calepin/internal/util"
)

// Source is the slice of the external API this repository consumes.
type Source interface {
	QueryPublished(ctx context.Context) ([]notion.Page, error)
	BlockChildren(ctx context.Context, blockID string) ([]notion.Block, error)
	TableRows(ctx context.Context, blockID string) ([]notion.TableRow, error)
}

type NotionPostRepository struct { // implements PostRepository
	source   Source
	registry *plugin.Registry
	expander *macro.Expander
	cfg      *config.Config

	mirror *assets.Mirror // optional, nil when disabled
}

func NewNotionPostRepository(source Source, cfg *config.Config) *NotionPostRepository {
	registry := plugin.NewBuiltinRegistry()
	return &NotionPostRepository{
		source:   source,
		registry: registry,
		expander: macro.NewExpander(registry),
		cfg:      cfg,
	}
}

// SetMirror enables image re-homing through the given mirror.
func (r *NotionPostRepository) SetMirror(m *assets.Mirror) {
	r.mirror = m
}

func (r *NotionPostRepository) RegisterPlugin(p plugin.Renderer) {
	r.registry.Register(p)
}

func (r *NotionPostRepository) AvailablePlugins() []string {
	return r.registry.Names()
}

func (r *NotionPostRepository) ListPublished(ctx context.Context) ([]model.PostSummary, error) {
	pages, err := r.source.QueryPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing published entries: %w", err)
	}

	summaries := make([]model.PostSummary, 0, len(pages))
	for i := range pages {
		summary, ok := pageSummary(&pages[i])
		if !ok {
			repoLogger.Warn().Str("page_id", pages[i].ID).Msg("Entry without a usable title, dropping")
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetBySlug returns ErrNotFound when no entry matches. When two titles derive
// the same slug, the first match in listing order wins.
func (r *NotionPostRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	summaries, err := r.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	for _, summary := range summaries {
		if summary.Slug != slug {
			continue
		}

		raws, err := r.source.BlockChildren(ctx, string(summary.SourceID))
		if err != nil {
			return nil, fmt.Errorf("fetching blocks of %q: %w", slug, err)
		}

		blocks, err := normalize.Blocks(ctx, raws, r.source)
		if err != nil {
			return nil, fmt.Errorf("normalizing blocks of %q: %w", slug, err)
		}

		post := &model.Post{PostSummary: summary, Blocks: blocks}

		if r.mirror != nil {
			r.mirror.RewriteImages(ctx, post.Blocks)
		}

		r.expander.ExpandPost(post, r.cfg)
		return post, nil
	}

	return nil, ErrNotFound
}

func pageSummary(page *notion.Page) (model.PostSummary, bool) {
	title := normalize.PlainText(page.TitleProperty())
	if title == "" {
		return model.PostSummary{}, false
	}

	summary := model.PostSummary{
		Title:    title,
		Slug:     util.Slugify(title),
		SourceID: model.PageID(page.ID),
	}

	for _, name := range []string{"Published Date", "Date"} {
		prop, ok := page.Properties[name]
		if !ok || prop.Date == nil {
			continue
		}
		if t, ok := parseDate(prop.Date.Start); ok {
			summary.PublishedAt = &t
		}
		break
	}

	if tags, ok := page.Properties["Tags"]; ok {
		for _, option := range tags.MultiSelect {
			summary.Tags = append(summary.Tags, option.Name)
		}
	}

	return summary, true
}

func parseDate(value string) (time.Time, bool) {
	for _, format := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
