package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/notion"
	"github.com/calepin/calepin/internal/plugin"
)

type fakeSource struct {
	pages     []notion.Page
	blocks    map[string][]notion.Block
	rows      map[string][]notion.TableRow
	queryErr  error
	blocksErr error

	queryCalls  int
	blocksCalls int
}

func (f *fakeSource) QueryPublished(_ context.Context) ([]notion.Page, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.pages, nil
}

func (f *fakeSource) BlockChildren(_ context.Context, blockID string) ([]notion.Block, error) {
	f.blocksCalls++
	if f.blocksErr != nil {
		return nil, f.blocksErr
	}
	return f.blocks[blockID], nil
}

func (f *fakeSource) TableRows(_ context.Context, blockID string) ([]notion.TableRow, error) {
	return f.rows[blockID], nil
}

func titledPage(id, title string) notion.Page {
	return notion.Page{
		ID: id,
		Properties: map[string]notion.Property{
			"Name": {Type: "title", Title: []notion.RichText{{PlainText: title}}},
		},
	}
}

func TestListPublishedDerivesSlugs(t *testing.T) {
	src := &fakeSource{pages: []notion.Page{
		titledPage("p1", "Hello, World!"),
		titledPage("p2", "Second Post"),
	}}
	repo := NewNotionPostRepository(src, nil)

	summaries, err := repo.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Slug != "hello-world" || summaries[1].Slug != "second-post" {
		t.Errorf("Unexpected slugs: %s, %s", summaries[0].Slug, summaries[1].Slug)
	}
}

func TestListPublishedDropsTitleless(t *testing.T) {
	src := &fakeSource{pages: []notion.Page{
		titledPage("p1", "Kept"),
		{ID: "p2", Properties: map[string]notion.Property{}},
	}}
	repo := NewNotionPostRepository(src, nil)

	summaries, err := repo.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Title != "Kept" {
		t.Errorf("Expected only the titled entry, got %+v", summaries)
	}
}

func TestListPublishedPropagatesUpstreamError(t *testing.T) {
	wantErr := errors.New("rate limited")
	repo := NewNotionPostRepository(&fakeSource{queryErr: wantErr}, nil)

	_, err := repo.ListPublished(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected upstream error, got %v", err)
	}
}

func TestGetBySlugAssemblesPost(t *testing.T) {
	src := &fakeSource{
		pages: []notion.Page{titledPage("p1", "Hello, World!")},
		blocks: map[string][]notion.Block{
			"p1": {
				{Type: "heading_1", Heading1: &notion.RichTextPayload{RichText: []notion.RichText{{PlainText: "Intro"}}}},
				{Type: "paragraph", Paragraph: &notion.RichTextPayload{RichText: []notion.RichText{{PlainText: "Watch {{YouTube[vid42]}}"}}}},
			},
		},
	}
	repo := NewNotionPostRepository(src, nil)

	post, err := repo.GetBySlug(context.Background(), "hello-world")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if post.Title != "Hello, World!" {
		t.Errorf("Expected title, got %q", post.Title)
	}
	if len(post.Blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(post.Blocks))
	}
	if post.Blocks[0].Kind != model.KindHeading1 {
		t.Errorf("Expected heading first, got %s", post.Blocks[0].Kind)
	}
	if !strings.Contains(post.Blocks[1].Text, "youtube.com/embed/vid42") {
		t.Errorf("Expected macro expanded, got %q", post.Blocks[1].Text)
	}
}

func TestGetBySlugNotFound(t *testing.T) {
	repo := NewNotionPostRepository(&fakeSource{pages: []notion.Page{titledPage("p1", "Other")}}, nil)

	_, err := repo.GetBySlug(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetBySlugFirstMatchWins(t *testing.T) {
	src := &fakeSource{
		pages: []notion.Page{
			titledPage("p1", "Same Title"),
			titledPage("p2", "Same Title!"),
		},
		blocks: map[string][]notion.Block{
			"p1": {{Type: "paragraph", Paragraph: &notion.RichTextPayload{RichText: []notion.RichText{{PlainText: "first"}}}}},
			"p2": {{Type: "paragraph", Paragraph: &notion.RichTextPayload{RichText: []notion.RichText{{PlainText: "second"}}}}},
		},
	}
	repo := NewNotionPostRepository(src, nil)

	post, err := repo.GetBySlug(context.Background(), "same-title")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if post.SourceID != "p1" {
		t.Errorf("Expected first listed entry to win, got %s", post.SourceID)
	}
	if post.Blocks[0].Text != "first" {
		t.Errorf("Expected first entry's content, got %q", post.Blocks[0].Text)
	}
}

func TestGetBySlugBlockFetchErrorPropagates(t *testing.T) {
	wantErr := errors.New("upstream down")
	src := &fakeSource{
		pages:     []notion.Page{titledPage("p1", "Post")},
		blocksErr: wantErr,
	}
	repo := NewNotionPostRepository(src, nil)

	_, err := repo.GetBySlug(context.Background(), "post")
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected upstream error, got %v", err)
	}
}

func TestGetBySlugFillsTableRows(t *testing.T) {
	src := &fakeSource{
		pages: []notion.Page{titledPage("p1", "Tables")},
		blocks: map[string][]notion.Block{
			"p1": {{ID: "t1", Type: "table", Table: &notion.TablePayload{TableWidth: 1}}},
		},
		rows: map[string][]notion.TableRow{
			"t1": {{Cells: [][]notion.RichText{{{PlainText: "cell"}}}}},
		},
	}
	repo := NewNotionPostRepository(src, nil)

	post, err := repo.GetBySlug(context.Background(), "tables")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	table := post.Blocks[0].Table
	if table == nil || len(table.Rows) != 1 || table.Rows[0].Cells[0][0] != "cell" {
		t.Errorf("Expected table rows filled in, got %+v", table)
	}
}

func TestRegisterPluginAvailable(t *testing.T) {
	repo := NewNotionPostRepository(&fakeSource{}, nil)

	before := len(repo.AvailablePlugins())
	repo.RegisterPlugin(customPlugin{})
	names := repo.AvailablePlugins()

	if len(names) != before+1 {
		t.Errorf("Expected %d plugins, got %d", before+1, len(names))
	}
	found := false
	for _, name := range names {
		if name == "Custom" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected Custom in %v", names)
	}
}

type customPlugin struct{}

func (customPlugin) Name() string { return "Custom" }

func (customPlugin) Render(param string, _ *plugin.Context) (string, error) {
	return "<custom>" + param + "</custom>", nil
}
