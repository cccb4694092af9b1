package normalize

import (
	"context"
	"errors"
	"testing"

	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/notion"
)

func rt(texts ...string) []notion.RichText {
	out := make([]notion.RichText, len(texts))
	for i, t := range texts {
		out[i] = notion.RichText{PlainText: t}
	}
	return out
}

type stubRowSource struct {
	rows map[string][]notion.TableRow
	err  error
}

func (s *stubRowSource) TableRows(_ context.Context, blockID string) ([]notion.TableRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows[blockID], nil
}

func TestBlockKindMapping(t *testing.T) {
	tests := []struct {
		name string
		raw  notion.Block
		want model.BlockKind
	}{
		{"paragraph", notion.Block{Type: "paragraph", Paragraph: &notion.RichTextPayload{RichText: rt("hi")}}, model.KindParagraph},
		{"heading_1", notion.Block{Type: "heading_1", Heading1: &notion.RichTextPayload{RichText: rt("h")}}, model.KindHeading1},
		{"heading_2", notion.Block{Type: "heading_2", Heading2: &notion.RichTextPayload{RichText: rt("h")}}, model.KindHeading2},
		{"heading_3", notion.Block{Type: "heading_3", Heading3: &notion.RichTextPayload{RichText: rt("h")}}, model.KindHeading3},
		{"bulleted_list_item", notion.Block{Type: "bulleted_list_item", BulletedListItem: &notion.RichTextPayload{RichText: rt("x")}}, model.KindBulletedItem},
		{"numbered_list_item", notion.Block{Type: "numbered_list_item", NumberedListItem: &notion.RichTextPayload{RichText: rt("x")}}, model.KindNumberedItem},
		{"quote", notion.Block{Type: "quote", Quote: &notion.RichTextPayload{RichText: rt("q")}}, model.KindQuote},
		{"callout", notion.Block{Type: "callout", Callout: &notion.RichTextPayload{RichText: rt("c")}}, model.KindCallout},
		{"divider", notion.Block{Type: "divider"}, model.KindDivider},
		{"unknown type", notion.Block{Type: "synced_block"}, model.KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Block(&tt.raw)
			if got.Kind != tt.want {
				t.Errorf("Expected kind %s, got %s", tt.want, got.Kind)
			}
		})
	}
}

func TestBlockConcatenatesFragments(t *testing.T) {
	raw := notion.Block{
		Type:      "paragraph",
		Paragraph: &notion.RichTextPayload{RichText: rt("Hello, ", "World", "!")},
	}

	got := Block(&raw)
	if got.Text != "Hello, World!" {
		t.Errorf("Expected concatenated text, got %q", got.Text)
	}
	if len(got.Spans) != 3 {
		t.Errorf("Expected 3 spans, got %d", len(got.Spans))
	}
}

func TestBlockMalformedPayloadDegrades(t *testing.T) {
	// Declared paragraph but no paragraph payload.
	raw := notion.Block{ID: "b1", Type: "paragraph"}

	got := Block(&raw)
	if got.Kind != model.KindUnsupported {
		t.Errorf("Expected unsupported, got %s", got.Kind)
	}
}

func TestBlockCodeDefaults(t *testing.T) {
	raw := notion.Block{
		Type: "code",
		Code: &notion.CodePayload{RichText: rt("print(1)")},
	}

	got := Block(&raw)
	if got.Language != "text" {
		t.Errorf("Expected default language text, got %q", got.Language)
	}
	if got.Code != "print(1)" {
		t.Errorf("Expected code content, got %q", got.Code)
	}

	raw.Code.Language = "python"
	if got := Block(&raw); got.Language != "python" {
		t.Errorf("Expected python, got %q", got.Language)
	}
}

func TestBlockImageAltFallback(t *testing.T) {
	raw := notion.Block{
		Type: "image",
		Image: &notion.ImagePayload{
			Type:     "external",
			External: &notion.ExternalFile{URL: "https://example.com/a.png"},
		},
	}

	got := Block(&raw)
	if got.Image == nil {
		t.Fatal("Expected image payload")
	}
	if got.Image.AltText != ImageAltFallback {
		t.Errorf("Expected alt fallback, got %q", got.Image.AltText)
	}
	if got.Image.Caption != "" {
		t.Errorf("Expected empty caption, got %q", got.Image.Caption)
	}

	raw.Image.Caption = rt("A diagram")
	got = Block(&raw)
	if got.Image.AltText != "A diagram" || got.Image.Caption != "A diagram" {
		t.Errorf("Expected caption as alt, got alt=%q caption=%q", got.Image.AltText, got.Image.Caption)
	}
}

func TestBlockImageHostedFile(t *testing.T) {
	raw := notion.Block{
		Type: "image",
		Image: &notion.ImagePayload{
			Type: "file",
			File: &notion.HostedFile{URL: "https://files.example.com/b.jpg"},
		},
	}

	got := Block(&raw)
	if got.Image == nil || got.Image.URL != "https://files.example.com/b.jpg" {
		t.Errorf("Expected hosted file URL, got %+v", got.Image)
	}
}

func TestBlockUnknownTypeKeepsGenericText(t *testing.T) {
	var raw notion.Block
	data := []byte(`{"id":"x","type":"toggle","toggle":{"rich_text":[{"plain_text":"still here"}]}}`)
	if err := raw.UnmarshalJSON(data); err != nil {
		t.Fatalf("Unexpected unmarshal error: %v", err)
	}

	got := Block(&raw)
	if got.Kind != model.KindUnsupported {
		t.Errorf("Expected unsupported, got %s", got.Kind)
	}
	if got.Text != "still here" {
		t.Errorf("Expected generic text to survive, got %q", got.Text)
	}
}

func TestBlocksFillsTableRows(t *testing.T) {
	raws := []notion.Block{
		{ID: "t1", Type: "table", Table: &notion.TablePayload{TableWidth: 2, HasColumnHeader: true}},
	}
	src := &stubRowSource{rows: map[string][]notion.TableRow{
		"t1": {
			{Cells: [][]notion.RichText{rt("Name"), rt("Value")}},
			{Cells: [][]notion.RichText{rt("a"), {{PlainText: "4"}, {PlainText: "2"}}}},
		},
	}}

	blocks, err := Blocks(context.Background(), raws, src)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	table := blocks[0].Table
	if table == nil {
		t.Fatal("Expected table payload")
	}
	if table.ColumnCount != 2 || !table.HasColumnHeader {
		t.Errorf("Table metadata not preserved: %+v", table)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}
	cell := table.Rows[1].Cells[1]
	if len(cell) != 2 || cell[0] != "4" || cell[1] != "2" {
		t.Errorf("Expected cell fragments preserved, got %v", cell)
	}
}

func TestBlocksTableRowErrorPropagates(t *testing.T) {
	raws := []notion.Block{
		{ID: "t1", Type: "table", Table: &notion.TablePayload{TableWidth: 1}},
	}
	wantErr := errors.New("upstream down")
	src := &stubRowSource{err: wantErr}

	_, err := Blocks(context.Background(), raws, src)
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected wrapped upstream error, got %v", err)
	}
}

func TestBlocksPreservesOrder(t *testing.T) {
	raws := []notion.Block{
		{Type: "heading_1", Heading1: &notion.RichTextPayload{RichText: rt("first")}},
		{Type: "paragraph", Paragraph: &notion.RichTextPayload{RichText: rt("second")}},
		{Type: "divider"},
	}

	blocks, err := Blocks(context.Background(), raws, &stubRowSource{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "first" || blocks[1].Text != "second" || blocks[2].Kind != model.KindDivider {
		t.Errorf("Block order not preserved: %+v", blocks)
	}
}

func TestSpansCarryAnnotations(t *testing.T) {
	fragments := []notion.RichText{
		{PlainText: "bold", Annotations: notion.Annotations{Bold: true}},
		{PlainText: "link", Href: "https://example.com"},
	}

	spans := Spans(fragments)
	if !spans[0].Bold {
		t.Error("Expected bold annotation to carry over")
	}
	if spans[1].Href != "https://example.com" {
		t.Errorf("Expected href to carry over, got %q", spans[1].Href)
	}
}
