package render

import (
	"strings"
	"testing"

	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/util"
)

func TestHighlightCode(t *testing.T) {
	highlighted := HighlightCode(`fmt.Println("hi")`, "go", "gruvbox")

	if !strings.Contains(highlighted, "chroma") {
		t.Errorf("Expected chroma classes in output, got %q", highlighted)
	}
	if !strings.Contains(highlighted, "Println") {
		t.Errorf("Expected code content in output, got %q", highlighted)
	}
}

func TestHighlightCodeUnknownLanguageFallsBack(t *testing.T) {
	highlighted := HighlightCode("some plain text", "definitely-not-a-language", "gruvbox")

	if !strings.Contains(highlighted, "some plain text") {
		t.Errorf("Expected content preserved, got %q", highlighted)
	}
}

func TestRenderMarkdownHeadingAnchors(t *testing.T) {
	out := string(RenderMarkdown([]byte("# Title {#heading-0}\n\nbody\n"), "gruvbox"))

	if !strings.Contains(out, `id="heading-0"`) {
		t.Errorf("Expected heading anchor id, got %q", out)
	}
	if !strings.Contains(out, "body") {
		t.Errorf("Expected body paragraph, got %q", out)
	}
}

func TestRenderMarkdownCodeBlockHighlighted(t *testing.T) {
	out := string(RenderMarkdown([]byte("```go\nfmt.Println(1)\n```\n"), "gruvbox"))

	if !strings.Contains(out, `<div class="highlight">`) {
		t.Errorf("Expected highlight wrapper, got %q", out)
	}
}

func TestRenderMarkdownKeepsInlineHTML(t *testing.T) {
	out := string(RenderMarkdown([]byte(`before <div class="video-embed"></div> after`), "gruvbox"))

	if !strings.Contains(out, `<div class="video-embed">`) {
		t.Errorf("Expected inline HTML preserved, got %q", out)
	}
}

func TestRenderBlocksCachedReuses(t *testing.T) {
	blocks := []model.Block{{Kind: model.KindParagraph, Text: "cached paragraph"}}
	hash := util.ContentHash(BlocksToMarkdown(blocks))

	first := RenderBlocksCached(blocks, hash, "gruvbox")
	second := RenderBlocksCached(blocks, hash, "gruvbox")

	if string(first) != string(second) {
		t.Errorf("Expected identical cached render, got %q vs %q", first, second)
	}
	if !strings.Contains(string(first), "cached paragraph") {
		t.Errorf("Expected rendered content, got %q", first)
	}
}
