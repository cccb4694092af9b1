// Package render turns normalized blocks into HTML with syntax highlighting.
package render

import (
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/calepin/calepin/internal/cache"
	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/theme"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

func HighlightCode(code, language, highlightTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	style := styles.Get(highlightTheme)
	formatter := theme.GetFormatter()
	err = formatter.Format(&buf, style, iterator)
	if err != nil {
		return code
	}

	return html.UnescapeString(buf.String())
}

// RenderMarkdown renders markdown to HTML, routing fenced code blocks through
// chroma with the given highlight theme.
func RenderMarkdown(md []byte, highlightTheme string) []byte {
	opts := md_html.RendererOptions{
		Flags: md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteReturnLinks,
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if code, ok := node.(*ast.CodeBlock); ok && entering {
				var lang string
				if info := code.Info; info != nil {
					lang = string(info)
				}
				highlighted := HighlightCode(string(code.Literal), lang, highlightTheme)
				fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", highlighted)
				return ast.GoToNext, true
			}

			return ast.GoToNext, false
		},
	}

	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.HeadingIDs | parser.AutoHeadingIDs | parser.Attributes | parser.BackslashLineBreak |
			parser.OrderedListStart | parser.NonBlockingSpace,
	).Parse(md)

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

// RenderBlocks renders a post's block sequence to HTML.
func RenderBlocks(blocks []model.Block, highlightTheme string) []byte {
	return RenderMarkdown(BlocksToMarkdown(blocks), highlightTheme)
}

// Mutex to protect the check-render-set operation in RenderBlocksCached
var renderCacheMutex sync.Mutex

// RenderBlocksCached is RenderBlocks behind the rendered-content cache,
// keyed by content hash and highlight theme.
func RenderBlocksCached(blocks []model.Block, contentHash, highlightTheme string) []byte {
	if contentHash == "" {
		renderLogger.Warn().Msg("Content hash is empty, skipping cache check")
		return RenderBlocks(blocks, highlightTheme)
	}

	if cached, found := cache.GetRenderedHTML(contentHash, highlightTheme); found {
		renderLogger.Debug().Str("contentHash", contentHash).Str("highlightTheme", highlightTheme).Msg("Cache hit for rendered content")
		return cached.HTML
	}

	renderLogger.Debug().Str("contentHash", contentHash).Str("highlightTheme", highlightTheme).Msg("Cache miss for rendered content")
	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	rendered := RenderBlocks(blocks, highlightTheme)
	cache.SetRenderedHTML(contentHash, highlightTheme, rendered)

	return rendered
}
