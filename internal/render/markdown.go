package render

import (
	"fmt"
	"strings"

	"github.com/calepin/calepin/internal/model"
)

// BlocksToMarkdown serializes a normalized block sequence into markdown.
// Heading anchors are assigned by position in the heading list so they line
// up with the anchors the table-of-contents plugin emits. Macro-expanded HTML
// fragments inside block text pass through untouched; the markdown renderer
// keeps inline HTML as is.
func BlocksToMarkdown(blocks []model.Block) []byte {
	var b strings.Builder
	headingIndex := 0

	for i, block := range blocks {
		switch block.Kind {
		case model.KindHeading1, model.KindHeading2, model.KindHeading3:
			level := block.Kind.HeadingLevel()
			fmt.Fprintf(&b, "%s %s {#heading-%d}\n\n", strings.Repeat("#", level), inlineText(block), headingIndex)
			headingIndex++

		case model.KindParagraph:
			b.WriteString(inlineText(block))
			b.WriteString("\n\n")

		case model.KindBulletedItem:
			b.WriteString("- ")
			b.WriteString(inlineText(block))
			b.WriteString("\n")
			if !nextIsKind(blocks, i, model.KindBulletedItem) {
				b.WriteString("\n")
			}

		case model.KindNumberedItem:
			b.WriteString("1. ")
			b.WriteString(inlineText(block))
			b.WriteString("\n")
			if !nextIsKind(blocks, i, model.KindNumberedItem) {
				b.WriteString("\n")
			}

		case model.KindQuote, model.KindCallout:
			for _, line := range strings.Split(inlineText(block), "\n") {
				b.WriteString("> ")
				b.WriteString(line)
				b.WriteString("\n")
			}
			b.WriteString("\n")

		case model.KindCode:
			fmt.Fprintf(&b, "```%s\n%s\n```\n\n", block.Language, block.Code)

		case model.KindImage:
			fmt.Fprintf(&b, "![%s](%s)\n\n", block.Image.AltText, block.Image.URL)

		case model.KindDivider:
			b.WriteString("---\n\n")

		case model.KindTable:
			writeTable(&b, block.Table)

		case model.KindUnsupported:
			if block.Text != "" {
				b.WriteString(block.Text)
				b.WriteString("\n\n")
			}
		}
	}

	return []byte(b.String())
}

// inlineText renders a block's inline content. Spans carry formatting but
// predate macro expansion, so they are only usable while their concatenation
// still equals Text; once expansion rewrote Text, the expanded string wins.
func inlineText(block model.Block) string {
	if len(block.Spans) == 0 {
		return block.Text
	}

	var plain strings.Builder
	for _, s := range block.Spans {
		plain.WriteString(s.Text)
	}
	if plain.String() != block.Text {
		return block.Text
	}

	var b strings.Builder
	for _, s := range block.Spans {
		b.WriteString(spanMarkdown(s))
	}
	return b.String()
}

func spanMarkdown(s model.Span) string {
	text := s.Text
	if s.Code {
		text = "`" + text + "`"
	}
	if s.Bold {
		text = "**" + text + "**"
	}
	if s.Italic {
		text = "*" + text + "*"
	}
	if s.Strikethrough {
		text = "~~" + text + "~~"
	}
	if s.Href != "" {
		text = "[" + text + "](" + s.Href + ")"
	}
	return text
}

func nextIsKind(blocks []model.Block, i int, kind model.BlockKind) bool {
	return i+1 < len(blocks) && blocks[i+1].Kind == kind
}

func writeTable(b *strings.Builder, table *model.Table) {
	if table == nil || len(table.Rows) == 0 {
		return
	}

	width := table.ColumnCount
	if width == 0 {
		width = len(table.Rows[0].Cells)
	}

	rows := table.Rows
	if table.HasColumnHeader {
		writeTableRow(b, rows[0], width)
		rows = rows[1:]
	} else {
		// Markdown tables need a header row; emit an empty one.
		writeTableRow(b, model.TableRow{Cells: make([][]string, width)}, width)
	}

	b.WriteString("|")
	for i := 0; i < width; i++ {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, row := range rows {
		writeTableRow(b, row, width)
	}
	b.WriteString("\n")
}

func writeTableRow(b *strings.Builder, row model.TableRow, width int) {
	b.WriteString("|")
	for i := 0; i < width; i++ {
		cell := ""
		if i < len(row.Cells) {
			cell = strings.Join(row.Cells[i], "")
		}
		b.WriteString(strings.ReplaceAll(cell, "|", `\|`))
		b.WriteString("|")
	}
	b.WriteString("\n")
}
