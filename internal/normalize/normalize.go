// Package normalize converts raw source blocks into the internal block
// schema. Mapping a single block is pure; the batch entry point performs the
// one extra lookup table blocks need through a narrow source interface.
package normalize

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/calepin/calepin/internal/model"
	"github.com/calepin/calepin/internal/notion"
)

// ImageAltFallback is used when an image block carries no caption.
const ImageAltFallback = "Blog image"

var normLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	normLogger = l
}

// TableRowSource provides the second lookup a table block requires, keyed by
// the table block's id.
type TableRowSource interface {
	TableRows(ctx context.Context, blockID string) ([]notion.TableRow, error)
}

// PlainText joins the fragments' plain text in order, ignoring annotations.
func PlainText(fragments []notion.RichText) string {
	var out string
	for _, f := range fragments {
		out += f.PlainText
	}
	return out
}

// Spans converts fragments into the formatting-preserving span sequence.
func Spans(fragments []notion.RichText) []model.Span {
	if len(fragments) == 0 {
		return nil
	}
	spans := make([]model.Span, len(fragments))
	for i, f := range fragments {
		spans[i] = model.Span{
			Text:          f.PlainText,
			Bold:          f.Annotations.Bold,
			Italic:        f.Annotations.Italic,
			Strikethrough: f.Annotations.Strikethrough,
			Code:          f.Annotations.Code,
			Href:          f.Href,
		}
	}
	return spans
}

// Block maps one raw block to its normalized form. It never fails: a payload
// that does not match its declared type degrades to an unsupported block so
// sibling blocks keep processing. Table blocks come back without rows; Blocks
// fills those in.
func Block(raw *notion.Block) model.Block {
	switch raw.Type {
	case "paragraph":
		return richTextBlock(model.KindParagraph, raw, raw.Paragraph)
	case "heading_1":
		return richTextBlock(model.KindHeading1, raw, raw.Heading1)
	case "heading_2":
		return richTextBlock(model.KindHeading2, raw, raw.Heading2)
	case "heading_3":
		return richTextBlock(model.KindHeading3, raw, raw.Heading3)
	case "bulleted_list_item":
		return richTextBlock(model.KindBulletedItem, raw, raw.BulletedListItem)
	case "numbered_list_item":
		return richTextBlock(model.KindNumberedItem, raw, raw.NumberedListItem)
	case "quote":
		return richTextBlock(model.KindQuote, raw, raw.Quote)
	case "callout":
		return richTextBlock(model.KindCallout, raw, raw.Callout)

	case "code":
		if raw.Code == nil {
			return degraded(raw)
		}
		language := raw.Code.Language
		if language == "" {
			language = "text"
		}
		return model.Block{
			Kind:     model.KindCode,
			Code:     PlainText(raw.Code.RichText),
			Language: language,
		}

	case "image":
		if raw.Image == nil {
			return degraded(raw)
		}
		var url string
		switch {
		case raw.Image.External != nil:
			url = raw.Image.External.URL
		case raw.Image.File != nil:
			url = raw.Image.File.URL
		default:
			return degraded(raw)
		}
		caption := PlainText(raw.Image.Caption)
		alt := caption
		if alt == "" {
			alt = ImageAltFallback
		}
		return model.Block{
			Kind:  model.KindImage,
			Image: &model.Image{URL: url, Caption: caption, AltText: alt},
		}

	case "divider":
		return model.Block{Kind: model.KindDivider}

	case "table":
		if raw.Table == nil {
			return degraded(raw)
		}
		return model.Block{
			Kind: model.KindTable,
			Table: &model.Table{
				ColumnCount:     raw.Table.TableWidth,
				HasColumnHeader: raw.Table.HasColumnHeader,
				HasRowHeader:    raw.Table.HasRowHeader,
			},
		}

	default:
		// Best effort: some unrecognized types still expose a generic
		// text-fragment array under their own type key.
		return model.Block{
			Kind: model.KindUnsupported,
			Text: PlainText(raw.GenericRichText()),
		}
	}
}

// Blocks normalizes a raw block sequence in order, fetching each table
// block's rows through src. Row-lookup failures propagate; per-block payload
// problems degrade to unsupported blocks instead.
func Blocks(ctx context.Context, raws []notion.Block, src TableRowSource) ([]model.Block, error) {
	blocks := make([]model.Block, 0, len(raws))
	for i := range raws {
		raw := &raws[i]
		block := Block(raw)

		if block.Kind == model.KindTable {
			rows, err := src.TableRows(ctx, raw.ID)
			if err != nil {
				return nil, fmt.Errorf("fetching rows of table block %s: %w", raw.ID, err)
			}
			block.Table.Rows = tableRows(rows)
		}

		blocks = append(blocks, block)
	}
	return blocks, nil
}

func richTextBlock(kind model.BlockKind, raw *notion.Block, payload *notion.RichTextPayload) model.Block {
	if payload == nil {
		return degraded(raw)
	}
	return model.Block{
		Kind:  kind,
		Text:  PlainText(payload.RichText),
		Spans: Spans(payload.RichText),
	}
}

func degraded(raw *notion.Block) model.Block {
	normLogger.Warn().
		Str("block_id", raw.ID).
		Str("block_type", raw.Type).
		Msg("Block payload does not match its declared type, treating as unsupported")
	return model.Block{Kind: model.KindUnsupported}
}

func tableRows(rows []notion.TableRow) []model.TableRow {
	out := make([]model.TableRow, len(rows))
	for i, row := range rows {
		cells := make([][]string, len(row.Cells))
		for j, cell := range row.Cells {
			fragments := make([]string, len(cell))
			for k, fragment := range cell {
				fragments[k] = fragment.PlainText
			}
			cells[j] = fragments
		}
		out[i] = model.TableRow{Cells: cells}
	}
	return out
}
