package model

// BlockKind discriminates the normalized block variants. Exactly the fields
// relevant to a kind are populated on a Block carrying it.
type BlockKind string

const (
	KindHeading1     BlockKind = "heading1"
	KindHeading2     BlockKind = "heading2"
	KindHeading3     BlockKind = "heading3"
	KindParagraph    BlockKind = "paragraph"
	KindBulletedItem BlockKind = "bulleted_item"
	KindNumberedItem BlockKind = "numbered_item"
	KindQuote        BlockKind = "quote"
	KindCode         BlockKind = "code"
	KindImage        BlockKind = "image"
	KindDivider      BlockKind = "divider"
	KindCallout      BlockKind = "callout"
	KindTable        BlockKind = "table"
	KindUnsupported  BlockKind = "unsupported"
)

// HeadingLevel returns 1..3 for heading kinds and 0 otherwise.
func (k BlockKind) HeadingLevel() int {
	switch k {
	case KindHeading1:
		return 1
	case KindHeading2:
		return 2
	case KindHeading3:
		return 3
	}
	return 0
}

// Span is one rich-text fragment with its formatting annotations. The
// annotations are independent of each other; Href is empty when the fragment
// is not a link.
type Span struct {
	Text          string
	Bold          bool
	Italic        bool
	Strikethrough bool
	Code          bool
	Href          string
}

type Image struct {
	URL     string
	Caption string
	AltText string
}

// TableRow is a sequence of cells; a cell is itself a sequence of text
// fragments, preserved as the source grouped them.
type TableRow struct {
	Cells [][]string
}

type Table struct {
	ColumnCount     int
	HasColumnHeader bool
	HasRowHeader    bool
	Rows            []TableRow
}

// Block is one unit of normalized content. Blocks are built once during
// fetch-and-normalize; only macro expansion rewrites Text afterwards.
type Block struct {
	Kind BlockKind

	Text  string
	Spans []Span

	Code     string
	Language string

	Image *Image
	Table *Table
}
