package notion

import (
	"encoding/json"
	"time"
)

// RichText is one text fragment with its formatting annotations.
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations"`
}

type Annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Code          bool `json:"code"`
}

type ExternalFile struct {
	URL string `json:"url"`
}

type HostedFile struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// RichTextPayload is the shared shape of paragraph, heading, list item, quote
// and callout payloads.
type RichTextPayload struct {
	RichText []RichText `json:"rich_text"`
}

type CodePayload struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language,omitempty"`
}

type ImagePayload struct {
	Type     string        `json:"type"`
	External *ExternalFile `json:"external,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
	Caption  []RichText    `json:"caption,omitempty"`
}

type TablePayload struct {
	TableWidth      int  `json:"table_width"`
	HasColumnHeader bool `json:"has_column_header"`
	HasRowHeader    bool `json:"has_row_header"`
}

// TableRow is the payload of a table_row child block: a row is a sequence of
// cells, a cell a sequence of fragments.
type TableRow struct {
	Cells [][]RichText `json:"cells"`
}

// Block is one raw source block: a type discriminator plus the payload stored
// under the type's own key. Payload pointers are nil for every key the block
// does not carry.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *RichTextPayload `json:"paragraph,omitempty"`
	Heading1         *RichTextPayload `json:"heading_1,omitempty"`
	Heading2         *RichTextPayload `json:"heading_2,omitempty"`
	Heading3         *RichTextPayload `json:"heading_3,omitempty"`
	BulletedListItem *RichTextPayload `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextPayload `json:"numbered_list_item,omitempty"`
	Quote            *RichTextPayload `json:"quote,omitempty"`
	Callout          *RichTextPayload `json:"callout,omitempty"`
	Code             *CodePayload     `json:"code,omitempty"`
	Image            *ImagePayload    `json:"image,omitempty"`
	Table            *TablePayload    `json:"table,omitempty"`
	TableRowPayload  *TableRow        `json:"table_row,omitempty"`

	raw json.RawMessage
}

func (b *Block) UnmarshalJSON(data []byte) error {
	type alias Block
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = Block(a)
	b.raw = append(json.RawMessage(nil), data...)
	return nil
}

// GenericRichText extracts the rich_text array stored under the block's own
// type key, for block types the pipeline has no dedicated payload for. It
// returns nil when the payload carries no such array.
func (b *Block) GenericRichText() []RichText {
	if len(b.raw) == 0 {
		return nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(b.raw, &envelope); err != nil {
		return nil
	}
	payload, ok := envelope[b.Type]
	if !ok {
		return nil
	}
	var rt RichTextPayload
	if err := json.Unmarshal(payload, &rt); err != nil {
		return nil
	}
	return rt.RichText
}

type DateValue struct {
	Start string `json:"start"`
}

type SelectOption struct {
	Name string `json:"name"`
}

// Property is one page property value. Only the field matching Type is set.
type Property struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	Title       []RichText     `json:"title,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
}

// Page is one entry record from the database query.
type Page struct {
	ID          string              `json:"id"`
	CreatedTime time.Time           `json:"created_time"`
	Properties  map[string]Property `json:"properties"`
}

// TitleProperty returns the page's title property, checking the two property
// names the source conventionally uses.
func (p *Page) TitleProperty() []RichText {
	for _, name := range []string{"Name", "Title"} {
		if prop, ok := p.Properties[name]; ok && len(prop.Title) > 0 {
			return prop.Title
		}
	}
	return nil
}
