// Package planner reads and writes the external planning document: it
// locates date-scoped journal pages and idempotently upserts structured
// voice-note blocks into them.
package planner

import (
	"strings"
)

// Block types supported by the document API. Not complete, just what the
// journal template and voice-note blocks need.
const (
	TypeParagraph = "paragraph"
	TypeHeading1  = "heading_1"
	TypeToDo      = "to_do"
)

// Annotations carries rich text styling flags.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// TextLink is the link target of a rich text span.
type TextLink struct {
	URL string `json:"url"`
}

// TextContent is the content part of a rich text span.
type TextContent struct {
	Content string    `json:"content"`
	Link    *TextLink `json:"link,omitempty"`
}

// RichText is one styled text span.
type RichText struct {
	Type        string      `json:"type"`
	Text        TextContent `json:"text"`
	Annotations Annotations `json:"annotations"`
	PlainText   string      `json:"plain_text,omitempty"`
	Href        string      `json:"href,omitempty"`
}

// Paragraph is the payload of a paragraph block.
type Paragraph struct {
	RichText []RichText `json:"rich_text"`
	Children []Block    `json:"children,omitempty"`
}

// Heading is the payload of a heading block. Headings cannot have children.
type Heading struct {
	RichText []RichText `json:"rich_text"`
}

// ToDo is the payload of a to_do block.
type ToDo struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// Block is a document content block. Exactly one payload field is set,
// matching Type.
type Block struct {
	Object    string     `json:"object,omitempty"`
	ID        string     `json:"id,omitempty"`
	Type      string     `json:"type"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Heading1  *Heading   `json:"heading_1,omitempty"`
	ToDo      *ToDo      `json:"to_do,omitempty"`
}

// PlainText creates an unstyled rich text span.
func PlainText(text string) RichText {
	return RichText{
		Type:        "text",
		Text:        TextContent{Content: text},
		Annotations: Annotations{Color: "default"},
		PlainText:   text,
	}
}

// BoldText creates a bold rich text span.
func BoldText(text string) RichText {
	rt := PlainText(text)
	rt.Annotations.Bold = true
	return rt
}

// CodeText creates a code-styled rich text span.
func CodeText(text string) RichText {
	rt := PlainText(text)
	rt.Annotations.Code = true
	return rt
}

// LinkText creates an underlined blue link span, the house style for hrefs.
func LinkText(text, url string) RichText {
	rt := PlainText(text)
	rt.Text.Link = &TextLink{URL: url}
	rt.Href = url
	rt.Annotations.Underline = true
	rt.Annotations.Color = "blue"
	return rt
}

// NewParagraph creates a paragraph block.
func NewParagraph(spans ...RichText) Block {
	return Block{
		Object:    "block",
		Type:      TypeParagraph,
		Paragraph: &Paragraph{RichText: spans},
	}
}

// NewHeading1 creates a heading_1 block.
func NewHeading1(text string) Block {
	return Block{
		Object:   "block",
		Type:     TypeHeading1,
		Heading1: &Heading{RichText: []RichText{PlainText(text)}},
	}
}

// NewToDo creates an unchecked to_do block.
func NewToDo(text string) Block {
	return Block{
		Object: "block",
		Type:   TypeToDo,
		ToDo:   &ToDo{RichText: []RichText{PlainText(text)}},
	}
}

// richText returns the block's text spans regardless of block type.
func (b Block) richText() []RichText {
	switch {
	case b.Paragraph != nil:
		return b.Paragraph.RichText
	case b.Heading1 != nil:
		return b.Heading1.RichText
	case b.ToDo != nil:
		return b.ToDo.RichText
	}
	return nil
}

// PlainContent concatenates the block's visible text.
func (b Block) PlainContent() string {
	var sb strings.Builder
	for _, rt := range b.richText() {
		if rt.PlainText != "" {
			sb.WriteString(rt.PlainText)
		} else {
			sb.WriteString(rt.Text.Content)
		}
	}
	return sb.String()
}

// Page is a document page as returned by the API. Only the fields the
// synchronizer inspects are modeled.
type Page struct {
	ID         string `json:"id"`
	Archived   bool   `json:"archived"`
	URL        string `json:"url,omitempty"`
	Properties struct {
		Title struct {
			Title []RichText `json:"title"`
		} `json:"title"`
	} `json:"properties"`
}

// PlainTitle extracts the page's plain text title.
func (p Page) PlainTitle() string {
	var sb strings.Builder
	for _, rt := range p.Properties.Title.Title {
		if rt.PlainText != "" {
			sb.WriteString(rt.PlainText)
		} else {
			sb.WriteString(rt.Text.Content)
		}
	}
	return sb.String()
}
