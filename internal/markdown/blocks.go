// Package markdown renders a small markdown dialect into typed blocks.
//
// The dialect has headings (#, ##, ###), bullet and numbered list items,
// blank lines, paragraphs and **bold** spans. Each input line becomes exactly
// one block; there is no paragraph joining, nesting or escaping.
package markdown

// Kind discriminates the block variants.
type Kind int

const (
	Paragraph Kind = iota
	Heading
	ListItem
	BlankLine
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case ListItem:
		return "list_item"
	case BlankLine:
		return "blank"
	default:
		return "paragraph"
	}
}

// Block is one rendered line.
type Block struct {
	Kind Kind

	// Level is the heading level (1-3); zero for other kinds.
	Level int

	// Ordered marks numbered list items.
	Ordered bool

	// Text is the block content with any line marker removed.
	Text string

	// Spans is the inline decomposition of Text. BlankLine blocks have none.
	Spans []Span
}

// Span is an inline run of text.
type Span struct {
	Bold bool
	Text string
}

// Plain returns a non-bold span.
func Plain(text string) Span {
	return Span{Text: text}
}

// Bold returns a bold span.
func Bold(text string) Span {
	return Span{Bold: true, Text: text}
}
