package markdown

import (
	"regexp"
	"strings"
)

// boldPattern matches the shortest **...** run.
var boldPattern = regexp.MustCompile(`\*\*.*?\*\*`)

// RenderBlocks converts text into one block per line, in input order.
// Empty text yields nil. A trailing newline ends the last line rather than
// starting an empty one, so "\n\n" is two blank lines.
func RenderBlocks(text string) []Block {
	if text == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	blocks := make([]Block, len(lines))
	for i, line := range lines {
		blocks[i] = classifyLine(line)
	}
	return blocks
}

// classifyLine maps a single line to its block; the first matching rule wins.
func classifyLine(line string) Block {
	var b Block
	switch {
	case strings.HasPrefix(line, "### "):
		b = Block{Kind: Heading, Level: 3, Text: line[4:]}
	case strings.HasPrefix(line, "## "):
		b = Block{Kind: Heading, Level: 2, Text: line[3:]}
	case strings.HasPrefix(line, "# "):
		b = Block{Kind: Heading, Level: 1, Text: line[2:]}
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		b = Block{Kind: ListItem, Text: line[2:]}
	default:
		if content, ok := orderedItem(line); ok {
			b = Block{Kind: ListItem, Ordered: true, Text: content}
		} else if strings.TrimSpace(line) == "" {
			return Block{Kind: BlankLine}
		} else {
			b = Block{Kind: Paragraph, Text: line}
		}
	}
	b.Spans = SplitBold(b.Text)
	return b
}

// orderedItem matches "<digits>. <content>" and returns the content.
func orderedItem(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || !strings.HasPrefix(line[i:], ". ") {
		return "", false
	}
	return line[i+2:], true
}

// SplitBold decomposes text into plain and bold spans.
//
// Every shortest **...** match becomes a bold span; the text around matches,
// including empty text at either end, becomes plain spans. Markers pair up
// left to right, so with an odd number of "**" the last marker stays literal
// and pairing past an unmatched marker is shifted.
func SplitBold(text string) []Span {
	matches := boldPattern.FindAllStringIndex(text, -1)
	spans := make([]Span, 0, 2*len(matches)+1)
	prev := 0
	for _, m := range matches {
		spans = append(spans, Plain(text[prev:m[0]]), Bold(text[m[0]+2:m[1]-2]))
		prev = m[1]
	}
	return append(spans, Plain(text[prev:]))
}

// PlainText flattens spans back to their text without markers.
func PlainText(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
