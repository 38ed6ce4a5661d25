// Package output formats boards and rendered markdown for the CLI and the
// HTTP API: JSON views, lipgloss-styled terminal text, and plain text wrapped
// to a fixed line length.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/lgbarn/chess-trainer-go/internal/chess"
	"github.com/lgbarn/chess-trainer-go/internal/markdown"
)

// LineWriter handles plain-text output with line length control. Words are
// joined with single spaces and wrapped before maxLineLength is exceeded.
type LineWriter struct {
	w             io.Writer
	lineLength    int
	maxLineLength int
	needsSpace    bool
	indent        string
	err           error
}

// NewLineWriter creates a new line writer.
func NewLineWriter(w io.Writer, maxLineLength int) *LineWriter {
	if maxLineLength <= 0 {
		maxLineLength = DefaultWrap
	}
	return &LineWriter{
		w:             w,
		maxLineLength: maxLineLength,
	}
}

// SetIndent sets the prefix written at the start of continuation lines.
func (o *LineWriter) SetIndent(indent string) {
	o.indent = indent
}

// Word writes a word, adding a space separator or a line break if needed.
func (o *LineWriter) Word(s string) {
	if s == "" {
		return
	}
	if o.needsSpace {
		if o.lineLength+1+len(s) > o.maxLineLength {
			o.print("\n" + o.indent)
			o.lineLength = len(o.indent)
		} else {
			o.print(" ")
			o.lineLength++
		}
	}
	o.print(s)
	o.lineLength += len(s)
	o.needsSpace = true
}

// Text writes every whitespace-separated word of s.
func (o *LineWriter) Text(s string) {
	for _, word := range strings.Fields(s) {
		o.Word(word)
	}
}

// Raw writes s as-is at the current position without wrapping.
func (o *LineWriter) Raw(s string) {
	o.print(s)
	o.lineLength += len(s)
	o.needsSpace = false
}

// Newline ends the current line.
func (o *LineWriter) Newline() {
	o.print("\n")
	o.lineLength = 0
	o.needsSpace = false
}

// Err returns the first write error.
func (o *LineWriter) Err() error {
	return o.err
}

func (o *LineWriter) print(s string) {
	if o.err != nil {
		return
	}
	_, o.err = io.WriteString(o.w, s)
}

// WritePlainBoard writes the board as FEN letters with '.' for empty
// squares, rank numbers on the left and file letters below.
func WritePlainBoard(o *LineWriter, board chess.Board, flipped bool) {
	for i, rank := range board {
		o.Raw(rankLabel(i, len(board), flipped))
		for _, sq := range rank {
			if sq.IsEmpty() {
				o.Raw(" .")
			} else {
				o.Raw(" " + sq.Symbol())
			}
		}
		o.Newline()
	}
	o.Raw(" ")
	for f := 0; f < chess.BoardSize; f++ {
		file := f
		if flipped {
			file = chess.BoardSize - 1 - f
		}
		o.Raw(fmt.Sprintf(" %c", chess.ColBase+file))
	}
	o.Newline()
}

// WritePlainBlocks writes blocks one per line, wrapping long lines. Bold
// spans keep their ** markers so emphasis survives in plain text.
func WritePlainBlocks(o *LineWriter, blocks []markdown.Block) {
	n := 0
	for _, b := range blocks {
		if b.Kind != markdown.ListItem || !b.Ordered {
			n = 0
		}
		o.SetIndent("")
		switch b.Kind {
		case markdown.Heading:
			o.Raw(strings.Repeat("#", b.Level) + " ")
			o.Text(b.Text)
		case markdown.ListItem:
			marker := "-"
			if b.Ordered {
				n++
				marker = fmt.Sprintf("%d.", n)
			}
			o.SetIndent(strings.Repeat(" ", len(marker)+1))
			o.Raw(marker + " ")
			o.Text(plainSpans(b.Spans))
		case markdown.BlankLine:
		default:
			o.Text(plainSpans(b.Spans))
		}
		o.Newline()
	}
}

func plainSpans(spans []markdown.Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Bold {
			b.WriteString("**" + s.Text + "**")
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
