package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/fen"
	"github.com/lgbarn/chess-trainer-go/internal/markdown"
)

// Output format names accepted by NewWriter.
const (
	FormatJSON     = "json"
	FormatTerminal = "terminal"
	FormatPlain    = "plain"
)

// Writer is the interface for writing boards and rendered text to output.
// Different implementations handle different formats (JSON, terminal, plain).
type Writer interface {
	// WriteBoard decodes fenStr and writes the board, optionally flipped.
	WriteBoard(fenStr string, flip bool) error

	// WriteBlocks writes rendered markdown blocks.
	WriteBlocks(blocks []markdown.Block) error
}

// NewWriter returns a writer for the named format.
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(w), nil
	case FormatTerminal, "":
		return NewTerminalWriter(w, NewTerminal()), nil
	case FormatPlain:
		return NewPlainWriter(w, DefaultWrap), nil
	default:
		return nil, errors.Invalid("format", fmt.Sprintf("unknown output format %q", format))
	}
}

// JSONWriter writes each value immediately as indented JSON.
type JSONWriter struct {
	enc *json.Encoder
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONWriter{enc: enc}
}

// WriteBoard writes a BoardJSON.
func (jw *JSONWriter) WriteBoard(fenStr string, flip bool) error {
	return jw.enc.Encode(BoardToJSON(fenStr, flip))
}

// WriteBlocks writes a JSON array of BlockJSON.
func (jw *JSONWriter) WriteBlocks(blocks []markdown.Block) error {
	return jw.enc.Encode(BlocksToJSON(blocks))
}

// TerminalWriter writes lipgloss-styled text.
type TerminalWriter struct {
	w    io.Writer
	term *Terminal
}

// NewTerminalWriter creates a writer that renders through term.
func NewTerminalWriter(w io.Writer, term *Terminal) *TerminalWriter {
	return &TerminalWriter{w: w, term: term}
}

// WriteBoard writes the styled board.
func (tw *TerminalWriter) WriteBoard(fenStr string, flip bool) error {
	board := fen.DecodeBoard(fenStr)
	if flip {
		board = board.Flipped()
	}
	_, err := fmt.Fprintln(tw.w, tw.term.RenderBoard(board, flip))
	return err
}

// WriteBlocks writes the styled blocks.
func (tw *TerminalWriter) WriteBlocks(blocks []markdown.Block) error {
	_, err := fmt.Fprintln(tw.w, tw.term.RenderBlocks(blocks))
	return err
}

// PlainWriter writes unstyled text wrapped at a fixed width.
type PlainWriter struct {
	w     io.Writer
	width int
}

// NewPlainWriter creates a plain-text writer.
func NewPlainWriter(w io.Writer, width int) *PlainWriter {
	return &PlainWriter{w: w, width: width}
}

// WriteBoard writes the board as letters.
func (pw *PlainWriter) WriteBoard(fenStr string, flip bool) error {
	board := fen.DecodeBoard(fenStr)
	if flip {
		board = board.Flipped()
	}
	lw := NewLineWriter(pw.w, pw.width)
	WritePlainBoard(lw, board, flip)
	return lw.Err()
}

// WriteBlocks writes the blocks wrapped to the writer's width.
func (pw *PlainWriter) WriteBlocks(blocks []markdown.Block) error {
	lw := NewLineWriter(pw.w, pw.width)
	WritePlainBlocks(lw, blocks)
	return lw.Err()
}
