package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lgbarn/chess-trainer-go/internal/chess"
	"github.com/lgbarn/chess-trainer-go/internal/markdown"
)

// Terminal renders boards and markdown blocks for a terminal using lipgloss.
type Terminal struct {
	ascii bool

	light    lipgloss.Style
	dark     lipgloss.Style
	white    lipgloss.Color
	black    lipgloss.Color
	coord    lipgloss.Style
	headings [3]lipgloss.Style
	bold     lipgloss.Style
	bullet   lipgloss.Style
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithASCII draws pieces with their FEN letters instead of chess glyphs.
func WithASCII() TerminalOption {
	return func(t *Terminal) { t.ascii = true }
}

// NewTerminal creates a terminal renderer.
func NewTerminal(opts ...TerminalOption) *Terminal {
	cell := lipgloss.NewStyle().Width(3).Align(lipgloss.Center)
	t := &Terminal{
		light: cell.Background(lipgloss.Color("#EEEED2")),
		dark:  cell.Background(lipgloss.Color("#769656")),
		white: lipgloss.Color("#FFFFFF"),
		black: lipgloss.Color("#000000"),
		coord: lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		headings: [3]lipgloss.Style{
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87")),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
			lipgloss.NewStyle().Bold(true),
		},
		bold:   lipgloss.NewStyle().Bold(true),
		bullet: lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RenderBoard draws the board with rank numbers on the left and file letters
// below. flipped tells how the grid is oriented so the coordinates match.
func (t *Terminal) RenderBoard(board chess.Board, flipped bool) string {
	rows := make([]string, 0, len(board)+1)
	for i, rank := range board {
		cells := make([]string, 0, len(rank)+1)
		cells = append(cells, t.coord.Render(rankLabel(i, len(board), flipped)+" "))
		for f, sq := range rank {
			style := t.light
			if chess.ShadeAt(i, f) == chess.Dark {
				style = t.dark
			}
			if !sq.IsEmpty() {
				if sq.Colour() == chess.White {
					style = style.Foreground(t.white)
				} else {
					style = style.Foreground(t.black)
				}
			}
			cells = append(cells, style.Render(t.piece(sq)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	rows = append(rows, t.coord.Render(fileLabels(flipped)))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (t *Terminal) piece(sq chess.Square) string {
	if sq.IsEmpty() {
		return " "
	}
	if g := sq.Glyph(); g != "" && !t.ascii {
		return g
	}
	return sq.Symbol()
}

// rankLabel numbers ranks from the bottom of the board as displayed.
func rankLabel(rankIndex, ranks int, flipped bool) string {
	if flipped {
		return strconv.Itoa(rankIndex + 1)
	}
	return strconv.Itoa(ranks - rankIndex)
}

func fileLabels(flipped bool) string {
	var b strings.Builder
	b.WriteString("  ")
	for f := 0; f < chess.BoardSize; f++ {
		file := f
		if flipped {
			file = chess.BoardSize - 1 - f
		}
		fmt.Fprintf(&b, " %c ", chess.ColBase+file)
	}
	return b.String()
}

// RenderBlocks draws rendered markdown one line per block. Numbered items
// are renumbered from 1 after any non-numbered block.
func (t *Terminal) RenderBlocks(blocks []markdown.Block) string {
	lines := make([]string, len(blocks))
	n := 0
	for i, b := range blocks {
		if b.Kind != markdown.ListItem || !b.Ordered {
			n = 0
		}
		switch b.Kind {
		case markdown.Heading:
			level := b.Level
			if level < 1 || level > len(t.headings) {
				level = len(t.headings)
			}
			lines[i] = t.headings[level-1].Render(b.Text)
		case markdown.ListItem:
			marker := "•"
			if b.Ordered {
				n++
				marker = strconv.Itoa(n) + "."
			}
			lines[i] = "  " + t.bullet.Render(marker) + " " + t.spans(b.Spans)
		case markdown.BlankLine:
			lines[i] = ""
		default:
			lines[i] = t.spans(b.Spans)
		}
	}
	return strings.Join(lines, "\n")
}

func (t *Terminal) spans(spans []markdown.Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Bold {
			b.WriteString(t.bold.Render(s.Text))
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
