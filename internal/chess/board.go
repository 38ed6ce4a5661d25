package chess

import "unicode"

// Square is the content of one board cell: either Empty or the literal
// symbol decoded for it. Symbols are not validated, so a Square may hold any
// rune; only P/N/B/R/Q/K in either case map to a piece kind.
type Square rune

// EmptySquare marks a cell with no piece. It is the zero value, so a NUL
// symbol is indistinguishable from an empty cell.
const EmptySquare Square = 0

// glyphs maps piece letters to their Unicode chess symbols.
var glyphs = map[Square]string{
	'K': "♔", 'Q': "♕", 'R': "♖", 'B': "♗", 'N': "♘", 'P': "♙",
	'k': "♚", 'q': "♛", 'r': "♜", 'b': "♝", 'n': "♞", 'p': "♟",
}

// IsEmpty reports whether the square holds no symbol.
func (s Square) IsEmpty() bool {
	return s == EmptySquare
}

// Symbol returns the square's literal symbol, or "" when empty.
func (s Square) Symbol() string {
	if s.IsEmpty() {
		return ""
	}
	return string(rune(s))
}

// Colour returns White for uppercase symbols and Black otherwise.
func (s Square) Colour() Colour {
	if unicode.IsUpper(rune(s)) {
		return White
	}
	return Black
}

// Piece returns the piece kind for the square's symbol.
func (s Square) Piece() Piece {
	switch s {
	case EmptySquare:
		return Empty
	case 'K', 'k':
		return King
	case 'Q', 'q':
		return Queen
	case 'R', 'r':
		return Rook
	case 'N', 'n':
		return Knight
	case 'B', 'b':
		return Bishop
	case 'P', 'p':
		return Pawn
	default:
		return Unknown
	}
}

// Glyph returns the Unicode chess symbol for the square. Empty squares and
// unrecognized symbols render as "".
func (s Square) Glyph() string {
	return glyphs[s]
}

// Rank is one row of the board, always exactly BoardSize squares wide.
type Rank [BoardSize]Square

// IsEmpty reports whether every square of the rank is empty.
func (r Rank) IsEmpty() bool {
	for _, sq := range r {
		if !sq.IsEmpty() {
			return false
		}
	}
	return true
}

// Symbols returns the rank's squares as strings, "" for empty squares.
func (r Rank) Symbols() []string {
	out := make([]string, len(r))
	for i, sq := range r {
		out[i] = sq.Symbol()
	}
	return out
}

// Board is a decoded position grid: ranks in input order, top to bottom.
// A well-formed FEN yields 8 ranks; malformed input may yield more or fewer.
type Board []Rank

// NewEmptyBoard returns 8 ranks of empty squares.
func NewEmptyBoard() Board {
	return make(Board, BoardSize)
}

// Get returns the square at the given grid position, or EmptySquare when the
// position is outside the board.
func (b Board) Get(rankIndex, fileIndex int) Square {
	if rankIndex < 0 || rankIndex >= len(b) || fileIndex < 0 || fileIndex >= BoardSize {
		return EmptySquare
	}
	return b[rankIndex][fileIndex]
}

// Flipped returns a copy of the board viewed from the other side: ranks and
// files both reversed.
func (b Board) Flipped() Board {
	out := make(Board, len(b))
	for i, rank := range b {
		var flipped Rank
		for f := range rank {
			flipped[BoardSize-1-f] = rank[f]
		}
		out[len(b)-1-i] = flipped
	}
	return out
}

// CountPieces returns the number of occupied squares of the given colour.
func (b Board) CountPieces(colour Colour) int {
	count := 0
	for _, rank := range b {
		for _, sq := range rank {
			if !sq.IsEmpty() && sq.Piece() != Unknown && sq.Colour() == colour {
				count++
			}
		}
	}
	return count
}
