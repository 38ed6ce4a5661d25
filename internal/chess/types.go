// Package chess provides the display-level chess types: colours, piece kinds,
// squares and the decoded board grid.
package chess

// Colour represents the colour of a piece or player.
type Colour int

const (
	Black Colour = iota
	White
)

// String returns the string representation of a colour.
func (c Colour) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// Opposite returns the opposite colour.
func (c Colour) Opposite() Colour {
	if c == White {
		return Black
	}
	return White
}

// Piece represents a chess piece kind.
type Piece int

const (
	Unknown Piece = iota // Occupied square holding an unrecognized symbol
	Empty                // Empty square
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// String returns the string representation of a piece.
func (p Piece) String() string {
	names := []string{"Unknown", "Empty", "Pawn", "Knight", "Bishop", "Rook", "Queen", "King"}
	if p >= 0 && int(p) < len(names) {
		return names[p]
	}
	return "Unknown"
}

// Letter returns the single letter representation of a piece (uppercase).
func (p Piece) Letter() byte {
	letters := []byte{'?', ' ', 'P', 'N', 'B', 'R', 'Q', 'K'}
	if p >= 0 && int(p) < len(letters) {
		return letters[p]
	}
	return '?'
}

// Board dimensions.
const (
	BoardSize = 8

	RankBase = '1'
	ColBase  = 'a'
)

// Shade is the colour of a board square.
type Shade int

const (
	Light Shade = iota
	Dark
)

// String returns "light" or "dark".
func (s Shade) String() string {
	if s == Dark {
		return "dark"
	}
	return "light"
}

// ShadeAt returns the shade of the square at the given grid position.
// Index (0, 0) is the top-left square as decoded, which is a8 for a board
// read from the standard FEN orientation.
func ShadeAt(rankIndex, fileIndex int) Shade {
	if (rankIndex+fileIndex)%2 == 0 {
		return Light
	}
	return Dark
}

// SquareName returns the algebraic name ("e4") of the square at the given
// grid position, assuming the standard top-down rank order. Positions outside
// the 8x8 grid return "".
func SquareName(rankIndex, fileIndex int) string {
	if rankIndex < 0 || rankIndex >= BoardSize || fileIndex < 0 || fileIndex >= BoardSize {
		return ""
	}
	return string([]byte{byte(ColBase + fileIndex), byte(RankBase + BoardSize - 1 - rankIndex)})
}
