// Package fen decodes FEN position strings into a display grid.
//
// Decoding is permissive: every input, including garbage, produces a board.
// Only the piece-placement field is read; the remaining fields are left to
// the display helpers in this package.
package fen

import (
	"strings"

	"github.com/lgbarn/chess-trainer-go/internal/chess"
)

// InitialFEN is the FEN string for the standard starting position.
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// DecodeBoard converts a FEN string into a board grid.
//
// An empty string yields 8 empty ranks. Otherwise each '/'-separated rank
// descriptor of the placement field becomes one rank, in input order.
// Digits 1-8 expand to empty squares and any other rune is stored
// literally. Short ranks are padded and over-long ranks are cut at 8 squares.
// A NUL rune is the one symbol that cannot be stored: it equals
// chess.EmptySquare, so the cell it occupies reads as empty.
func DecodeBoard(fen string) chess.Board {
	if fen == "" {
		return chess.NewEmptyBoard()
	}

	descriptors := strings.Split(Placement(fen), "/")
	board := make(chess.Board, len(descriptors))
	for i, desc := range descriptors {
		board[i] = decodeRank(desc)
	}
	return board
}

// decodeRank scans one rank descriptor left to right.
func decodeRank(desc string) chess.Rank {
	var rank chess.Rank
	file := 0
	for _, c := range desc {
		if file >= chess.BoardSize {
			break
		}
		if c >= '1' && c <= '8' {
			// The zero value of a Rank is already empty squares.
			file += int(c - '0')
			continue
		}
		rank[file] = chess.Square(c)
		file++
	}
	return rank
}

// Placement returns the piece-placement field: everything before the first
// space character.
func Placement(fen string) string {
	placement, _, _ := strings.Cut(fen, " ")
	return placement
}

// SideToMove returns the colour named by the second FEN field. Anything other
// than "b" is treated as White.
func SideToMove(fen string) chess.Colour {
	fields := strings.Split(fen, " ")
	if len(fields) > 1 && fields[1] == "b" {
		return chess.Black
	}
	return chess.White
}
