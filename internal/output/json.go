package output

import (
	"strings"

	"github.com/lgbarn/chess-trainer-go/internal/chess"
	"github.com/lgbarn/chess-trainer-go/internal/coach"
	"github.com/lgbarn/chess-trainer-go/internal/fen"
	"github.com/lgbarn/chess-trainer-go/internal/markdown"
)

// SquareJSON represents one board cell in JSON format.
type SquareJSON struct {
	Square string `json:"square,omitempty"` // "e4"; empty off the 8x8 grid
	Symbol string `json:"symbol"`           // FEN letter, "" when empty
	Glyph  string `json:"glyph,omitempty"`
	Colour string `json:"colour,omitempty"` // "white" or "black"
	Piece  string `json:"piece,omitempty"`
	Shade  string `json:"shade"`
}

// BoardJSON represents a decoded position in JSON format.
type BoardJSON struct {
	FEN         string         `json:"fen"`
	SideToMove  string         `json:"side_to_move"`
	Flipped     bool           `json:"flipped"`
	Ranks       [][]SquareJSON `json:"ranks"`
	WhitePieces int            `json:"white_pieces"`
	BlackPieces int            `json:"black_pieces"`
}

// SpanJSON represents an inline run in JSON format.
type SpanJSON struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// BlockJSON represents a rendered markdown line in JSON format.
type BlockJSON struct {
	Kind    string     `json:"kind"`
	Level   int        `json:"level,omitempty"`
	Ordered bool       `json:"ordered,omitempty"`
	Text    string     `json:"text"`
	Spans   []SpanJSON `json:"spans,omitempty"`
}

// BoardToJSON decodes fenStr and converts it to JSON format, optionally
// viewed from Black's side.
func BoardToJSON(fenStr string, flip bool) *BoardJSON {
	board := fen.DecodeBoard(fenStr)
	if flip {
		board = board.Flipped()
	}
	jb := GridToJSON(board, flip)
	jb.FEN = fenStr
	jb.SideToMove = lower(fen.SideToMove(fenStr))
	return jb
}

// GridToJSON converts an already decoded board. flipped tells how the grid
// is oriented so square names stay correct.
func GridToJSON(board chess.Board, flipped bool) *BoardJSON {
	jb := &BoardJSON{
		Flipped:     flipped,
		Ranks:       make([][]SquareJSON, len(board)),
		WhitePieces: board.CountPieces(chess.White),
		BlackPieces: board.CountPieces(chess.Black),
	}
	for i, rank := range board {
		row := make([]SquareJSON, len(rank))
		for f, sq := range rank {
			row[f] = squareToJSON(sq, i, f, flipped)
		}
		jb.Ranks[i] = row
	}
	return jb
}

func squareToJSON(sq chess.Square, rankIndex, fileIndex int, flipped bool) SquareJSON {
	js := SquareJSON{
		Square: squareName(rankIndex, fileIndex, flipped),
		Shade:  chess.ShadeAt(rankIndex, fileIndex).String(),
	}
	if sq.IsEmpty() {
		return js
	}
	js.Symbol = sq.Symbol()
	js.Glyph = sq.Glyph()
	js.Colour = lower(sq.Colour())
	if p := sq.Piece(); p != chess.Unknown {
		js.Piece = strings.ToLower(p.String())
	}
	return js
}

// squareName maps a displayed grid position back to its algebraic name.
func squareName(rankIndex, fileIndex int, flipped bool) string {
	if flipped {
		return chess.SquareName(chess.BoardSize-1-rankIndex, chess.BoardSize-1-fileIndex)
	}
	return chess.SquareName(rankIndex, fileIndex)
}

// BlocksToJSON converts rendered markdown blocks to JSON format.
func BlocksToJSON(blocks []markdown.Block) []BlockJSON {
	out := make([]BlockJSON, len(blocks))
	for i, b := range blocks {
		jb := BlockJSON{
			Kind:    b.Kind.String(),
			Level:   b.Level,
			Ordered: b.Ordered,
			Text:    b.Text,
		}
		if len(b.Spans) > 0 {
			jb.Spans = make([]SpanJSON, len(b.Spans))
			for j, s := range b.Spans {
				jb.Spans[j] = SpanJSON{Text: s.Text, Bold: s.Bold}
			}
		}
		out[i] = jb
	}
	return out
}

// AnalysisJSON is an analysis with its board and summary blocks.
type AnalysisJSON struct {
	coach.Analysis
	Board  *BoardJSON  `json:"board"`
	Blocks []BlockJSON `json:"blocks"`
}

// AnalysisToJSON converts an analysis to JSON format.
func AnalysisToJSON(a coach.Analysis, flip bool) *AnalysisJSON {
	return &AnalysisJSON{
		Analysis: a,
		Board:    BoardToJSON(a.FEN, flip),
		Blocks:   BlocksToJSON(a.Blocks),
	}
}

// OpeningTurnJSON is an opening turn with its board and feedback blocks.
type OpeningTurnJSON struct {
	coach.OpeningTurn
	Board  *BoardJSON  `json:"board"`
	Blocks []BlockJSON `json:"blocks"`
}

// OpeningTurnToJSON converts an opening turn to JSON format.
func OpeningTurnToJSON(t coach.OpeningTurn, flip bool) *OpeningTurnJSON {
	return &OpeningTurnJSON{
		OpeningTurn: t,
		Board:       BoardToJSON(t.FEN, flip),
		Blocks:      BlocksToJSON(t.Blocks),
	}
}

// PuzzleJSON is a puzzle as shown to the student: the solution is never
// included and only revealed hints are.
type PuzzleJSON struct {
	coach.Puzzle
	SideToMove string     `json:"side_to_move"`
	Hints      []string   `json:"hints"`
	Board      *BoardJSON `json:"board"`
}

// PuzzleToJSON converts a puzzle to JSON format. The board is shown from
// the side to move.
func PuzzleToJSON(p coach.Puzzle, revealed []string) *PuzzleJSON {
	if revealed == nil {
		revealed = []string{}
	}
	return &PuzzleJSON{
		Puzzle:     p,
		SideToMove: lower(p.SideToMove),
		Hints:      revealed,
		Board:      BoardToJSON(p.FEN, p.SideToMove == chess.Black),
	}
}

// KeyMomentJSON is a key moment with its board.
type KeyMomentJSON struct {
	coach.KeyMoment
	Board    *BoardJSON    `json:"board,omitempty"`
	Analysis *AnalysisJSON `json:"analysis,omitempty"`
}

// ReviewJSON is a game review with rendered summary blocks.
type ReviewJSON struct {
	coach.Review
	KeyMoments []KeyMomentJSON `json:"key_moments"`
	Blocks     []BlockJSON     `json:"blocks"`
}

// ReviewToJSON converts a review to JSON format. Moments without a
// position carry no board.
func ReviewToJSON(r coach.Review) *ReviewJSON {
	jr := &ReviewJSON{
		Review:     r,
		KeyMoments: make([]KeyMomentJSON, len(r.KeyMoments)),
		Blocks:     BlocksToJSON(r.Blocks),
	}
	for i, m := range r.KeyMoments {
		jm := KeyMomentJSON{KeyMoment: m}
		if m.FEN != "" {
			jm.Board = BoardToJSON(m.FEN, false)
		}
		if m.Analysis != nil {
			jm.Analysis = AnalysisToJSON(*m.Analysis, false)
		}
		jr.KeyMoments[i] = jm
	}
	return jr
}

// ChatJSON is a coach chat reply.
type ChatJSON struct {
	Reply  string      `json:"reply"`
	Blocks []BlockJSON `json:"blocks"`
}

// ChatToJSON converts a chat reply to JSON format.
func ChatToJSON(r coach.ChatReply) *ChatJSON {
	return &ChatJSON{Reply: r.Text, Blocks: BlocksToJSON(r.Blocks)}
}

func lower(c chess.Colour) string {
	return strings.ToLower(c.String())
}
