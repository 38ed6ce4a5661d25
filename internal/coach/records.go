// Package coach turns trainer actions into agent prompts and agent replies
// into typed records. Every field read from a reply has an explicit default,
// so a sparse or oddly-shaped reply still yields a usable record.
package coach

import (
	"github.com/lgbarn/chess-trainer-go/internal/agent"
	"github.com/lgbarn/chess-trainer-go/internal/chess"
	"github.com/lgbarn/chess-trainer-go/internal/fen"
	"github.com/lgbarn/chess-trainer-go/internal/markdown"
)

// Defaults used when a reply omits a field.
const (
	NoAnalysis      = "No analysis available."
	NoReply         = "I'm not sure how to answer that. Could you rephrase?"
	DefaultPrompt   = "Find the best move."
	DefaultTheme    = "mixed"
	DefaultRating   = 1200
	MomentNote      = "note"
	MaxChatTurns    = 20
	MinPuzzleRating = 400
	MaxPuzzleRating = 3000
)

// Roles in a chat transcript.
const (
	RoleUser  = "user"
	RoleCoach = "coach"
)

// Turn is one chat message.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Analysis is the analyst's view of a position.
type Analysis struct {
	Summary    string   `json:"summary"`
	BestMove   string   `json:"best_move"`
	Evaluation string   `json:"evaluation"`
	Ideas      []string `json:"ideas"`
	Threats    []string `json:"threats"`
	FEN        string   `json:"fen"`

	Board  chess.Board      `json:"-"`
	Blocks []markdown.Block `json:"-"`
}

// OpeningTurn is the opening coach's answer to one student move.
type OpeningTurn struct {
	Reply    string `json:"reply"`
	Move     string `json:"move"`
	FEN      string `json:"fen"`
	Feedback string `json:"feedback"`
	Correct  bool   `json:"correct"`
	Hint     string `json:"hint"`

	// Expected is the catalog move for the student's ply, if the line is
	// long enough.
	Expected string `json:"expected,omitempty"`

	Board  chess.Board      `json:"-"`
	Blocks []markdown.Block `json:"-"`
}

// Puzzle is a tactics exercise.
type Puzzle struct {
	ID         string       `json:"id"`
	FEN        string       `json:"fen"`
	Theme      string       `json:"theme"`
	Prompt     string       `json:"prompt"`
	Solution   []string     `json:"-"`
	Hints      []string     `json:"-"`
	Rating     int          `json:"rating"`
	SideToMove chess.Colour `json:"-"`

	Board chess.Board `json:"-"`
}

// Review is a whole-game report.
type Review struct {
	White        string      `json:"white"`
	Black        string      `json:"black"`
	Result       string      `json:"result"`
	Opening      string      `json:"opening"`
	ECO          string      `json:"eco"`
	PlyCount     int         `json:"ply_count"`
	Summary      string      `json:"summary"`
	Strengths    []string    `json:"strengths"`
	Improvements []string    `json:"improvements"`
	KeyMoments   []KeyMoment `json:"key_moments"`

	Blocks []markdown.Block `json:"-"`
}

// KeyMoment marks a turning point in a reviewed game. Analysis is filled
// only by a deep review.
type KeyMoment struct {
	MoveNumber     int       `json:"move_number"`
	Move           string    `json:"move"`
	Classification string    `json:"classification"`
	Comment        string    `json:"comment"`
	FEN            string    `json:"fen"`
	Analysis       *Analysis `json:"analysis,omitempty"`

	Board chess.Board `json:"-"`
}

// ChatReply is the coach's answer in the chat panel.
type ChatReply struct {
	Text   string           `json:"text"`
	Blocks []markdown.Block `json:"-"`
}

// NewAnalysis reads an analyst reply. fenStr is used when the reply does
// not echo a position.
func NewAnalysis(doc agent.Document, fenStr string) Analysis {
	a := Analysis{
		Summary:    doc.First(NoAnalysis, "summary", "analysis", "text"),
		BestMove:   doc.First("", "best_move", "bestMove", "move"),
		Evaluation: doc.First("", "evaluation", "eval", "score"),
		Ideas:      listOf(doc, "ideas", "plans"),
		Threats:    doc.Strings("threats"),
		FEN:        doc.String("fen", fenStr),
	}
	a.Board = fen.DecodeBoard(a.FEN)
	a.Blocks = markdown.RenderBlocks(a.Summary)
	return a
}

// NewOpeningTurn reads an opening coach reply. expected and bookReply are
// the catalog moves for the student's ply and the one after it; either may
// be empty.
func NewOpeningTurn(doc agent.Document, move, expected, bookReply string) OpeningTurn {
	correct := expected == "" || SameMove(move, expected)
	t := OpeningTurn{
		Reply:    doc.First("", "reply", "message", "text"),
		Move:     doc.First(bookReply, "move", "reply_move", "opponent_move"),
		FEN:      doc.String("fen", ""),
		Feedback: doc.String("feedback", ""),
		Correct:  doc.Bool("correct", correct),
		Hint:     doc.String("hint", ""),
		Expected: expected,
	}
	t.Board = fen.DecodeBoard(t.FEN)
	t.Blocks = markdown.RenderBlocks(t.Reply)
	return t
}

// NewPuzzle reads a puzzle master reply. id, theme and rating fill the
// fields the reply leaves out.
func NewPuzzle(doc agent.Document, id, theme string, rating int) Puzzle {
	p := Puzzle{
		ID:       doc.String("id", id),
		FEN:      doc.String("fen", fen.InitialFEN),
		Theme:    doc.String("theme", theme),
		Prompt:   doc.First(DefaultPrompt, "prompt", "question", "description"),
		Solution: listOf(doc, "solution", "moves"),
		Hints:    doc.Strings("hints"),
		Rating:   doc.Int("rating", rating),
	}
	p.SideToMove = fen.SideToMove(p.FEN)
	p.Board = fen.DecodeBoard(p.FEN)
	return p
}

// NewReview reads a game reviewer reply. base carries the header values
// taken from the PGN, used where the reply is silent.
func NewReview(doc agent.Document, base Review) Review {
	r := Review{
		White:        doc.String("white", base.White),
		Black:        doc.String("black", base.Black),
		Result:       doc.String("result", base.Result),
		Opening:      doc.String("opening", base.Opening),
		ECO:          doc.String("eco", base.ECO),
		PlyCount:     base.PlyCount,
		Summary:      doc.First(NoAnalysis, "summary", "overview", "text"),
		Strengths:    doc.Strings("strengths"),
		Improvements: listOf(doc, "improvements", "weaknesses"),
	}
	for _, m := range doc.Documents("key_moments") {
		km := KeyMoment{
			MoveNumber:     m.Int("move_number", 0),
			Move:           m.String("move", ""),
			Classification: m.String("classification", MomentNote),
			Comment:        m.First("", "comment", "explanation"),
			FEN:            m.String("fen", ""),
		}
		km.Board = fen.DecodeBoard(km.FEN)
		r.KeyMoments = append(r.KeyMoments, km)
	}
	r.Blocks = markdown.RenderBlocks(r.Summary)
	return r
}

// NewChatReply reads a chat reply.
func NewChatReply(doc agent.Document) ChatReply {
	text := doc.First(NoReply, "reply", "text", "message", "response")
	return ChatReply{Text: text, Blocks: markdown.RenderBlocks(text)}
}

func listOf(doc agent.Document, keys ...string) []string {
	for _, k := range keys {
		if v := doc.Strings(k); len(v) > 0 {
			return v
		}
	}
	return nil
}
