package session

import (
	"fmt"
	"strings"

	"github.com/lgbarn/chess-trainer-go/internal/coach"
	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/fen"
)

// Action is a state transition.
type Action interface {
	action()
}

// SelectSection switches panels. Opening and puzzle progress is cleared;
// the chat transcript is kept.
type SelectSection struct{ Section Section }

// SetPosition replaces the free-play position.
type SetPosition struct{ FEN string }

// BeginChat records a user message and marks the session busy until
// EndChat. Only one chat turn may be pending.
type BeginChat struct{ Text string }

// EndChat clears the busy flag and records the coach's reply, if any.
type EndChat struct{ Reply string }

// SelectOpening starts drilling a named opening from the initial position.
type SelectOpening struct{ Name string }

// RecordMoves appends played moves to the opening history and sets the
// resulting position when known.
type RecordMoves struct {
	Moves []string
	FEN   string
}

// LoadPuzzle makes p the current puzzle.
type LoadPuzzle struct{ Puzzle coach.Puzzle }

// RevealHint reveals the next hint of the current puzzle.
type RevealHint struct{}

// AttemptSolution counts a solution attempt and marks the puzzle solved
// when Correct is set.
type AttemptSolution struct{ Correct bool }

func (SelectSection) action()   {}
func (SetPosition) action()     {}
func (BeginChat) action()       {}
func (EndChat) action()         {}
func (SelectOpening) action()   {}
func (RecordMoves) action()     {}
func (LoadPuzzle) action()      {}
func (RevealHint) action()      {}
func (AttemptSolution) action() {}

// Reduce applies a to s and returns the new state. s is not modified. On
// error the returned state equals s.
func Reduce(s State, a Action) (State, error) {
	next := s.clone()

	switch a := a.(type) {
	case SelectSection:
		if _, err := ParseSection(string(a.Section)); err != nil {
			return s, err
		}
		if a.Section != s.Section {
			next.Section = a.Section
			next.clearOpening()
			next.clearPuzzle()
		}

	case SetPosition:
		if strings.TrimSpace(a.FEN) == "" {
			return s, errors.Invalid("fen", "required")
		}
		next.FEN = strings.TrimSpace(a.FEN)

	case BeginChat:
		text := strings.TrimSpace(a.Text)
		if text == "" {
			return s, errors.Invalid("text", "required")
		}
		if s.Busy {
			return s, errors.ErrChatInProgress
		}
		next.Transcript = append(next.Transcript, coach.Turn{Role: coach.RoleUser, Text: text})
		next.Busy = true

	case EndChat:
		next.Busy = false
		if a.Reply != "" {
			next.Transcript = append(next.Transcript, coach.Turn{Role: coach.RoleCoach, Text: a.Reply})
		}

	case SelectOpening:
		if strings.TrimSpace(a.Name) == "" {
			return s, errors.Invalid("opening", "required")
		}
		next.Section = Openings
		next.clearPuzzle()
		next.Opening = a.Name
		next.History = nil
		next.FEN = fen.InitialFEN

	case RecordMoves:
		if s.Opening == "" {
			return s, errors.Invalid("opening", "no opening selected")
		}
		for _, m := range a.Moves {
			if m = strings.TrimSpace(m); m != "" {
				next.History = append(next.History, m)
			}
		}
		if a.FEN != "" {
			next.FEN = a.FEN
		}

	case LoadPuzzle:
		p := a.Puzzle
		next.Section = Puzzles
		next.clearOpening()
		next.Puzzle = &p
		next.HintsRevealed = 0
		next.Solved = false
		next.Attempts = 0
		next.FEN = p.FEN

	case RevealHint:
		if s.Puzzle == nil {
			return s, errors.ErrNoPuzzle
		}
		if next.HintsRevealed < len(s.Puzzle.Hints) {
			next.HintsRevealed++
		}

	case AttemptSolution:
		if s.Puzzle == nil {
			return s, errors.ErrNoPuzzle
		}
		next.Attempts++
		if a.Correct {
			next.Solved = true
		}

	default:
		return s, fmt.Errorf("%w: unknown action %T", errors.ErrInvalidRequest, a)
	}

	return next, nil
}

// clone copies the slices and puzzle so edits to the copy never alias s.
func (s State) clone() State {
	c := s
	if s.Transcript != nil {
		c.Transcript = append([]coach.Turn(nil), s.Transcript...)
	}
	if s.History != nil {
		c.History = append([]string(nil), s.History...)
	}
	if s.Puzzle != nil {
		p := *s.Puzzle
		c.Puzzle = &p
	}
	return c
}

func (s *State) clearOpening() {
	s.Opening = ""
	s.History = nil
}

func (s *State) clearPuzzle() {
	s.Puzzle = nil
	s.HintsRevealed = 0
	s.Solved = false
	s.Attempts = 0
}
