// Package session holds per-user trainer state: which panel is active, the
// chat transcript, the opening being drilled and the current puzzle.
//
// State changes go through Reduce, a pure function, so every transition is
// testable without a store or a clock. Store adds identity and expiry.
package session

import (
	"time"

	"github.com/lgbarn/chess-trainer-go/internal/coach"
	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/fen"
)

// Section is a trainer panel.
type Section string

const (
	FreePlay Section = "free_play"
	Openings Section = "openings"
	Puzzles  Section = "puzzles"
	Review   Section = "review"
)

// Sections lists every panel in display order.
var Sections = []Section{FreePlay, Openings, Puzzles, Review}

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", errors.Invalid("section", "unknown section "+s)
}

// State is one session's trainer state.
type State struct {
	ID      string    `json:"id"`
	Section Section   `json:"section"`
	FEN     string    `json:"fen"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	Transcript []coach.Turn `json:"transcript"`
	Busy       bool         `json:"busy"`

	Opening string   `json:"opening,omitempty"`
	History []string `json:"history,omitempty"`

	Puzzle        *coach.Puzzle `json:"puzzle,omitempty"`
	HintsRevealed int           `json:"hints_revealed"`
	Solved        bool          `json:"solved"`
	Attempts      int           `json:"attempts"`
}

// NewState returns the state of a fresh session.
func NewState(id string, now time.Time) State {
	return State{
		ID:      id,
		Section: FreePlay,
		FEN:     fen.InitialFEN,
		Created: now,
		Updated: now,
	}
}

// Hints returns the hints revealed so far.
func (s State) Hints() []string {
	if s.Puzzle == nil {
		return nil
	}
	n := s.HintsRevealed
	if n > len(s.Puzzle.Hints) {
		n = len(s.Puzzle.Hints)
	}
	return s.Puzzle.Hints[:n]
}
