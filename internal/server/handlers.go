package server

import (
	"net/http"
	"strings"

	"github.com/lgbarn/chess-trainer-go/internal/chess"
	"github.com/lgbarn/chess-trainer-go/internal/coach"
	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/markdown"
	"github.com/lgbarn/chess-trainer-go/internal/output"
	"github.com/lgbarn/chess-trainer-go/internal/session"
)

// SessionView is a session as returned to clients.
type SessionView struct {
	session.State
	Hints []string          `json:"hints"`
	Board *output.BoardJSON `json:"board"`
}

func viewOf(st session.State) SessionView {
	hints := st.Hints()
	if hints == nil {
		hints = []string{}
	}
	flip := st.Puzzle != nil && st.Puzzle.SideToMove == chess.Black
	return SessionView{State: st, Hints: hints, Board: output.BoardToJSON(st.FEN, flip)}
}

// OpeningView is a catalog entry as returned to clients.
type OpeningView struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	Moves []string `json:"moves"`
	Line  string   `json:"line"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

type boardRequest struct {
	FEN  string `json:"fen"`
	Flip bool   `json:"flip"`
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	var req boardRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, output.BoardToJSON(req.FEN, req.Flip))
}

type markdownRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	var req markdownRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"blocks": output.BlocksToJSON(markdown.RenderBlocks(req.Text)),
	})
}

func (s *Server) handleOpenings(w http.ResponseWriter, r *http.Request) {
	entries := s.coach.Catalog().List()
	views := make([]OpeningView, len(entries))
	for i, e := range entries {
		views[i] = OpeningView{Code: e.Code, Name: e.Name, Moves: e.Moves, Line: e.Line()}
	}
	respond(w, http.StatusOK, map[string]any{"openings": views})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusCreated, viewOf(s.store.Create()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, viewOf(st))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.Get(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

type sectionRequest struct {
	Section string `json:"section"`
}

func (s *Server) handleSelectSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sec, err := session.ParseSection(req.Section)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	st, err := s.store.Dispatch(r.PathValue("id"), session.SelectSection{Section: sec})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, viewOf(st))
}

type analyzeRequest struct {
	SessionID string `json:"session_id"`
	FEN       string `json:"fen"`
	Question  string `json:"question"`
	Flip      bool   `json:"flip"`
}

// handleAnalyze analyzes req.FEN, or the session's position when no FEN is
// given. With a session the analyzed position becomes its position.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	fenStr := req.FEN
	if req.SessionID != "" && strings.TrimSpace(fenStr) == "" {
		st, err := s.store.Get(req.SessionID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		fenStr = st.FEN
	}

	a, err := s.coach.Analyze(r.Context(), fenStr, req.Question)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.SessionID != "" {
		if _, err := s.store.Dispatch(req.SessionID, session.SetPosition{FEN: a.FEN}); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	respond(w, http.StatusOK, output.AnalysisToJSON(a, req.Flip))
}

type openingTurnRequest struct {
	SessionID string `json:"session_id"`
	Opening   string `json:"opening"`
	Move      string `json:"move"`
	Flip      bool   `json:"flip"`
}

type openingTurnResponse struct {
	Turn    *output.OpeningTurnJSON `json:"turn"`
	Session SessionView             `json:"session"`
}

// handleOpeningTurn plays one student move in the session's opening drill.
// Naming a different opening restarts the drill. Only correct moves, and
// the coach's reply to them, extend the drill history.
func (s *Server) handleOpeningTurn(w http.ResponseWriter, r *http.Request) {
	var req openingTurnRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.SessionID == "" {
		s.respondError(w, r, errors.Invalid("session_id", "required"))
		return
	}

	st, err := s.store.Get(req.SessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	name := strings.TrimSpace(req.Opening)
	if name == "" {
		name = st.Opening
	}
	if name == "" {
		s.respondError(w, r, errors.Invalid("opening", "required"))
		return
	}
	entry, err := s.coach.Catalog().Lookup(name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if st.Opening != entry.Name {
		if st, err = s.store.Dispatch(req.SessionID, session.SelectOpening{Name: entry.Name}); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	turn, err := s.coach.PlayOpening(r.Context(), entry, st.History, req.Move)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if turn.Correct {
		moves := []string{req.Move, turn.Move}
		if st, err = s.store.Dispatch(req.SessionID, session.RecordMoves{Moves: moves, FEN: turn.FEN}); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	respond(w, http.StatusOK, openingTurnResponse{
		Turn:    output.OpeningTurnToJSON(turn, req.Flip),
		Session: viewOf(st),
	})
}

type newPuzzleRequest struct {
	SessionID string `json:"session_id"`
	Theme     string `json:"theme"`
	Rating    int    `json:"rating"`
}

type puzzleRequest struct {
	SessionID string `json:"session_id"`
	Move      string `json:"move,omitempty"`
}

type puzzleResponse struct {
	Puzzle   *output.PuzzleJSON `json:"puzzle"`
	Solved   bool               `json:"solved"`
	Attempts int                `json:"attempts"`
	Correct  *bool              `json:"correct,omitempty"`

	// Solution is revealed once the puzzle is solved.
	Solution []string `json:"solution,omitempty"`
}

func puzzleView(st session.State, correct *bool) puzzleResponse {
	resp := puzzleResponse{
		Puzzle:   output.PuzzleToJSON(*st.Puzzle, st.Hints()),
		Solved:   st.Solved,
		Attempts: st.Attempts,
		Correct:  correct,
	}
	if st.Solved {
		resp.Solution = st.Puzzle.Solution
	}
	return resp
}

func (s *Server) handleNewPuzzle(w http.ResponseWriter, r *http.Request) {
	var req newPuzzleRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.SessionID == "" {
		s.respondError(w, r, errors.Invalid("session_id", "required"))
		return
	}
	if _, err := s.store.Get(req.SessionID); err != nil {
		s.respondError(w, r, err)
		return
	}

	p, err := s.coach.NewPuzzle(r.Context(), req.Theme, req.Rating)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	st, err := s.store.Dispatch(req.SessionID, session.LoadPuzzle{Puzzle: p})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, puzzleView(st, nil))
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req puzzleRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	st, err := s.store.Dispatch(req.SessionID, session.RevealHint{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, puzzleView(st, nil))
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req puzzleRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Move) == "" {
		s.respondError(w, r, errors.Invalid("move", "required"))
		return
	}

	var correct bool
	st, err := s.store.Update(req.SessionID, func(st session.State) (session.State, error) {
		if st.Puzzle == nil {
			return st, errors.ErrNoPuzzle
		}
		correct = coach.CheckSolution(*st.Puzzle, req.Move)
		return session.Reduce(st, session.AttemptSolution{Correct: correct})
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, puzzleView(st, &correct))
}

type reviewRequest struct {
	SessionID string `json:"session_id"`
	PGN       string `json:"pgn"`
	Deep      bool   `json:"deep"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.SessionID != "" {
		if _, err := s.store.Dispatch(req.SessionID, session.SelectSection{Section: session.Review}); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	review, err := s.coach.ReviewGame(r.Context(), req.PGN, req.Deep)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, output.ReviewToJSON(review))
}
