package coach

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lgbarn/chess-trainer-go/internal/agent"
	"github.com/lgbarn/chess-trainer-go/internal/config"
	"github.com/lgbarn/chess-trainer-go/internal/eco"
	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/pgn"
	"github.com/lgbarn/chess-trainer-go/internal/worker"
)

// InstructionsFor maps the configured agent IDs to their system
// instructions.
func InstructionsFor(ids config.AgentIDs) map[string]string {
	return map[string]string{
		ids.Analyst: Instructions["analyst"],
		ids.Opening: Instructions["opening"],
		ids.Puzzle:  Instructions["puzzle"],
		ids.Review:  Instructions["review"],
		ids.Chat:    Instructions["chat"],
	}
}

// Service runs trainer actions against the agent service.
type Service struct {
	client  agent.Client
	agents  config.AgentIDs
	catalog *eco.Catalog
	workers int
	logger  *zap.Logger
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithWorkers sets how many key moments a deep review analyzes at once.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n >= 1 {
			s.workers = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalog sets the catalog used to classify reviewed games.
func WithCatalog(c *eco.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithIDFunc replaces the puzzle ID generator.
func WithIDFunc(f func() string) Option {
	return func(s *Service) {
		if f != nil {
			s.newID = f
		}
	}
}

// NewService creates a service that sends prompts through client.
func NewService(client agent.Client, agents config.AgentIDs, opts ...Option) *Service {
	s := &Service{
		client:  client,
		agents:  agents,
		catalog: eco.Default(),
		workers: 4,
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the opening catalog in use.
func (s *Service) Catalog() *eco.Catalog {
	return s.catalog
}

func (s *Service) invoke(ctx context.Context, op, agentID, prompt string) (agent.Document, error) {
	return s.send(ctx, op, agent.Request{AgentID: agentID, Prompt: prompt})
}

func (s *Service) send(ctx context.Context, op string, req agent.Request) (agent.Document, error) {
	s.logger.Debug("agent request",
		zap.String("op", op),
		zap.String("agent", req.AgentID),
		zap.Int("prompt_len", len(req.Prompt)))

	doc, err := s.client.Invoke(ctx, req)
	if err != nil {
		s.logger.Warn("agent request failed",
			zap.String("op", op),
			zap.String("agent", req.AgentID),
			zap.Error(err))
		return nil, errors.Wrap(err, op)
	}
	return doc, nil
}

// Analyze asks the analyst about a position.
func (s *Service) Analyze(ctx context.Context, fenStr, question string) (Analysis, error) {
	fenStr = strings.TrimSpace(fenStr)
	if fenStr == "" {
		return Analysis{}, errors.Invalid("fen", "required")
	}
	doc, err := s.invoke(ctx, "analyze", s.agents.Analyst, AnalyzePrompt(fenStr, question))
	if err != nil {
		return Analysis{}, err
	}
	return NewAnalysis(doc, fenStr), nil
}

// PlayOpening sends the student's next move in opening to the opening
// coach. history holds the moves played so far, both sides.
func (s *Service) PlayOpening(ctx context.Context, opening eco.Entry, history []string, move string) (OpeningTurn, error) {
	move = strings.TrimSpace(move)
	if move == "" {
		return OpeningTurn{}, errors.Invalid("move", "required")
	}

	var expected, bookReply string
	if ply := len(history); ply < len(opening.Moves) {
		expected = opening.Moves[ply]
		if ply+1 < len(opening.Moves) {
			bookReply = opening.Moves[ply+1]
		}
	}

	doc, err := s.invoke(ctx, "opening", s.agents.Opening, OpeningPrompt(opening, history, move))
	if err != nil {
		return OpeningTurn{}, err
	}
	return NewOpeningTurn(doc, move, expected, bookReply), nil
}

// NewPuzzle asks the puzzle master for a puzzle. An empty theme means
// mixed themes and a zero rating means DefaultRating.
func (s *Service) NewPuzzle(ctx context.Context, theme string, rating int) (Puzzle, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = DefaultTheme
	}
	if rating == 0 {
		rating = DefaultRating
	}
	if rating < MinPuzzleRating || rating > MaxPuzzleRating {
		return Puzzle{}, errors.Invalid("rating", "must be between 400 and 3000")
	}

	// Every call must produce a fresh puzzle.
	doc, err := s.send(ctx, "puzzle", agent.Request{
		AgentID: s.agents.Puzzle,
		Prompt:  PuzzlePrompt(theme, rating),
		NoCache: true,
	})
	if err != nil {
		return Puzzle{}, err
	}
	return NewPuzzle(doc, s.newID(), theme, rating), nil
}

// ReviewGame asks the reviewer about a PGN game. A deep review also
// analyzes every key moment that carries a position, in parallel.
func (s *Service) ReviewGame(ctx context.Context, pgnText string, deep bool) (Review, error) {
	if strings.TrimSpace(pgnText) == "" {
		return Review{}, errors.Invalid("pgn", "required")
	}
	game := pgn.Parse(pgnText)
	if game.PlyCount() == 0 {
		return Review{}, errors.Invalid("pgn", "no moves found")
	}

	base := Review{
		White:    game.Tag("White"),
		Black:    game.Tag("Black"),
		Result:   game.Tag("Result"),
		Opening:  game.Tag("Opening"),
		ECO:      game.Tag("ECO"),
		PlyCount: game.PlyCount(),
	}
	if entry, ok := s.catalog.Classify(game.Moves); ok {
		if base.Opening == "" {
			base.Opening = entry.Name
		}
		if base.ECO == "" {
			base.ECO = entry.Code
		}
	}

	doc, err := s.invoke(ctx, "review", s.agents.Review, ReviewPrompt(game, base.Opening))
	if err != nil {
		return Review{}, err
	}
	review := NewReview(doc, base)

	if deep {
		s.analyzeMoments(ctx, review.KeyMoments)
	}
	return review, nil
}

// analyzeMoments fills Analysis for each moment with a FEN. Failed
// analyses are logged and left empty.
func (s *Service) analyzeMoments(ctx context.Context, moments []KeyMoment) {
	var reqs []agent.Request
	var idx []int
	for i, m := range moments {
		if strings.TrimSpace(m.FEN) == "" {
			continue
		}
		reqs = append(reqs, agent.Request{AgentID: s.agents.Analyst, Prompt: MomentPrompt(m)})
		idx = append(idx, i)
	}
	if len(reqs) == 0 {
		return
	}

	for _, r := range worker.Collect(ctx, s.client, reqs, s.workers) {
		m := &moments[idx[r.Index]]
		if r.Error != nil {
			s.logger.Warn("key moment analysis failed",
				zap.Int("move_number", m.MoveNumber),
				zap.Error(r.Error))
			continue
		}
		a := NewAnalysis(r.Document, m.FEN)
		m.Analysis = &a
	}
}

// Chat sends text to the coach with the recent transcript as context.
func (s *Service) Chat(ctx context.Context, transcript []Turn, text string) (ChatReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatReply{}, errors.Invalid("text", "required")
	}
	doc, err := s.invoke(ctx, "chat", s.agents.Chat, ChatPrompt(transcript, text))
	if err != nil {
		return ChatReply{}, err
	}
	return NewChatReply(doc), nil
}
