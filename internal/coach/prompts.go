package coach

import (
	"fmt"
	"strings"

	"github.com/lgbarn/chess-trainer-go/internal/eco"
	"github.com/lgbarn/chess-trainer-go/internal/fen"
	"github.com/lgbarn/chess-trainer-go/internal/pgn"
)

// Instructions are the system instructions for each kind of agent, keyed
// by role rather than agent ID so deployments can rename agents.
var Instructions = map[string]string{
	"analyst": "You are a chess analyst. Explain positions for club players. " +
		"Reply with one JSON object: summary (markdown), best_move (SAN), " +
		"evaluation, ideas (list), threats (list).",
	"opening": "You are an opening coach. The student plays one side of a named opening. " +
		"Reply with one JSON object: reply (markdown), move (your SAN reply), " +
		"fen, feedback, correct (boolean), hint.",
	"puzzle": "You are a puzzle master. Compose tactics puzzles from real game patterns. " +
		"Reply with one JSON object: fen, theme, prompt, solution (list of SAN), " +
		"hints (list, vaguest first), rating.",
	"review": "You are a game reviewer. " +
		"Reply with one JSON object: summary (markdown), strengths (list), improvements (list), " +
		"key_moments (list of {move_number, move, classification, comment, fen}).",
	"chat": "You are a friendly chess coach answering questions in a chat. " +
		"Reply with one JSON object: reply (markdown using headings, lists and **bold**).",
}

// AnalyzePrompt asks for an analysis of fenStr, optionally focused on a
// question.
func AnalyzePrompt(fenStr, question string) string {
	var sb strings.Builder
	sb.WriteString("Analyze this chess position.\n")
	fmt.Fprintf(&sb, "FEN: %s\n", fenStr)
	fmt.Fprintf(&sb, "Side to move: %s\n", fen.SideToMove(fenStr))
	if q := strings.TrimSpace(question); q != "" {
		fmt.Fprintf(&sb, "Question: %s\n", q)
	}
	sb.WriteString("Respond with JSON keys: summary, best_move, evaluation, ideas, threats.")
	return sb.String()
}

// OpeningPrompt asks the opening coach to respond to the student's move.
func OpeningPrompt(opening eco.Entry, history []string, move string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Opening: %s (%s)\n", opening.Name, opening.Code)
	fmt.Fprintf(&sb, "Main line: %s\n", opening.Line())
	played := eco.Entry{Moves: history}
	if len(history) == 0 {
		sb.WriteString("Moves so far: (none)\n")
	} else {
		fmt.Fprintf(&sb, "Moves so far: %s\n", played.Line())
	}
	fmt.Fprintf(&sb, "Student plays: %s\n", move)
	sb.WriteString("Say whether the move follows the line, reply with the next move, and give the resulting FEN.\n")
	sb.WriteString("Respond with JSON keys: reply, move, fen, feedback, correct, hint.")
	return sb.String()
}

// PuzzlePrompt asks for a new puzzle.
func PuzzlePrompt(theme string, rating int) string {
	return fmt.Sprintf("Create a chess tactics puzzle.\nTheme: %s\nTarget rating: %d\n"+
		"Respond with JSON keys: fen, theme, prompt, solution, hints, rating.", theme, rating)
}

// ReviewPrompt asks for a review of game.
func ReviewPrompt(game pgn.Game, opening string) string {
	var sb strings.Builder
	sb.WriteString("Review this game.\n")
	for _, name := range game.TagOrder {
		fmt.Fprintf(&sb, "[%s \"%s\"]\n", name, game.Tags[name])
	}
	if opening != "" {
		fmt.Fprintf(&sb, "Opening: %s\n", opening)
	}
	fmt.Fprintf(&sb, "Plies: %d\n\n%s\n\n", game.PlyCount(), game.Movetext)
	sb.WriteString("Respond with JSON keys: summary, strengths, improvements, key_moments. ")
	sb.WriteString("Give each key moment the FEN after the move.")
	return sb.String()
}

// MomentPrompt asks for a focused analysis of one key moment.
func MomentPrompt(m KeyMoment) string {
	q := fmt.Sprintf("Why is %s on move %d a turning point (%s)?", m.Move, m.MoveNumber, m.Classification)
	if m.Comment != "" {
		q += " Reviewer note: " + m.Comment
	}
	return AnalyzePrompt(m.FEN, q)
}

// ChatPrompt builds the chat prompt from the most recent turns of the
// transcript followed by the new message.
func ChatPrompt(transcript []Turn, text string) string {
	if len(transcript) > MaxChatTurns {
		transcript = transcript[len(transcript)-MaxChatTurns:]
	}
	var sb strings.Builder
	if len(transcript) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, t := range transcript {
			fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Text)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%s: %s\n", RoleUser, text)
	sb.WriteString("Respond with JSON key: reply.")
	return sb.String()
}
