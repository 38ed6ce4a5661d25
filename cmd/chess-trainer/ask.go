package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lgbarn/chess-trainer-go/internal/chess"
	"github.com/lgbarn/chess-trainer-go/internal/coach"
	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/fen"
	"github.com/lgbarn/chess-trainer-go/internal/markdown"
	"github.com/lgbarn/chess-trainer-go/internal/output"
)

func (a *app) askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask the coach from the command line",
		Long: `Sends one request to the configured agent service and prints the
coach's reply. Each invocation is independent; no session state is kept.`,
	}
	cmd.AddCommand(
		a.askAnalyzeCmd(),
		a.askOpeningCmd(),
		a.askPuzzleCmd(),
		a.askReviewCmd(),
		a.askChatCmd(),
	)
	return cmd
}

func (a *app) askAnalyzeCmd() *cobra.Command {
	var (
		d        display
		question string
	)

	cmd := &cobra.Command{
		Use:   "analyze [fen]",
		Short: "Analyze a position",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fenStr := fen.InitialFEN
			if len(args) == 1 {
				fenStr = args[0]
			}
			svc, _, err := a.newCoach(cmd.Context())
			if err != nil {
				return err
			}
			analysis, err := svc.Analyze(cmd.Context(), fenStr, question)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if d.json() {
				return printJSON(out, output.AnalysisToJSON(analysis, d.flip))
			}
			w, err := d.writer(out)
			if err != nil {
				return err
			}
			if err := w.WriteBoard(analysis.FEN, d.flip); err != nil {
				return err
			}
			return w.WriteBlocks(markdown.RenderBlocks(analysisText(analysis)))
		},
	}
	d.register(cmd)
	cmd.Flags().StringVarP(&question, "question", "q", "", "question about the position")
	return cmd
}

func analysisText(an coach.Analysis) string {
	var b strings.Builder
	b.WriteString(an.Summary)
	b.WriteString("\n\n")
	if an.BestMove != "" {
		fmt.Fprintf(&b, "**Best move:** %s\n", an.BestMove)
	}
	if an.Evaluation != "" {
		fmt.Fprintf(&b, "**Evaluation:** %s\n", an.Evaluation)
	}
	list(&b, "Ideas", an.Ideas)
	list(&b, "Threats", an.Threats)
	return strings.TrimRight(b.String(), "\n")
}

func (a *app) askOpeningCmd() *cobra.Command {
	var (
		d       display
		history []string
	)

	cmd := &cobra.Command{
		Use:   "opening <name|eco> <move>",
		Short: "Play one move of an opening drill",
		Long: `Plays one student move in the named opening. Earlier moves of the
drill, both sides, are passed with --history.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := a.newCoach(cmd.Context())
			if err != nil {
				return err
			}
			entry, err := svc.Catalog().Lookup(args[0])
			if err != nil {
				return err
			}
			turn, err := svc.PlayOpening(cmd.Context(), entry, history, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if d.json() {
				return printJSON(out, output.OpeningTurnToJSON(turn, d.flip))
			}
			w, err := d.writer(out)
			if err != nil {
				return err
			}
			if turn.FEN != "" {
				if err := w.WriteBoard(turn.FEN, d.flip); err != nil {
					return err
				}
			}
			return w.WriteBlocks(markdown.RenderBlocks(openingText(entry.Name, args[1], turn)))
		},
	}
	d.register(cmd)
	cmd.Flags().StringSliceVar(&history, "history", nil, "moves already played, comma separated")
	return cmd
}

func openingText(name, move string, t coach.OpeningTurn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", name)
	if t.Correct {
		fmt.Fprintf(&b, "**%s** is the book move.\n", move)
	} else if t.Expected != "" {
		fmt.Fprintf(&b, "**%s** leaves the book; the line continues **%s**.\n", move, t.Expected)
	} else {
		fmt.Fprintf(&b, "**%s** is not the book move.\n", move)
	}
	if t.Reply != "" {
		b.WriteString("\n" + t.Reply + "\n")
	}
	if t.Move != "" {
		fmt.Fprintf(&b, "\n**Coach plays:** %s\n", t.Move)
	}
	if t.Feedback != "" {
		b.WriteString("\n" + t.Feedback + "\n")
	}
	if t.Hint != "" {
		fmt.Fprintf(&b, "\n**Hint:** %s\n", t.Hint)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *app) askPuzzleCmd() *cobra.Command {
	var (
		d      display
		theme  string
		rating int
		reveal bool
	)

	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Fetch a tactics puzzle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := a.newCoach(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svc.NewPuzzle(cmd.Context(), theme, rating)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if d.json() {
				view := struct {
					*output.PuzzleJSON
					Solution []string `json:"solution,omitempty"`
				}{PuzzleJSON: output.PuzzleToJSON(p, nil)}
				if reveal {
					view.PuzzleJSON = output.PuzzleToJSON(p, p.Hints)
					view.Solution = p.Solution
				}
				return printJSON(out, view)
			}

			w, err := d.writer(out)
			if err != nil {
				return err
			}
			flip := d.flip || p.SideToMove == chess.Black
			if err := w.WriteBoard(p.FEN, flip); err != nil {
				return err
			}
			return w.WriteBlocks(markdown.RenderBlocks(puzzleText(p, reveal)))
		},
	}
	d.register(cmd)
	cmd.Flags().StringVar(&theme, "theme", "", "tactical theme, e.g. fork or pin")
	cmd.Flags().IntVar(&rating, "rating", 0, "target rating (400-3000, 0 for the default)")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "also print the hints and the solution")
	return cmd
}

func puzzleText(p coach.Puzzle, reveal bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s puzzle (%d)\n", p.Theme, p.Rating)
	fmt.Fprintf(&b, "**%s to move.** %s\n\n", p.SideToMove, p.Prompt)
	if reveal {
		list(&b, "Hints", p.Hints)
		list(&b, "Solution", p.Solution)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *app) askReviewCmd() *cobra.Command {
	var (
		d    display
		deep bool
	)

	cmd := &cobra.Command{
		Use:   "review [file|-]",
		Short: "Review a PGN game",
		Long: `Reviews one PGN game read from a file, or from standard input when
the file is "-" or omitted. With --deep every key moment that carries a
position is analyzed as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			svc, _, err := a.newCoach(cmd.Context())
			if err != nil {
				return err
			}
			review, err := svc.ReviewGame(cmd.Context(), text, deep)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if d.json() {
				return printJSON(out, output.ReviewToJSON(review))
			}
			w, err := d.writer(out)
			if err != nil {
				return err
			}
			return w.WriteBlocks(markdown.RenderBlocks(reviewText(review)))
		},
	}
	d.register(cmd)
	cmd.Flags().BoolVar(&deep, "deep", false, "analyze each key moment")
	return cmd
}

func reviewText(r coach.Review) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s vs %s (%s)\n", r.White, r.Black, r.Result)
	if r.Opening != "" {
		fmt.Fprintf(&b, "**%s** %s\n", r.ECO, r.Opening)
	}
	b.WriteString("\n" + r.Summary + "\n\n")
	list(&b, "Strengths", r.Strengths)
	list(&b, "Improvements", r.Improvements)

	if len(r.KeyMoments) > 0 {
		b.WriteString("## Key moments\n")
		for _, m := range r.KeyMoments {
			fmt.Fprintf(&b, "- **%d. %s** (%s) %s", m.MoveNumber, m.Move, m.Classification, m.Comment)
			if m.Analysis != nil && m.Analysis.BestMove != "" {
				fmt.Fprintf(&b, " Best was **%s**.", m.Analysis.BestMove)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *app) askChatCmd() *cobra.Command {
	var d display

	cmd := &cobra.Command{
		Use:   "chat <message...>",
		Short: "Ask the chess coach a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinArgs(args)
			if text == "" {
				return errors.Invalid("text", "required")
			}
			svc, _, err := a.newCoach(cmd.Context())
			if err != nil {
				return err
			}
			reply, err := svc.Chat(cmd.Context(), nil, text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if d.json() {
				return printJSON(out, output.ChatToJSON(reply))
			}
			w, err := d.writer(out)
			if err != nil {
				return err
			}
			return w.WriteBlocks(reply.Blocks)
		},
	}
	d.register(cmd)
	return cmd
}

// list writes a level-two heading and one bullet per item. Nothing is
// written for an empty list.
func list(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
