package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lgbarn/chess-trainer-go/internal/fen"
	"github.com/lgbarn/chess-trainer-go/internal/markdown"
	"github.com/lgbarn/chess-trainer-go/internal/output"
)

// display holds the output flags shared by the board, render and ask
// commands.
type display struct {
	format string
	ascii  bool
	flip   bool
	width  int
}

func (d *display) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&d.format, "format", "f", output.FormatTerminal, "output format: terminal, plain or json")
	cmd.Flags().BoolVar(&d.ascii, "ascii", false, "draw pieces as letters instead of glyphs")
	cmd.Flags().BoolVar(&d.flip, "flip", false, "show the board from Black's side")
	cmd.Flags().IntVarP(&d.width, "width", "w", output.DefaultWrap, "wrap width for plain and rich text")
}

func (d *display) writer(w io.Writer) (output.Writer, error) {
	switch d.format {
	case output.FormatTerminal, "":
		var opts []output.TerminalOption
		if d.ascii {
			opts = append(opts, output.WithASCII())
		}
		return output.NewTerminalWriter(w, output.NewTerminal(opts...)), nil
	case output.FormatPlain:
		return output.NewPlainWriter(w, d.width), nil
	default:
		return output.NewWriter(d.format, w)
	}
}

func (d *display) json() bool {
	return d.format == output.FormatJSON
}

func (a *app) boardCmd() *cobra.Command {
	var d display

	cmd := &cobra.Command{
		Use:   "board [fen]",
		Short: "Draw the board for a FEN position",
		Long: `Draws the piece placement of a FEN string. Without an argument the
starting position is drawn. Only the placement field is read, and malformed
input still produces a board.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fenStr := fen.InitialFEN
			if len(args) == 1 {
				fenStr = args[0]
			}
			w, err := d.writer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return w.WriteBoard(fenStr, d.flip)
		},
	}
	d.register(cmd)
	return cmd
}

func (a *app) renderCmd() *cobra.Command {
	var (
		d     display
		rich  bool
		style string
	)

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render coach markdown",
		Long: `Renders headings, bullet and numbered lists and bold text from a file,
or from standard input when the file is "-" or omitted. With --rich the text
goes through a full markdown renderer instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			if rich {
				out, err := output.Rich(text, style, d.width)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}

			w, err := d.writer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return w.WriteBlocks(markdown.RenderBlocks(text))
		},
	}
	d.register(cmd)
	cmd.Flags().BoolVar(&rich, "rich", false, "render full markdown with glamour")
	cmd.Flags().StringVar(&style, "style", "", "glamour style for --rich (dark, light, notty); default detects the terminal")
	return cmd
}

// readInput returns the named file, or standard input for "-" or no
// argument.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// joinArgs joins the remaining arguments into one line of text.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
