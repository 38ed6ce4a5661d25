package pgn

import (
	"strings"
	"testing"

	"github.com/lgbarn/chess-trainer-go/internal/testutil"
)

func TestParse_SampleGame(t *testing.T) {
	g := Parse(testutil.SamplePGN)

	testutil.AssertEqual(t, g.Tag("White"), "Adolf Anderssen")
	testutil.AssertEqual(t, g.Tag("Black"), "Jean Dufresne")
	testutil.AssertEqual(t, g.Tag("Round"), "?")
	testutil.AssertEqual(t, g.Result, WhiteWins)
	testutil.AssertEqual(t, g.PlyCount(), 12)
	testutil.AssertEqual(t, g.Moves[:4], []string{"e4", "e5", "Nf3", "Nc6"})
	testutil.AssertEqual(t, g.TagOrder, SevenTagRoster)
	testutil.AssertTrue(t, strings.HasPrefix(g.Movetext, "1. e4"), "movetext %q", g.Movetext)
	testutil.AssertTrue(t, strings.HasSuffix(g.Movetext, "1-0"), "movetext %q", g.Movetext)
}

func TestParse_RosterDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t"},
		{"moves only", "1. d4 d5 2. c4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Parse(tt.input)
			for _, name := range SevenTagRoster {
				if got := g.Tag(name); got != "?" {
					t.Errorf("Tag(%q) = %q; want \"?\"", name, got)
				}
			}
		})
	}
}

func TestParse_MovetextNoise(t *testing.T) {
	input := `[White "A"]
[Black "B"]
; a line comment
1. e4 {best by test} e5 $1 2. Nf3!? (2. f4 exf4 (2... d5)) 2... Nc6
3. Bb5+ a6 4. Ba4 Nf6 5. O-O *`

	g := Parse(input)

	testutil.AssertEqual(t, g.Moves, []string{"e4", "e5", "Nf3", "Nc6", "Bb5+", "a6", "Ba4", "Nf6", "O-O"})
	testutil.AssertEqual(t, g.Result, Unknown)
	testutil.AssertEqual(t, g.Tag("Result"), Unknown)
}

func TestParse_CompactMoveNumbers(t *testing.T) {
	g := Parse("1.e4 c5 2.Nf3 d6 3.d4 cxd4 1/2-1/2")
	testutil.AssertEqual(t, g.Moves, []string{"e4", "c5", "Nf3", "d6", "d4", "cxd4"})
	testutil.AssertEqual(t, g.Tag("Result"), Draw)
}

func TestParse_TagEscapes(t *testing.T) {
	g := Parse(`[Event "The \"Immortal\" Game"]
[Annotator "Steinitz"]
[Site
[Opening "Bishop's Gambit"]

1. e4 0-1`)

	testutil.AssertEqual(t, g.Tag("Event"), `The "Immortal" Game`)
	testutil.AssertEqual(t, g.Tag("Annotator"), "Steinitz")
	testutil.AssertEqual(t, g.Tag("Opening"), "Bishop's Gambit")
	testutil.AssertEqual(t, g.Tag("Site"), "?")
	testutil.AssertEqual(t, g.Tag("Variation"), "")
	testutil.AssertEqual(t, g.Result, BlackWins)
}

func TestParseAll(t *testing.T) {
	input := testutil.SamplePGN + "\n" + `[Event "Second"]
[White "C"]
[Black "D"]

1. c4 e5 *

[Event "Third"]
1. d4 Nf6 0-1
`
	games, err := ParseAll(strings.NewReader(input))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(games), 3)
	testutil.AssertEqual(t, games[1].Tag("Event"), "Second")
	testutil.AssertEqual(t, games[1].Moves, []string{"c4", "e5"})
	testutil.AssertEqual(t, games[2].Tag("Result"), BlackWins)
	testutil.AssertEqual(t, games[2].PlyCount(), 2)
}

func TestParseAll_NoResultBeforeNextGame(t *testing.T) {
	games, err := ParseAll(strings.NewReader("[Event \"A\"]\n1. e4 e5\n[Event \"B\"]\n1. d4 *"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(games), 2)
	testutil.AssertEqual(t, games[0].Moves, []string{"e4", "e5"})
	testutil.AssertEqual(t, games[0].Tag("Result"), "?")
	testutil.AssertEqual(t, games[1].Tag("Event"), "B")
}

func TestStripMoveNumber(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1.", ""},
		{"12...", ""},
		{"...", ""},
		{"7", ""},
		{"1.e4", "e4"},
		{"3...Nf6", "Nf6"},
		{"Qxe7#", "Qxe7#"},
	}
	for _, tt := range tests {
		if got := stripMoveNumber(tt.in); got != tt.want {
			t.Errorf("stripMoveNumber(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
