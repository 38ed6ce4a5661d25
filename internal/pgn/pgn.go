// Package pgn reads the parts of PGN text the trainer needs: the tag pairs,
// the raw movetext, and the mainline SAN moves. Moves are not validated.
package pgn

import (
	"io"
	"strings"
)

// SevenTagRoster lists the tags every game reports, in PGN export order.
var SevenTagRoster = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

// Result tokens that terminate a game.
const (
	WhiteWins = "1-0"
	BlackWins = "0-1"
	Draw      = "1/2-1/2"
	Unknown   = "*"
)

// Game is a single parsed game.
type Game struct {
	Tags     map[string]string
	TagOrder []string // tag names in input order, first occurrence only
	Movetext string   // raw movetext including comments and variations
	Moves    []string // mainline SAN with move numbers and annotations removed
	Result   string   // terminating result token, if any
}

// Tag returns the tag value, or "?" for missing seven-tag-roster entries.
func (g Game) Tag(name string) string {
	if v, ok := g.Tags[name]; ok && v != "" {
		return v
	}
	for _, n := range SevenTagRoster {
		if n == name {
			return "?"
		}
	}
	return ""
}

// PlyCount returns the number of mainline half-moves.
func (g Game) PlyCount() int {
	return len(g.Moves)
}

// Parse returns the first game in text. It never fails: text without tags
// or moves yields a Game whose roster tags are all "?".
func Parse(text string) Game {
	games := parseAll(text)
	if len(games) == 0 {
		return finish(newGame())
	}
	return games[0]
}

// ParseAll reads every game from r.
func ParseAll(r io.Reader) ([]Game, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseAll(string(data)), nil
}

func newGame() *Game {
	return &Game{Tags: make(map[string]string)}
}

// finish fills the roster defaults. A missing Result tag takes the
// terminating result from the movetext.
func finish(g *Game) Game {
	if _, ok := g.Tags["Result"]; !ok && g.Result != "" {
		g.Tags["Result"] = g.Result
		g.TagOrder = append(g.TagOrder, "Result")
	}
	for _, name := range SevenTagRoster {
		if g.Tags[name] == "" {
			if _, seen := g.Tags[name]; !seen {
				g.TagOrder = append(g.TagOrder, name)
			}
			g.Tags[name] = "?"
		}
	}
	g.Movetext = strings.TrimSpace(g.Movetext)
	return *g
}

type scanner struct {
	src   string
	pos   int
	games []Game
	cur   *Game

	moveStart int // offset of the first movetext token, -1 before any
	ravDepth  int
}

func parseAll(text string) []Game {
	s := &scanner{src: text, moveStart: -1}
	s.run()
	return s.games
}

func (s *scanner) run() {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case isSpace(ch):
			s.pos++
		case ch == '[' && s.ravDepth == 0:
			if s.moveStart >= 0 {
				s.endGame(s.pos)
			}
			s.gatherTag()
		case ch == '{':
			s.markMovetext()
			s.skipPast('}')
		case ch == ';':
			s.markMovetext()
			s.skipPast('\n')
		case ch == '%' && (s.pos == 0 || s.src[s.pos-1] == '\n'):
			s.skipPast('\n')
		case ch == '(':
			s.markMovetext()
			s.ravDepth++
			s.pos++
		case ch == ')':
			if s.ravDepth > 0 {
				s.ravDepth--
			}
			s.pos++
		default:
			s.gatherSymbol()
		}
	}
	if s.cur != nil {
		s.endGame(len(s.src))
	}
}

func (s *scanner) game() *Game {
	if s.cur == nil {
		s.cur = newGame()
	}
	return s.cur
}

func (s *scanner) markMovetext() {
	s.game()
	if s.moveStart < 0 {
		s.moveStart = s.pos
	}
}

func (s *scanner) endGame(end int) {
	g := s.game()
	if s.moveStart >= 0 {
		g.Movetext = s.src[s.moveStart:end]
	}
	s.games = append(s.games, finish(g))
	s.cur = nil
	s.moveStart = -1
	s.ravDepth = 0
}

// gatherTag reads [Name "value"]. A tag with no string is ignored.
func (s *scanner) gatherTag() {
	g := s.game()
	s.pos++ // '['
	s.skipSpace()

	start := s.pos
	for s.pos < len(s.src) && isTagChar(s.src[s.pos]) {
		s.pos++
	}
	name := s.src[start:s.pos]
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}

	if s.pos < len(s.src) && s.src[s.pos] == '"' && name != "" {
		s.pos++
		value := s.gatherString()
		if _, seen := g.Tags[name]; !seen {
			g.TagOrder = append(g.TagOrder, name)
		}
		g.Tags[name] = value
	}

	// A tag never spans lines; stop at ']' or the end of the line.
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch == '\n' {
			return
		}
		s.pos++
		if ch == ']' {
			return
		}
	}
}

func (s *scanner) gatherString() string {
	var sb strings.Builder
	escaped := false
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		s.pos++
		switch {
		case escaped:
			sb.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			return sb.String()
		case ch == '\n':
			// unterminated: stop at end of line
			return sb.String()
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

// gatherSymbol reads one movetext token and classifies it.
func (s *scanner) gatherSymbol() {
	s.markMovetext()
	start := s.pos
	for s.pos < len(s.src) && !isDelimiter(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		s.pos++ // stray delimiter such as ']' or '}'
		return
	}
	tok := s.src[start:s.pos]

	switch {
	case isResult(tok):
		if s.ravDepth == 0 {
			s.cur.Result = tok
			s.endGame(s.pos)
		}
		return
	case tok[0] == '$':
		return // NAG
	}

	move := stripMoveNumber(tok)
	move = strings.TrimRight(move, "!?")
	if move == "" || s.ravDepth > 0 {
		return
	}
	s.cur.Moves = append(s.cur.Moves, move)
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func (s *scanner) skipPast(end byte) {
	if i := strings.IndexByte(s.src[s.pos:], end); i >= 0 {
		s.pos += i + 1
		return
	}
	s.pos = len(s.src)
}

// stripMoveNumber removes a leading "12." or "12..." from tok. A bare
// number or run of dots yields "".
func stripMoveNumber(tok string) string {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	j := i
	for j < len(tok) && tok[j] == '.' {
		j++
	}
	if j == i && i > 0 {
		// digits with no dots: a bare move number like "12"
		if i == len(tok) {
			return ""
		}
		return tok
	}
	return tok[j:]
}

func isResult(tok string) bool {
	switch tok {
	case WhiteWins, BlackWins, Draw, Unknown:
		return true
	}
	return false
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isTagChar(ch byte) bool {
	return ch == '_' || (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDelimiter(ch byte) bool {
	return isSpace(ch) || strings.IndexByte("{}()[];", ch) >= 0
}
