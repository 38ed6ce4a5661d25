// Package eco provides the opening catalog used by the opening trainer and
// ECO (Encyclopaedia of Chess Openings) classification of reviewed games.
package eco

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/pgn"
)

// Entry is one named opening line.
type Entry struct {
	Code  string   `yaml:"code" json:"code"`   // e.g. "B90"
	Name  string   `yaml:"name" json:"name"`   // e.g. "Sicilian Defence: Najdorf"
	Moves []string `yaml:"moves" json:"moves"` // mainline SAN from the initial position
}

// HalfMoves returns the length of the line in plies.
func (e Entry) HalfMoves() int {
	return len(e.Moves)
}

// Line formats the moves with move numbers, e.g. "1. e4 c5 2. Nf3".
func (e Entry) Line() string {
	var sb strings.Builder
	for i, m := range e.Moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		}
		sb.WriteString(m)
	}
	return sb.String()
}

// Catalog is an immutable set of openings. Lookups are case-insensitive on
// code and name.
type Catalog struct {
	entries []Entry
	byKey   map[string]int
}

// NewCatalog builds a catalog. Entries without a name or moves are
// skipped; a later entry with the same name replaces an earlier one.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{byKey: make(map[string]int)}
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		e.Code = strings.TrimSpace(e.Code)
		if e.Name == "" || len(e.Moves) == 0 {
			continue
		}
		key := normalize(e.Name)
		if i, ok := c.byKey[key]; ok {
			c.entries[i] = e
		} else {
			c.byKey[key] = len(c.entries)
			c.entries = append(c.entries, e)
		}
	}
	// Codes index the first entry carrying them.
	for i, e := range c.entries {
		if e.Code == "" {
			continue
		}
		if _, ok := c.byKey[normalize(e.Code)]; !ok {
			c.byKey[normalize(e.Code)] = i
		}
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return NewCatalog(builtin)
}

// Lookup finds an opening by code or name.
func (c *Catalog) Lookup(nameOrCode string) (Entry, error) {
	if i, ok := c.byKey[normalize(nameOrCode)]; ok {
		return c.entries[i], nil
	}
	return Entry{}, fmt.Errorf("%w: %q", errors.ErrUnknownOpening, nameOrCode)
}

// List returns the entries sorted by code, then name.
func (c *Catalog) List() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Classify returns the longest catalog line that is a prefix of moves.
// Check and annotation suffixes are ignored when comparing.
func (c *Catalog) Classify(moves []string) (Entry, bool) {
	best := -1
	for i, e := range c.entries {
		if len(e.Moves) > len(moves) {
			continue
		}
		if best >= 0 && len(e.Moves) <= len(c.entries[best].Moves) {
			continue
		}
		if isPrefix(e.Moves, moves) {
			best = i
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return c.entries[best], true
}

func isPrefix(line, moves []string) bool {
	for i, m := range line {
		if StripSAN(m) != StripSAN(moves[i]) {
			return false
		}
	}
	return true
}

// StripSAN removes check, mate and annotation suffixes from a SAN move.
func StripSAN(move string) string {
	return strings.TrimRight(strings.TrimSpace(move), "+#!?")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// yamlFile is the on-disk catalog format. Moves may be a list or a single
// space-separated string.
type yamlFile struct {
	Openings []yamlEntry `yaml:"openings"`
}

type yamlEntry struct {
	Code  string    `yaml:"code"`
	Name  string    `yaml:"name"`
	Moves yaml.Node `yaml:"moves"`
}

// LoadYAML reads a catalog from YAML of the form
//
//	openings:
//	  - code: C50
//	    name: Italian Game
//	    moves: e4 e5 Nf3 Nc6 Bc4
func LoadYAML(r io.Reader) (*Catalog, error) {
	var f yamlFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("error parsing opening catalog: %w", err)
	}

	entries := make([]Entry, 0, len(f.Openings))
	for _, o := range f.Openings {
		moves, err := decodeMoves(&o.Moves)
		if err != nil {
			return nil, fmt.Errorf("opening %q: %w", o.Name, err)
		}
		entries = append(entries, Entry{Code: o.Code, Name: o.Name, Moves: moves})
	}
	return NewCatalog(entries), nil
}

func decodeMoves(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		return pgn.Parse(n.Value).Moves, nil
	case yaml.SequenceNode:
		var moves []string
		if err := n.Decode(&moves); err != nil {
			return nil, err
		}
		return moves, nil
	default:
		return nil, fmt.Errorf("moves must be a string or a list")
	}
}

// LoadPGN reads a catalog from ECO-style PGN, where each game carries ECO,
// Opening and optionally Variation tags followed by the line's moves.
func LoadPGN(r io.Reader) (*Catalog, error) {
	games, err := pgn.ParseAll(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing ECO file: %w", err)
	}

	entries := make([]Entry, 0, len(games))
	for _, g := range games {
		name := g.Tag("Opening")
		if v := g.Tag("Variation"); v != "" {
			name += ": " + v
		}
		entries = append(entries, Entry{Code: g.Tag("ECO"), Name: name, Moves: g.Moves})
	}
	return NewCatalog(entries), nil
}

// LoadFile loads a catalog from path, choosing the format by extension:
// .pgn files are read as ECO PGN, anything else as YAML.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open opening catalog: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".pgn") {
		return LoadPGN(f)
	}
	return LoadYAML(f)
}
