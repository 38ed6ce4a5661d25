package coach

import (
	"strings"

	"github.com/lgbarn/chess-trainer-go/internal/eco"
)

// SameMove compares two SAN moves ignoring surrounding space and check,
// mate and annotation suffixes. It is a string comparison, not a legality
// check.
func SameMove(a, b string) bool {
	a, b = eco.StripSAN(a), eco.StripSAN(b)
	return a != "" && a == b
}

// CheckSolution reports whether move matches the first move of the
// puzzle's solution.
func CheckSolution(p Puzzle, move string) bool {
	if len(p.Solution) == 0 {
		return false
	}
	return SameMove(move, firstMove(p.Solution[0]))
}

// firstMove takes the first SAN token from a solution entry, which agents
// sometimes write as a whole line like "1. Qxf7+ Kxf7".
func firstMove(entry string) string {
	for _, tok := range strings.Fields(entry) {
		if i := strings.LastIndexByte(tok, '.'); i >= 0 {
			tok = tok[i+1:]
		}
		if tok != "" {
			return tok
		}
	}
	return ""
}
