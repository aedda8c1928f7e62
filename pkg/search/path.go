package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/herohde/puzzle24/pkg/puzzle"
)

// MaxPathLen bounds the length of any path this package can report,
// matching the original's use of the PDB histogram length as a generous
// upper bound on solution depth.
const MaxPathLen = 256

// NoPath is the path length that stands for "no solution within the
// search's limit". Bounded and Unbounded do not return it; they report
// that case through their found result.
const NoPath = -1

// Path is a sequence of moves (destination squares for the blank),
// applied in order starting from some puzzle configuration.
type Path struct {
	Moves []int
}

// String renders p as a comma-separated list of destination squares, the
// format accepted by ParsePath. Grounded on search.c's path_string.
func (p Path) String() string {
	parts := make([]string, len(p.Moves))
	for i, m := range p.Moves {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}

// ParsePath parses a comma-separated list of destination squares, as
// produced by Path.String. Grounded on search.c's path_parse.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}

	fields := strings.Split(s, ",")
	moves := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 || n >= puzzle.TileCount {
			return Path{}, fmt.Errorf("parse path: invalid move %q", f)
		}
		moves[i] = n
	}
	return Path{Moves: moves}, nil
}

// Walk applies every move in p to pz in order. Grounded on search.c's
// path_walk.
func (p Path) Walk(pz *puzzle.Puzzle) {
	for _, m := range p.Moves {
		pz.Move(m)
	}
}
