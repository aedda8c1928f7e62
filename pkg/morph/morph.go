// Package morph implements the 24-puzzle's 8-element automorphism group:
// the rotations and reflections of the 5x5 tray that preserve the move
// graph, used to relabel a pattern database's tileset onto an
// automorphic tileset without recomputing it.
package morph

import (
	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// Count is the number of automorphisms of the 5x5 tray: the dihedral
// group of order 8 (identity, three rotations, four reflections).
const Count = 8

// forward[a] is the square permutation of automorphism a: square i maps to
// forward[a][i]. Built from the tray's rotations and diagonal/anti-diagonal
// reflections -- the same table the PDB generator's original used to avoid
// recomputing equivalent patterns, ported here as literal data rather than
// as the SIMD shuffle-based composition the original used to apply it.
var forward = [Count][puzzle.TileCount]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24},
	{20, 15, 10, 5, 0, 21, 16, 11, 6, 1, 22, 17, 12, 7, 2, 23, 18, 13, 8, 3, 24, 19, 14, 9, 4},
	{24, 23, 22, 21, 20, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
	{4, 9, 14, 19, 24, 3, 8, 13, 18, 23, 2, 7, 12, 17, 22, 1, 6, 11, 16, 21, 0, 5, 10, 15, 20},
	{0, 5, 10, 15, 20, 1, 6, 11, 16, 21, 2, 7, 12, 17, 22, 3, 8, 13, 18, 23, 4, 9, 14, 19, 24},
	{20, 21, 22, 23, 24, 15, 16, 17, 18, 19, 10, 11, 12, 13, 14, 5, 6, 7, 8, 9, 0, 1, 2, 3, 4},
	{24, 19, 14, 9, 4, 23, 18, 13, 8, 3, 22, 17, 12, 7, 2, 21, 16, 11, 6, 1, 20, 15, 10, 5, 0},
	{4, 3, 2, 1, 0, 9, 8, 7, 6, 5, 14, 13, 12, 11, 10, 19, 18, 17, 16, 15, 24, 23, 22, 21, 20},
}

// inverse[a] is the inverse permutation of forward[a], derived once at
// package init rather than hand-transcribed, since inversion is a pure
// function of forward and deriving it removes a transcription-error risk.
var inverse [Count][puzzle.TileCount]int

func init() {
	for a := 0; a < Count; a++ {
		for i, v := range forward[a] {
			inverse[a][v] = i
		}
	}
}

// Square maps square i through automorphism a.
func Square(a, i int) int {
	return forward[a][i]
}

// Puzzle applies automorphism a to p and returns the result; p is not
// modified.
func Puzzle(p *puzzle.Puzzle, a int) *puzzle.Puzzle {
	var q puzzle.Puzzle
	for i := 0; i < puzzle.TileCount; i++ {
		q.Tiles[i] = forward[a][p.Tiles[inverse[a][i]]]
		q.Grid[q.Tiles[i]] = i
	}
	return &q
}

// Tileset sends ts through automorphism a.
func Tileset(ts tileset.Tileset, a int) tileset.Tileset {
	t := tileset.EmptyTileset
	for ; !ts.Empty(); ts = ts.RemoveLeast() {
		t = t.Add(forward[a][ts.Least()])
	}
	return t
}

// Canonical finds the automorphism that sends ts to the least tileset (by
// bitmask value) computing the same pattern-database distances, and returns
// both that automorphism's index and the resulting tileset. This lets a
// catalogue store only one PDB file per automorphism-equivalence class of
// tilesets and derive the rest by relabelling.
func Canonical(ts tileset.Tileset) (int, tileset.Tileset) {
	hasZero := ts.Has(tileset.ZeroTile)
	tsnz := ts.Remove(tileset.ZeroTile)

	// r is the region the blank occupies in the solved configuration; an
	// automorphism only preserves the PDB's distances if it keeps the
	// blank's region intact.
	r := tsnz.Complement()
	if hasZero {
		r = tileset.Flood(r, tileset.ZeroTile)
	}

	best := 0
	bestTs := tsnz
	for a := 1; a < Count; a++ {
		morphed := Tileset(tsnz, a)
		if morphed >= bestTs {
			continue
		}
		if Tileset(r, a).Has(tileset.ZeroTile) {
			best = a
			bestTs = morphed
		}
	}

	result := bestTs
	if hasZero {
		result = result.Add(tileset.ZeroTile)
	}
	return best, result
}
