// Package puzzle represents configurations of the 24-puzzle: 24 numbered
// tiles and one blank arranged on a 5x5 grid.
//
//	[] 1  2  3  4
//	 5  6  7  8  9
//	10 11 12 13 14
//	15 16 17 18 19
//	20 21 22 23 24
//
// This layout differs from the traditional picture-puzzle arrangement but is
// isomorphic to it under a relabelling of squares and tiles.
package puzzle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/herohde/puzzle24/pkg/tileset"
)

const (
	// TileCount is the number of tiles, including the blank.
	TileCount = tileset.TileCount
	// ZeroTile is the blank's tile number.
	ZeroTile = tileset.ZeroTile
)

// Puzzle is one configuration of the 24-puzzle. Both a tile-to-square map
// (Tiles) and its inverse, a square-to-tile map (Grid), are kept so that
// callers can go either direction in O(1); Move keeps the two in sync.
type Puzzle struct {
	Tiles [TileCount]int // Tiles[t] = square occupied by tile t
	Grid  [TileCount]int // Grid[z] = tile occupying square z (0 = blank)
}

// Solved is the puzzle in solved configuration: tile t sits on square t.
var Solved = Puzzle{
	Tiles: [TileCount]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24},
	Grid:  [TileCount]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24},
}

// ZeroLocation returns the square currently occupied by the blank.
func (p *Puzzle) ZeroLocation() int {
	return p.Tiles[ZeroTile]
}

// Move moves the blank to square dest, which the caller must guarantee is
// adjacent to the blank's current square; dest is not range- or
// adjacency-checked.
func (p *Puzzle) Move(dest int) {
	zloc := p.ZeroLocation()
	dtile := p.Grid[dest]

	p.Grid[dest] = ZeroTile
	p.Grid[zloc] = dtile

	p.Tiles[dtile] = zloc
	p.Tiles[ZeroTile] = dest
}

// Parity returns the permutation parity of p combined with the blank's
// square parity, matching the invariant that every reachable configuration
// of the 24-puzzle has even combined parity.
func (p *Puzzle) Parity() int {
	parity := p.ZeroLocation()

	for ts := tileset.FullTileset; !ts.Empty(); {
		start := ts.Least()
		i, length := start, 0
		for {
			ts = ts.Remove(i)
			i = p.Grid[i]
			length++
			if i == start {
				break
			}
		}
		parity ^= length ^ 1
	}

	return parity & 1
}

// Valid reports whether p's Tiles and Grid are both permutations of
// {0,...,24} and are inverse to each other.
func (p *Puzzle) Valid() bool {
	if !permValid(p.Tiles) || !permValid(p.Grid) {
		return false
	}
	for i := 0; i < TileCount; i++ {
		if p.Grid[p.Tiles[i]] != i {
			return false
		}
	}
	return true
}

func permValid(perm [TileCount]int) bool {
	var seen tileset.Tileset
	for _, v := range perm {
		if v < 0 || v >= TileCount {
			return false
		}
		if seen.Has(v) {
			return false
		}
		seen = seen.Add(v)
	}
	return true
}

// String renders p as a comma-separated grid listing, the format accepted
// by Parse.
func (p *Puzzle) String() string {
	parts := make([]string, TileCount)
	for i, t := range p.Grid {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ",")
}

// Visualize renders p as a human-readable 5x5 grid.
func (p *Puzzle) Visualize() string {
	var sb strings.Builder
	for i, t := range p.Grid {
		if t == ZeroTile {
			fmt.Fprint(&sb, "   ")
		} else {
			fmt.Fprintf(&sb, "%2d ", t)
		}
		if i%5 == 4 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Moves returns the squares reachable from the blank's current location.
func (p *Puzzle) Moves() []int {
	return tileset.Adjacent(p.ZeroLocation())
}

// PartiallyEqual reports whether p and q agree on the location of every
// tile in ts (and, implicitly, on the location of the blank iff 0 is in ts).
func (p *Puzzle) PartiallyEqual(q *Puzzle, ts tileset.Tileset) bool {
	for t := ts; !t.Empty(); t = t.RemoveLeast() {
		i := t.Least()
		if p.Tiles[i] != q.Tiles[i] {
			return false
		}
	}
	return true
}

// Parse parses a comma-separated grid listing (as produced by String) into
// a Puzzle. Each of the 25 fields must be a distinct value in [0,25).
func Parse(s string) (Puzzle, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) != TileCount {
		return Puzzle{}, fmt.Errorf("expected %d fields, got %d", TileCount, len(fields))
	}

	var p Puzzle
	for i := range p.Tiles {
		p.Tiles[i] = -1
	}

	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 || n >= TileCount {
			return Puzzle{}, fmt.Errorf("invalid tile at position %d: %q", i, f)
		}
		if p.Tiles[n] != -1 {
			return Puzzle{}, fmt.Errorf("duplicate tile: %d", n)
		}
		p.Grid[i] = n
		p.Tiles[n] = i
	}

	return p, nil
}
