// Package tileset implements bitset-of-squares operations for the 24-puzzle:
// set algebra, combinatorial rank/unrank and connected-region flood fill.
package tileset

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Tileset is a bitset over the 25 squares/tiles of the puzzle (bit i ==
// square/tile i). Squares and tiles share the same 0..24 numbering, so a
// Tileset is used both for "which tiles are in this pattern" and "which
// grid squares are occupied by them".
type Tileset uint32

const (
	// TileCount is the number of tiles (including the zero tile).
	TileCount = 25
	// ZeroTile is the empty square's tile number.
	ZeroTile = 0

	EmptyTileset Tileset = 0
	FullTileset  Tileset = 1<<TileCount - 1

	// DefaultTileset is the tileset new pattern databases are generated
	// over absent a more specific choice: the zero tile plus squares
	// 1,2,5,6,7 -- a small 6-tile corner group, matching tileset.h's
	// DEFAULT_TILESET (0x00000e7).
	DefaultTileset Tileset = 0x00000e7

	// rowMask blocks carries across row boundaries during flood fill:
	// 01111 01111 01111 01111 01111.
	rowMask Tileset = 0x0F7BDEF
)

// Has returns true iff t is a member of ts.
func (ts Tileset) Has(t int) bool {
	return ts&(1<<uint(t)) != 0
}

// Add returns ts with t added.
func (ts Tileset) Add(t int) Tileset {
	return ts | 1<<uint(t)
}

// Remove returns ts with t removed.
func (ts Tileset) Remove(t int) Tileset {
	return ts &^ (1 << uint(t))
}

// Count returns the number of members of ts.
func (ts Tileset) Count() int {
	return bits.OnesCount32(uint32(ts))
}

// Empty returns true iff ts has no members.
func (ts Tileset) Empty() bool {
	return ts == 0
}

// Complement returns the tileset of all tiles not in ts.
func (ts Tileset) Complement() Tileset {
	return ^ts & FullTileset
}

// Intersect returns the intersection of ts and other.
func (ts Tileset) Intersect(other Tileset) Tileset {
	return ts & other
}

// Union returns the union of ts and other.
func (ts Tileset) Union(other Tileset) Tileset {
	return ts | other
}

// Difference returns the tiles in ts that are not in other.
func (ts Tileset) Difference(other Tileset) Tileset {
	return ts &^ other
}

// Least returns the lowest-numbered member of ts. Undefined if ts is empty.
func (ts Tileset) Least() int {
	return bits.TrailingZeros32(uint32(ts))
}

// RemoveLeast returns ts with its lowest-numbered member removed. Returns ts
// unchanged if ts is empty.
func (ts Tileset) RemoveLeast() Tileset {
	return ts & (ts - 1)
}

// Least returns a tileset containing the lowest n tile numbers.
func Least(n int) Tileset {
	return 1<<uint(n) - 1
}

// Parity returns the parity of ts: the count of even-numbered members, mod 2.
func (ts Tileset) Parity() int {
	return Tileset(ts & 0x1555555).Count() & 1
}

// ReduceEqClass returns the subset of eq whose squares are 4-adjacent to a
// square outside eq -- the squares from which a move could leave eq.
func (ts Tileset) ReduceEqClass() Tileset {
	c := ts.Complement()
	return ts & (c | c<<5 | (c&rowMask)<<1 | c>>5 | (c>>1)&rowMask)
}

// Flood returns the connected component (under 4-adjacency, restricted to
// squares in cmap) containing seed square t.
func Flood(cmap Tileset, t int) Tileset {
	r := Tileset(1) << uint(t)
	for {
		next := cmap & (r | r<<5 | (r&rowMask)<<1 | r>>5 | (r>>1)&rowMask)
		if next == r {
			return r
		}
		r = next
	}
}

// String renders ts as e.g. "{0,1,2,5}".
func (ts Tileset) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for t := ts; !t.Empty(); t = t.RemoveLeast() {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&sb, "%d", t.Least())
	}
	sb.WriteByte('}')
	return sb.String()
}

// ListString renders ts as a comma-separated ascending tile list, e.g.
// "0,1,2,5" -- the format used for PDB file names and catalogue files.
func (ts Tileset) ListString() string {
	var parts []string
	for t := ts; !t.Empty(); t = t.RemoveLeast() {
		parts = append(parts, strconv.Itoa(t.Least()))
	}
	return strings.Join(parts, ",")
}

// Move describes one sliding move: the zero tile moves from Zloc to Dest.
type Move struct {
	Zloc, Dest int
}

// MaxMoves bounds the number of moves GenerateMoves can produce: 4 squares
// with 2 moves, 12 with 3, 9 with 4 (the corners, edges and interior of the
// 5x5 grid).
const MaxMoves = 4*9 + 3*12 + 2*4

// movetab[z] lists the squares reachable from z by sliding the empty square
// one step, padded with -1. Built the same way board.Bitboard's king/knight
// attack tables are: a literal, hand-verified adjacency table.
var movetab = [TileCount][4]int{
	{1, 5, -1, -1},
	{0, 2, 6, -1},
	{1, 3, 7, -1},
	{2, 4, 8, -1},
	{3, 9, -1, -1},

	{0, 6, 10, -1},
	{1, 5, 7, 11},
	{2, 6, 8, 12},
	{3, 7, 9, 13},
	{4, 8, 14, -1},

	{5, 11, 15, -1},
	{6, 10, 12, 16},
	{7, 11, 13, 17},
	{8, 12, 14, 18},
	{9, 13, 19, -1},

	{10, 16, 20, -1},
	{11, 15, 17, 21},
	{12, 16, 18, 22},
	{13, 17, 19, 23},
	{14, 18, 24, -1},

	{15, 21, -1, -1},
	{16, 20, 22, -1},
	{17, 21, 23, -1},
	{18, 22, 24, -1},
	{19, 23, -1, -1},
}

// Adjacent returns the squares reachable from z by one slide, up to 4,
// terminated early (shorter than 4) at the board edges and corners.
func Adjacent(z int) []int {
	var out []int
	for _, d := range movetab[z] {
		if d == -1 {
			break
		}
		out = append(out, d)
	}
	return out
}

// GenerateMoves enumerates every move that crosses the boundary of
// equivalence class eq: a square z in eq, adjacent to a square outside eq.
func GenerateMoves(eq Tileset) []Move {
	moves := make([]Move, 0, MaxMoves)
	for req := eq.ReduceEqClass(); !req.Empty(); req = req.RemoveLeast() {
		z := req.Least()
		for _, d := range movetab[z] {
			if d == -1 {
				break
			}
			if !eq.Has(d) {
				moves = append(moves, Move{Zloc: z, Dest: d})
			}
		}
	}
	return moves
}

// binomial[n][k] = C(n,k) for 0 <= n,k <= TileCount, built once at package
// init like board.Bitboard's attack tables.
var binomial [TileCount + 1][TileCount + 1]uint32

func init() {
	for n := 0; n <= TileCount; n++ {
		binomial[n][0] = 1
		for k := 1; k <= n; k++ {
			binomial[n][k] = binomial[n-1][k-1] + binomial[n-1][k]
		}
	}
}

// Rank computes the combinatorial rank of ts among all tilesets of the same
// cardinality: the colexicographic position of ts's member list (ascending)
// among all Count(ts)-subsets of {0,...,TileCount-1}. This is the scalar
// reference formula; the original's three-way split-table lookup
// (RANK_SPLIT1/RANK_SPLIT2) is a performance optimization over the same
// semantics and is not ported.
func (ts Tileset) Rank() uint32 {
	var rank uint32
	i := 1
	for t := ts; !t.Empty(); t = t.RemoveLeast() {
		rank += binomial[t.Least()][i]
		i++
	}
	return rank
}

// Unrank is the inverse of Rank: given a cardinality k and a rank in
// [0, C(TileCount,k)), returns the tileset of that rank.
func Unrank(k int, rank uint32) Tileset {
	var ts Tileset
	n := TileCount - 1
	for ; k > 0; k-- {
		for binomial[n][k] > rank {
			n--
		}
		rank -= binomial[n][k]
		ts = ts.Add(n)
		n--
	}
	return ts
}

// MaxRank returns the number of distinct k-element tilesets, C(TileCount,k).
func MaxRank(k int) uint32 {
	return binomial[TileCount][k]
}

// Parse parses a comma-separated tile list (as produced by ListString) into
// a Tileset. Returns an error on a malformed entry, an out-of-range tile, or
// a duplicate tile.
func Parse(s string) (Tileset, error) {
	var ts Tileset
	for _, f := range strings.Split(strings.TrimSpace(s), ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n >= TileCount {
			return 0, fmt.Errorf("invalid tile: %q", f)
		}
		if ts.Has(n) {
			return 0, fmt.Errorf("duplicate tile: %d", n)
		}
		ts = ts.Add(n)
	}
	return ts, nil
}
