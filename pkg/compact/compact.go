// Package compact implements a 124-bit packed representation of a puzzle
// configuration: five bits per non-zero tile (the zero tile's location is
// recovered by scanning the grid) plus four spare bits for a move mask,
// split across two uint64 words since Go has no native 128-bit integer.
package compact

import (
	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// MoveMask is the bitmask occupying the low 4 bits of Lo.
const MoveMask = 0xf

// Puzzle is the packed representation of a puzzle.Puzzle: tiles 1-12 packed
// 5 bits each into Lo (above the 4-bit move mask), tiles 13-24 packed into
// Hi.
type Puzzle struct {
	Lo, Hi uint64
}

// Pack packs p into a compact.Puzzle. The zero tile's location is not
// stored; Unpack recovers it by finding the grid square no tile claims.
func Pack(p *puzzle.Puzzle) Puzzle {
	var cp Puzzle
	for i := 1; i <= 12; i++ {
		cp.Lo |= uint64(p.Tiles[i]) << uint(5*(i-1)+4)
	}
	for i := 13; i < puzzle.TileCount; i++ {
		cp.Hi |= uint64(p.Tiles[i]) << uint(5*(i-13))
	}
	return cp
}

// PackMasked packs p, additionally setting the move-mask bit corresponding
// to the move that would lead back to square dest (the square the blank
// last came from), so a BFS walk can avoid immediately reversing itself.
func PackMasked(p *puzzle.Puzzle, dest int) Puzzle {
	cp := Pack(p)

	zloc := p.ZeroLocation()
	for i, d := range tileset.Adjacent(zloc) {
		if d == dest {
			cp.Lo |= 1 << uint(i)
		}
	}
	return cp
}

// MoveMaskBits returns the move-mask bits packed into cp by PackMasked.
func (cp Puzzle) MoveMaskBits() int {
	return int(cp.Lo & MoveMask)
}

// Unpack reverses Pack, reconstructing a full puzzle.Puzzle including the
// zero tile's location.
func Unpack(cp Puzzle) *puzzle.Puzzle {
	p := &puzzle.Puzzle{}

	accum := cp.Lo >> 4
	for i := 1; i <= 12; i++ {
		t := int(accum & 31)
		p.Tiles[i] = t
		p.Grid[t] = i
		accum >>= 5
	}

	accum = cp.Hi
	for i := 13; i < puzzle.TileCount; i++ {
		t := int(accum & 31)
		p.Tiles[i] = t
		p.Grid[t] = i
		accum >>= 5
	}

	zloc := 0
	claimed := tileset.EmptyTileset
	for i := 1; i < puzzle.TileCount; i++ {
		claimed = claimed.Add(p.Tiles[i])
	}
	zloc = claimed.Complement().Least()

	p.Tiles[puzzle.ZeroTile] = zloc
	p.Grid[zloc] = puzzle.ZeroTile

	return p
}

// Less orders two compact puzzles for sorting: by Hi, then by Lo. This
// matches the field order compare_cp used so puzzles that differ only in
// their move-mask bits (the low 4 bits of Lo) sort adjacent to each other.
func Less(a, b Puzzle) bool {
	if a.Hi != b.Hi {
		return a.Hi < b.Hi
	}
	return a.Lo < b.Lo
}
