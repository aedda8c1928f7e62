package morph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

func TestIdentityAutomorphism(t *testing.T) {
	for i := 0; i < puzzle.TileCount; i++ {
		assert.Equal(t, i, Square(0, i))
	}
}

func TestForwardInverseAreInverses(t *testing.T) {
	for a := 0; a < Count; a++ {
		for i := 0; i < puzzle.TileCount; i++ {
			assert.Equal(t, i, inverse[a][forward[a][i]], "automorphism %d", a)
		}
	}
}

func TestForwardIsPermutation(t *testing.T) {
	for a := 0; a < Count; a++ {
		var seen tileset.Tileset
		for _, v := range forward[a] {
			require.False(t, seen.Has(v), "automorphism %d repeats square %d", a, v)
			seen = seen.Add(v)
		}
		assert.Equal(t, tileset.FullTileset, seen)
	}
}

func TestTilesetMorphPreservesCardinality(t *testing.T) {
	ts := tileset.EmptyTileset.Add(0).Add(1).Add(6).Add(12)
	for a := 0; a < Count; a++ {
		morphed := Tileset(ts, a)
		assert.Equal(t, ts.Count(), morphed.Count())
	}
}

func TestTilesetMorphFullIsFull(t *testing.T) {
	for a := 0; a < Count; a++ {
		assert.Equal(t, tileset.FullTileset, Tileset(tileset.FullTileset, a))
	}
}

func TestPuzzleMorphIsValid(t *testing.T) {
	p := &puzzle.Solved
	for a := 0; a < Count; a++ {
		q := Puzzle(p, a)
		assert.True(t, q.Valid())
	}
}

func TestCanonicalIsIdentityOrSmaller(t *testing.T) {
	ts := tileset.EmptyTileset.Add(3).Add(7).Add(12).Add(0)
	a, morphed := Canonical(ts)
	if a == 0 {
		assert.Equal(t, ts, morphed)
	} else {
		assert.LessOrEqual(t, uint32(morphed.Remove(tileset.ZeroTile)), uint32(ts.Remove(tileset.ZeroTile)))
	}
}
