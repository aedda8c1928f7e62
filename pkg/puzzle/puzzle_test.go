package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/puzzle24/pkg/tileset"
)

func TestSolvedValid(t *testing.T) {
	p := Solved
	assert.True(t, p.Valid())
	assert.Equal(t, 0, p.ZeroLocation())
	assert.Equal(t, 0, p.Parity())
}

func TestMovePreservesInvariant(t *testing.T) {
	p := Solved
	for _, dest := range p.Moves() {
		q := p
		q.Move(dest)
		assert.True(t, q.Valid())
		assert.Equal(t, dest, q.ZeroLocation())
	}
}

func TestMoveRoundTrip(t *testing.T) {
	p := Solved
	start := p.ZeroLocation()
	dest := p.Moves()[0]

	p.Move(dest)
	require.NotEqual(t, start, p.ZeroLocation())

	p.Move(start)
	assert.Equal(t, Solved, p)
}

func TestParityInvariantUnderMoves(t *testing.T) {
	p := Solved
	parity := p.Parity()
	for i := 0; i < 6; i++ {
		dest := p.Moves()[0]
		p.Move(dest)
		assert.Equal(t, parity, p.Parity(), "parity must be move-invariant")
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	p := Solved
	p.Move(p.Moves()[0])

	s := p.String()
	q, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, p, q)
	assert.True(t, q.Valid())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("0,1,2")
	assert.Error(t, err)

	_, err = Parse("0,0,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20,21,22,23,24")
	assert.Error(t, err)

	bad := "25,1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20,21,22,23,24"
	_, err = Parse(bad)
	assert.Error(t, err)
}

func TestPartiallyEqual(t *testing.T) {
	p := Solved
	q := Solved
	q.Move(q.Moves()[0])

	all := tileset.FullTileset
	assert.False(t, p.PartiallyEqual(&q, all))

	// Tiles not touched by the single move remain equal.
	touched := tileset.EmptyTileset.Add(p.Grid[q.ZeroLocation()]).Add(ZeroTile)
	untouched := all.Difference(touched)
	assert.True(t, p.PartiallyEqual(&q, untouched))
}
