package compact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/puzzle24/pkg/puzzle"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	p := puzzle.Solved
	for _, m := range []int{1, 6, 2, 7} {
		dests := p.Moves()
		p.Move(dests[m%len(dests)])
	}

	cp := Pack(&p)
	q := Unpack(cp)

	assert.Equal(t, p, *q)
	assert.True(t, q.Valid())
}

func TestPackMaskedRoundTrip(t *testing.T) {
	p := puzzle.Solved
	zloc := p.ZeroLocation()
	dest := p.Moves()[0]
	p.Move(dest)

	cp := PackMasked(&p, zloc)
	require.NotZero(t, cp.MoveMaskBits())

	q := Unpack(cp)
	assert.Equal(t, p, *q)
}

func TestLessOrdersByHiThenLo(t *testing.T) {
	a := Puzzle{Lo: 1, Hi: 0}
	b := Puzzle{Lo: 0, Hi: 1}
	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))

	c := Puzzle{Lo: 5, Hi: 2}
	d := Puzzle{Lo: 9, Hi: 2}
	assert.True(t, Less(c, d))
}
