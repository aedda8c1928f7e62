package fsm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

func TestDummyNeverMatches(t *testing.T) {
	f := Dummy()
	for z := 0; z < puzzle.TileCount; z++ {
		st := StartState(z)
		for i := range tileset.Adjacent(z) {
			next := f.Advance(st, i)
			assert.False(t, next.IsMatch())
		}
	}
}

func TestSimplePrunesImmediateReversal(t *testing.T) {
	f := Simple()
	for z := 0; z < puzzle.TileCount; z++ {
		adj := tileset.Adjacent(z)
		for i, dest := range adj {
			st := StartState(z)
			moved := f.Advance(st, i)
			require.False(t, moved.IsMatch())

			back := f.AdvanceTo(moved, z)
			assert.True(t, back.IsMatch(), "square %d: move to %d and back should match", z, dest)
		}
	}
}

func TestSimpleAllowsNonReversal(t *testing.T) {
	f := Simple()
	for z := 0; z < puzzle.TileCount; z++ {
		adj := tileset.Adjacent(z)
		if len(adj) < 2 {
			continue
		}
		st := StartState(z)
		moved := f.Advance(st, 0)
		for i := 1; i < len(tileset.Adjacent(moved.Zloc)); i++ {
			if tileset.Adjacent(moved.Zloc)[i] == z {
				continue
			}
			next := f.Advance(moved, i)
			assert.False(t, next.IsMatch())
		}
	}
}

func TestMovesExcludesMatch(t *testing.T) {
	f := Simple()
	st := StartState(12)
	moved := f.Advance(st, 0)
	back := st.Zloc

	legal := f.Moves(moved)
	for _, d := range legal {
		assert.NotEqual(t, back, d)
	}
	assert.Len(t, legal, len(tileset.Adjacent(moved.Zloc))-1)
}

func TestMoribundnessIsZeroAtBegin(t *testing.T) {
	f := Simple()
	for z := 0; z < puzzle.TileCount; z++ {
		assert.EqualValues(t, 1, f.Moribundness(StartState(z)))
	}
}

func TestWriteLoadRoundTripWithoutMoribund(t *testing.T) {
	f := Simple()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f, false))

	loaded, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	for z := 0; z < puzzle.TileCount; z++ {
		assert.Equal(t, f.tables[z], loaded.tables[z])
	}
}

func TestWriteLoadRoundTripWithMoribund(t *testing.T) {
	f := Simple()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f, true))

	loaded, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	for z := 0; z < puzzle.TileCount; z++ {
		assert.Equal(t, f.tables[z], loaded.tables[z])
		assert.Equal(t, f.moribund[z], loaded.moribund[z])
	}
}

func TestDummyWriteLoadRoundTrip(t *testing.T) {
	f := Dummy()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f, false))

	loaded, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	for z := 0; z < puzzle.TileCount; z++ {
		assert.Equal(t, f.tables[z], loaded.tables[z])
	}
}
