package pdb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/puzzle24/pkg/tileset"
)

func smallTileset() tileset.Tileset {
	return tileset.EmptyTileset.Add(tileset.ZeroTile).Add(1).Add(2)
}

func TestGenerateFillsEveryEntry(t *testing.T) {
	pdb := Allocate(smallTileset())
	Generate(pdb, nil)

	n := int(pdb.Aux.SearchSpaceSize())
	for i := 0; i < n; i++ {
		v := pdb.data.Get(i)
		assert.NotEqual(t, byte(Unreached), v, "entry %d was never reached", i)
	}
}

func TestGenerateIsConsistent(t *testing.T) {
	pdb := Allocate(smallTileset())
	Generate(pdb, nil)

	assert.True(t, Verify(pdb, nil))
}

func TestGenerateParallelMatchesSerial(t *testing.T) {
	serial := Allocate(smallTileset())
	Generate(serial, nil)

	Jobs = 4
	defer func() { Jobs = 1 }()

	parallel := Allocate(smallTileset())
	Generate(parallel, nil)

	n := int(serial.Aux.SearchSpaceSize())
	for i := 0; i < n; i++ {
		assert.Equal(t, serial.data.Get(i), parallel.data.Get(i), "entry %d", i)
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	ts := smallTileset()
	orig := Allocate(ts)
	Generate(orig, nil)

	var buf bytes.Buffer
	require.NoError(t, Store(&buf, orig))

	loaded, err := Load(ts, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	n := int(orig.Aux.SearchSpaceSize())
	for i := 0; i < n; i++ {
		assert.Equal(t, orig.data.Get(i), loaded.data.Get(i))
	}
}

func TestHistogramCoversAllEntries(t *testing.T) {
	pdb := Allocate(smallTileset())
	Generate(pdb, nil)

	hist, n := Histogram(pdb, 0)
	require.Greater(t, n, 0)

	var total uint64
	for _, v := range hist {
		total += v
	}
	assert.EqualValues(t, pdb.Aux.SearchSpaceSize(), total)
}

func TestIdentifyReducesToZeroUnaware(t *testing.T) {
	pdb := Allocate(smallTileset())
	Generate(pdb, nil)

	Identify(pdb)

	assert.False(t, pdb.Aux.Ts.Has(tileset.ZeroTile))
}

func TestDiffcodeKeepsEntriesNonNegative(t *testing.T) {
	pdb := Allocate(smallTileset())
	Generate(pdb, nil)

	minimums := Diffcode(pdb)
	assert.NotEmpty(t, minimums)

	n := int(pdb.Aux.SearchSpaceSize())
	for i := 0; i < n; i++ {
		assert.LessOrEqual(t, pdb.data.Get(i), byte(Unreached))
	}
}
