package catalogue

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/puzzle24/pkg/puzzle"
)

func writeCatfile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cat")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadSingleHeuristicGeneratesAndStores(t *testing.T) {
	catfile := writeCatfile(t, "0,1,2\n")
	pdbdir := t.TempDir()

	var log bytes.Buffer
	cat, err := Load(catfile, pdbdir, 0, &log)
	require.NoError(t, err)

	require.Len(t, cat.Entries, 1)
	require.Len(t, cat.Groups, 1)
	assert.Equal(t, []int{0}, cat.Groups[0])

	entries, err := os.ReadDir(pdbdir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadReusesStoredPDBOnSecondCall(t *testing.T) {
	catfile := writeCatfile(t, "0,1,2\n")
	pdbdir := t.TempDir()

	_, err := Load(catfile, pdbdir, 0, nil)
	require.NoError(t, err)

	var log bytes.Buffer
	_, err = Load(catfile, pdbdir, 0, &log)
	require.NoError(t, err)
	assert.Contains(t, log.String(), "loading pattern database")
}

func TestLoadDedupesSameTilesetAcrossGroups(t *testing.T) {
	catfile := writeCatfile(t, "0,1,2\n\n0,1,2\n")
	cat, err := Load(catfile, "", 0, nil)
	require.NoError(t, err)

	require.Len(t, cat.Entries, 1)
	require.Len(t, cat.Groups, 2)
	assert.Equal(t, []int{0}, cat.Groups[0])
	assert.Equal(t, []int{0}, cat.Groups[1])
}

func TestLoadMultipleTilesetsInOneHeuristic(t *testing.T) {
	catfile := writeCatfile(t, "0,1,2\n0,3,4\n")
	cat, err := Load(catfile, "", 0, nil)
	require.NoError(t, err)

	require.Len(t, cat.Entries, 2)
	require.Len(t, cat.Groups, 1)
	assert.ElementsMatch(t, []int{0, 1}, cat.Groups[0])
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	catfile := writeCatfile(t, "# comment\n\n0,1,2\n# trailing comment\n")
	cat, err := Load(catfile, "", 0, nil)
	require.NoError(t, err)

	require.Len(t, cat.Entries, 1)
	require.Len(t, cat.Groups, 1)
}

func TestLoadRejectsMalformedTileset(t *testing.T) {
	catfile := writeCatfile(t, "0,1,99\n")
	_, err := Load(catfile, "", 0, nil)
	assert.Error(t, err)
}

func TestHvalIsMaxOverGroups(t *testing.T) {
	catfile := writeCatfile(t, "0,1,2\n\n0,3,4\n")
	cat, err := Load(catfile, "", 0, nil)
	require.NoError(t, err)

	ph := cat.PartialHvals(&puzzle.Solved)
	got := cat.Hval(ph)

	max := 0
	for i := range cat.Groups {
		if v := cat.PHVal(ph, i); v > max {
			max = v
		}
	}
	assert.Equal(t, max, got)
}

func TestMaxHeuristicsIncludesTheWinningGroup(t *testing.T) {
	catfile := writeCatfile(t, "0,1,2\n\n0,3,4\n")
	cat, err := Load(catfile, "", 0, nil)
	require.NoError(t, err)

	ph := cat.PartialHvals(&puzzle.Solved)
	mask := cat.MaxHeuristics(ph)
	assert.NotZero(t, mask)

	best := cat.Hval(ph)
	for i := range cat.Groups {
		if mask&(1<<uint(i)) != 0 {
			assert.Equal(t, best, cat.PHVal(ph, i))
		}
	}
}

func TestDiffHvalsMatchesFreshPartialHvals(t *testing.T) {
	catfile := writeCatfile(t, "0,1,2\n0,3,4\n")
	cat, err := Load(catfile, "", 0, nil)
	require.NoError(t, err)

	p := puzzle.Solved
	dest := p.Moves()[0]
	movedTile := p.Grid[dest]
	p.Move(dest)

	ph := cat.PartialHvals(&puzzle.Solved)
	cat.DiffHvals(ph, &p, movedTile)

	want := cat.PartialHvals(&p)
	assert.Equal(t, want.Hvals, ph.Hvals)
}

func TestAddTranspositionsSharesUnderlyingPDB(t *testing.T) {
	catfile := writeCatfile(t, "0,1,2\n")
	cat, err := Load(catfile, "", 0, nil)
	require.NoError(t, err)

	before := len(cat.Entries)
	added := cat.AddTranspositions()
	assert.NotEmpty(t, added)
	assert.Greater(t, len(cat.Entries), before)

	for _, idx := range added {
		assert.Same(t, cat.Entries[0].PDB, cat.Entries[idx].PDB)
		assert.NotZero(t, cat.Entries[idx].Morphism)
	}
}

func TestAddTranspositionsIsIdempotent(t *testing.T) {
	catfile := writeCatfile(t, "0,1,2\n")
	cat, err := Load(catfile, "", 0, nil)
	require.NoError(t, err)

	cat.AddTranspositions()
	n := len(cat.Entries)
	cat.AddTranspositions()
	assert.Equal(t, n, len(cat.Entries))
}

func TestLoadTooManyHeuristicsFails(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < MaxHeuristics+1; i++ {
		buf.WriteString("0,1\n\n")
	}
	catfile := writeCatfile(t, buf.String())
	_, err := Load(catfile, "", 0, nil)
	assert.Error(t, err)
}
