package search

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/puzzle24/pkg/catalogue"
	"github.com/herohde/puzzle24/pkg/fsm"
	"github.com/herohde/puzzle24/pkg/puzzle"
)

func smallCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()

	dir := t.TempDir()
	catfile := filepath.Join(dir, "test.cat")
	require.NoError(t, os.WriteFile(catfile, []byte("0,1,2,3,4,5\n"), 0o644))

	cat, err := catalogue.Load(catfile, "", 0, nil)
	require.NoError(t, err)
	return cat
}

func TestPathStringParseRoundTrip(t *testing.T) {
	p := Path{Moves: []int{1, 6, 11, 6}}
	s := p.String()

	got, err := ParsePath(s)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPathWalkAppliesMoves(t *testing.T) {
	p := puzzle.Solved
	dest := p.Moves()[0]

	path := Path{Moves: []int{dest}}
	path.Walk(&p)

	assert.Equal(t, dest, p.ZeroLocation())
}

func TestBoundedReturnsEmptyPathForSolvedPuzzle(t *testing.T) {
	cat := smallCatalogue(t)
	p := puzzle.Solved

	expanded, path, found := Bounded(cat, fsm.Dummy(), &p, 10, nil, 0)
	assert.True(t, found)
	assert.Zero(t, expanded)
	assert.Empty(t, path.Moves)
}

func TestBoundedFindsShortSolution(t *testing.T) {
	cat := smallCatalogue(t)

	start := puzzle.Solved
	dest := start.Moves()[0]
	start.Move(dest)

	var log bytes.Buffer
	_, path, found := Bounded(cat, fsm.Dummy(), &start, 5, &log, 0)
	require.True(t, found)
	require.NotEmpty(t, path.Moves)

	q := start
	path.Walk(&q)
	assert.Equal(t, puzzle.Solved.Tiles, q.Tiles)
}

func TestBoundedFailsWhenLimitTooSmall(t *testing.T) {
	cat := smallCatalogue(t)

	start := puzzle.Solved
	for _, dest := range []int{1, 6, 11, 6, 1} {
		start.Move(dest)
	}

	_, _, found := Bounded(cat, fsm.Dummy(), &start, 0, nil, 0)
	assert.False(t, found)
}

func TestBoundedWithSimpleFSMStillSolves(t *testing.T) {
	cat := smallCatalogue(t)

	start := puzzle.Solved
	dest := start.Moves()[0]
	start.Move(dest)

	_, path, found := Bounded(cat, fsm.Simple(), &start, 5, nil, 0)
	require.True(t, found)

	q := start
	path.Walk(&q)
	assert.Equal(t, puzzle.Solved.Tiles, q.Tiles)
}

func TestBoundedVerifyFlagPassesOnValidPath(t *testing.T) {
	cat := smallCatalogue(t)

	start := puzzle.Solved
	dest := start.Moves()[0]
	start.Move(dest)

	assert.NotPanics(t, func() {
		Bounded(cat, fsm.Dummy(), &start, 5, nil, Verify)
	})
}
