package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herohde/puzzle24/pkg/puzzle"
)

func TestLaunchFindsSolutionForSolvedPuzzle(t *testing.T) {
	cat := smallCatalogue(t)
	l := &Launcher{Catalogue: cat}

	p := puzzle.Solved
	h, out := l.Launch(context.Background(), &p, Options{})

	var last Progress
	for pv := range out {
		last = pv
	}
	assert.True(t, last.Found)
	assert.Empty(t, last.Path.Moves)

	assert.Equal(t, last, h.Halt())
}

func TestLaunchFindsShortSolution(t *testing.T) {
	cat := smallCatalogue(t)
	l := &Launcher{Catalogue: cat}

	start := puzzle.Solved
	dest := start.Moves()[0]
	start.Move(dest)

	h, out := l.Launch(context.Background(), &start, Options{})

	var last Progress
	for pv := range out {
		last = pv
	}
	require.True(t, last.Found)
	require.NotEmpty(t, last.Path.Moves)

	q := start
	last.Path.Walk(&q)
	assert.Equal(t, puzzle.Solved.Tiles, q.Tiles)

	assert.Equal(t, last, h.Halt())
}

func TestHaltStopsSearchBeforeCompletion(t *testing.T) {
	cat := smallCatalogue(t)
	l := &Launcher{Catalogue: cat}

	start := puzzle.Solved
	for _, dest := range []int{1, 6, 11, 6, 1} {
		start.Move(dest)
	}

	h, out := l.Launch(context.Background(), &start, Options{})

	pv := h.Halt()
	assert.False(t, pv.Found)

	select {
	case _, ok := <-out:
		if ok {
			// a round may still have been in flight when Halt was called; drain it.
			for range out {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close after Halt")
	}
}

func TestLaunchCancelledByContext(t *testing.T) {
	cat := smallCatalogue(t)
	l := &Launcher{Catalogue: cat}

	start := puzzle.Solved
	for _, dest := range []int{1, 6, 11, 6, 1} {
		start.Move(dest)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, out := l.Launch(ctx, &start, Options{})

	select {
	case <-out:
	case <-time.After(time.Second):
	}
	for range out {
	}
}
