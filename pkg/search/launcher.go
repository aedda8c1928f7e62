package search

import (
	"context"
	"sync"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/herohde/puzzle24/pkg/catalogue"
	"github.com/herohde/puzzle24/pkg/fsm"
	"github.com/herohde/puzzle24/pkg/puzzle"
)

// Progress reports the state of a Launch'd search after each IDA* round:
// the bound just completed, the total nodes expanded so far, and -- once
// one is found -- the solution path. Grounded on the teacher engine's
// pkg/search.PV, which reports one principal variation per completed
// iterative-deepening depth; here a "round" (one pass of search_to_bound
// at a fixed bound) plays the same role a depth does there.
type Progress struct {
	Bound    int
	Expanded uint64
	Path     Path
	Found    bool
}

// Options holds the dynamic limits of a launched search. Grounded on the
// teacher's pkg/search/searchctl.Options; IDA* has no time control to
// enforce mid-round (a round cannot be interrupted once started, since
// search_to_bound holds no cancellation point of its own), so only a move
// limit carries over.
type Options struct {
	// Limit, if set, bounds the search to the given move count. Unset means MaxPathLen.
	Limit lang.Optional[int]
}

// Handle manages a launched search. Grounded on the teacher's
// pkg/search.Handle / pkg/search/searchctl.Handle.
type Handle interface {
	// Halt stops the search after its current round finishes, and returns
	// the last progress reported. Idempotent.
	Halt() Progress
}

// Launcher launches a cancellable IDA* search, reporting each round's
// progress on a channel, so that multiple search instances can run
// concurrently and be individually stopped -- e.g. by a caller that wants
// to abandon a search once a better bound is known from elsewhere.
// Grounded on the teacher's pkg/search.Launcher /
// pkg/search/searchctl.Iterative, adapted from the teacher's per-depth
// chess search loop to this engine's per-bound IDA* rounds.
type Launcher struct {
	Catalogue *catalogue.Catalogue
	FSM       *fsm.FSM
	Flags     Flags
}

// Launch starts a search from p in a new goroutine, returning a Handle to
// manage it and a channel of Progress, one value per completed round. The
// channel is closed once the search halts, is exhausted, or finds a
// solution.
func (l *Launcher) Launch(ctx context.Context, p *puzzle.Puzzle, opt Options) (Handle, <-chan Progress) {
	out := make(chan Progress, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, l, p, opt, out)
	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	pv Progress
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, l *Launcher, start *puzzle.Puzzle, opt Options, out chan Progress) {
	defer h.init.Close()
	defer close(out)

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	limit := MaxPathLen
	if v, ok := opt.Limit.V(); ok {
		limit = v
	}

	if start.Tiles == puzzle.Solved.Tiles {
		h.publish(Progress{Found: true}, out)
		return
	}

	mach := l.FSM
	if mach == nil {
		mach = fsm.Dummy()
	}

	nodes := make([]searchNode, limit+2)

	var total uint64
	bound := 0
	for !h.quit.IsClosed() && wctx.Err() == nil {
		var expanded uint64
		solved, newBound, moves := searchToBound(l.Catalogue, mach, start, nodes, bound, &expanded, nil, l.Flags)
		total += expanded

		logw.Debugf(ctx, "Completed round at bound=%v: expanded=%v", bound, expanded)

		if solved {
			h.publish(Progress{Bound: bound, Expanded: total, Path: Path{Moves: moves}, Found: true}, out)
			return
		}

		h.publish(Progress{Bound: bound, Expanded: total}, out)
		h.init.Close()

		if newBound == -1 || newBound > limit {
			return // exhausted: no solution within limit
		}
		bound = newBound
	}
}

func (h *handle) publish(pv Progress, out chan Progress) {
	h.mu.Lock()
	h.pv = pv
	h.mu.Unlock()

	select {
	case <-out:
	default:
	}
	out <- pv
}

func (h *handle) Halt() Progress {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}
