// Package search implements IDA* over a catalogue of pattern database
// heuristics, with move-sequence pruning by a finite state machine.
// Grounded on ida.c/search.c/search.h; the FSM-pruning wiring point named
// by search.h's signatures (a const struct fsm * parameter) but absent
// from the retained search_to_bound/evaluate_expansions bodies is
// reconstructed from random.c's random_walk, the only retained function
// that actually drives an fsm (fsm_get_moves/fsm_advance) move by move.
package search

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/herohde/puzzle24/pkg/catalogue"
	"github.com/herohde/puzzle24/pkg/fsm"
	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// Flags controls Bounded/Unbounded's behavior. Grounded on search.h's
// IDA_LAST_FULL/IDA_VERBOSE/IDA_VERIFY enum.
type Flags int

const (
	// LastFull finishes the last round in full instead of returning as
	// soon as one solution is found; the path returned is the last
	// solution found in that round, and the other optima are not
	// reported.
	LastFull Flags = 1 << 0
	// Verify re-walks a found path and confirms it actually reaches the
	// solved configuration before returning it.
	Verify Flags = 1 << 1
)

// searchNode is one level of the search path: the blank's location, which
// child (of its parent) it is, the FSM state reached on arrival, and,
// for each of its own up to 4 children, the partial h-value vector, the
// combined h-value, and the FSM state that child would be in. Grounded on
// ida.c's struct search_node.
type searchNode struct {
	zloc, childNo int
	toExpand      uint8
	fsmState      fsm.State

	childPH  [4]*catalogue.PartialHvals
	childH   [4]int
	fsmChild [4]fsm.State
}

// evaluateExpansions fills in nodes[d]'s to_expand bitmap and its
// children's cached evaluations, skipping moves that would undo the
// parent's move (nodes[d-1].zloc) or that the FSM forbids. Grounded on
// ida.c's evaluate_expansions, with the FSM filter added per random.c's
// fsm_get_moves usage.
func evaluateExpansions(nodes []searchNode, d int, p *puzzle.Puzzle, cat *catalogue.Catalogue, mach *fsm.FSM) {
	cur := &nodes[d]
	cur.toExpand = 0

	adj := tileset.Adjacent(cur.zloc)
	allowed := mach.Moves(cur.fsmState)

	for i, dest := range adj {
		if dest == nodes[d-1].zloc || !containsSquare(allowed, dest) {
			continue
		}
		cur.toExpand |= 1 << uint(i)

		tile := p.Grid[dest]
		p.Move(dest)

		ph := clonePartialHvals(nodes[d-1].childPH[cur.childNo])
		cat.DiffHvals(ph, p, tile)

		cur.childPH[i] = ph
		cur.childH[i] = cat.Hval(ph)
		cur.fsmChild[i] = mach.AdvanceTo(cur.fsmState, dest)

		p.Move(cur.zloc)
	}
}

func containsSquare(squares []int, dest int) bool {
	for _, s := range squares {
		if s == dest {
			return true
		}
	}
	return false
}

func clonePartialHvals(ph *catalogue.PartialHvals) *catalogue.PartialHvals {
	return &catalogue.PartialHvals{Hvals: append([]int(nil), ph.Hvals...)}
}

// captureMoves copies the destination squares of nodes[2..depth+1], the
// nodes reached by the depth moves below the root at nodes[1], into a
// fresh slice: a snapshot of the path currently on the stack. Needed
// because, with LastFull set, the search keeps exploring the rest of the
// bound after a solution is found, overwriting nodes at shallower depths
// with unrelated branches -- so the path must be captured the instant a
// solution is detected, the way the original's (declared but, in the
// retained ida.c, unimplemented) per-solution callback would have, rather
// than reconstructed from nodes after the round ends.
func captureMoves(nodes []searchNode, depth int) []int {
	moves := make([]int, depth)
	for i := 0; i < depth; i++ {
		moves[i] = nodes[i+2].zloc
	}
	return moves
}

// searchToBound performs one bounded round of IDA*, starting from start,
// not exceeding bound. It reports whether a solution was found, its move
// sequence, and, if none was found, the smallest bound a subsequent round
// should use. Grounded on ida.c's search_to_bound.
func searchToBound(cat *catalogue.Catalogue, mach *fsm.FSM, start *puzzle.Puzzle, nodes []searchNode, bound int, expanded *uint64, progress io.Writer, flags Flags) (found bool, newBound int, moves []int) {
	p := *start
	newBound = -1

	zloc0 := p.ZeroLocation()

	rootPH := cat.PartialHvals(&p)
	nodes[0] = searchNode{zloc: zloc0, childNo: 0}
	nodes[0].childH[0] = cat.Hval(rootPH)
	nodes[0].childPH[0] = rootPH

	nodes[1] = searchNode{zloc: zloc0, childNo: 0, fsmState: fsm.StartState(zloc0)}
	evaluateExpansions(nodes, 1, &p, cat, mach)

	var captured []int

	dist := 1
	for {
		hmax := nodes[dist-1].childH[nodes[dist].childNo]

		if nodes[dist].toExpand == 0 {
			dist--
			if dist == 0 {
				break
			}
			p.Move(nodes[dist].zloc)
			continue
		}

		*expanded++

		destIdx := bits.TrailingZeros8(nodes[dist].toExpand)
		hmax = nodes[dist].childH[destIdx]
		nodes[dist].toExpand &^= 1 << uint(destIdx)
		dloc := tileset.Adjacent(nodes[dist].zloc)[destIdx]
		nextFsm := nodes[dist].fsmChild[destIdx]

		dist++

		if hmax+dist-1 > bound {
			if newBound == -1 || hmax+dist-1 < newBound {
				newBound = hmax + dist - 1
			}
			dist--
			continue
		}

		p.Move(dloc)
		nodes[dist] = searchNode{zloc: dloc, childNo: destIdx, fsmState: nextFsm}
		evaluateExpansions(nodes, dist, &p, cat, mach)

		if hmax == 0 && p.Tiles == puzzle.Solved.Tiles {
			if progress != nil {
				fmt.Fprintf(progress, "solution found at depth %d\n", dist-1)
			}
			captured = captureMoves(nodes, dist-1)
			if flags&LastFull != 0 {
				found = true
				continue
			}
			return true, -1, captured
		}
	}

	if progress != nil {
		fmt.Fprintf(progress, "no solution found with bound %d, increasing bound to %d\n", bound, newBound)
	}
	return found, newBound, captured
}

// Bounded runs IDA* from p, never exceeding limit moves, using cat for
// heuristic evaluation and mach to prune move sequences. It returns the
// number of nodes expanded, the path found, and whether a path was found
// at all: found is false iff the goal is more than limit moves away (the
// NoPath case in the original). Grounded on ida.c's search_ida_bounded.
func Bounded(cat *catalogue.Catalogue, mach *fsm.FSM, p *puzzle.Puzzle, limit int, progress io.Writer, flags Flags) (uint64, Path, bool) {
	if p.Tiles == puzzle.Solved.Tiles {
		return 0, Path{}, true
	}

	nodes := make([]searchNode, limit+2)

	var totalExpanded uint64
	bound := 0
	solved := false
	var moves []int

	for {
		var expanded uint64
		var newBound int
		solved, newBound, moves = searchToBound(cat, mach, p, nodes, bound, &expanded, progress, flags)
		totalExpanded += expanded

		if progress != nil {
			fmt.Fprintf(progress, "expanded %d nodes during previous round\n", expanded)
		}

		if solved || newBound == -1 {
			break
		}
		bound = newBound
		if bound > limit {
			break
		}
	}

	if !solved || bound > limit {
		return totalExpanded, Path{}, false
	}

	path := Path{Moves: moves}

	if flags&Verify != 0 {
		q := *p
		path.Walk(&q)
		if q.Tiles != puzzle.Solved.Tiles {
			panic("search: verification failed, path does not reach the solved configuration")
		}
	}

	return totalExpanded, path, true
}

// Unbounded runs Bounded with limit set to MaxPathLen. Grounded on
// ida.c's search_ida.
func Unbounded(cat *catalogue.Catalogue, mach *fsm.FSM, p *puzzle.Puzzle, progress io.Writer, flags Flags) (uint64, Path, bool) {
	return Bounded(cat, mach, p, MaxPathLen, progress, flags)
}
