// Package fsm implements per-square finite state machines used to prune
// move sequences during IDA* search: each square has its own state table,
// and a state transitions to Match when the move about to be made would
// complete a forbidden pattern (most commonly, undoing the previous move).
package fsm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

const (
	// Begin is the start state for any square.
	Begin uint32 = 0
	// MaxLen bounds how many states a single square's table may hold.
	MaxLen uint32 = 0xfffffff0
	// Match marks a transition that would complete a forbidden pattern:
	// the move must be pruned.
	Match uint32 = 0xfffffffe
	// Unassigned marks a transition that can never be taken (e.g. a
	// direction with fewer than 4 possible moves); present only to pad
	// fixed-width state tables.
	Unassigned uint32 = 0xffffffff
)

// State is the FSM's current position: which square the blank occupies and
// which state that square's machine is in.
type State struct {
	Zloc  int
	State uint32
}

// FSM is a finite state machine: one state table per square, each state
// indexed by which of that square's (up to 4) possible moves is taken.
type FSM struct {
	tables   [puzzle.TileCount][][4]uint32
	moribund [puzzle.TileCount][]int8
}

// StartState returns the initial state for the blank at square z.
func StartState(z int) State {
	return State{Zloc: z, State: Begin}
}

// IsMatch reports whether st is the distinguished match state.
func (st State) IsMatch() bool {
	return st.State == Match
}

// Advance returns the state reached by taking the i'th move listed by
// tileset.Adjacent(st.Zloc) (i.e. get_moves(st.Zloc)[i]).
func (f *FSM) Advance(st State, i int) State {
	return State{Zloc: tileset.Adjacent(st.Zloc)[i], State: f.tables[st.Zloc][st.State][i]}
}

// AdvanceTo is like Advance but addresses the move by destination square
// rather than by index into Adjacent.
func (f *FSM) AdvanceTo(st State, dest int) State {
	for i, d := range tileset.Adjacent(st.Zloc) {
		if d == dest {
			return f.Advance(st, i)
		}
	}
	panic(fmt.Sprintf("fsm: square %d is not adjacent to %d", dest, st.Zloc))
}

// Moves returns the subset of squares adjacent to st.Zloc that do not lead
// to the match state -- the moves legal under this FSM.
func (f *FSM) Moves(st State) []int {
	adj := tileset.Adjacent(st.Zloc)
	out := make([]int, 0, len(adj))
	for i, d := range adj {
		if f.tables[st.Zloc][st.State][i] != Match {
			out = append(out, d)
		}
	}
	return out
}

// Moribundness returns how many additional forced moves remain before st
// is guaranteed to reach a match, saturating at the table's computed
// maximum. Used to bound random-walk sampling and bias search order away
// from near-dead branches.
func (f *FSM) Moribundness(st State) int8 {
	return f.moribund[st.Zloc][st.State]
}

// Dummy returns a finite state machine that recognizes no patterns: every
// move is always legal. Used as a no-op placeholder wherever an FSM is
// required but no pruning is desired.
func Dummy() *FSM {
	var f FSM
	for z := 0; z < puzzle.TileCount; z++ {
		f.tables[z] = [][4]uint32{{Begin, Begin, Begin, Begin}}
		f.moribund[z] = computeMoribund(f.tables[z])
	}
	return &f
}

// Simple returns a finite state machine that recognizes only length-2
// cycles: a move that immediately undoes the previous move. This is the
// cheapest nontrivial pruning table and needs only 5 states per square
// (begin, plus one "arrived from direction d" state for each of up to 4
// directions).
func Simple() *FSM {
	var f FSM
	for z := 0; z < puzzle.TileCount; z++ {
		adj := tileset.Adjacent(z)
		n := len(adj)
		states := make([][4]uint32, n+1)

		for i := 0; i < 4; i++ {
			if i < n {
				states[0][i] = uint32(i + 1)
			} else {
				states[0][i] = Unassigned
			}
		}

		for from := 0; from < n; from++ {
			row := from + 1
			for i := 0; i < 4; i++ {
				switch {
				case i >= n:
					states[row][i] = Unassigned
				case i == from:
					states[row][i] = Match
				default:
					states[row][i] = uint32(i + 1)
				}
			}
		}

		f.tables[z] = states
		f.moribund[z] = computeMoribund(states)
	}
	return &f
}

// computeMoribund computes, for each state in a single square's table, the
// minimum number of moves needed to reach Match by repeated Advance calls,
// saturating at 127 for states from which Match is unreachable or very far
// (a dead loop never worth walking further in a bounded sampler).
func computeMoribund(states [][4]uint32) []int8 {
	const unreached = int8(127)
	dist := make([]int8, len(states))
	for i := range dist {
		dist[i] = unreached
	}

	changed := true
	for changed {
		changed = false
		for s, row := range states {
			best := unreached
			for _, next := range row {
				switch next {
				case Match:
					if 1 < int(best) {
						best = 1
					}
				case Unassigned:
					// no transition
				default:
					if int(dist[next])+1 < int(best) && dist[next] != unreached {
						if d := dist[next] + 1; d < best {
							best = d
						}
					}
				}
			}
			if best < dist[s] {
				dist[s] = best
				changed = true
			}
		}
	}
	return dist
}

// header mirrors the on-disk layout: 25 (offset, length) pairs for the
// state tables, optionally followed (if moribund tables are present) by 25
// more offsets for the moribund tables. There is no magic number or
// version field; a reader infers whether moribund tables are present by
// checking whether every primary-table offset is at least as large as the
// extended header would be.
type header struct {
	Offsets [puzzle.TileCount]int64
	Lengths [puzzle.TileCount]uint32
}

const (
	headerSize         = 8*puzzle.TileCount + 4*puzzle.TileCount
	moribundHeaderSize = headerSize + 8*puzzle.TileCount
)

// Load reads a finite state machine previously written by Write.
func Load(r io.ReadSeeker) (*FSM, error) {
	br := bufio.NewReader(r)

	var h header
	if err := readHeader(br, &h); err != nil {
		return nil, fmt.Errorf("read fsm header: %w", err)
	}

	hasMoribund := true
	for _, off := range h.Offsets {
		if off < moribundHeaderSize {
			hasMoribund = false
			break
		}
	}

	var moribundOffsets [puzzle.TileCount]int64
	if hasMoribund {
		if _, err := r.Seek(headerSize, io.SeekStart); err != nil {
			return nil, err
		}
		br = bufio.NewReader(r)
		if err := binary.Read(br, binary.LittleEndian, &moribundOffsets); err != nil {
			return nil, fmt.Errorf("read moribund header: %w", err)
		}
	}

	var f FSM
	for z := 0; z < puzzle.TileCount; z++ {
		if _, err := r.Seek(h.Offsets[z], io.SeekStart); err != nil {
			return nil, err
		}
		tbl := make([][4]uint32, h.Lengths[z])
		if err := binary.Read(r, binary.LittleEndian, tbl); err != nil {
			return nil, fmt.Errorf("read table for square %d: %w", z, err)
		}
		f.tables[z] = tbl
	}

	for z := 0; z < puzzle.TileCount; z++ {
		mb := make([]int8, h.Lengths[z])
		if hasMoribund {
			if _, err := r.Seek(moribundOffsets[z], io.SeekStart); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, mb); err != nil {
				return nil, fmt.Errorf("read moribund table for square %d: %w", z, err)
			}
		} else {
			for i := range mb {
				mb[i] = computeMoribund(f.tables[z])[i]
			}
		}
		f.moribund[z] = mb
	}

	return &f, nil
}

func readHeader(r io.Reader, h *header) error {
	if err := binary.Read(r, binary.LittleEndian, &h.Offsets); err != nil {
		return err
	}
	return binary.Read(r, binary.LittleEndian, &h.Lengths)
}

// Write serializes f to w. If withMoribund is true, the moribund tables
// are written too and a reader will load them back instead of
// recomputing them.
func Write(w io.Writer, f *FSM, withMoribund bool) error {
	var h header
	hlen := int64(headerSize)
	if withMoribund {
		hlen = moribundHeaderSize
	}

	offset := hlen
	for z := 0; z < puzzle.TileCount; z++ {
		h.Offsets[z] = offset
		h.Lengths[z] = uint32(len(f.tables[z]))
		offset += int64(len(f.tables[z])) * 16
	}

	var moribundOffsets [puzzle.TileCount]int64
	if withMoribund {
		for z := 0; z < puzzle.TileCount; z++ {
			moribundOffsets[z] = offset
			offset += int64(len(f.moribund[z]))
		}
	}

	if err := binary.Write(w, binary.LittleEndian, h.Offsets); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h.Lengths); err != nil {
		return err
	}
	if withMoribund {
		if err := binary.Write(w, binary.LittleEndian, moribundOffsets); err != nil {
			return err
		}
	}

	for z := 0; z < puzzle.TileCount; z++ {
		if err := binary.Write(w, binary.LittleEndian, f.tables[z]); err != nil {
			return fmt.Errorf("write table for square %d: %w", z, err)
		}
	}
	if withMoribund {
		for z := 0; z < puzzle.TileCount; z++ {
			if err := binary.Write(w, binary.LittleEndian, f.moribund[z]); err != nil {
				return fmt.Errorf("write moribund table for square %d: %w", z, err)
			}
		}
	}

	return nil
}
