package pdb

import (
	"fmt"
	"io"

	"go.uber.org/atomic"

	"github.com/herohde/puzzle24/pkg/index"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// Verify checks pdb for internal consistency: every entry must be
// reached, every move out of an entry's equivalence class must land on an
// entry at most one distance away, and some move must make progress
// (reach a strictly lower distance) unless the entry is already 0.
// Inconsistencies are reported to report, if non-nil. Verify returns true
// if pdb is consistent. Grounded on pdbverify.c's pdb_verify/verify_entry.
func Verify(pdb *PDB, report io.Writer) bool {
	var bad atomic.Bool

	iterateParallel(pdb.Aux, func(maprank uint32) {
		if !verifyCohort(pdb, maprank, report) {
			bad.Store(true)
		}
	})

	return !bad.Load()
}

func verifyCohort(pdb *PDB, maprank uint32, report io.Writer) bool {
	nEqclass := pdb.Aux.EqclassCount(maprank)
	ok := true

	idx := index.Index{Maprank: maprank}
	for eq := 0; eq < nEqclass; eq++ {
		idx.Eqidx = eq
		for pidx := uint32(0); pidx < pdb.Aux.NPerm; pidx++ {
			idx.Pidx = pidx
			if !verifyEntry(pdb, idx, report) {
				ok = false
			}
		}
	}

	return ok
}

func verifyEntry(pdb *PDB, idx index.Index, report io.Writer) bool {
	srcEntry := pdb.Lookup(idx)
	if srcEntry == Unreached {
		if report != nil {
			fmt.Fprintf(report, "entry has value Unreached: %v\n", idx)
		}
		return false
	}

	p := index.Invert(pdb.Aux, idx)
	zloc := p.ZeroLocation()
	moves := tileset.GenerateMoves(pdb.Aux.EqclassFromIndex(idx))

	progress := false
	for _, mv := range moves {
		p.Move(mv.Zloc)
		p.Move(mv.Dest)

		dstIdx := index.Compute(pdb.Aux, p)
		dstEntry := pdb.Lookup(dstIdx)

		if abs(srcEntry-dstEntry) > 1 {
			if report != nil {
				fmt.Fprintf(report, "%v -> %v with entry %d -> %d invalid\n", idx, dstIdx, srcEntry, dstEntry)
			}
			return false
		}
		if dstEntry < srcEntry {
			progress = true
		}

		p.Move(mv.Zloc)
		p.Move(zloc)
	}

	if !progress && srcEntry != 0 {
		if report != nil {
			fmt.Fprintf(report, "no progress possible from %v\n", idx)
		}
		return false
	}

	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
