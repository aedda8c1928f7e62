package pdb

import (
	"fmt"
	"io"

	"go.uber.org/atomic"

	"github.com/herohde/puzzle24/pkg/index"
	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// Generate fills pdb by breadth-first search outward from the solved
// configuration, round by round, until a round finds no entry to expand.
// progress, if non-nil, receives one line per round reporting how many
// entries at distance round-1 were expanded in that round. Generate returns
// the number of rounds run, two more than the highest distance found: the
// last round is the one that finds no entry at the next distance. Grounded on pdbgen.c's
// pdb_generate/generate_cohort.
func Generate(pdb *PDB, progress io.Writer) int {
	pdb.Clear()

	solvedIdx := index.Compute(pdb.Aux, &puzzle.Solved)
	pdb.Update(solvedIdx, 0)

	round := 0
	for {
		round++

		var count atomic.Int64
		iterateParallel(pdb.Aux, func(maprank uint32) {
			count.Add(int64(generateCohort(pdb, round, maprank)))
		})

		if progress != nil {
			fmt.Fprintf(progress, "%3d: %20d\n", round-1, count.Load())
		}
		if count.Load() == 0 {
			break
		}
	}

	return round
}

// generateCohort advances every entry reachable in one move from an entry
// last set to round-1, within the cohort of map rank maprank, to round.
// Every move flips the parity of the occupied-square map, so only every
// other round needs to scan a given map rank -- the same half-table skip
// the original performs by comparing tileset_parity against the round
// number's own parity.
func generateCohort(pdb *PDB, round int, maprank uint32) int {
	m := tileset.Unrank(pdb.Aux.NTile, maprank)
	if (int(m.Parity()) ^ pdb.Aux.SolvedParity) == round&1 {
		return 0
	}

	base := index.InvertMap(pdb.Aux, index.Index{Maprank: maprank})
	nEqclass := pdb.Aux.EqclassCount(maprank)

	count := 0
	idx := index.Index{Maprank: maprank}
	for eq := 0; eq < nEqclass; eq++ {
		idx.Eqidx = eq
		moves := tileset.GenerateMoves(pdb.Aux.EqclassFromIndex(idx))

		for pidx := uint32(0); pidx < pdb.Aux.NPerm; pidx++ {
			idx.Pidx = pidx
			if pdb.Lookup(idx) != round-1 {
				continue
			}

			count++
			p := *base
			index.InvertRest(pdb.Aux, &p, idx)
			updateCohortEntry(pdb, &p, moves, round)
		}
	}

	return count
}

// updateCohortEntry advances every entry reachable from p in the moves
// listed to round, if that entry is currently Unreached. p's blank starts
// at the eqclass's canonical representative square, not at the move's own
// Zloc, so each move is applied by first repositioning the blank to Zloc
// (itself a square within the same free/eq-class region, so this is just
// another swap among interchangeable non-pattern tiles), then sliding to
// Dest -- always a pattern square -- and computing the resulting index.
// Only the Dest move is undone afterward, leaving the blank at Zloc
// rather than back at the original square: since Zloc and the original
// square are both within the same free region, this is enough for the
// next move to be applied correctly in turn, and matches the original's
// own three-move (not four-move) sequence.
func updateCohortEntry(pdb *PDB, p *puzzle.Puzzle, moves []tileset.Move, round int) {
	indices := make([]index.Index, len(moves))
	for i, mv := range moves {
		p.Move(mv.Zloc)
		p.Move(mv.Dest)
		indices[i] = index.Compute(pdb.Aux, p)
		p.Move(mv.Zloc)
	}
	for _, idx := range indices {
		pdb.ConditionalUpdate(idx, round)
	}
}
