package pdb

import (
	"github.com/herohde/puzzle24/pkg/index"
)

// Diffcode rewrites pdb in place to hold, for each entry, the difference
// between its distance and the minimum distance within its equivalence
// class; it
// returns one minimum per equivalence class, indexed the same way
// index.Aux.EqclassOffset addresses them. This shrinks the entropy of the
// table (most differences are small) at the cost of needing the minimums
// array to recover the original distances. Grounded on pdbdiff.c's
// pdb_diffcode.
func Diffcode(pdb *PDB) []byte {
	minimums := make([]byte, pdb.Aux.EqclassTotal())

	iterateParallel(pdb.Aux, func(maprank uint32) {
		diffcodeCohort(pdb, maprank, minimums)
	})

	return minimums
}

func diffcodeCohort(pdb *PDB, maprank uint32, minimums []byte) {
	nEqclass := pdb.Aux.EqclassCount(maprank)
	offset := pdb.Aux.EqclassOffset(maprank)

	idx := index.Index{Maprank: maprank}
	for eq := 0; eq < nEqclass; eq++ {
		idx.Eqidx = eq

		min := byte(Unreached)
		for pidx := uint32(0); pidx < pdb.Aux.NPerm; pidx++ {
			idx.Pidx = pidx
			if v := byte(pdb.Lookup(idx)); v < min {
				min = v
			}
		}
		minimums[offset+uint64(eq)] = min

		for pidx := uint32(0); pidx < pdb.Aux.NPerm; pidx++ {
			idx.Pidx = pidx
			v := pdb.Lookup(idx)
			if v != Unreached {
				pdb.Update(idx, v-int(min))
			}
		}
	}
}
