package pdb

import (
	"github.com/herohde/puzzle24/pkg/index"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// Identify turns a zero-aware pattern database (one whose tileset includes
// the blank) into a zero-unaware one, by collapsing every equivalence
// class for a given (map rank, permutation index) pair to the minimum
// distance among them. It is a no-op if pdb is already zero-unaware.
// Grounded on pdbident.c's pdb_identify.
func Identify(pdb *PDB) {
	if !pdb.Aux.Ts.Has(tileset.ZeroTile) {
		return
	}

	newAux := index.NewAux(pdb.Aux.Ts.Remove(tileset.ZeroTile))
	newData := newStore(int(newAux.SearchSpaceSize()))

	nPerm := pdb.Aux.NPerm
	for maprank := uint32(0); maprank < pdb.Aux.NMaprank; maprank++ {
		nEqclass := pdb.Aux.EqclassCount(maprank)
		base := int(maprank) * int(nPerm)

		idx := index.Index{Maprank: maprank}
		for pidx := uint32(0); pidx < nPerm; pidx++ {
			idx.Pidx = pidx

			idx.Eqidx = 0
			min := pdb.Lookup(idx)
			for eq := 1; eq < nEqclass; eq++ {
				idx.Eqidx = eq
				if v := pdb.Lookup(idx); v < min {
					min = v
				}
			}

			newData.Set(base+int(pidx), byte(min))
		}
	}

	pdb.Aux = newAux
	pdb.data = newData
}
