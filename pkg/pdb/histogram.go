package pdb

import (
	"sync"

	"github.com/herohde/puzzle24/pkg/index"
)

// HistogramFlags control optional behavior of Histogram.
type HistogramFlags int

// Weighted weights each PDB entry by the size of its blank's equivalence
// class instead of counting it once, so the histogram reflects full
// puzzle configurations rather than partial ones.
const Weighted HistogramFlags = 1

// Histogram counts how many entries hold each distance value and returns
// the counts together with one more than the highest distance found.
// Grounded on histogram.c's pdb_histogram.
func Histogram(pdb *PDB, flags HistogramFlags) ([HistogramLen]uint64, int) {
	var total [HistogramLen]uint64
	var mu sync.Mutex

	iterateParallel(pdb.Aux, func(maprank uint32) {
		local := histogramCohort(pdb, maprank, flags)

		mu.Lock()
		for i, v := range local {
			total[i] += v
		}
		mu.Unlock()
	})

	n := 0
	for total[n] != 0 {
		n++
	}

	return total, n
}

func histogramCohort(pdb *PDB, maprank uint32, flags HistogramFlags) [HistogramLen]uint64 {
	var h [HistogramLen]uint64
	nEqclass := pdb.Aux.EqclassCount(maprank)

	idx := index.Index{Maprank: maprank}
	for eq := 0; eq < nEqclass; eq++ {
		idx.Eqidx = eq

		weight := uint64(1)
		if flags&Weighted != 0 {
			weight = uint64(pdb.Aux.EqclassFromIndex(idx).Count())
		}

		for pidx := uint32(0); pidx < pdb.Aux.NPerm; pidx++ {
			idx.Pidx = pidx
			h[pdb.Lookup(idx)] += weight
		}
	}

	return h
}
