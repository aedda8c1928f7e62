package pdb

import (
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/herohde/puzzle24/pkg/index"
)

// iterateParallel partitions aux's map ranks across Jobs goroutines, each
// repeatedly claiming the next unclaimed rank and calling worker on it
// until none remain. Grounded on parallel.c's pdb_iterate_parallel, with
// pthread_create/pthread_join replaced by errgroup.Group and the shared
// atomic nextrank counter replaced by an atomic.Uint32. Jobs == 1 runs
// in the calling goroutine, matching the original's single-thread debug
// path.
func iterateParallel(aux *index.Aux, worker func(maprank uint32)) {
	jobs := Jobs
	if jobs < 1 {
		jobs = 1
	}

	if jobs == 1 {
		for r := uint32(0); r < aux.NMaprank; r++ {
			worker(r)
		}
		return
	}

	var next atomic.Uint32
	var g errgroup.Group
	for j := 0; j < jobs; j++ {
		g.Go(func() error {
			for {
				r := next.Inc() - 1
				if r >= aux.NMaprank {
					return nil
				}
				worker(r)
			}
		})
	}
	_ = g.Wait()
}
