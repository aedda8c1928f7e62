// Package index computes perfect, minimal, bijective indices for partial
// 24-puzzle configurations restricted to a tileset -- the hash function the
// pattern database tables are keyed by.
package index

import (
	"fmt"
	"sync"

	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// MaxTiles bounds the number of non-zero tiles a single index can describe;
// beyond this the permutation index would overflow a uint32 factorial radix.
const MaxTiles = 12

// factorials[i] = i!, for i up to MaxTiles.
var factorials = func() [MaxTiles + 1]uint32 {
	var f [MaxTiles + 1]uint32
	f[0] = 1
	for i := 1; i <= MaxTiles; i++ {
		f[i] = f[i-1] * uint32(i)
	}
	return f
}()

// Index is the three-part structured index of a partial puzzle
// configuration with respect to some tileset: a rank for the map of
// occupied squares, a permutation index of the tiles within that map, and
// (if the blank is part of the tileset) the equivalence class of the
// blank's location.
type Index struct {
	Pidx    uint32 // permutation index, in [0, NPerm)
	Maprank uint32 // combinatorial rank of the occupied-square map
	Eqidx   int    // equivalence class of the blank's square, or -1
}

func (idx Index) String() string {
	return fmt.Sprintf("(%d %d %d)", idx.Pidx, idx.Maprank, idx.Eqidx)
}

// table holds, for one map (one occupied-square configuration), the
// assignment of each empty square to a connected-component id, and this
// map's cumulative offset among all maps for the same cardinality.
type table struct {
	eqclasses [tileset.TileCount]int8
	nEqclass  int
	offset    uint32
}

// Aux is the precomputed auxiliary structure needed to compute and invert
// indices for one tileset. Its index tables depend only on the tileset's
// cardinality and whether it contains the blank; Ts and SolvedParity depend
// on the tileset itself. It is safe to share across goroutines once built,
// the way board.ZobristTable is built once and shared.
type Aux struct {
	Ts           tileset.Tileset
	NTile        int    // number of non-zero tiles
	NMaprank     uint32 // number of distinct maps, C(TileCount, NTile)
	NPerm        uint32 // number of permutations, NTile!
	SolvedParity int

	idxt []table // nil if Ts does not contain the blank
}

var (
	tableCacheMu sync.Mutex
	tableCache   = map[int][]table{}
)

// NewAux builds the auxiliary structure for ts. Index tables are memoised
// per cardinality (shared by every tileset of the same size), mirroring the
// original's process-global index_tables cache.
func NewAux(ts tileset.Tileset) *Aux {
	tsnz := ts.Remove(tileset.ZeroTile)
	n := tsnz.Count()

	aux := &Aux{
		Ts:           ts,
		NTile:        n,
		NMaprank:     tileset.MaxRank(n),
		NPerm:        factorials[n],
		SolvedParity: tsnz.Parity(),
	}

	if ts.Has(tileset.ZeroTile) {
		aux.idxt = indexTableFor(n)
	}

	return aux
}

func indexTableFor(n int) []table {
	tableCacheMu.Lock()
	defer tableCacheMu.Unlock()

	if t, ok := tableCache[n]; ok {
		return t
	}

	count := tileset.MaxRank(n)
	t := make([]table, count)

	var offset uint32
	for rank := uint32(0); rank < count; rank++ {
		m := tileset.Unrank(n, rank)
		t[rank].nEqclass, t[rank].eqclasses = populateEqClasses(m)
		t[rank].offset = offset
		offset += uint32(t[rank].nEqclass)
	}

	tableCache[n] = t
	return t
}

// populateEqClasses partitions the squares not in map (i.e. empty squares)
// into connected components under 4-adjacency; each occupied square is
// marked -1.
func populateEqClasses(m tileset.Tileset) (int, [tileset.TileCount]int8) {
	var eq [tileset.TileCount]int8
	for i := range eq {
		eq[i] = -1
	}

	n := 0
	for cmap := m.Complement(); !cmap.Empty(); n++ {
		region := tileset.Flood(cmap, cmap.Least())
		cmap = cmap.Difference(region)
		for r := region; !r.Empty(); r = r.RemoveLeast() {
			eq[r.Least()] = int8(n)
		}
	}
	return n, eq
}

// EqclassCount returns the number of equivalence classes for the given map
// rank; 1 if the blank is not part of the tileset.
func (aux *Aux) EqclassCount(maprank uint32) int {
	if aux.idxt == nil {
		return 1
	}
	return aux.idxt[maprank].nEqclass
}

// EqclassOffset returns the cumulative number of equivalence classes across
// all maps ranked below maprank; i.e. the base offset, among all equivalence
// classes, of maprank's own classes. Returns maprank itself if the blank is
// not part of aux.Ts, since every map then has exactly one equivalence
// class.
func (aux *Aux) EqclassOffset(maprank uint32) uint64 {
	if aux.idxt == nil {
		return uint64(maprank)
	}
	return uint64(aux.idxt[maprank].offset)
}

// EqclassTotal returns the total number of equivalence classes across all
// maps.
func (aux *Aux) EqclassTotal() uint32 {
	if aux.idxt == nil {
		return aux.NMaprank
	}
	last := aux.idxt[aux.NMaprank-1]
	return last.offset + uint32(last.nEqclass)
}

// SearchSpaceSize returns the number of distinct indices describable by aux:
// one more than the highest value Offset can produce.
func (aux *Aux) SearchSpaceSize() uint64 {
	return uint64(aux.NPerm) * uint64(aux.EqclassTotal())
}

// Offset computes idx's linear position among all indices described by aux,
// as if each entry occupied one byte.
func (aux *Aux) Offset(idx Index) uint64 {
	var mapOffset uint64
	if aux.idxt != nil {
		mapOffset = uint64(aux.idxt[idx.Maprank].offset) + uint64(idx.Eqidx)
	} else {
		mapOffset = uint64(idx.Maprank)
	}
	return mapOffset*uint64(aux.NPerm) + uint64(idx.Pidx)
}

// EqclassFromIndex returns the tileset of grid squares belonging to idx's
// equivalence class (or, if the blank is not in aux.Ts, the tileset of all
// squares not occupied by the map's tiles).
func (aux *Aux) EqclassFromIndex(idx Index) tileset.Tileset {
	if aux.idxt == nil {
		return tileset.Unrank(aux.NTile, idx.Maprank).Complement()
	}

	eqclasses := aux.idxt[idx.Maprank].eqclasses
	eq := tileset.EmptyTileset
	for i, v := range eqclasses {
		if int(v) == idx.Eqidx {
			eq = eq.Add(i)
		}
	}
	return eq
}

// tileMap returns the tileset of grid squares occupied by the non-zero
// tiles in ts.
func tileMap(ts tileset.Tileset, p *puzzle.Puzzle) tileset.Tileset {
	tsnz := ts.Remove(tileset.ZeroTile)
	m := tileset.EmptyTileset
	for ; !tsnz.Empty(); tsnz = tsnz.RemoveLeast() {
		m = m.Add(p.Tiles[tsnz.Least()])
	}
	return m
}

// rankSelect returns the i'th (0-indexed, ascending) member of ts as a
// singleton tileset.
func rankSelect(ts tileset.Tileset, i int) tileset.Tileset {
	for j := 0; j < i; j++ {
		ts = ts.RemoveLeast()
	}
	return tileset.EmptyTileset.Add(ts.Least())
}

// permutation computes the permutation index of the tiles in ts, which
// occupy the grid squares in m, by accumulating their inversion count in a
// factorial number system.
func permutation(ts, m tileset.Tileset, p *puzzle.Puzzle) uint32 {
	if ts.Empty() {
		return 0
	}

	nTiles := uint32(ts.Count())
	factor := uint32(1)

	least := p.Tiles[ts.Least()]
	pidx := uint32(m.Intersect(tileset.Least(least)).Count())
	m = m.Remove(least)
	ts = ts.RemoveLeast()

	for ; !ts.Empty(); ts = ts.RemoveLeast() {
		factor *= nTiles
		nTiles--
		least = p.Tiles[ts.Least()]
		pidx += factor * uint32(m.Intersect(tileset.Least(least)).Count())
		m = m.Remove(least)
	}

	return pidx
}

// Compute computes the structured index of p restricted to aux's tileset.
func Compute(aux *Aux, p *puzzle.Puzzle) Index {
	tsnz := aux.Ts.Remove(tileset.ZeroTile)
	m := tileMap(aux.Ts, p)

	var idx Index
	idx.Maprank = m.Rank()
	idx.Pidx = permutation(tsnz, m, p)

	if aux.Ts.Has(tileset.ZeroTile) {
		idx.Eqidx = int(aux.idxt[idx.Maprank].eqclasses[p.ZeroLocation()])
	} else {
		idx.Eqidx = -1
	}
	return idx
}

// fillComplement places every tile not in ts onto the grid squares not in
// map, in ascending order; this reproduces a canonical, arbitrary
// assignment for the tiles the caller does not care about.
func fillComplement(p *puzzle.Puzzle, ts, m tileset.Tileset) {
	cmap := m.Complement()
	for cts := ts.Complement(); !cts.Empty(); cts = cts.RemoveLeast() {
		i := cts.Least()
		p.Tiles[i] = cmap.Least()
		cmap = cmap.RemoveLeast()
		p.Grid[p.Tiles[i]] = i
	}
}

func unpermute(p *puzzle.Puzzle, ts, m tileset.Tileset, pidx uint32) {
	for n := uint32(ts.Count()); n > 0; n-- {
		cmp := pidx % n
		pidx /= n

		i := ts.Least()
		ts = ts.RemoveLeast()

		tile := rankSelect(m, int(cmp))
		p.Tiles[i] = tile.Least()
		m = m.Difference(tile)
		p.Grid[p.Tiles[i]] = i
	}
}

// InvertMap fills in p with the tiles implied by idx.Maprank alone: the
// non-zero tiles named by aux.Ts are left zero-valued on the grid and every
// other tile is placed arbitrarily. Call InvertRest afterward to complete
// the configuration. Splitting the two steps lets callers reuse the map
// half of the work across every index sharing the same Maprank.
func InvertMap(aux *Aux, idx Index) *puzzle.Puzzle {
	tsnz := aux.Ts.Remove(tileset.ZeroTile)
	m := tileset.Unrank(aux.NTile, idx.Maprank)

	p := &puzzle.Puzzle{}
	fillComplement(p, tsnz, m)
	return p
}

// InvertRest completes a puzzle produced by InvertMap for the same Maprank
// by placing the tiles in aux.Ts according to idx.Pidx, then (if the blank
// is part of aux.Ts) moving the blank to the canonical representative
// square of idx's equivalence class.
func InvertRest(aux *Aux, p *puzzle.Puzzle, idx Index) {
	tsnz := aux.Ts.Remove(tileset.ZeroTile)
	m := tileset.Unrank(aux.NTile, idx.Maprank)

	unpermute(p, tsnz, m, idx.Pidx)

	if aux.Ts.Has(tileset.ZeroTile) {
		p.Move(aux.EqclassFromIndex(idx).Least())
	}
}

// Invert computes a representative configuration of the equivalence class
// described by idx.
func Invert(aux *Aux, idx Index) *puzzle.Puzzle {
	p := InvertMap(aux, idx)
	InvertRest(aux, p, idx)
	return p
}

// PartiallyEqual reports whether a and b agree on the tiles named by
// aux.Ts, including (if aux.Ts contains the blank) belonging to the same
// equivalence class of blank location.
func PartiallyEqual(aux *Aux, a, b *puzzle.Puzzle) bool {
	tsnz := aux.Ts.Remove(tileset.ZeroTile)
	for ; !tsnz.Empty(); tsnz = tsnz.RemoveLeast() {
		i := tsnz.Least()
		if a.Tiles[i] != b.Tiles[i] {
			return false
		}
	}

	if !aux.Ts.Has(tileset.ZeroTile) {
		return true
	}

	eqclasses := aux.idxt[tileMap(aux.Ts, a).Rank()].eqclasses
	return eqclasses[a.ZeroLocation()] == eqclasses[b.ZeroLocation()]
}
