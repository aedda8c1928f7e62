// Package bitpdb implements a compacted pattern database that records only
// one bit per entry: whether a move out of the solved side of the
// quotient graph is "happy" (gets closer) or "sad" (gets farther), which
// is enough to reconstruct exact distances incrementally during search
// while using an eighth of the storage of a full byte-per-entry database.
package bitpdb

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/herohde/puzzle24/pkg/index"
	"github.com/herohde/puzzle24/pkg/pdb"
	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// CompressionLevel is the zstd encoder level used by StoreCompressed.
const CompressionLevel = zstd.SpeedBestCompression

// BitPDB is a one-bit-per-entry pattern database. Grounded on bitpdb.h's
// struct bitpdb; unlike pdb.PDB its data is not accessed concurrently
// during generation (it is only ever derived from an already-complete
// pdb.PDB by FromPDB), so a plain byte slice suffices -- no packed-atomic
// store is needed here.
type BitPDB struct {
	Aux  *index.Aux
	Data []byte
}

func size(aux *index.Aux) int {
	n := aux.SearchSpaceSize()
	return int((n + 7) / 8)
}

// Allocate reserves storage for a bitpdb over ts.
func Allocate(ts tileset.Tileset) *BitPDB {
	aux := index.NewAux(ts)
	return &BitPDB{Aux: aux, Data: make([]byte, size(aux))}
}

// FromPDB derives the bitpdb for a fully generated pattern database: bit i
// is the second-least-significant bit of src's i'th entry. Grounded on
// bitreduce.c's bitpdb_from_pdb; it is not a move-filter, so no moves.c
// logic is involved. Using only the 2nd bit and not the parity bit is
// deliberate: the solved configuration's parity recovers the least
// significant bit for free during search, as bitpdb.h's design comment
// explains.
func FromPDB(src *pdb.PDB) *BitPDB {
	bpdb := Allocate(src.Aux.Ts)

	n := int(src.Aux.SearchSpaceSize())
	idx := index.Index{}
	for i := 0; i < n; i++ {
		idx = offsetToIndex(src.Aux, uint64(i))
		if src.Lookup(idx)>>1&1 != 0 {
			bpdb.Data[i/8] |= 1 << uint(i%8)
		}
	}

	return bpdb
}

// offsetToIndex is the inverse of index.Aux.Offset, used only by FromPDB
// to walk every entry of a source PDB once.
func offsetToIndex(aux *index.Aux, offset uint64) index.Index {
	pidx := uint32(offset % uint64(aux.NPerm))
	rest := offset / uint64(aux.NPerm)

	if !aux.Ts.Has(tileset.ZeroTile) {
		return index.Index{Maprank: uint32(rest), Pidx: pidx, Eqidx: -1}
	}

	maprank, eqidx := uint32(0), 0
	for maprank = 0; maprank < aux.NMaprank; maprank++ {
		base := aux.EqclassOffset(maprank)
		n := uint64(aux.EqclassCount(maprank))
		if rest < base+n {
			eqidx = int(rest - base)
			break
		}
	}
	return index.Index{Maprank: maprank, Pidx: pidx, Eqidx: eqidx}
}

// Load reads a bitpdb for ts from r.
func Load(ts tileset.Tileset, r io.Reader) (*BitPDB, error) {
	bpdb := Allocate(ts)
	if _, err := io.ReadFull(r, bpdb.Data); err != nil {
		return nil, fmt.Errorf("load bitpdb: %w", err)
	}
	return bpdb, nil
}

// Store writes bpdb to w uncompressed.
func Store(w io.Writer, bpdb *BitPDB) error {
	_, err := w.Write(bpdb.Data)
	return err
}

// LoadCompressed reads a zstd-compressed bitpdb for ts from r. Grounded on
// bitpdbzstd.c's bitpdb_load_compressed.
func LoadCompressed(ts tileset.Tileset, r io.Reader) (*BitPDB, error) {
	bpdb := Allocate(ts)

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("load compressed bitpdb: %w", err)
	}
	defer dec.Close()

	if _, err := io.ReadFull(dec, bpdb.Data); err != nil {
		return nil, fmt.Errorf("load compressed bitpdb: %w", err)
	}
	return bpdb, nil
}

// StoreCompressed zstd-compresses bpdb and writes it to w. Grounded on
// bitpdbzstd.c's bitpdb_store_compressed.
func StoreCompressed(w io.Writer, bpdb *BitPDB) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(CompressionLevel))
	if err != nil {
		return fmt.Errorf("store compressed bitpdb: %w", err)
	}

	if _, err := enc.Write(bpdb.Data); err != nil {
		enc.Close()
		return fmt.Errorf("store compressed bitpdb: %w", err)
	}
	return enc.Close()
}

func lookupBit(bpdb *BitPDB, idx index.Index) int {
	offset := bpdb.Aux.Offset(idx)
	bit := bpdb.Data[offset/8] >> (offset % 8) & 1
	return int(bit) << 1
}

// partialParity is the parity of the occupied-square map for aux's tiles
// in p, relative to the solved configuration's own parity. Computed by
// recovering the map from idx.Maprank via Unrank rather than exporting
// pkg/index's private tileMap helper, since Compute's Maprank already
// names exactly that tileset (Unrank is its inverse by construction).
func partialParity(aux *index.Aux, p *puzzle.Puzzle) int {
	idx := index.Compute(aux, p)
	m := tileset.Unrank(aux.NTile, idx.Maprank)
	return int(m.Parity()) ^ aux.SolvedParity
}

// DiffLookup performs a differential lookup: given the distance oldH of a
// configuration directly connected (by one move) to p in the quotient
// graph, but not identical to p, return p's own distance. This only
// requires one bit of storage per entry instead of a full byte, at the
// cost of needing to track oldH across moves. Grounded on bitpdb.c's
// bitpdb_diff_lookup/bitpdb_diff_lookup_idx.
//
// DiffLookup panics if bpdb was derived from an already-identified
// (zero-unaware) pattern database: identification folds distinct
// equivalence classes together non-monotonically, which breaks the
// bipartite happy/sad structure this encoding relies on. This is an
// invariant on how bpdb was built, not a property of the p argument, so
// it is reported by panicking rather than by a returned error.
func DiffLookup(bpdb *BitPDB, p *puzzle.Puzzle, oldH int) int {
	if !bpdb.Aux.Ts.Has(tileset.ZeroTile) {
		panic("bitpdb: DiffLookup on an identified (zero-unaware) pattern database")
	}

	idx := index.Compute(bpdb.Aux, p)
	entry := lookupBit(bpdb, idx)
	return oldH - 1 + ((entry ^ oldH ^ oldH<<1 ^ 2) & 2)
}

// LookupPuzzle determines p's distance from scratch by following "happy"
// moves in bpdb's quotient graph until the solved configuration's
// equivalence class is reached. This is far slower than DiffLookup and is
// meant only to seed an initial h value at the root of a search; from
// then on DiffLookup should be used. Grounded on bitpdb.c's
// bitpdb_lookup_puzzle.
func LookupPuzzle(bpdb *BitPDB, start *puzzle.Puzzle) int {
	const dummyH = 248 // a multiple of 4 higher than the search space diameter

	p := *start
	curH := dummyH | lookupBit(bpdb, index.Compute(bpdb.Aux, &p)) | partialParity(bpdb.Aux, &p)
	initialH := curH

	for !index.PartiallyEqual(bpdb.Aux, &p, &puzzle.Solved) {
		idx := index.Compute(bpdb.Aux, &p)
		moves := tileset.GenerateMoves(bpdb.Aux.EqclassFromIndex(idx))

		progressed := false
		for _, mv := range moves {
			p.Move(mv.Zloc)
			p.Move(mv.Dest)

			nextH := DiffLookup(bpdb, &p, curH)
			if nextH < curH {
				curH = nextH
				progressed = true
				break
			}

			p.Move(mv.Zloc)
		}

		if !progressed {
			panic("bitpdb: no progress possible, pattern database is inconsistent")
		}
	}

	return initialH - curH
}
