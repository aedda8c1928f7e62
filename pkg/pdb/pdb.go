// Package pdb implements pattern databases: byte tables, indexed by
// pkg/index, recording the exact distance from a partial 24-puzzle
// configuration to the solved configuration, used as an admissible search
// heuristic.
package pdb

import (
	"encoding/binary"
	"fmt"
	"io"

	"go.uber.org/atomic"
	"golang.org/x/exp/mmap"

	"github.com/herohde/puzzle24/pkg/index"
	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// Unreached marks an entry whose distance has not yet been computed.
const Unreached = 0xff

// HistogramLen bounds the number of distinct distances a pattern database
// can report in a histogram; 0..254 plus Unreached comfortably fits.
const HistogramLen = 256

// MaxJobs bounds Jobs, matching pdb.h's PDB_MAX_JOBS.
const MaxJobs = 256

// Jobs is the number of goroutines used for the parallel PDB operations in
// this package (Generate, Verify, Histogram, Diffcode). It is a
// package variable, set once during program start-up, mirroring pdb_jobs
// in the original: the value rarely changes during a run, so threading it
// through every call is not worth the ceremony.
var Jobs = 1

// PDB is a pattern database for the partial configurations described by
// Aux: one entry per (map rank, equivalence class, permutation index)
// triple, organized in that nesting order.
type PDB struct {
	Aux    *index.Aux
	Mapped bool

	data *store
}

// Allocate reserves storage for a pattern database over ts. Entries are
// undefined until Clear or Generate is called.
func Allocate(ts tileset.Tileset) *PDB {
	aux := index.NewAux(ts)
	return &PDB{Aux: aux, data: newStore(int(aux.SearchSpaceSize()))}
}

// Clear sets every entry to Unreached.
func (pdb *PDB) Clear() {
	pdb.data.Fill(Unreached)
}

// Load reads a pattern database for ts from r, which must be positioned at
// the start of the table and contain exactly SearchSpaceSize bytes.
func Load(ts tileset.Tileset, r io.Reader) (*PDB, error) {
	pdb := Allocate(ts)
	if err := pdb.data.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("load pdb: %w", err)
	}
	return pdb, nil
}

// Store writes pdb's table to w.
func Store(w io.Writer, pdb *PDB) error {
	if err := pdb.data.WriteTo(w); err != nil {
		return fmt.Errorf("store pdb: %w", err)
	}
	return nil
}

// MapFile memory-maps path read-only, copies the mapped bytes into the
// PDB's heap store, and keeps the mapping open until Close. Unlike the
// original's pdb_mmap, only a read-only mapping is supported: the
// mmap package this engine uses (golang.org/x/exp/mmap) exposes no
// writable mapping, and every writable use case (generation) already
// works entirely in heap memory and calls Store when done.
func MapFile(ts tileset.Tileset, path string) (*PDB, error) {
	aux := index.NewAux(ts)

	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap pdb: %w", err)
	}

	size := int(aux.SearchSpaceSize())
	if int64(size) != r.Len() {
		r.Close()
		return nil, fmt.Errorf("mmap pdb: file has %d bytes, want %d", r.Len(), size)
	}

	data, err := newMappedStore(r, size)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("mmap pdb: %w", err)
	}

	return &PDB{Aux: aux, Mapped: true, data: data}, nil
}

// Close releases the mapping backing a PDB opened with MapFile; it is a
// no-op for PDBs not backed by a mapping.
func (pdb *PDB) Close() error {
	return pdb.data.Close()
}

// Lookup returns the distance recorded for idx.
func (pdb *PDB) Lookup(idx index.Index) int {
	return int(pdb.data.Get(int(pdb.Aux.Offset(idx))))
}

// LookupPuzzle is a convenience wrapper computing idx for p first.
func (pdb *PDB) LookupPuzzle(p *puzzle.Puzzle) int {
	return pdb.Lookup(index.Compute(pdb.Aux, p))
}

// Update unconditionally sets the entry for idx to dist, with relaxed
// memory ordering -- a lost update race with another round-local writer
// is harmless since every racing writer computes the same round number
// for idx within one round of Generate.
func (pdb *PDB) Update(idx index.Index, dist int) {
	pdb.data.Set(int(pdb.Aux.Offset(idx)), byte(dist))
}

// ConditionalUpdate sets the entry for idx to desired only if it is
// currently Unreached.
func (pdb *PDB) ConditionalUpdate(idx index.Index, desired int) {
	pdb.data.SetIfUnreached(int(pdb.Aux.Offset(idx)), byte(desired))
}

// store is the byte-addressable backing array for a PDB. Go has no atomic
// byte type, so entries are packed four to a uint32 word and updated with
// a compare-and-swap retry loop: load the word, replace the entry's byte,
// and store the word by CAS, retrying if another writer changed it in the
// meantime.
type store struct {
	words []atomic.Uint32
	n     int

	mapped *mmap.ReaderAt // non-nil if this store is backed by a read-only mapping
}

func newStore(n int) *store {
	return &store{words: make([]atomic.Uint32, (n+3)/4), n: n}
}

func newMappedStore(r *mmap.ReaderAt, n int) (*store, error) {
	s := &store{words: make([]atomic.Uint32, (n+3)/4), n: n, mapped: r}

	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}
	packBytes(s.words, buf)
	return s, nil
}

func (s *store) Close() error {
	if s.mapped == nil {
		return nil
	}
	return s.mapped.Close()
}

func (s *store) Get(i int) byte {
	w := s.words[i/4].Load()
	return byte(w >> uint((i%4)*8))
}

func (s *store) Set(i int, v byte) {
	idx, shift := i/4, uint((i%4)*8)
	mask := uint32(0xff) << shift
	for {
		old := s.words[idx].Load()
		next := (old &^ mask) | uint32(v)<<shift
		if s.words[idx].CompareAndSwap(old, next) {
			return
		}
	}
}

func (s *store) SetIfUnreached(i int, v byte) {
	idx, shift := i/4, uint((i%4)*8)
	mask := uint32(0xff) << shift
	for {
		old := s.words[idx].Load()
		if byte(old>>shift) != Unreached {
			return
		}
		next := (old &^ mask) | uint32(v)<<shift
		if s.words[idx].CompareAndSwap(old, next) {
			return
		}
	}
}

func (s *store) Fill(v byte) {
	word := uint32(v) | uint32(v)<<8 | uint32(v)<<16 | uint32(v)<<24
	for i := range s.words {
		s.words[i].Store(word)
	}
}

func (s *store) ReadFrom(r io.Reader) error {
	buf := make([]byte, s.n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	packBytes(s.words, buf)
	return nil
}

func (s *store) WriteTo(w io.Writer) error {
	buf := make([]byte, s.n)
	for i := 0; i < s.n; i++ {
		buf[i] = s.Get(i)
	}
	_, err := w.Write(buf)
	return err
}

// packBytes loads buf (length <= 4*len(words)) into words, four bytes per
// word, little-endian, zero-padding any partial final word.
func packBytes(words []atomic.Uint32, buf []byte) {
	var tmp [4]byte
	for i := range words {
		lo, hi := i*4, i*4+4
		if hi > len(buf) {
			hi = len(buf)
		}
		tmp = [4]byte{}
		copy(tmp[:], buf[lo:hi])
		words[i].Store(binary.LittleEndian.Uint32(tmp[:]))
	}
}
