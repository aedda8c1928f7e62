// Package catalogue groups pattern databases into admissible heuristics: a
// heuristic sums the h values of a set of pattern databases whose tilesets
// partition (most of) the puzzle, and a catalogue's own h value is the best
// of however many such heuristics it holds. Grounded on catalogue.h/.c.
package catalogue

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/herohde/puzzle24/pkg/morph"
	"github.com/herohde/puzzle24/pkg/pdb"
	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/tileset"
)

// MaxPDBs and MaxHeuristics bound the size of a catalogue, matching
// catalogue.h's CATALOGUE_PDBS_LEN/CATALOGUE_HEUS_LEN.
const (
	MaxPDBs       = 64
	MaxHeuristics = 64
)

// LoadFlags controls Load's behavior.
type LoadFlags int

// FlagIdentify requests that every loaded/generated PDB whose tileset
// includes the zero tile be folded into a zero-unaware one via pdb.Identify,
// trading search-time blank-tracking precision for storing one entry per
// map instead of one per equivalence class. Mirrors catalogue.c's
// CAT_IDENTIFY.
const FlagIdentify LoadFlags = 1 << 0

// Entry is one pattern database held by a Catalogue, together with the
// automorphism (if any) under which it must be viewed -- see
// AddTranspositions.
type Entry struct {
	PDB      *pdb.PDB
	Ts       tileset.Tileset
	Morphism int // 0 == identity
}

// Hval looks up p's distance through this entry, morphing p first if the
// entry was added by AddTranspositions rather than Load.
func (e *Entry) Hval(p *puzzle.Puzzle) int {
	if e.Morphism == 0 {
		return e.PDB.LookupPuzzle(p)
	}
	return e.PDB.LookupPuzzle(morph.Puzzle(p, e.Morphism))
}

// Catalogue is a set of pattern databases (Entries) together with the
// heuristics (Groups) built from them: Groups[i] lists the indices into
// Entries that are summed to form heuristic i.
type Catalogue struct {
	Entries []*Entry
	Groups  [][]int
}

// PartialHvals caches, for one puzzle configuration, the h value
// contributed by every entry of a catalogue. Passing the same PartialHvals
// to DiffHvals after a single move avoids recomputing entries whose
// tileset does not contain the tile that moved. Grounded on catalogue.h's
// struct partial_hvals.
type PartialHvals struct {
	Hvals []int
}

// PartialHvals computes h values for every entry against p from scratch.
// Grounded on catalogue.c's catalogue_partial_hvals.
func (cat *Catalogue) PartialHvals(p *puzzle.Puzzle) *PartialHvals {
	ph := &PartialHvals{Hvals: make([]int, len(cat.Entries))}
	for i, e := range cat.Entries {
		ph.Hvals[i] = e.Hval(p)
	}
	return ph
}

// DiffHvals updates ph in place for the configuration p reached by moving
// tile, recomputing only the entries whose tileset contains tile. Grounded
// on catalogue.c's catalogue_diff_hvals.
func (cat *Catalogue) DiffHvals(ph *PartialHvals, p *puzzle.Puzzle, tile int) {
	for i, e := range cat.Entries {
		if e.Ts.Has(tile) {
			ph.Hvals[i] = e.Hval(p)
		}
	}
}

// PHVal returns the h value of heuristic group i: the sum of its entries'
// cached partial h values. Grounded on catalogue.h's catalogue_ph_hval.
func (cat *Catalogue) PHVal(ph *PartialHvals, group int) int {
	sum := 0
	for _, idx := range cat.Groups[group] {
		sum += ph.Hvals[idx]
	}
	return sum
}

// Hval is the catalogue's own h value: the best (maximum) of its
// heuristic groups. Grounded on catalogue.h's catalogue_hval.
func (cat *Catalogue) Hval(ph *PartialHvals) int {
	best := 0
	for i := range cat.Groups {
		if v := cat.PHVal(ph, i); v > best {
			best = v
		}
	}
	return best
}

// MaxHeuristics returns the indices of every heuristic group tied for the
// catalogue's h value, as a bitmap. Grounded on catalogue.h's
// catalogue_max_heuristics.
func (cat *Catalogue) MaxHeuristics(ph *PartialHvals) uint64 {
	best := cat.Hval(ph)

	var mask uint64
	for i := range cat.Groups {
		if cat.PHVal(ph, i) == best {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// Load reads a catalogue configuration file: blank lines separate
// heuristic groups, '#'-prefixed lines are comments, every other line
// names a tileset (as accepted by tileset.Parse). Each distinct tileset is
// loaded from pdbdir if present there, else generated and, if pdbdir is
// non-empty, stored back for next time. Progress and admissibility/coverage
// warnings are written to progress if non-nil. Grounded on catalogue.c's
// catalogue_load/add_pdb.
func Load(catfile, pdbdir string, flags LoadFlags, progress io.Writer) (*Catalogue, error) {
	f, err := os.Open(catfile)
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	defer f.Close()

	cat := &Catalogue{}
	seen := map[tileset.Tileset]int{}

	var group []int
	var covered tileset.Tileset
	closeGroup := func() {
		if len(group) == 0 {
			return
		}
		if progress != nil && covered.Add(tileset.ZeroTile) != tileset.FullTileset {
			fmt.Fprintf(progress, "warning: heuristic %d does not cover every tile\n", len(cat.Groups))
		}
		cat.Groups = append(cat.Groups, group)
		group = nil
		covered = tileset.EmptyTileset
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "#"):
			continue
		case line == "":
			closeGroup()
			continue
		}

		if len(cat.Groups) >= MaxHeuristics {
			return nil, fmt.Errorf("load catalogue: too many heuristics, at most %d are supported", MaxHeuristics)
		}

		ts, err := tileset.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("load catalogue: %q: %w", line, err)
		}

		if progress != nil && !covered.Intersect(ts).Remove(tileset.ZeroTile).Empty() {
			fmt.Fprintf(progress, "warning: heuristic %d is not admissible, tile sets overlap\n", len(cat.Groups))
		}
		covered = covered.Union(ts)

		idx, err := acquireEntry(cat, seen, ts, pdbdir, flags, progress)
		if err != nil {
			return nil, err
		}
		group = append(group, idx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	closeGroup()

	if progress != nil {
		fmt.Fprintf(progress, "loaded %d pattern database(s), %d heuristic(s)\n", len(cat.Entries), len(cat.Groups))
	}
	return cat, nil
}

// acquireEntry returns the index into cat.Entries for ts, loading or
// generating (and, with pdbdir set, storing) it if this is the first time
// ts is seen. Grounded on catalogue.c's add_pdb.
func acquireEntry(cat *Catalogue, seen map[tileset.Tileset]int, ts tileset.Tileset, pdbdir string, flags LoadFlags, progress io.Writer) (int, error) {
	identify := flags&FlagIdentify != 0 && ts.Has(tileset.ZeroTile)
	key := ts.Remove(tileset.ZeroTile)

	if idx, ok := seen[key]; ok {
		return idx, nil
	}
	if len(cat.Entries) >= MaxPDBs {
		return 0, fmt.Errorf("load catalogue: too many pattern databases, at most %d are supported", MaxPDBs)
	}

	allocTs, suffix := key, "pdb"
	if identify {
		allocTs, suffix = key.Add(tileset.ZeroTile), "ipdb"
	}

	var path string
	if pdbdir != "" {
		path = filepath.Join(pdbdir, fmt.Sprintf("%s.%s", key.ListString(), suffix))
	}

	p, err := openOrGenerate(path, allocTs, identify, progress)
	if err != nil {
		return 0, err
	}

	idx := len(cat.Entries)
	cat.Entries = append(cat.Entries, &Entry{PDB: p, Ts: key})
	seen[key] = idx
	return idx, nil
}

func openOrGenerate(path string, allocTs tileset.Tileset, identify bool, progress io.Writer) (*pdb.PDB, error) {
	if path != "" {
		if f, err := os.Open(path); err == nil {
			if progress != nil {
				fmt.Fprintf(progress, "loading pattern database %s\n", path)
			}
			loadTs := allocTs
			if identify {
				loadTs = allocTs.Remove(tileset.ZeroTile)
			}
			p, err := pdb.Load(loadTs, f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("load catalogue: %s: %w", path, err)
			}
			return p, nil
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load catalogue: %s: %w", path, err)
		}
	}

	if progress != nil {
		fmt.Fprintf(progress, "generating pattern database for tileset %s\n", allocTs.ListString())
	}
	p := pdb.Allocate(allocTs)
	pdb.Generate(p, progress)
	if identify {
		if progress != nil {
			fmt.Fprintln(progress, "identifying pattern database entries")
		}
		pdb.Identify(p)
	}

	if path != "" {
		if err := storeTo(path, p); err != nil {
			if progress != nil {
				fmt.Fprintf(progress, "warning: could not store %s: %v\n", path, err)
			}
		} else if progress != nil {
			fmt.Fprintf(progress, "stored pattern database to %s\n", path)
		}
	}
	return p, nil
}

func storeTo(path string, p *pdb.PDB) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return pdb.Store(f, p)
}

// AddTranspositions extends the catalogue with, for every existing entry
// and every nontrivial automorphism of the tray, a transposed view sharing
// that entry's underlying pattern database under a morphed tileset -- so a
// caller building additional heuristic groups can look an entry up against
// whichever orientation of the board its current heuristic group actually
// needs, without generating or storing a second copy of the table. Returns
// the indices of the newly added entries; it does not add them to any
// existing or new Groups itself, since which orientations compose into
// which heuristics is a decision for the caller building those groups.
//
// catalogue_add_transpositions is declared in catalogue.h but its
// implementation is not present anywhere in the retained original sources,
// so this is grounded directly on heuristic.h's heu_morph instead: share
// the provider (here, the PDB and its lookup), and carry the composed
// automorphism and morphed tileset for bookkeeping.
func (cat *Catalogue) AddTranspositions() []int {
	base := len(cat.Entries)

	present := map[tileset.Tileset]bool{}
	for _, e := range cat.Entries[:base] {
		present[e.Ts] = true
	}

	var added []int
	for i := 0; i < base; i++ {
		e := cat.Entries[i]
		for a := 1; a < morph.Count; a++ {
			mts := morph.Tileset(e.Ts, a)
			if present[mts] {
				continue
			}
			present[mts] = true

			idx := len(cat.Entries)
			cat.Entries = append(cat.Entries, &Entry{PDB: e.PDB, Ts: mts, Morphism: a})
			added = append(added, idx)
		}
	}
	return added
}
