// puzzle24solve reads 24-puzzle instances on stdin, one per line, and
// searches for a solution using a catalogue of pattern databases and an
// optional move-pruning finite state machine. Grounded on
// cmd/pdbsearch.c.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"

	"github.com/herohde/puzzle24/pkg/catalogue"
	"github.com/herohde/puzzle24/pkg/fsm"
	"github.com/herohde/puzzle24/pkg/pdb"
	"github.com/herohde/puzzle24/pkg/puzzle"
	"github.com/herohde/puzzle24/pkg/search"
)

var version = build.NewVersion(0, 1, 0)

var (
	pdbdir   = flag.String("d", "", "Directory to load/store pattern databases in")
	identify = flag.Bool("i", false, "Fold loaded/generated pattern databases into zero-unaware ones")
	jobs     = flag.Int("j", 1, "Number of worker goroutines used while generating pattern databases")
	fsmfile  = flag.String("m", "", "Finite state machine file to prune move sequences with (default: no pruning)")
	lastFull = flag.Bool("full", false, "Finish each bound in full instead of stopping at the first solution")
	verify   = flag.Bool("verify", false, "Verify every found path reaches the solved configuration")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	logw.Infof(ctx, "puzzle24solve %v", version)

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [options] catalogue\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *jobs < 1 || *jobs > pdb.MaxJobs {
		logw.Exitf(ctx, "Number of jobs must be between 1 and %d", pdb.MaxJobs)
	}
	pdb.Jobs = *jobs

	var catflags catalogue.LoadFlags
	if *identify {
		catflags |= catalogue.FlagIdentify
	}

	cat, err := catalogue.Load(flag.Arg(0), *pdbdir, catflags, os.Stderr)
	if err != nil {
		logw.Exitf(ctx, "Load catalogue: %v", err)
	}

	mach := fsm.Dummy()
	if *fsmfile != "" {
		f, err := os.Open(*fsmfile)
		if err != nil {
			logw.Exitf(ctx, "Open %s: %v", *fsmfile, err)
		}
		loaded, err := fsm.Load(f)
		f.Close()
		if err != nil {
			logw.Exitf(ctx, "Load %s: %v", *fsmfile, err)
		}
		mach = loaded
	}

	var flags search.Flags
	if *lastFull {
		flags |= search.LastFull
	}
	if *verify {
		flags |= search.Verify
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("Enter instance to solve:")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logw.Exitf(ctx, "Read stdin: %v", err)
			}
			return
		}

		p, err := puzzle.Parse(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid puzzle: %v\n", err)
			continue
		}

		if p.Parity() != 0 {
			fmt.Println("Puzzle unsolvable.")
			continue
		}

		logw.Infof(ctx, "Solving puzzle...")
		_, path, found := search.Unbounded(cat, mach, &p, os.Stderr, flags)
		if !found {
			fmt.Println("No solution found within the search limit.")
			continue
		}
		fmt.Printf("Solution found: %s\n", path.String())
	}
}
