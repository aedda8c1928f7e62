// puzzle24gen generates a pattern database for a tileset and optionally
// writes it to a file. Grounded on cmd/genpdb.c.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"

	"github.com/herohde/puzzle24/pkg/index"
	"github.com/herohde/puzzle24/pkg/pdb"
	"github.com/herohde/puzzle24/pkg/tileset"
)

var version = build.NewVersion(0, 1, 0)

var (
	out      = flag.String("f", "", "Output file (omit to discard after generating)")
	tiles    = flag.String("t", "", "Tileset to generate over, as a comma-separated tile list (default: the built-in corner tileset)")
	jobs     = flag.Int("j", 1, "Number of worker goroutines")
	identify = flag.Bool("i", false, "Fold the generated table into a zero-unaware one before storing")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	logw.Infof(ctx, "puzzle24gen %v", version)

	ts := tileset.DefaultTileset
	if *tiles != "" {
		parsed, err := tileset.Parse(*tiles)
		if err != nil {
			logw.Exitf(ctx, "Cannot parse tile set %q: %v", *tiles, err)
		}
		ts = parsed
	}

	if n := ts.Remove(tileset.ZeroTile).Count(); n > index.MaxTiles {
		logw.Exitf(ctx, "%d tiles is too many, up to %d non-zero tiles are allowed", n, index.MaxTiles)
	}

	if *jobs < 1 || *jobs > pdb.MaxJobs {
		logw.Exitf(ctx, "Number of jobs must be between 1 and %d", pdb.MaxJobs)
	}
	pdb.Jobs = *jobs

	p := pdb.Allocate(ts)
	logw.Infof(ctx, "Generating pattern database for tileset %s", ts.ListString())
	pdb.Generate(p, os.Stderr)

	if *identify {
		logw.Infof(ctx, "Identifying pattern database entries")
		pdb.Identify(p)
	}

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logw.Exitf(ctx, "Create %s: %v", *out, err)
		}
		defer f.Close()

		if err := pdb.Store(f, p); err != nil {
			logw.Exitf(ctx, "Store %s: %v", *out, err)
		}
		logw.Infof(ctx, "Stored pattern database to %s", *out)
	}
}
