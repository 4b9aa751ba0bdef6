package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/OCharnyshevich/fortress-finder/internal/finder"
	"github.com/OCharnyshevich/fortress-finder/internal/storage"
	"github.com/OCharnyshevich/fortress-finder/pkg/fortress"
)

var rule = strings.Repeat("=", 60)

func printResult(w io.Writer, res *finder.Result) {
	req := res.Request
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Seed %d: center (%d, %d), radius %d blocks\n", res.Seed, req.CenterX, req.CenterZ, req.Radius)
	fmt.Fprintf(w, "Scanned %d cells, %d fortresses\n", res.Cells, res.Structures)
	fmt.Fprintln(w, rule)

	for _, f := range res.Failures {
		fmt.Fprintf(w, "warning: fortress at chunk %s skipped: %s\n", f.Chunk, f.Error)
	}
	if !res.Found() {
		fmt.Fprintln(w, "No quad crossings found.")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "Found %d quad crossing(s)\n", len(res.Matches))
	for i, m := range res.Matches {
		fmt.Fprintf(w, "\n--- Quad crossing #%d ---\n", i+1)
		fmt.Fprintf(w, "Fortress chunk: %s\n", m.Chunk)
		fmt.Fprintf(w, "Fortress block: (%d, %d)\n", m.Block.X, m.Block.Z)
		fmt.Fprintf(w, "Pieces: %d, crossings: %d\n", m.PieceCount, m.CrossingCount)
		printQuad(w, m.Quad)
	}
	fmt.Fprintln(w)
}

func printQuad(w io.Writer, q fortress.Quad) {
	b := q.Bounds
	fmt.Fprintf(w, "  Center: X=%d Y=%d Z=%d\n", q.Center.X, q.Center.Y, q.Center.Z)
	fmt.Fprintf(w, "  Range: (%d, %d) -> (%d, %d)\n", b.MinX, b.MinZ, b.MaxX, b.MaxZ)
	for j, m := range q.Members {
		c := m.Center()
		fmt.Fprintf(w, "    %d. X=%d Y=%d Z=%d (%s)\n", j+1, c.X, c.Y, c.Z, m.Type)
	}
}

func printSummary(w io.Writer, results []*finder.Result) {
	found := 0
	for _, res := range results {
		if res.Found() {
			found++
		}
	}
	fmt.Fprintf(w, "%d of %d seeds have a quad crossing\n", found, len(results))
}

func printAnalysis(w io.Writer, a *finder.Analysis) {
	s := a.Structure
	fmt.Fprintf(w, "Fortress at chunk %s, seed %d (cell %d, %d)\n",
		s.Chunk, s.WorldSeed, a.Placement.Region.X, a.Placement.Region.Z)
	fmt.Fprintln(w, strings.Repeat("-", 50))

	types := make([]fortress.PieceType, 0, len(a.TypeCounts))
	for t := range a.TypeCounts {
		types = append(types, t)
	}
	slices.Sort(types)
	fmt.Fprintf(w, "Pieces (%d):\n", len(s.Pieces))
	for _, t := range types {
		fmt.Fprintf(w, "  %-30s %d\n", t, a.TypeCounts[t])
	}
	if s.Truncated {
		fmt.Fprintln(w, "  (layout stopped at the piece limit)")
	}

	fmt.Fprintf(w, "\nCrossings (%d):\n", len(a.Crossings))
	for i, c := range a.Crossings {
		p := c.Center()
		fmt.Fprintf(w, "  %d. X=%d Y=%d Z=%d facing %s, depth %d\n", i+1, p.X, p.Y, p.Z, c.Facing, c.Depth)
	}

	if a.Found() {
		fmt.Fprintf(w, "\nFound %d quad crossing(s)\n", len(a.Quads))
		for _, q := range a.Quads {
			printQuad(w, q)
		}
	} else {
		fmt.Fprintln(w, "\nNo quad crossings found.")
	}

	if len(a.Groups) > 0 {
		fmt.Fprintf(w, "\nConnected crossing groups: %d\n", len(a.Groups))
		for i, g := range a.Groups {
			fmt.Fprintf(w, "  Group %d: %d crossings\n", i+1, len(g))
		}
	}
}

func printExport(w io.Writer, recs []storage.ExportRecord) {
	fmt.Fprintf(w, "%d exported match(es)\n", len(recs))
	for _, r := range recs {
		c := r.Quad.Center
		fmt.Fprintf(w, "  run %s seed %d chunk %s: X=%d Y=%d Z=%d\n", r.RunID, r.Seed, r.Chunk, c.X, c.Y, c.Z)
	}
}

// printIndexHistory summarises what the index holds for seed across all
// recorded runs. Quads seen by several runs are listed once.
func printIndexHistory(w io.Writer, seed int64, runs []storage.Run, matches []storage.IndexedMatch) {
	type key struct {
		chunk  fortress.ChunkPos
		center fortress.BlockPos
	}
	seen := make(map[key]bool)
	var distinct []storage.IndexedMatch
	for _, m := range matches {
		k := key{m.Chunk, m.Center}
		if seen[k] {
			continue
		}
		seen[k] = true
		distinct = append(distinct, m)
	}

	fmt.Fprintf(w, "Index: seed %d has %d run(s), %d distinct quad crossing(s)\n", seed, len(runs), len(distinct))
	for _, m := range distinct {
		fmt.Fprintf(w, "  chunk %s: X=%d Y=%d Z=%d\n", m.Chunk, m.Center.X, m.Center.Y, m.Center.Z)
	}
}
