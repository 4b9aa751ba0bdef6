package finder

import (
	"context"
	"fmt"

	"github.com/OCharnyshevich/fortress-finder/pkg/fortress"
)

// Analysis is the full detail of a single fortress.
type Analysis struct {
	Placement  fortress.Placement         `json:"placement"`
	Structure  *fortress.Structure        `json:"structure"`
	TypeCounts map[fortress.PieceType]int `json:"type_counts"`
	Crossings  []fortress.Piece           `json:"crossings"`
	Quads      []fortress.Quad            `json:"quads"`
	Groups     [][]fortress.Piece         `json:"groups"`
}

// Found reports whether the fortress contains a quad crossing.
func (a *Analysis) Found() bool {
	return len(a.Quads) > 0
}

// Matches converts the analysis quads to search matches.
func (a *Analysis) Matches() []Match {
	out := make([]Match, 0, len(a.Quads))
	for _, q := range a.Quads {
		out = append(out, Match{
			Chunk:         a.Placement.Chunk,
			Block:         a.Placement.Chunk.Block(),
			PieceCount:    len(a.Structure.Pieces),
			CrossingCount: len(a.Crossings),
			Quad:          q,
		})
	}
	return out
}

// Result wraps the analysis as a one-cell search centred on the anchor.
func (a *Analysis) Result() *Result {
	b := a.Placement.Chunk.Block()
	seed := a.Structure.WorldSeed
	return &Result{
		Seed:       seed,
		Request:    Request{Seed: seed, CenterX: b.X, CenterZ: b.Z},
		Cells:      1,
		Structures: 1,
		Matches:    a.Matches(),
	}
}

// Analyze rebuilds the fortress anchored at chunk. The chunk must be the
// anchor of its placement cell and the cell must hold a fortress.
func (f *Finder) Analyze(ctx context.Context, seed int64, chunk fortress.ChunkPos) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := f.locator.IsAnchor(seed, chunk)
	if !ok {
		return nil, fmt.Errorf("analyze chunk %s: %w (cell anchor is %s)", chunk, ErrNotAnchor, p.Chunk)
	}
	if p.Kind != fortress.KindFortress {
		return nil, fmt.Errorf("analyze chunk %s: %w (found %s)", chunk, ErrNotFortress, p.Kind)
	}

	s, err := f.generate(seed, chunk)
	if err != nil {
		return nil, fmt.Errorf("analyze chunk %s: %w", chunk, err)
	}
	a := &Analysis{
		Placement:  p,
		Structure:  s,
		TypeCounts: s.TypeCounts(),
		Crossings:  s.Crossings(),
		Quads:      fortress.FindQuads(s),
		Groups:     fortress.ConnectedGroups(s.Pieces),
	}
	f.log.Info("fortress analyzed", "seed", seed, "chunkX", chunk.X, "chunkZ", chunk.Z,
		"pieces", len(s.Pieces), "crossings", len(a.Crossings), "quads", len(a.Quads))
	return a, nil
}
