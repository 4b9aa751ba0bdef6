// Package finder scans a world seed for nether fortresses containing a 2x2
// group of bridge crossings.
package finder

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/fortress-finder/pkg/fortress"
)

const (
	// maxCoordinate is the world border distance in blocks.
	maxCoordinate = 30_000_000

	// MaxCells bounds the placement cells one Search may scan. With the
	// default placement it admits radii up to about 880,000 blocks.
	MaxCells = 1 << 24
)

var (
	// ErrInvalidRequest is returned for requests rejected before scanning.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotAnchor is returned by Analyze for a chunk that is not the anchor
	// of its placement cell.
	ErrNotAnchor = fmt.Errorf("%w: chunk is not a structure anchor", ErrInvalidRequest)

	// ErrNotFortress is returned by Analyze when the anchor is claimed by
	// another structure kind.
	ErrNotFortress = fmt.Errorf("%w: anchor does not hold a fortress", ErrInvalidRequest)
)

// Options configures a Finder.
type Options struct {
	Placement fortress.PlacementConfig
	// Workers bounds the number of cells processed concurrently. Zero uses
	// GOMAXPROCS.
	Workers int
}

// Request describes one square search area in block coordinates.
type Request struct {
	Seed    int64 `json:"seed"`
	CenterX int   `json:"center_x"`
	CenterZ int   `json:"center_z"`
	Radius  int   `json:"radius"`
}

// Validate rejects negative radii and areas past the world border.
func (r Request) Validate() error {
	if r.Radius < 0 {
		return fmt.Errorf("%w: radius %d is negative", ErrInvalidRequest, r.Radius)
	}
	if r.Radius > 2*maxCoordinate {
		return fmt.Errorf("%w: radius %d is larger than the world", ErrInvalidRequest, r.Radius)
	}
	if abs(r.CenterX) > maxCoordinate || abs(r.CenterZ) > maxCoordinate {
		return fmt.Errorf("%w: center (%d, %d) is outside the world border", ErrInvalidRequest, r.CenterX, r.CenterZ)
	}
	return nil
}

// contains reports whether a block lies within the search square.
func (r Request) contains(b fortress.BlockPos) bool {
	return abs(b.X-r.CenterX) <= r.Radius && abs(b.Z-r.CenterZ) <= r.Radius
}

// Match is one quad crossing found during a search.
type Match struct {
	Chunk         fortress.ChunkPos `json:"chunk"`
	Block         fortress.BlockPos `json:"block"`
	PieceCount    int               `json:"piece_count"`
	CrossingCount int               `json:"crossing_count"`
	Quad          fortress.Quad     `json:"quad"`
}

// Failure records a structure abandoned because its layout broke an
// internal invariant.
type Failure struct {
	Chunk fortress.ChunkPos `json:"chunk"`
	Error string            `json:"error"`
}

// Result is the outcome of one Search.
type Result struct {
	Seed       int64         `json:"seed"`
	Request    Request       `json:"request"`
	Cells      int           `json:"cells"`
	Structures int           `json:"structures"`
	Matches    []Match       `json:"matches"`
	Failures   []Failure     `json:"failures,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Found reports whether the search produced at least one match.
func (r *Result) Found() bool {
	return len(r.Matches) > 0
}

// Finder runs searches. It is safe for concurrent use.
type Finder struct {
	locator  *fortress.Locator
	generate func(seed int64, chunk fortress.ChunkPos) (*fortress.Structure, error)
	workers  int
	log      *slog.Logger
}

// New creates a Finder from opts.
func New(opts Options, log *slog.Logger) (*Finder, error) {
	locator, err := fortress.NewLocator(opts.Placement)
	if err != nil {
		return nil, fmt.Errorf("placement: %w", err)
	}
	gen, err := fortress.NewGenerator(fortress.DefaultGeneratorConfig())
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Finder{
		locator:  locator,
		generate: gen.Generate,
		workers:  workers,
		log:      log,
	}, nil
}

// cellOutcome is what one grid cell contributed to a search. Only cells
// holding a match or a failure are kept.
type cellOutcome struct {
	index    int
	fortress bool
	matches  []Match
	failure  *Failure
}

// Search scans every placement cell overlapping the request square. Cells
// are processed concurrently but reported in scan order: region X outer,
// region Z inner. Cancellation is observed between cells.
func (f *Finder) Search(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lo, hi := f.cellRange(req)
	cells := (hi.X - lo.X + 1) * (hi.Z - lo.Z + 1)
	if cells > MaxCells {
		return nil, fmt.Errorf("%w: radius %d spans %d placement cells, limit is %d",
			ErrInvalidRequest, req.Radius, cells, MaxCells)
	}

	started := time.Now()
	f.log.Debug("search started", "seed", req.Seed, "centerX", req.CenterX, "centerZ", req.CenterZ,
		"radius", req.Radius, "cells", cells, "workers", f.workers)

	var (
		mu         sync.Mutex
		structures int
		kept       []cellOutcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	i := 0
scan:
	for x := lo.X; x <= hi.X; x++ {
		for z := lo.Z; z <= hi.Z; z++ {
			if gctx.Err() != nil {
				break scan
			}
			index, cell := i, fortress.RegionPos{X: x, Z: z}
			i++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				o := f.scanCell(req, cell)
				if !o.fortress {
					return nil
				}
				mu.Lock()
				defer mu.Unlock()
				structures++
				if len(o.matches) > 0 || o.failure != nil {
					o.index = index
					kept = append(kept, o)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search seed %d: %w", req.Seed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search seed %d: %w", req.Seed, err)
	}

	slices.SortFunc(kept, func(a, b cellOutcome) int { return cmp.Compare(a.index, b.index) })
	res := &Result{Seed: req.Seed, Request: req, Cells: cells, Structures: structures, Matches: []Match{}}
	for _, o := range kept {
		res.Matches = append(res.Matches, o.matches...)
		if o.failure != nil {
			f.log.Warn("structure abandoned", "seed", req.Seed,
				"chunkX", o.failure.Chunk.X, "chunkZ", o.failure.Chunk.Z, "error", o.failure.Error)
			res.Failures = append(res.Failures, *o.failure)
		}
	}
	res.Elapsed = time.Since(started)

	f.log.Info("search finished", "seed", req.Seed, "cells", res.Cells, "structures", res.Structures,
		"matches", len(res.Matches), "failures", len(res.Failures), "elapsed", res.Elapsed)
	return res, nil
}

// SearchSeeds runs the area of tmpl against every seed in order. tmpl.Seed is
// ignored.
func (f *Finder) SearchSeeds(ctx context.Context, seeds []int64, tmpl Request) ([]*Result, error) {
	out := make([]*Result, 0, len(seeds))
	for _, seed := range seeds {
		req := tmpl
		req.Seed = seed
		res, err := f.Search(ctx, req)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// cellRange returns the inclusive range of placement cells overlapping the
// request square.
func (f *Finder) cellRange(req Request) (lo, hi fortress.RegionPos) {
	clo := fortress.ChunkOf(req.CenterX-req.Radius, req.CenterZ-req.Radius)
	chi := fortress.ChunkOf(req.CenterX+req.Radius, req.CenterZ+req.Radius)
	return f.locator.RegionsCovering(clo, chi)
}

func (f *Finder) scanCell(req Request, cell fortress.RegionPos) (out cellOutcome) {
	p, ok := f.locator.LocateFortress(req.Seed, cell)
	if !ok || !req.contains(p.Chunk.Block()) {
		return out
	}
	out.fortress = true

	defer func() {
		if r := recover(); r != nil {
			out.matches = nil
			out.failure = &Failure{Chunk: p.Chunk, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	s, err := f.generate(req.Seed, p.Chunk)
	if err != nil {
		out.failure = &Failure{Chunk: p.Chunk, Error: err.Error()}
		return out
	}
	quads := fortress.FindQuads(s)
	f.log.Debug("fortress generated", "seed", req.Seed, "chunkX", p.Chunk.X, "chunkZ", p.Chunk.Z,
		"pieces", len(s.Pieces), "quads", len(quads))

	crossings := len(s.Crossings())
	for _, q := range quads {
		out.matches = append(out.matches, Match{
			Chunk:         p.Chunk,
			Block:         p.Chunk.Block(),
			PieceCount:    len(s.Pieces),
			CrossingCount: crossings,
			Quad:          q,
		})
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
