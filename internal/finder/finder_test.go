package finder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OCharnyshevich/fortress-finder/pkg/fortress"
)

func newTestFinder(t *testing.T, workers int) *Finder {
	t.Helper()
	f, err := New(Options{Placement: fortress.DefaultPlacement(), Workers: workers}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestSearchKnownSeed(t *testing.T) {
	f := newTestFinder(t, 4)
	res, err := f.Search(context.Background(), Request{Seed: 12345, Radius: 5000})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if res.Cells != 576 {
		t.Errorf("cells = %d, want 576", res.Cells)
	}
	if res.Structures != 210 {
		t.Errorf("structures = %d, want 210", res.Structures)
	}
	if len(res.Failures) != 0 {
		t.Errorf("failures = %v", res.Failures)
	}
	if !res.Found() || len(res.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(res.Matches))
	}

	first := res.Matches[0]
	if first.Chunk != (fortress.ChunkPos{X: -309, Z: -144}) {
		t.Errorf("first match chunk = %v, want (-309, -144)", first.Chunk)
	}
	if first.Block != (fortress.BlockPos{X: -4944, Z: -2304}) {
		t.Errorf("first match block = %v", first.Block)
	}
	if first.PieceCount != 46 || first.CrossingCount != 5 {
		t.Errorf("first match pieces=%d crossings=%d, want 46 and 5", first.PieceCount, first.CrossingCount)
	}
	if want := (fortress.BlockPos{X: -4924, Y: 68, Z: -2284}); first.Quad.Center != want {
		t.Errorf("first match center = %v, want %v", first.Quad.Center, want)
	}
	if first.Quad.Corner().Type != fortress.StartPiece {
		t.Errorf("first match corner = %s, want StartPiece", first.Quad.Corner().Type)
	}

	second := res.Matches[1]
	if second.Chunk != (fortress.ChunkPos{X: 115, Z: -24}) {
		t.Errorf("second match chunk = %v, want (115, -24)", second.Chunk)
	}
	if second.PieceCount != 153 || second.CrossingCount != 5 {
		t.Errorf("second match pieces=%d crossings=%d, want 153 and 5", second.PieceCount, second.CrossingCount)
	}
	wantBounds := fortress.BoundingBox{MinX: 1842, MinY: 64, MinZ: -382, MaxX: 1879, MaxY: 73, MaxZ: -345}
	if second.Quad.Bounds != wantBounds {
		t.Errorf("second match bounds = %+v, want %+v", second.Quad.Bounds, wantBounds)
	}
}

func TestSearchWorkerCountDoesNotChangeResult(t *testing.T) {
	req := Request{Seed: -4242, Radius: 3000}
	serial, err := newTestFinder(t, 1).Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	parallel, err := newTestFinder(t, 8).Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if serial.Structures != 73 || parallel.Structures != 73 {
		t.Errorf("structures = %d / %d, want 73", serial.Structures, parallel.Structures)
	}
	if len(serial.Matches) != 1 || len(parallel.Matches) != 1 {
		t.Fatalf("matches = %d / %d, want 1", len(serial.Matches), len(parallel.Matches))
	}
	if serial.Matches[0].Chunk != (fortress.ChunkPos{X: -162, Z: -88}) {
		t.Errorf("match chunk = %v, want (-162, -88)", serial.Matches[0].Chunk)
	}
	if serial.Matches[0].PieceCount != 160 {
		t.Errorf("match pieces = %d, want 160", serial.Matches[0].PieceCount)
	}
	if serial.Matches[0].Quad != parallel.Matches[0].Quad {
		t.Error("serial and parallel searches disagree")
	}
}

func TestSearchRadiusFilter(t *testing.T) {
	f := newTestFinder(t, 2)
	tests := []struct {
		name       string
		req        Request
		cells      int
		structures int
		matches    int
	}{
		{"radius 2000", Request{Seed: 12345, Radius: 2000}, 100, 26, 1},
		{"anchor at center", Request{Seed: 12345, CenterX: 1840, CenterZ: -384}, 1, 1, 1},
		{"anchor inside", Request{Seed: 12345, CenterX: 1840, CenterZ: -384, Radius: 16}, 1, 1, 1},
		{"anchor one block outside", Request{Seed: 12345, CenterX: 1857, CenterZ: -384, Radius: 16}, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.Search(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if res.Cells != tt.cells || res.Structures != tt.structures || len(res.Matches) != tt.matches {
				t.Errorf("cells=%d structures=%d matches=%d, want %d/%d/%d",
					res.Cells, res.Structures, len(res.Matches), tt.cells, tt.structures, tt.matches)
			}
			if tt.matches == 0 && (res.Found() || res.Matches == nil) {
				t.Errorf("empty result should have a non-nil empty match list")
			}
		})
	}
}

func TestSearchInvalidRequest(t *testing.T) {
	f := newTestFinder(t, 1)
	for _, req := range []Request{
		{Radius: -1},
		{CenterX: 40_000_000},
		{Radius: 70_000_000},
	} {
		if _, err := f.Search(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Search(%+v) error = %v, want ErrInvalidRequest", req, err)
		}
	}
}

func TestSearchCancelled(t *testing.T) {
	f := newTestFinder(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Search(ctx, Request{Seed: 1, Radius: 5000}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Search error = %v, want context.Canceled", err)
	}
}

func TestSearchAreaLimit(t *testing.T) {
	f := newTestFinder(t, 2)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		radius int
		want   error
	}{
		{"whole world", 2 * maxCoordinate, ErrInvalidRequest},
		{"five million", 5_000_000, ErrInvalidRequest},
		{"within limit", 800_000, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Search(cancelled, Request{Seed: 1, Radius: tt.radius})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Search(radius %d) error = %v, want %v", tt.radius, err, tt.want)
			}
		})
	}

	lo, hi := f.cellRange(Request{Radius: 2 * maxCoordinate})
	if got := (hi.X - lo.X + 1) * (hi.Z - lo.Z + 1); got != 277778*277778 {
		t.Errorf("cells for the whole world = %d, want %d", got, 277778*277778)
	}
}

func TestSearchLargeAreaStopsOnDeadline(t *testing.T) {
	f := newTestFinder(t, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := f.Search(ctx, Request{Seed: 12345, Radius: 800_000})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Search error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(started); elapsed > 10*time.Second {
		t.Errorf("Search took %v to stop", elapsed)
	}
}

func TestSearchRecordsFailures(t *testing.T) {
	f := newTestFinder(t, 3)
	f.generate = func(seed int64, chunk fortress.ChunkPos) (*fortress.Structure, error) {
		if chunk == (fortress.ChunkPos{X: 115, Z: -24}) {
			panic("broken layout")
		}
		if chunk == (fortress.ChunkPos{X: -309, Z: -144}) {
			return nil, fortress.ErrInvariant
		}
		gen, err := fortress.NewGenerator(fortress.DefaultGeneratorConfig())
		if err != nil {
			return nil, err
		}
		return gen.Generate(seed, chunk)
	}

	res, err := f.Search(context.Background(), Request{Seed: 12345, Radius: 5000})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Structures != 210 {
		t.Errorf("structures = %d, want 210", res.Structures)
	}
	if len(res.Matches) != 0 {
		t.Errorf("matches = %d, want 0", len(res.Matches))
	}
	if len(res.Failures) != 2 {
		t.Fatalf("failures = %v, want 2", res.Failures)
	}
	if res.Failures[0].Chunk != (fortress.ChunkPos{X: -309, Z: -144}) ||
		res.Failures[1].Chunk != (fortress.ChunkPos{X: 115, Z: -24}) {
		t.Errorf("failures out of scan order: %v", res.Failures)
	}
}

func TestSearchSeeds(t *testing.T) {
	f := newTestFinder(t, 4)
	results, err := f.SearchSeeds(context.Background(), []int64{0, 12345}, Request{Radius: 2000})
	if err != nil {
		t.Fatalf("SearchSeeds: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Seed != 0 || results[1].Seed != 12345 {
		t.Errorf("seeds out of order: %d, %d", results[0].Seed, results[1].Seed)
	}
	if len(results[1].Matches) != 1 {
		t.Errorf("seed 12345 matches = %d, want 1", len(results[1].Matches))
	}

	if _, err := f.SearchSeeds(context.Background(), []int64{1}, Request{Radius: -5}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("SearchSeeds error = %v, want ErrInvalidRequest", err)
	}
}

func TestNewRejectsBadPlacement(t *testing.T) {
	cfg := fortress.DefaultPlacement()
	cfg.Separation = 30
	if _, err := New(Options{Placement: cfg}, nil); !errors.Is(err, fortress.ErrInvalidConfig) {
		t.Errorf("New error = %v, want ErrInvalidConfig", err)
	}
}
