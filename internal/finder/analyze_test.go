package finder

import (
	"context"
	"errors"
	"testing"

	"github.com/OCharnyshevich/fortress-finder/pkg/fortress"
)

func TestAnalyzeMatchesSearch(t *testing.T) {
	f := newTestFinder(t, 2)
	ctx := context.Background()

	res, err := f.Search(ctx, Request{Seed: 12345, Radius: 5000})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Matches) == 0 {
		t.Fatal("search found nothing")
	}

	for _, m := range res.Matches {
		a, err := f.Analyze(ctx, 12345, m.Chunk)
		if err != nil {
			t.Fatalf("Analyze(%v): %v", m.Chunk, err)
		}
		if !a.Found() {
			t.Fatalf("Analyze(%v) found no quad", m.Chunk)
		}
		got := a.Matches()
		if len(got) != 1 || got[0].Quad != m.Quad || got[0].PieceCount != m.PieceCount {
			t.Errorf("Analyze(%v) = %+v, search had %+v", m.Chunk, got, m)
		}
	}
}

func TestAnalyzeDetail(t *testing.T) {
	f := newTestFinder(t, 1)
	a, err := f.Analyze(context.Background(), 12345, fortress.ChunkPos{X: -309, Z: -144})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Placement.Region != (fortress.RegionPos{X: -12, Z: -6}) {
		t.Errorf("region = %v, want (-12, -6)", a.Placement.Region)
	}
	if len(a.Structure.Pieces) != 46 || len(a.Crossings) != 5 {
		t.Errorf("pieces=%d crossings=%d, want 46 and 5", len(a.Structure.Pieces), len(a.Crossings))
	}
	if a.TypeCounts[fortress.BridgeStraight] != 16 {
		t.Errorf("BridgeStraight count = %d, want 16", a.TypeCounts[fortress.BridgeStraight])
	}
	if len(a.Groups) != 1 || len(a.Groups[0]) != 5 {
		t.Errorf("groups = %d, want one group of 5", len(a.Groups))
	}

	res := a.Result()
	if res.Seed != 12345 || res.Cells != 1 || res.Structures != 1 || len(res.Matches) != 1 {
		t.Errorf("Result = %+v", res)
	}
	if res.Request.CenterX != -4944 || res.Request.CenterZ != -2304 || res.Request.Radius != 0 {
		t.Errorf("Result request = %+v", res.Request)
	}
}

func TestAnalyzeNoQuad(t *testing.T) {
	f := newTestFinder(t, 1)
	a, err := f.Analyze(context.Background(), 0, fortress.ChunkPos{X: 15, Z: 2})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Found() || len(a.Matches()) != 0 {
		t.Errorf("expected no quads, got %d", len(a.Quads))
	}
	if len(a.Structure.Pieces) != 129 {
		t.Errorf("pieces = %d, want 129", len(a.Structure.Pieces))
	}
}

func TestAnalyzeRejects(t *testing.T) {
	f := newTestFinder(t, 1)
	tests := []struct {
		name  string
		chunk fortress.ChunkPos
		want  error
	}{
		{"not an anchor", fortress.ChunkPos{X: 207, Z: 176}, ErrNotAnchor},
		{"bastion anchor", fortress.ChunkPos{X: 204, Z: 174}, ErrNotFortress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Analyze(context.Background(), 12345, tt.chunk)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Analyze error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Analyze error %v does not wrap ErrInvalidRequest", err)
			}
		})
	}
}
