package fortress

import (
	"errors"
	"testing"
)

func newTestLocator(t *testing.T) *Locator {
	t.Helper()
	l, err := NewLocator(DefaultPlacement())
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}
	return l
}

func TestLocate(t *testing.T) {
	l := newTestLocator(t)

	tests := []struct {
		seed   int64
		region RegionPos
		chunk  ChunkPos
		kind   Kind
	}{
		{12345, RegionPos{-12, -6}, ChunkPos{-309, -144}, KindFortress},
		{12345, RegionPos{7, 6}, ChunkPos{204, 174}, KindBastion},
		{12345, RegionPos{0, 0}, ChunkPos{12, 20}, KindBastion},
		{12345, RegionPos{-1, -1}, ChunkPos{-17, -8}, KindBastion},
		{12345, RegionPos{2, 0}, ChunkPos{73, 1}, KindFortress},
		{0, RegionPos{0, 0}, ChunkPos{15, 2}, KindFortress},
		{0, RegionPos{-2, -2}, ChunkPos{-32, -45}, KindFortress},
		{0, RegionPos{1, 1}, ChunkPos{31, 38}, KindBastion},
	}

	for _, tt := range tests {
		got := l.Locate(tt.seed, tt.region)
		if got.Chunk != tt.chunk || got.Kind != tt.kind || got.Region != tt.region {
			t.Errorf("Locate(%d, %v) = %+v, want chunk %v kind %s", tt.seed, tt.region, got, tt.chunk, tt.kind)
		}
	}
}

func TestLocateIdempotent(t *testing.T) {
	l := newTestLocator(t)
	for _, seed := range []int64{0, 1, -1, 12345, 1 << 62} {
		for rx := -3; rx <= 3; rx++ {
			for rz := -3; rz <= 3; rz++ {
				r := RegionPos{rx, rz}
				a, b := l.Locate(seed, r), l.Locate(seed, r)
				if a != b {
					t.Fatalf("seed %d region %v: %+v != %+v", seed, r, a, b)
				}
			}
		}
	}
}

func TestLocateStaysInsideCell(t *testing.T) {
	l := newTestLocator(t)
	cfg := l.Config()
	for rx := -20; rx <= 20; rx++ {
		for rz := -20; rz <= 20; rz++ {
			p := l.Locate(987654321, RegionPos{rx, rz})
			offX := p.Chunk.X - rx*cfg.Spacing
			offZ := p.Chunk.Z - rz*cfg.Spacing
			limit := cfg.Spacing - cfg.Separation
			if offX < 0 || offX >= limit || offZ < 0 || offZ >= limit {
				t.Fatalf("region (%d,%d) anchor %v outside cell", rx, rz, p.Chunk)
			}
			if l.RegionOf(p.Chunk) != p.Region {
				t.Fatalf("RegionOf(%v) = %v, want %v", p.Chunk, l.RegionOf(p.Chunk), p.Region)
			}
		}
	}
}

func TestRegionOf(t *testing.T) {
	l := newTestLocator(t)
	tests := []struct {
		chunk ChunkPos
		want  RegionPos
	}{
		{ChunkPos{0, 0}, RegionPos{0, 0}},
		{ChunkPos{26, 27}, RegionPos{0, 1}},
		{ChunkPos{-1, -27}, RegionPos{-1, -1}},
		{ChunkPos{-28, -309}, RegionPos{-2, -12}},
	}
	for _, tt := range tests {
		if got := l.RegionOf(tt.chunk); got != tt.want {
			t.Errorf("RegionOf(%v) = %v, want %v", tt.chunk, got, tt.want)
		}
	}
}

func TestIsAnchor(t *testing.T) {
	l := newTestLocator(t)

	p, ok := l.IsAnchor(12345, ChunkPos{-309, -144})
	if !ok || p.Kind != KindFortress {
		t.Errorf("IsAnchor(-309,-144) = %+v, %v; want fortress anchor", p, ok)
	}

	p, ok = l.IsAnchor(12345, ChunkPos{207, 176})
	if ok {
		t.Errorf("IsAnchor(207,176) = true, want false")
	}
	if p.Chunk != (ChunkPos{204, 174}) {
		t.Errorf("cell anchor = %v, want (204, 174)", p.Chunk)
	}
}

func TestPlacementValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PlacementConfig)
	}{
		{"zero spacing", func(c *PlacementConfig) { c.Spacing = 0 }},
		{"separation too large", func(c *PlacementConfig) { c.Separation = c.Spacing }},
		{"negative separation", func(c *PlacementConfig) { c.Separation = -1 }},
		{"no kinds", func(c *PlacementConfig) { c.Kinds = nil }},
		{"zero weight", func(c *PlacementConfig) { c.Kinds[0].Weight = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPlacement()
			tt.mutate(&cfg)
			if _, err := NewLocator(cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewLocator error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if err := DefaultPlacement().Validate(); err != nil {
		t.Errorf("default placement invalid: %v", err)
	}
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{KindFortress, KindBastion} {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", k, err)
		}
		var got Kind
		if err := got.UnmarshalText(b); err != nil || got != k {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", b, got, err, k)
		}
	}
}
