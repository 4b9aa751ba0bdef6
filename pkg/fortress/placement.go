package fortress

import (
	"fmt"

	"github.com/OCharnyshevich/fortress-finder/pkg/rng"
)

// Kind is a structure competing for a slot of the nether placement grid.
type Kind uint8

const (
	KindFortress Kind = iota + 1
	KindBastion
)

func (k Kind) String() string {
	switch k {
	case KindFortress:
		return "fortress"
	case KindBastion:
		return "bastion"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "fortress":
		*k = KindFortress
	case "bastion":
		*k = KindBastion
	default:
		return fmt.Errorf("unknown structure kind %q", b)
	}
	return nil
}

// WeightedKind is one entry of the structure set sharing the grid.
type WeightedKind struct {
	Kind   Kind `json:"kind" yaml:"kind"`
	Weight int  `json:"weight" yaml:"weight"`
}

// PlacementConfig describes a random-spread placement grid.
type PlacementConfig struct {
	Spacing    int            `json:"spacing" yaml:"spacing"`
	Separation int            `json:"separation" yaml:"separation"`
	Salt       int32          `json:"salt" yaml:"salt"`
	Kinds      []WeightedKind `json:"kinds" yaml:"kinds"`
}

// DefaultPlacement returns the nether complex grid: fortresses and bastions
// sharing 27-chunk cells.
func DefaultPlacement() PlacementConfig {
	return PlacementConfig{
		Spacing:    27,
		Separation: 4,
		Salt:       30084232,
		Kinds: []WeightedKind{
			{Kind: KindFortress, Weight: 2},
			{Kind: KindBastion, Weight: 3},
		},
	}
}

// Validate checks that the grid can place an anchor in every cell.
func (c PlacementConfig) Validate() error {
	if c.Spacing <= 0 {
		return fmt.Errorf("%w: spacing %d must be positive", ErrInvalidConfig, c.Spacing)
	}
	if c.Separation < 0 || c.Separation >= c.Spacing {
		return fmt.Errorf("%w: separation %d must be in [0, %d)", ErrInvalidConfig, c.Separation, c.Spacing)
	}
	if len(c.Kinds) == 0 {
		return fmt.Errorf("%w: no structure kinds", ErrInvalidConfig)
	}
	for _, k := range c.Kinds {
		if k.Weight <= 0 {
			return fmt.Errorf("%w: %s weight %d must be positive", ErrInvalidConfig, k.Kind, k.Weight)
		}
	}
	return nil
}

// Placement is the outcome of one grid cell: the anchor chunk and the kind
// that claimed it.
type Placement struct {
	Region RegionPos `json:"region"`
	Chunk  ChunkPos  `json:"chunk"`
	Kind   Kind      `json:"kind"`
}

// Locator resolves grid cells to structure anchors. It holds no mutable
// state and is safe for concurrent use.
type Locator struct {
	cfg   PlacementConfig
	total int
}

// NewLocator validates cfg and returns a Locator for it.
func NewLocator(cfg PlacementConfig) (*Locator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	total := 0
	for _, k := range cfg.Kinds {
		total += k.Weight
	}
	cfg.Kinds = append([]WeightedKind(nil), cfg.Kinds...)
	return &Locator{cfg: cfg, total: total}, nil
}

// Config returns the placement settings in use.
func (l *Locator) Config() PlacementConfig {
	return l.cfg
}

// Locate computes the anchor of region and the structure kind occupying it.
func (l *Locator) Locate(worldSeed int64, region RegionPos) Placement {
	r := rng.New(0)
	r.SetLargeFeatureWithSalt(worldSeed, region.X, region.Z, l.cfg.Salt)
	spread := int32(l.cfg.Spacing - l.cfg.Separation)
	offX := int(r.NextIntn(spread))
	offZ := int(r.NextIntn(spread))

	chunk := ChunkPos{
		X: region.X*l.cfg.Spacing + offX,
		Z: region.Z*l.cfg.Spacing + offZ,
	}
	return Placement{Region: region, Chunk: chunk, Kind: l.selectKind(worldSeed, chunk)}
}

// selectKind walks the weighted kinds in registration order with one draw
// from the anchor chunk's seed.
func (l *Locator) selectKind(worldSeed int64, chunk ChunkPos) Kind {
	r := rng.New(0)
	r.SetLargeFeatureSeed(worldSeed, chunk.X, chunk.Z)
	k := int(r.NextIntn(int32(l.total)))
	for _, wk := range l.cfg.Kinds {
		k -= wk.Weight
		if k < 0 {
			return wk.Kind
		}
	}
	return l.cfg.Kinds[len(l.cfg.Kinds)-1].Kind
}

// LocateFortress is Locate restricted to cells won by a fortress.
func (l *Locator) LocateFortress(worldSeed int64, region RegionPos) (Placement, bool) {
	p := l.Locate(worldSeed, region)
	return p, p.Kind == KindFortress
}

// RegionOf returns the grid cell containing chunk.
func (l *Locator) RegionOf(chunk ChunkPos) RegionPos {
	return RegionPos{X: FloorDiv(chunk.X, l.cfg.Spacing), Z: FloorDiv(chunk.Z, l.cfg.Spacing)}
}

// IsAnchor recomputes the placement of chunk's cell and reports whether
// chunk is that cell's anchor.
func (l *Locator) IsAnchor(worldSeed int64, chunk ChunkPos) (Placement, bool) {
	p := l.Locate(worldSeed, l.RegionOf(chunk))
	return p, p.Chunk == chunk
}

// RegionsCovering returns the inclusive cell range covering the chunk
// rectangle [lo, hi].
func (l *Locator) RegionsCovering(lo, hi ChunkPos) (RegionPos, RegionPos) {
	return l.RegionOf(lo), l.RegionOf(hi)
}
