package fortress

import (
	"fmt"
	"slices"

	"github.com/OCharnyshevich/fortress-finder/pkg/rng"
)

// Piece is one placed element of a fortress.
type Piece struct {
	Type   PieceType   `json:"type"`
	Box    BoundingBox `json:"box"`
	Facing Direction   `json:"facing"`
	Depth  int         `json:"depth"`
	// Parent is the index of the spawning piece, -1 for the start piece.
	Parent int `json:"parent"`
}

// Center returns the midpoint of the piece's box.
func (p Piece) Center() BlockPos {
	return p.Box.Center()
}

// IsCrossing reports whether the piece has the crossing footprint.
func (p Piece) IsCrossing() bool {
	return p.Type.IsCrossing()
}

// Structure is the complete piece layout of one fortress.
type Structure struct {
	WorldSeed int64    `json:"world_seed"`
	Chunk     ChunkPos `json:"chunk"`
	Pieces    []Piece  `json:"pieces"`
	// Truncated is set when growth stopped at the piece budget instead of
	// running out of connectors.
	Truncated bool `json:"truncated,omitempty"`
}

// Crossings returns the crossing-shaped pieces in placement order.
func (s *Structure) Crossings() []Piece {
	var out []Piece
	for _, p := range s.Pieces {
		if p.IsCrossing() {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of pieces of type t.
func (s *Structure) Count(t PieceType) int {
	n := 0
	for _, p := range s.Pieces {
		if p.Type == t {
			n++
		}
	}
	return n
}

// TypeCounts returns the number of pieces per type.
func (s *Structure) TypeCounts() map[PieceType]int {
	out := make(map[PieceType]int)
	for _, p := range s.Pieces {
		out[p.Type]++
	}
	return out
}

// Overlaps returns the first pair of pieces whose boxes intersect.
func (s *Structure) Overlaps() (i, j int, ok bool) {
	for i = range s.Pieces {
		for j = i + 1; j < len(s.Pieces); j++ {
			if s.Pieces[i].Box.Intersects(s.Pieces[j].Box) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// GeneratorConfig holds the layout limits and weight tables.
type GeneratorConfig struct {
	Bridge []PieceWeight
	Castle []PieceWeight
	// MaxDepth is the deepest generation depth at which weighted pieces may
	// still be chosen.
	MaxDepth int
	// MaxDistance bounds connector distance from the start piece's minimum
	// corner along X and Z.
	MaxDistance int
	// MinY is the exclusive lower bound for a piece's bottom.
	MinY int
	// StartY is the bottom of the start piece.
	StartY int
	// MaxPieces stops growth once reached; 0 disables the limit.
	MaxPieces int
}

// DefaultGeneratorConfig returns the vanilla nether fortress layout rules.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Bridge:      BridgePieceWeights,
		Castle:      CastlePieceWeights,
		MaxDepth:    30,
		MaxDistance: 112,
		MinY:        10,
		StartY:      64,
		MaxPieces:   4096,
	}
}

// Generator builds fortress layouts. It is safe for concurrent use; every
// call to Generate works on its own random source and weight state.
type Generator struct {
	cfg GeneratorConfig
}

// NewGenerator returns a Generator for cfg.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	for _, list := range [][]PieceWeight{cfg.Bridge, cfg.Castle} {
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: empty piece weight list", ErrInvalidConfig)
		}
		for _, w := range list {
			if _, err := kindOf(w.Type); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}
			if w.Weight <= 0 {
				return nil, fmt.Errorf("%w: %s weight %d must be positive", ErrInvalidConfig, w.Type, w.Weight)
			}
		}
	}
	if cfg.MaxDepth < 0 || cfg.MaxDistance < 0 || cfg.MaxPieces < 0 {
		return nil, fmt.Errorf("%w: negative layout limit", ErrInvalidConfig)
	}
	return &Generator{cfg: cfg}, nil
}

// Generate lays out the fortress anchored at chunk.
func (g *Generator) Generate(worldSeed int64, chunk ChunkPos) (*Structure, error) {
	r := rng.New(0)
	r.SetLargeFeatureSeed(worldSeed, chunk.X, chunk.Z)

	l := &layout{
		cfg:    &g.cfg,
		rnd:    r,
		bridge: newWeightStates(g.cfg.Bridge),
		castle: newWeightStates(g.cfg.Castle),
	}
	if err := l.run(chunk); err != nil {
		return nil, fmt.Errorf("generate fortress at chunk %s: %w", chunk, err)
	}
	return &Structure{
		WorldSeed: worldSeed,
		Chunk:     chunk,
		Pieces:    l.pieces,
		Truncated: l.truncated,
	}, nil
}

// layout is the mutable state of one Generate call.
type layout struct {
	cfg *GeneratorConfig
	rnd *rng.Legacy

	pieces  []Piece
	pending []int // indices into pieces awaiting expansion
	start   BoundingBox

	bridge   []*weightState
	castle   []*weightState
	previous *weightState

	truncated bool
}

func (l *layout) run(chunk ChunkPos) error {
	facing := HorizontalDirections[l.rnd.NextIntn(int32(len(HorizontalDirections)))]
	origin := chunk.Block()
	sh := pieceKinds[StartPiece].shape
	l.start = makeBox(origin.X+2, l.cfg.StartY, origin.Z+2, facing, sh.width, sh.height, sh.depth)
	l.pieces = append(l.pieces, Piece{
		Type:   StartPiece,
		Box:    l.start,
		Facing: facing,
		Parent: -1,
	})

	if err := l.expand(0); err != nil {
		return err
	}
	for len(l.pending) > 0 {
		if l.cfg.MaxPieces > 0 && len(l.pieces) >= l.cfg.MaxPieces {
			l.truncated = true
			return nil
		}
		i := int(l.rnd.NextIntn(int32(len(l.pending))))
		idx := l.pending[i]
		l.pending = slices.Delete(l.pending, i, i+1)
		if err := l.expand(idx); err != nil {
			return err
		}
	}
	return nil
}

// expand tries to grow a child at every connector of piece idx.
func (l *layout) expand(idx int) error {
	p := l.pieces[idx]
	kind, err := kindOf(p.Type)
	if err != nil {
		return err
	}

	for _, e := range kind.exits {
		horizontal, castle := e.horizontal, e.castle
		if e.balcony {
			horizontal = 1
			if p.Facing == West || p.Facing == North {
				horizontal = 5
			}
			castle = l.rnd.NextIntn(8) > 0
		}

		x, y, z, facing := exitPoint(p, e.side, horizontal, e.vertical)
		if err := l.attach(idx, x, y, z, facing, castle); err != nil {
			return err
		}
	}
	return nil
}

// exitPoint returns the connector position and the facing of a child grown
// from side of p.
func exitPoint(p Piece, side exitSide, horizontal, vertical int) (x, y, z int, facing Direction) {
	b := p.Box
	y = b.MinY + vertical

	switch side {
	case exitLeft:
		if p.Facing.alongZ() {
			return b.MinX - 1, y, b.MinZ + horizontal, West
		}
		return b.MinX + horizontal, y, b.MinZ - 1, North
	case exitRight:
		if p.Facing.alongZ() {
			return b.MaxX + 1, y, b.MinZ + horizontal, East
		}
		return b.MinX + horizontal, y, b.MaxZ + 1, South
	}

	switch p.Facing {
	case North:
		return b.MinX + horizontal, y, b.MinZ - 1, North
	case South:
		return b.MinX + horizontal, y, b.MaxZ + 1, South
	case West:
		return b.MinX - 1, y, b.MinZ + horizontal, West
	default:
		return b.MaxX + 1, y, b.MinZ + horizontal, East
	}
}

// attach grows one child of parent at the given connector.
func (l *layout) attach(parent, x, y, z int, facing Direction, castle bool) error {
	depth := l.pieces[parent].Depth
	if abs(x-l.start.MinX) > l.cfg.MaxDistance || abs(z-l.start.MinZ) > l.cfg.MaxDistance {
		// Out of range connectors still build an end filler, which draws from
		// the random source, but the filler is never kept.
		_, _, err := l.endFiller(x, y, z, facing, depth)
		return err
	}

	list := &l.bridge
	if castle {
		list = &l.castle
	}
	p, ok, err := l.pick(list, x, y, z, facing, depth+1)
	if err != nil || !ok {
		return err
	}
	p.Parent = parent
	l.pieces = append(l.pieces, p)
	l.pending = append(l.pending, len(l.pieces)-1)
	return nil
}

// pick draws a weighted piece for a connector, falling back to an end filler.
func (l *layout) pick(list *[]*weightState, x, y, z int, facing Direction, depth int) (Piece, bool, error) {
	total := totalWeight(*list)
	allowed := total > 0 && depth <= l.cfg.MaxDepth

	for attempt := 0; attempt < 5 && allowed; attempt++ {
		k := int(l.rnd.NextIntn(int32(total)))
		for i, w := range *list {
			k -= w.Weight
			if k >= 0 {
				continue
			}
			if !w.canPlace() || (w == l.previous && !w.AllowInRow) {
				break
			}

			p, ok, err := l.create(w.Type, x, y, z, facing, depth)
			if err != nil {
				return Piece{}, false, err
			}
			if !ok {
				continue
			}
			w.placed++
			l.previous = w
			if !w.canPlace() {
				*list = slices.Delete(*list, i, i+1)
			}
			return p, true, nil
		}
	}
	return l.endFiller(x, y, z, facing, depth)
}

// create builds a piece of type t at the connector if its box fits.
func (l *layout) create(t PieceType, x, y, z int, facing Direction, depth int) (Piece, bool, error) {
	kind, err := kindOf(t)
	if err != nil {
		return Piece{}, false, err
	}
	sh := kind.shape
	box := OrientBox(x, y, z, sh.offX, sh.offY, sh.offZ, sh.width, sh.height, sh.depth, facing)
	if !l.fits(box) {
		return Piece{}, false, nil
	}

	switch t {
	case CastleSmallCorridorLeftTurn, CastleSmallCorridorRightTurn:
		l.rnd.NextIntn(3) // chest roll
	}
	return Piece{Type: t, Box: box, Facing: facing, Depth: depth}, true, nil
}

func (l *layout) endFiller(x, y, z int, facing Direction, depth int) (Piece, bool, error) {
	p, ok, err := l.create(BridgeEndFiller, x, y, z, facing, depth)
	if ok {
		l.rnd.NextInt() // filler block seed
	}
	return p, ok, err
}

// fits reports whether box is above the floor and clear of placed pieces.
func (l *layout) fits(box BoundingBox) bool {
	if box.MinY <= l.cfg.MinY {
		return false
	}
	for i := range l.pieces {
		if l.pieces[i].Box.Intersects(box) {
			return false
		}
	}
	return true
}
