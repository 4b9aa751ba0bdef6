package fortress

import "fmt"

// Direction is a horizontal facing.
type Direction uint8

const (
	North Direction = iota // -Z
	East                   // +X
	South                  // +Z
	West                   // -X
)

// HorizontalDirections lists facings in the order used for random selection.
var HorizontalDirections = [4]Direction{North, East, South, West}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "unknown"
}

// MarshalText encodes the facing by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a facing name.
func (d *Direction) UnmarshalText(b []byte) error {
	for _, h := range HorizontalDirections {
		if h.String() == string(b) {
			*d = h
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", b)
}

// alongZ reports whether the facing points along the Z axis.
func (d Direction) alongZ() bool {
	return d == North || d == South
}

// BoundingBox is an inclusive axis-aligned box in block coordinates.
type BoundingBox struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MinZ int `json:"min_z"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
	MaxZ int `json:"max_z"`
}

// Intersects reports whether b and o share at least one block.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.MaxX >= o.MinX && b.MinX <= o.MaxX &&
		b.MaxZ >= o.MinZ && b.MinZ <= o.MaxZ &&
		b.MaxY >= o.MinY && b.MinY <= o.MaxY
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: min(b.MinX, o.MinX), MinY: min(b.MinY, o.MinY), MinZ: min(b.MinZ, o.MinZ),
		MaxX: max(b.MaxX, o.MaxX), MaxY: max(b.MaxY, o.MaxY), MaxZ: max(b.MaxZ, o.MaxZ),
	}
}

// Center returns the box midpoint, rounded down on every axis.
func (b BoundingBox) Center() BlockPos {
	return BlockPos{
		X: FloorDiv(b.MinX+b.MaxX, 2),
		Y: FloorDiv(b.MinY+b.MaxY, 2),
		Z: FloorDiv(b.MinZ+b.MaxZ, 2),
	}
}

// SizeX returns the box extent along X.
func (b BoundingBox) SizeX() int { return b.MaxX - b.MinX + 1 }

// SizeZ returns the box extent along Z.
func (b BoundingBox) SizeZ() int { return b.MaxZ - b.MinZ + 1 }

// OrientBox places a piece of the given width, height and depth whose
// connector sits at (x, y, z), rotated so that the piece extends in facing.
// Offsets are expressed in the piece's local frame.
func OrientBox(x, y, z, offX, offY, offZ, width, height, depth int, facing Direction) BoundingBox {
	switch facing {
	case South:
		return BoundingBox{
			MinX: x + offX, MinY: y + offY, MinZ: z + offZ,
			MaxX: x + width - 1 + offX, MaxY: y + height - 1 + offY, MaxZ: z + depth - 1 + offZ,
		}
	case West:
		return BoundingBox{
			MinX: x - depth + 1 + offZ, MinY: y + offY, MinZ: z + offX,
			MaxX: x + offZ, MaxY: y + height - 1 + offY, MaxZ: z + width - 1 + offX,
		}
	case East:
		return BoundingBox{
			MinX: x + offZ, MinY: y + offY, MinZ: z + offX,
			MaxX: x + depth - 1 + offZ, MaxY: y + height - 1 + offY, MaxZ: z + width - 1 + offX,
		}
	default:
		return BoundingBox{
			MinX: x + offX, MinY: y + offY, MinZ: z - depth + 1 + offZ,
			MaxX: x + width - 1 + offX, MaxY: y + height - 1 + offY, MaxZ: z + offZ,
		}
	}
}

// makeBox sizes a box from its minimum corner without applying rotation
// offsets; only the footprint is swapped for X-facing pieces.
func makeBox(x, y, z int, facing Direction, width, height, depth int) BoundingBox {
	if facing.alongZ() {
		return BoundingBox{MinX: x, MinY: y, MinZ: z, MaxX: x + width - 1, MaxY: y + height - 1, MaxZ: z + depth - 1}
	}
	return BoundingBox{MinX: x, MinY: y, MinZ: z, MaxX: x + depth - 1, MaxY: y + height - 1, MaxZ: z + width - 1}
}
