// Package fortress locates Nether fortresses, rebuilds their piece layout
// and finds 2x2 groups of bridge crossings inside them.
package fortress

import "fmt"

// ChunkPos identifies a chunk by its X and Z coordinates.
type ChunkPos struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Block returns the block coordinates of the chunk's minimum corner.
func (c ChunkPos) Block() BlockPos {
	return BlockPos{X: c.X << 4, Z: c.Z << 4}
}

func (c ChunkPos) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}

// ChunkOf returns the chunk containing block coordinates (x, z).
func ChunkOf(x, z int) ChunkPos {
	return ChunkPos{X: x >> 4, Z: z >> 4}
}

// RegionPos identifies one cell of the structure placement grid.
type RegionPos struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// BlockPos represents a block position in the world.
type BlockPos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (b BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", b.X, b.Y, b.Z)
}

// FloorDiv returns a / b rounded towards negative infinity. b must be positive.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
