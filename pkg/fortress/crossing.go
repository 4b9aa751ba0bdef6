package fortress

import "sort"

// CrossingWidth is the edge length of the square crossing footprint.
const CrossingWidth = 19

// connectGap is the largest gap, in blocks, between two crossings counted as
// connected by ConnectedGroups.
const connectGap = 25

// Quad is a 2x2 formation of crossings. Members are ordered corner (lowest
// X and Z), +X, +Z, then the diagonal.
type Quad struct {
	Members [4]Piece    `json:"members"`
	Center  BlockPos    `json:"center"`
	Bounds  BoundingBox `json:"bounds"`
}

// Corner returns the member with the lowest X and Z.
func (q Quad) Corner() Piece {
	return q.Members[0]
}

type footprintKey struct{ x, y, z int }

// FindQuads returns every 2x2 crossing formation in s.
func FindQuads(s *Structure) []Quad {
	return FindQuadsIn(s.Pieces)
}

// FindQuadsIn returns every 2x2 formation among the crossing pieces of
// pieces, sorted by corner X, then Z, then Y. Facing is ignored; only the
// footprints need to line up.
func FindQuadsIn(pieces []Piece) []Quad {
	index := make(map[footprintKey]Piece)
	var candidates []Piece
	for _, p := range pieces {
		if !p.IsCrossing() || p.Box.SizeX() != CrossingWidth || p.Box.SizeZ() != CrossingWidth {
			continue
		}
		k := footprintKey{p.Box.MinX, p.Box.MinY, p.Box.MinZ}
		if _, dup := index[k]; dup {
			continue
		}
		index[k] = p
		candidates = append(candidates, p)
	}
	if len(candidates) < 4 {
		return nil
	}

	var quads []Quad
	for _, c := range candidates {
		b := c.Box
		east, ok1 := index[footprintKey{b.MinX + CrossingWidth, b.MinY, b.MinZ}]
		south, ok2 := index[footprintKey{b.MinX, b.MinY, b.MinZ + CrossingWidth}]
		diag, ok3 := index[footprintKey{b.MinX + CrossingWidth, b.MinY, b.MinZ + CrossingWidth}]
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		members := [4]Piece{c, east, south, diag}
		if !sameLevel(members) {
			continue
		}
		bounds := c.Box
		for _, m := range members[1:] {
			bounds = bounds.Union(m.Box)
		}
		quads = append(quads, Quad{Members: members, Center: bounds.Center(), Bounds: bounds})
	}

	sort.Slice(quads, func(i, j int) bool {
		a, b := quads[i].Members[0].Box, quads[j].Members[0].Box
		if a.MinX != b.MinX {
			return a.MinX < b.MinX
		}
		if a.MinZ != b.MinZ {
			return a.MinZ < b.MinZ
		}
		return a.MinY < b.MinY
	})
	return quads
}

func sameLevel(members [4]Piece) bool {
	for _, m := range members[1:] {
		if m.Box.MinY != members[0].Box.MinY || m.Box.MaxY != members[0].Box.MaxY {
			return false
		}
	}
	return true
}

// ConnectedGroups clusters crossings that overlap on one horizontal axis and
// lie within a short gap on the other. Only groups of two or more are
// returned, each in discovery order.
func ConnectedGroups(pieces []Piece) [][]Piece {
	var crossings []Piece
	for _, p := range pieces {
		if p.IsCrossing() {
			crossings = append(crossings, p)
		}
	}

	visited := make([]bool, len(crossings))
	var groups [][]Piece
	var visit func(i int, group []Piece) []Piece
	visit = func(i int, group []Piece) []Piece {
		visited[i] = true
		group = append(group, crossings[i])
		for j := range crossings {
			if !visited[j] && connected(crossings[i].Box, crossings[j].Box) {
				group = visit(j, group)
			}
		}
		return group
	}

	for i := range crossings {
		if visited[i] {
			continue
		}
		if group := visit(i, nil); len(group) >= 2 {
			groups = append(groups, group)
		}
	}
	return groups
}

func connected(a, b BoundingBox) bool {
	if a.MinZ <= b.MaxZ && a.MaxZ >= b.MinZ && min(abs(a.MaxX-b.MinX), abs(b.MaxX-a.MinX)) <= connectGap {
		return true
	}
	return a.MinX <= b.MaxX && a.MaxX >= b.MinX && min(abs(a.MaxZ-b.MinZ), abs(b.MaxZ-a.MinZ)) <= connectGap
}
