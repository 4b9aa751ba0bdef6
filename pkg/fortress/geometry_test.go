package fortress

import "testing"

func TestOrientBox(t *testing.T) {
	// A 5x10x19 bridge with offsets (-1, -3, 0) grown from (100, 67, 200).
	tests := []struct {
		facing Direction
		want   BoundingBox
	}{
		{North, BoundingBox{99, 64, 182, 103, 73, 200}},
		{South, BoundingBox{99, 64, 200, 103, 73, 218}},
		{West, BoundingBox{82, 64, 199, 100, 73, 203}},
		{East, BoundingBox{100, 64, 199, 118, 73, 203}},
	}
	for _, tt := range tests {
		got := OrientBox(100, 67, 200, -1, -3, 0, 5, 10, 19, tt.facing)
		if got != tt.want {
			t.Errorf("OrientBox(%s) = %+v, want %+v", tt.facing, got, tt.want)
		}
		if got.SizeX()*got.SizeZ() != 5*19 {
			t.Errorf("OrientBox(%s) footprint %dx%d", tt.facing, got.SizeX(), got.SizeZ())
		}
	}
}

func TestBoundingBoxIntersects(t *testing.T) {
	a := BoundingBox{0, 0, 0, 9, 9, 9}
	tests := []struct {
		b    BoundingBox
		want bool
	}{
		{BoundingBox{9, 9, 9, 12, 12, 12}, true},
		{BoundingBox{10, 0, 0, 12, 9, 9}, false},
		{BoundingBox{0, 10, 0, 9, 12, 9}, false},
		{BoundingBox{-5, -5, -5, 20, 20, 20}, true},
		{BoundingBox{0, 0, -3, 9, 9, -1}, false},
	}
	for _, tt := range tests {
		if got := a.Intersects(tt.b); got != tt.want {
			t.Errorf("Intersects(%+v) = %v, want %v", tt.b, got, tt.want)
		}
		if got := tt.b.Intersects(a); got != tt.want {
			t.Errorf("Intersects is not symmetric for %+v", tt.b)
		}
	}
}

func TestBoundingBoxCenter(t *testing.T) {
	tests := []struct {
		box  BoundingBox
		want BlockPos
	}{
		{BoundingBox{0, 64, 0, 18, 73, 18}, BlockPos{9, 68, 9}},
		{BoundingBox{-4942, 64, -2302, -4905, 73, -2265}, BlockPos{-4924, 68, -2284}},
		{BoundingBox{-3, 0, -1, 0, 1, 0}, BlockPos{-2, 0, -1}},
	}
	for _, tt := range tests {
		if got := tt.box.Center(); got != tt.want {
			t.Errorf("Center(%+v) = %v, want %v", tt.box, got, tt.want)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{0, 27, 0},
		{26, 27, 0},
		{-1, 27, -1},
		{-27, 27, -1},
		{-28, 27, -2},
		{-4947, 2, -2474},
	}
	for _, tt := range tests {
		if got := FloorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("FloorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestChunkOf(t *testing.T) {
	if got := ChunkOf(-4942, -2302); got != (ChunkPos{-309, -144}) {
		t.Errorf("ChunkOf = %v", got)
	}
	if got := (ChunkPos{-309, -144}).Block(); got != (BlockPos{-4944, 0, -2304}) {
		t.Errorf("Block = %v", got)
	}
}

func TestDirectionText(t *testing.T) {
	for _, d := range HorizontalDirections {
		b, err := d.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", d, err)
		}
		var got Direction
		if err := got.UnmarshalText(b); err != nil || got != d {
			t.Errorf("UnmarshalText(%q) = %v, %v", b, got, err)
		}
	}
	var d Direction
	if err := d.UnmarshalText([]byte("up")); err == nil {
		t.Error("UnmarshalText(up) succeeded")
	}
}

func TestPieceTypeText(t *testing.T) {
	for typ := StartPiece; typ < numPieceTypes; typ++ {
		b, err := typ.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", typ, err)
		}
		var got PieceType
		if err := got.UnmarshalText(b); err != nil || got != typ {
			t.Errorf("UnmarshalText(%q) = %v, %v", b, got, err)
		}
	}
	if _, err := PieceType(99).MarshalText(); err == nil {
		t.Error("MarshalText(99) succeeded")
	}
}
