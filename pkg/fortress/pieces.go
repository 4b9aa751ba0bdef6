package fortress

import "fmt"

// PieceType tags one element of the fortress piece vocabulary.
type PieceType uint8

const (
	StartPiece PieceType = iota
	BridgeStraight
	BridgeCrossing
	RoomCrossing
	StairsRoom
	MonsterThrone
	CastleEntrance
	BridgeEndFiller
	CastleSmallCorridor
	CastleSmallCorridorCrossing
	CastleSmallCorridorRightTurn
	CastleSmallCorridorLeftTurn
	CastleCorridorStairs
	CastleCorridorTBalcony
	CastleStalkRoom

	numPieceTypes
)

var pieceNames = [numPieceTypes]string{
	StartPiece:                   "StartPiece",
	BridgeStraight:               "BridgeStraight",
	BridgeCrossing:               "BridgeCrossing",
	RoomCrossing:                 "RoomCrossing",
	StairsRoom:                   "StairsRoom",
	MonsterThrone:                "MonsterThrone",
	CastleEntrance:               "CastleEntrance",
	BridgeEndFiller:              "BridgeEndFiller",
	CastleSmallCorridor:          "CastleSmallCorridor",
	CastleSmallCorridorCrossing:  "CastleSmallCorridorCrossing",
	CastleSmallCorridorRightTurn: "CastleSmallCorridorRightTurn",
	CastleSmallCorridorLeftTurn:  "CastleSmallCorridorLeftTurn",
	CastleCorridorStairs:         "CastleCorridorStairs",
	CastleCorridorTBalcony:       "CastleCorridorTBalcony",
	CastleStalkRoom:              "CastleStalkRoom",
}

func (t PieceType) String() string {
	if t < numPieceTypes {
		return pieceNames[t]
	}
	return fmt.Sprintf("PieceType(%d)", uint8(t))
}

// MarshalText encodes the piece type by name.
func (t PieceType) MarshalText() ([]byte, error) {
	if t >= numPieceTypes {
		return nil, fmt.Errorf("%w: piece type %d", ErrInvariant, uint8(t))
	}
	return []byte(pieceNames[t]), nil
}

// UnmarshalText decodes a piece type name.
func (t *PieceType) UnmarshalText(b []byte) error {
	for i, name := range pieceNames {
		if name == string(b) {
			*t = PieceType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece type %q", b)
}

// IsCrossing reports whether pieces of this type have the 19x19 crossing
// footprint.
func (t PieceType) IsCrossing() bool {
	return t == StartPiece || t == BridgeCrossing
}

// shape is a piece's size and the offset of its box from the connector that
// spawned it, in the piece's local frame.
type shape struct {
	offX, offY, offZ      int
	width, height, depth int
}

type exitSide uint8

const (
	exitForward exitSide = iota
	exitLeft
	exitRight
)

// exit is one connector from which a child piece may grow.
type exit struct {
	side       exitSide
	horizontal int
	vertical   int
	castle     bool
	// balcony exits pick their horizontal offset from the parent's facing
	// and their weight list from a random draw.
	balcony bool
}

type pieceKind struct {
	shape shape
	exits []exit
}

var pieceKinds = [numPieceTypes]*pieceKind{
	StartPiece: {
		shape: shape{-8, -3, 0, 19, 10, 19},
		exits: crossingExits,
	},
	BridgeCrossing: {
		shape: shape{-8, -3, 0, 19, 10, 19},
		exits: crossingExits,
	},
	BridgeStraight: {
		shape: shape{-1, -3, 0, 5, 10, 19},
		exits: []exit{{side: exitForward, horizontal: 1, vertical: 3}},
	},
	RoomCrossing: {
		shape: shape{-2, 0, 0, 7, 9, 7},
		exits: []exit{
			{side: exitForward, horizontal: 2},
			{side: exitLeft, horizontal: 2},
			{side: exitRight, horizontal: 2},
		},
	},
	StairsRoom: {
		shape: shape{-2, 0, 0, 7, 11, 7},
		exits: []exit{{side: exitRight, horizontal: 2, vertical: 6}},
	},
	MonsterThrone: {
		shape: shape{-2, 0, 0, 7, 8, 9},
	},
	CastleEntrance: {
		shape: shape{-5, -3, 0, 13, 14, 13},
		exits: []exit{{side: exitForward, horizontal: 5, vertical: 3, castle: true}},
	},
	BridgeEndFiller: {
		shape: shape{-1, -3, 0, 5, 10, 8},
	},
	CastleSmallCorridor: {
		shape: shape{-1, 0, 0, 5, 7, 5},
		exits: []exit{{side: exitForward, horizontal: 1, castle: true}},
	},
	CastleSmallCorridorCrossing: {
		shape: shape{-1, 0, 0, 5, 7, 5},
		exits: []exit{
			{side: exitForward, horizontal: 1, castle: true},
			{side: exitLeft, horizontal: 1, castle: true},
			{side: exitRight, horizontal: 1, castle: true},
		},
	},
	CastleSmallCorridorRightTurn: {
		shape: shape{-1, 0, 0, 5, 7, 5},
		exits: []exit{{side: exitRight, horizontal: 1, castle: true}},
	},
	CastleSmallCorridorLeftTurn: {
		shape: shape{-1, 0, 0, 5, 7, 5},
		exits: []exit{{side: exitLeft, horizontal: 1, castle: true}},
	},
	CastleCorridorStairs: {
		shape: shape{-1, -7, 0, 5, 14, 10},
		exits: []exit{{side: exitForward, horizontal: 1, castle: true}},
	},
	CastleCorridorTBalcony: {
		shape: shape{-3, 0, 0, 9, 7, 9},
		exits: []exit{
			{side: exitLeft, balcony: true},
			{side: exitRight, balcony: true},
		},
	},
	CastleStalkRoom: {
		shape: shape{-5, -3, 0, 13, 14, 13},
		exits: []exit{
			{side: exitForward, horizontal: 5, vertical: 3, castle: true},
			{side: exitForward, horizontal: 5, vertical: 11, castle: true},
		},
	},
}

var crossingExits = []exit{
	{side: exitForward, horizontal: 8, vertical: 3},
	{side: exitLeft, horizontal: 8, vertical: 3},
	{side: exitRight, horizontal: 8, vertical: 3},
}

func kindOf(t PieceType) (*pieceKind, error) {
	if t >= numPieceTypes || pieceKinds[t] == nil {
		return nil, fmt.Errorf("%w: no geometry for %s", ErrInvariant, t)
	}
	return pieceKinds[t], nil
}

// PieceWeight is one entry of a weighted piece list. MaxPlaceCount 0 means
// unlimited.
type PieceWeight struct {
	Type          PieceType
	Weight        int
	MaxPlaceCount int
	AllowInRow    bool
}

// BridgePieceWeights are drawn from at bridge connectors, in this order.
var BridgePieceWeights = []PieceWeight{
	{BridgeStraight, 30, 0, true},
	{BridgeCrossing, 10, 4, false},
	{RoomCrossing, 10, 4, false},
	{StairsRoom, 10, 3, false},
	{MonsterThrone, 5, 2, false},
	{CastleEntrance, 5, 1, false},
}

// CastlePieceWeights are drawn from at castle connectors, in this order.
var CastlePieceWeights = []PieceWeight{
	{CastleSmallCorridor, 25, 0, true},
	{CastleSmallCorridorCrossing, 15, 5, false},
	{CastleSmallCorridorRightTurn, 5, 10, false},
	{CastleSmallCorridorLeftTurn, 5, 10, false},
	{CastleCorridorStairs, 10, 3, true},
	{CastleCorridorTBalcony, 7, 2, false},
	{CastleStalkRoom, 5, 2, false},
}

// weightState tracks how often a weight entry was used in one structure.
type weightState struct {
	PieceWeight
	placed int
}

func (w *weightState) canPlace() bool {
	return w.MaxPlaceCount == 0 || w.placed < w.MaxPlaceCount
}

func newWeightStates(src []PieceWeight) []*weightState {
	out := make([]*weightState, len(src))
	for i := range src {
		out[i] = &weightState{PieceWeight: src[i]}
	}
	return out
}

// totalWeight returns the summed weight, or -1 once no capped entry can be
// placed any more.
func totalWeight(list []*weightState) int {
	open := false
	total := 0
	for _, w := range list {
		if w.MaxPlaceCount > 0 && w.placed < w.MaxPlaceCount {
			open = true
		}
		total += w.Weight
	}
	if !open {
		return -1
	}
	return total
}
