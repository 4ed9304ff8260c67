package game

// Pocket is a circular capture zone. A ball whose center enters the
// capture radius is taken out of play.
type Pocket struct {
	ID       int     `json:"id"`
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
}

// Bounds is the inset rectangle ball centers must stay inside: the
// playing field shrunk by one ball radius on every side.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Table holds the static playing-surface geometry. Immutable after
// layout; rebuilt wholesale on reset.
type Table struct {
	Bounds  Bounds             `json:"bounds"`
	Pockets [NumPockets]Pocket `json:"pockets"`
}

// NewTable computes the table geometry from the surface constants:
// inset cushion bounds plus six pockets at the four field corners and
// the two long-side midpoints.
func NewTable() *Table {
	fieldX := (SurfaceWidth - TableWidth) / 2
	fieldY := (SurfaceHeight - TableHeight) / 2

	t := &Table{
		Bounds: Bounds{
			MinX: fieldX + BallRadius,
			MinY: fieldY + BallRadius,
			MaxX: fieldX + BallRadius + TableWidth - BallDiameter,
			MaxY: fieldY + BallRadius + TableHeight - BallDiameter,
		},
	}

	corners := [NumPockets]Vec2{
		{fieldX, fieldY},
		{fieldX + TableWidth/2, fieldY},
		{fieldX + TableWidth, fieldY},
		{fieldX, fieldY + TableHeight},
		{fieldX + TableWidth/2, fieldY + TableHeight},
		{fieldX + TableWidth, fieldY + TableHeight},
	}
	for i, pos := range corners {
		t.Pockets[i] = Pocket{ID: i, Position: pos, Radius: PocketRadius}
	}
	return t
}

// rackOrder is the triangle seating order, row by row from the apex:
// the eight ball sits in the middle of the third row.
var rackOrder = [NumBalls - 1]int{1, 9, 15, 2, 8, 14, 3, 10, 7, 13, 4, 11, 6, 12, 5}

// ballColors maps ball ID to display color. Stripes reuse the solid
// palette; the stripe band itself is a rendering concern.
var ballColors = [NumBalls]Color{
	{255, 255, 255, 255}, // 0: cue
	{255, 215, 0, 255},   // 1: yellow
	{0, 0, 255, 255},     // 2: blue
	{255, 0, 0, 255},     // 3: red
	{75, 0, 130, 255},    // 4: purple
	{255, 165, 0, 255},   // 5: orange
	{0, 128, 0, 255},     // 6: green
	{128, 0, 0, 255},     // 7: maroon
	{0, 0, 0, 255},       // 8: black
	{255, 215, 0, 255},   // 9: yellow stripe
	{0, 0, 255, 255},     // 10: blue stripe
	{255, 0, 0, 255},     // 11: red stripe
	{75, 0, 130, 255},    // 12: purple stripe
	{255, 165, 0, 255},   // 13: orange stripe
	{0, 128, 0, 255},     // 14: green stripe
	{128, 0, 0, 255},     // 15: maroon stripe
}

// RackPositions returns the initial position for every ball: a 5-row
// triangular rack on the right quarter of the surface and the cue ball
// mirrored on the left. Fixed offsets, no jitter — two racks are
// bit-identical.
func RackPositions() [NumBalls]Vec2 {
	var pos [NumBalls]Vec2

	startX := SurfaceWidth * 0.75
	startY := SurfaceHeight / 2
	rowPitch := BallDiameter * 0.88

	idx := 0
	for row := 0; row < 5; row++ {
		for col := 0; col <= row; col++ {
			id := rackOrder[idx]
			pos[id] = Vec2{
				X: startX + float64(row)*rowPitch,
				Y: startY + float64(col)*BallDiameter - float64(row)*BallRadius,
			}
			idx++
		}
	}

	pos[CueBallID] = Vec2{X: SurfaceWidth * 0.25, Y: SurfaceHeight / 2}
	return pos
}
