package game

// Color is an RGBA display color. The simulation never interprets it;
// it rides along for rendering clients.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Ball represents a single ball's physics state. All balls share
// BallRadius. Once Active goes false the ball is out of play until the
// next reset; nothing else removes a ball mid-game.
type Ball struct {
	ID       int   `json:"id"`
	Active   bool  `json:"active"`
	Position Vec2  `json:"position"`
	Velocity Vec2  `json:"velocity"`
	Color    Color `json:"color"`
}

// IsStripe reports whether the ball renders with a stripe band.
func (b *Ball) IsStripe() bool {
	return b.ID > EightBallID
}
