package game

// Physics and table constants for the billiards simulation.
// Geometry is expressed in surface pixels: a 1000x500 surface with a
// 900x450 playing field centered inside it.

const (
	SurfaceWidth  = 1000.0
	SurfaceHeight = 500.0
	TableWidth    = 900.0
	TableHeight   = 450.0

	BallRadius   = 15.0
	BallDiameter = 2 * BallRadius
	PocketRadius = 30.0

	NumBalls   = 16 // 0=cue, 1-7=solids, 8=eight, 9-15=stripes
	NumPockets = 6

	CueBallID   = 0
	EightBallID = 8

	// Friction is the per-tick velocity decay factor.
	Friction = 0.992
	// MinVelocity is the speed below which a ball snaps to a dead stop,
	// preventing perpetual sub-pixel creep.
	MinVelocity = 0.1
	// CuePowerMultiplier scales the aim vector into cue ball velocity.
	CuePowerMultiplier = 0.15
)
