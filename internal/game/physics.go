package game

import "math"

// minSeparation guards the collision normal: centers closer than this
// have no defined separation axis, so the pair is skipped for the tick.
const minSeparation = 1e-9

// integrate advances one ball by one tick: friction decay, translation
// by the decayed velocity, then a hard stop below MinVelocity. Reports
// whether the ball is still moving afterwards.
func integrate(b *Ball) bool {
	b.Velocity = b.Velocity.Times(Friction)
	b.Position = b.Position.Plus(b.Velocity)

	if b.Velocity.Magnitude() < MinVelocity {
		b.Velocity = Vec2{}
		return false
	}
	return true
}

// reflectCushions clamps a ball back inside the inset bounds, negating
// the crossed axis's velocity component. Each axis is checked
// independently, so a corner hit reflects off both cushions in the same
// tick. Cushion bounces lose no energy; friction does the dissipating.
func reflectCushions(b *Ball, bounds Bounds) {
	if b.Position.X < bounds.MinX {
		b.Position.X = bounds.MinX
		b.Velocity.X = -b.Velocity.X
	}
	if b.Position.X > bounds.MaxX {
		b.Position.X = bounds.MaxX
		b.Velocity.X = -b.Velocity.X
	}
	if b.Position.Y < bounds.MinY {
		b.Position.Y = bounds.MinY
		b.Velocity.Y = -b.Velocity.Y
	}
	if b.Position.Y > bounds.MaxY {
		b.Position.Y = bounds.MaxY
		b.Velocity.Y = -b.Velocity.Y
	}
}

// resolvePair detects and resolves an overlap between two balls.
// Positional correction runs first — each ball moves half the overlap
// apart along the center line — then the along-normal velocity
// components are exchanged (equal-mass frictionless elastic collision;
// tangential components are untouched). Reports whether the pair
// collided.
func resolvePair(a, b *Ball) bool {
	delta := b.Position.Minus(a.Position)
	distSq := delta.MagnitudeSquared()
	if distSq >= BallDiameter*BallDiameter {
		return false
	}

	dist := math.Sqrt(distSq)
	if dist < minSeparation {
		// Coincident centers: no collision normal. Skip this tick and
		// let a later tick separate them.
		return false
	}

	n := delta.Times(1 / dist)
	overlap := (BallDiameter - dist) / 2

	a.Position = a.Position.Minus(n.Times(overlap))
	b.Position = b.Position.Plus(n.Times(overlap))

	pa := a.Velocity.Dot(n)
	pb := b.Velocity.Dot(n)
	a.Velocity = a.Velocity.Plus(n.Times(pb - pa))
	b.Velocity = b.Velocity.Plus(n.Times(pa - pb))
	return true
}

// pocketAt returns the pocket whose capture radius contains the ball's
// center, or nil.
func (t *Table) pocketAt(b *Ball) *Pocket {
	for i := range t.Pockets {
		p := &t.Pockets[i]
		if p.Position.Minus(b.Position).Magnitude() < p.Radius {
			return p
		}
	}
	return nil
}
