package game

import (
	"testing"
)

// soloCue deactivates every ball except the cue so a test can watch a
// single ball without interference.
func soloCue(s *Simulation) {
	for i := 1; i < NumBalls; i++ {
		s.balls[i].Active = false
	}
}

func TestNewSimulationStartsAiming(t *testing.T) {
	s := NewSimulation()

	if s.State() != StateAiming {
		t.Errorf("initial state = %s, want %s", s.State(), StateAiming)
	}
	snap := s.Snapshot()
	for i, b := range snap.Balls {
		if !b.Active {
			t.Errorf("ball %d should start active", i)
		}
		if !b.Velocity.IsZero() {
			t.Errorf("ball %d should start at rest", i)
		}
	}
}

func TestShootScalesAndInvertsAimVector(t *testing.T) {
	s := NewSimulation()

	if !s.Shoot(100, 0) {
		t.Fatal("shot from aiming state should be accepted")
	}

	cue := s.Snapshot().Balls[CueBallID]
	if cue.Velocity.X != -100*CuePowerMultiplier || cue.Velocity.Y != 0 {
		t.Errorf("cue velocity = (%v,%v), want (%v,0)",
			cue.Velocity.X, cue.Velocity.Y, -100*CuePowerMultiplier)
	}
	if s.State() != StateSimulating {
		t.Errorf("state after shot = %s, want %s", s.State(), StateSimulating)
	}
}

func TestShootIgnoredWhileSimulating(t *testing.T) {
	s := NewSimulation()
	s.Shoot(100, 0)

	if s.Shoot(0, 100) {
		t.Error("shot while simulating should be ignored")
	}
	cue := s.Snapshot().Balls[CueBallID]
	if cue.Velocity.Y != 0 {
		t.Error("ignored shot must not change cue velocity")
	}
}

func TestShootIgnoredWhenCueBallDown(t *testing.T) {
	s := NewSimulation()
	s.balls[CueBallID].Active = false

	if s.Shoot(100, 0) {
		t.Error("shot with cue ball off the table should be ignored")
	}
	if s.State() != StateAiming {
		t.Errorf("state = %s, want %s", s.State(), StateAiming)
	}
}

func TestShootIgnoredWhenOver(t *testing.T) {
	s := NewSimulation()
	s.state = StateOver

	if s.Shoot(100, 0) {
		t.Error("shot after game over should be ignored")
	}
}

func TestTickNoopUnlessSimulating(t *testing.T) {
	s := NewSimulation()

	if s.Tick() {
		t.Error("tick while aiming should be a no-op")
	}
	s.state = StateOver
	if s.Tick() {
		t.Error("tick after game over should be a no-op")
	}
}

func TestSettlingReturnsToAiming(t *testing.T) {
	s := NewSimulation()
	soloCue(s)

	// Gentle shot: cue velocity 0.5, decays below the stop threshold
	// within a few hundred ticks without reaching a cushion.
	if !s.Shoot(-0.5/CuePowerMultiplier, 0) {
		t.Fatal("shot not accepted")
	}

	settled := false
	for i := 0; i < 1000; i++ {
		s.Tick()
		if s.State() == StateAiming {
			settled = true
			break
		}
	}
	if !settled {
		t.Fatal("simulation never settled back to aiming")
	}
	cue := s.Snapshot().Balls[CueBallID]
	if !cue.Velocity.IsZero() {
		t.Errorf("settled cue ball still has velocity (%v,%v)", cue.Velocity.X, cue.Velocity.Y)
	}
}

func TestEightBallCaptureEndsGameSameTick(t *testing.T) {
	s := NewSimulation()
	s.Shoot(100, 100)

	// Park the eight ball on a pocket while the cue ball is still in
	// full flight: the game must end this tick regardless.
	s.balls[EightBallID].Position = s.table.Pockets[2].Position

	s.Tick()

	if s.balls[EightBallID].Active {
		t.Error("eight ball should be captured")
	}
	if s.State() != StateOver {
		t.Errorf("state = %s, want %s", s.State(), StateOver)
	}
}

func TestCaptureIsPermanent(t *testing.T) {
	s := NewSimulation()
	s.Shoot(100, 0)

	// Drop ball 3 into a corner pocket mid-simulation.
	s.balls[3].Position = s.table.Pockets[0].Position
	s.Tick()

	if s.balls[3].Active {
		t.Fatal("ball 3 should be captured")
	}
	restingPos := s.balls[3].Position

	for i := 0; i < 100 && s.State() == StateSimulating; i++ {
		s.Tick()
	}

	if s.balls[3].Active {
		t.Error("captured ball re-activated by later ticks")
	}
	if s.balls[3].Position != restingPos {
		t.Error("captured ball moved after capture")
	}
	if !s.balls[3].Velocity.IsZero() {
		t.Error("captured ball kept velocity")
	}
}

func TestResetDeterminism(t *testing.T) {
	s := NewSimulation()
	s.Shoot(500, 300)
	for i := 0; i < 50; i++ {
		s.Tick()
	}

	s.Reset()
	first := s.Snapshot()
	s.Reset()
	second := s.Snapshot()

	if first.State != StateAiming || second.State != StateAiming {
		t.Error("reset should return to aiming")
	}
	for i := range first.Balls {
		if first.Balls[i] != second.Balls[i] {
			t.Errorf("ball %d differs across resets: %+v vs %+v", i, first.Balls[i], second.Balls[i])
		}
	}

	fresh := NewSimulation().Snapshot()
	for i := range fresh.Balls {
		if first.Balls[i] != fresh.Balls[i] {
			t.Errorf("ball %d after reset differs from fresh rack", i)
		}
	}
}

func TestResetFromOverRestoresPlay(t *testing.T) {
	s := NewSimulation()
	s.state = StateOver
	s.balls[EightBallID].Active = false

	s.Reset()

	if s.State() != StateAiming {
		t.Errorf("state after reset = %s, want %s", s.State(), StateAiming)
	}
	if s.ActiveBalls() != NumBalls {
		t.Errorf("active balls after reset = %d, want %d", s.ActiveBalls(), NumBalls)
	}
	if !s.Shoot(50, 50) {
		t.Error("shot after reset should be accepted")
	}
}

func TestActiveBallsStayInBounds(t *testing.T) {
	s := NewSimulation()
	soloCue(s)
	s.Shoot(-2000, -1500) // hard diagonal shot

	for i := 0; i < 300; i++ {
		s.Tick()
		snap := s.Snapshot()
		for _, b := range snap.Balls {
			if !b.Active {
				continue
			}
			if b.Position.X < snap.Bounds.MinX || b.Position.X > snap.Bounds.MaxX ||
				b.Position.Y < snap.Bounds.MinY || b.Position.Y > snap.Bounds.MaxY {
				t.Fatalf("tick %d: ball %d out of bounds at (%v,%v)", i, b.ID, b.Position.X, b.Position.Y)
			}
		}
	}
}

func TestBreakScattersAndStaysConsistent(t *testing.T) {
	run := func() Snapshot {
		s := NewSimulation()
		// Aim straight at the rack: pointer to the left of the cue
		// ball, so the shot fires right. Kept under one diameter per
		// tick so the cue ball cannot step over the rack.
		s.Shoot(-180, 0)
		for i := 0; i < 3000 && s.State() == StateSimulating; i++ {
			s.Tick()
		}
		return s.Snapshot()
	}

	first := run()

	moved := 0
	rack := RackPositions()
	for i := 1; i < NumBalls; i++ {
		b := first.Balls[i]
		if !b.Active {
			moved++ // pocketed counts as moved
			continue
		}
		if b.Position.Minus(rack[i]).Magnitude() > BallRadius {
			moved++
		}
	}
	if moved < 3 {
		t.Errorf("expected at least 3 balls displaced by the break, got %d", moved)
	}

	// Same shot, same outcome, bit for bit.
	second := run()
	for i := range first.Balls {
		if first.Balls[i] != second.Balls[i] {
			t.Errorf("non-deterministic break: ball %d %+v vs %+v", i, first.Balls[i], second.Balls[i])
		}
	}
}

func TestNonPenetrationAtRest(t *testing.T) {
	s := NewSimulation()
	s.Shoot(-180, 0)

	for i := 0; i < 3000 && s.State() == StateSimulating; i++ {
		s.Tick()
	}

	snap := s.Snapshot()
	for i := 0; i < NumBalls; i++ {
		if !snap.Balls[i].Active {
			continue
		}
		for j := i + 1; j < NumBalls; j++ {
			if !snap.Balls[j].Active {
				continue
			}
			dist := snap.Balls[j].Position.Minus(snap.Balls[i].Position).Magnitude()
			if dist < BallDiameter-1e-6 {
				t.Errorf("balls %d and %d interpenetrate after tick: dist=%v", i, j, dist)
			}
		}
	}
}

func TestSnapshotShape(t *testing.T) {
	s := NewSimulation()
	snap := s.Snapshot()

	if snap.State != StateAiming {
		t.Errorf("snapshot state = %s", snap.State)
	}
	if len(snap.Pockets) != NumPockets {
		t.Errorf("snapshot has %d pockets", len(snap.Pockets))
	}
	for i, b := range snap.Balls {
		if b.ID != i {
			t.Errorf("ball %d carries ID %d", i, b.ID)
		}
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	s := NewSimulation()
	s.Shoot(700, -200)
	for i := 0; i < 30; i++ {
		s.Tick()
	}
	snap := s.Snapshot()

	restored := NewSimulation()
	restored.Restore(snap)

	if restored.State() != snap.State {
		t.Errorf("restored state = %s, want %s", restored.State(), snap.State)
	}
	got := restored.Snapshot()
	for i := range snap.Balls {
		if got.Balls[i] != snap.Balls[i] {
			t.Errorf("ball %d lost in restore: %+v vs %+v", i, got.Balls[i], snap.Balls[i])
		}
	}
}
