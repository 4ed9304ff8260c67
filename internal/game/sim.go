package game

import (
	"log"
	"sync"
)

// State is the simulation's control state.
type State string

const (
	StateAiming     State = "AIMING"
	StateSimulating State = "SIMULATING"
	StateOver       State = "OVER"
)

// Snapshot is a consistent, read-only export of the simulation for
// rendering clients. It is always taken between completed ticks, never
// mid-resolution.
type Snapshot struct {
	State   State              `json:"state"`
	Balls   [NumBalls]Ball     `json:"balls"`
	Pockets [NumPockets]Pocket `json:"pockets"`
	Bounds  Bounds             `json:"bounds"`
}

// Simulation owns the full table state: balls, geometry, and the
// aiming/simulating/over machine. One goroutine drives Tick; the mutex
// exists so concurrent readers (snapshot, websocket broadcast) never
// observe a partial tick.
type Simulation struct {
	mu    sync.RWMutex
	balls [NumBalls]Ball
	table *Table
	state State
}

// NewSimulation creates a simulation racked and ready to aim.
func NewSimulation() *Simulation {
	s := &Simulation{}
	s.reset()
	return s
}

// Reset re-racks the balls, rebuilds the table geometry, and returns to
// aiming. Valid from any state.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	log.Printf("[SIM] table reset")
}

func (s *Simulation) reset() {
	s.table = NewTable()
	positions := RackPositions()
	for i := range s.balls {
		s.balls[i] = Ball{
			ID:       i,
			Active:   true,
			Position: positions[i],
			Color:    ballColors[i],
		}
	}
	s.state = StateAiming
}

// Shoot applies a shot to the cue ball: velocity is the aim vector
// inverted and scaled by CuePowerMultiplier (pull back and release).
// Ignored unless aiming with the cue ball on the table; returns whether
// the shot was taken.
func (s *Simulation) Shoot(dx, dy float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAiming {
		return false
	}
	cue := &s.balls[CueBallID]
	if !cue.Active {
		return false
	}

	cue.Velocity = Vec2{X: -dx * CuePowerMultiplier, Y: -dy * CuePowerMultiplier}
	s.state = StateSimulating
	return true
}

// Tick advances the simulation by one fixed step. A no-op unless
// simulating; returns whether the tick ran.
//
// Balls are processed in ascending id order: integrate, reflect off
// cushions, resolve overlaps against every higher-id ball, then check
// pockets. Pairs later in the scan see earlier resolutions' updated
// positions and velocities — collisions within a tick are sequential,
// not simultaneous. That is a deliberate approximation; the fixed scan
// order keeps it deterministic.
func (s *Simulation) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSimulating {
		return false
	}

	moving := false
	for i := range s.balls {
		b := &s.balls[i]
		if !b.Active {
			continue
		}

		if integrate(b) {
			moving = true
		}
		reflectCushions(b, s.table.Bounds)

		for j := i + 1; j < NumBalls; j++ {
			o := &s.balls[j]
			if !o.Active {
				continue
			}
			resolvePair(b, o)
		}

		if p := s.table.pocketAt(b); p != nil {
			b.Active = false
			b.Velocity = Vec2{}
			log.Printf("[SIM] ball %d captured by pocket %d", b.ID, p.ID)
			if b.ID == EightBallID {
				s.state = StateOver
				log.Printf("[SIM] eight ball down, game over")
			}
		}
	}

	if s.state == StateSimulating && !moving {
		s.state = StateAiming
	}
	return true
}

// Restore overwrites the simulation with a previously exported
// snapshot. Geometry is rebuilt from constants rather than trusted
// from the snapshot.
func (s *Simulation) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = NewTable()
	s.balls = snap.Balls
	s.state = snap.State
}

// State returns the current control state.
func (s *Simulation) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns a copy of the complete visible state.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:   s.state,
		Balls:   s.balls,
		Pockets: s.table.Pockets,
		Bounds:  s.table.Bounds,
	}
}

// ActiveBalls returns how many balls remain on the table.
func (s *Simulation) ActiveBalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for i := range s.balls {
		if s.balls[i].Active {
			n++
		}
	}
	return n
}
