package scene

import (
	"sync"
	"time"
)

const (
	defaultWalkSpeed = 160.0 // units per second
	defaultRunSpeed  = 320.0
)

// Mover moves the player avatar toward a target in a straight line, one
// Update call at a time. A new MoveTo replaces the previous move entirely:
// the old arrival callback is discarded and will never fire.
type Mover struct {
	mu       sync.Mutex
	pos      Point
	walk     float64
	run      float64
	target   Point
	moving   bool
	running  bool
	onArrive func()
}

// NewMover places the mover from the scene's player config. A nil config
// starts at the origin with default speeds.
func NewMover(cfg *PlayerConfig) *Mover {
	m := &Mover{walk: defaultWalkSpeed, run: defaultRunSpeed}
	if cfg != nil {
		m.pos = Point{X: cfg.X, Y: cfg.Y}
		if cfg.Speed > 0 {
			m.walk = cfg.Speed
		}
		if cfg.RunSpeed > 0 {
			m.run = cfg.RunSpeed
		}
	}
	return m
}

// Position returns the current position.
func (m *Mover) Position() Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// Moving reports whether a move is in progress.
func (m *Mover) Moving() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moving
}

// MoveTo starts a move toward target, cancelling any move already in
// progress along with its arrival callback. onArrive may be nil.
func (m *Mover) MoveTo(target Point, running bool, onArrive func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.target = target
	m.moving = true
	m.running = running
	m.onArrive = onArrive
}

// Cancel stops the current move in place without firing its callback.
func (m *Mover) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moving = false
	m.onArrive = nil
}

// Teleport moves instantly without triggering any callback.
func (m *Mover) Teleport(p Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = p
	m.moving = false
	m.onArrive = nil
}

// Update advances the move by the elapsed frame time. When the target is
// reached the position snaps to it and the arrival callback fires exactly
// once, outside the mover's lock.
func (m *Mover) Update(delta time.Duration) {
	m.mu.Lock()
	if !m.moving {
		m.mu.Unlock()
		return
	}
	speed := m.walk
	if m.running {
		speed = m.run
	}
	step := speed * delta.Seconds()
	dist := m.pos.Distance(m.target)
	if dist <= step {
		m.pos = m.target
		m.moving = false
		arrive := m.onArrive
		m.onArrive = nil
		m.mu.Unlock()
		if arrive != nil {
			arrive()
		}
		return
	}
	m.pos.X += (m.target.X - m.pos.X) / dist * step
	m.pos.Y += (m.target.Y - m.pos.Y) / dist * step
	m.mu.Unlock()
}
