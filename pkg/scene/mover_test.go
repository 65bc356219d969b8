package scene

import (
	"testing"
	"time"
)

func settle(m *Mover, steps int) {
	for i := 0; i < steps && m.Moving(); i++ {
		m.Update(50 * time.Millisecond)
	}
}

func TestMover_ArrivesAndFiresOnce(t *testing.T) {
	m := NewMover(&PlayerConfig{X: 0, Y: 0, Speed: 100})

	var arrivals int
	m.MoveTo(Point{X: 30, Y: 40}, false, func() { arrivals++ })

	settle(m, 100)

	if m.Moving() {
		t.Fatal("Mover never arrived")
	}
	if pos := m.Position(); pos.X != 30 || pos.Y != 40 {
		t.Errorf("Position = %+v, want exactly the target", pos)
	}
	if arrivals != 1 {
		t.Errorf("Arrivals = %d, want 1", arrivals)
	}
}

func TestMover_NewMoveCancelsPendingCallback(t *testing.T) {
	m := NewMover(&PlayerConfig{Speed: 100})

	var first, second int
	m.MoveTo(Point{X: 1000, Y: 0}, false, func() { first++ })
	m.Update(50 * time.Millisecond) // partway

	m.MoveTo(Point{X: 10, Y: 0}, false, func() { second++ })
	settle(m, 100)

	if first != 0 {
		t.Errorf("Replaced move's callback fired %d times", first)
	}
	if second != 1 {
		t.Errorf("Second move's callback fired %d times, want 1", second)
	}
}

func TestMover_CancelStopsInPlace(t *testing.T) {
	m := NewMover(&PlayerConfig{Speed: 100})

	var arrivals int
	m.MoveTo(Point{X: 100, Y: 0}, false, func() { arrivals++ })
	m.Update(100 * time.Millisecond)
	m.Cancel()

	pos := m.Position()
	settle(m, 10)

	if m.Position() != pos {
		t.Error("Cancelled mover should not keep moving")
	}
	if arrivals != 0 {
		t.Errorf("Cancelled move fired its callback %d times", arrivals)
	}
}

func TestMover_RunUsesRunSpeed(t *testing.T) {
	walk := NewMover(&PlayerConfig{Speed: 100, RunSpeed: 200})
	run := NewMover(&PlayerConfig{Speed: 100, RunSpeed: 200})

	walk.MoveTo(Point{X: 1000, Y: 0}, false, nil)
	run.MoveTo(Point{X: 1000, Y: 0}, true, nil)

	walk.Update(100 * time.Millisecond)
	run.Update(100 * time.Millisecond)

	if w, r := walk.Position().X, run.Position().X; r <= w {
		t.Errorf("Running should cover more ground: walk %v run %v", w, r)
	}
}

func TestMover_TeleportDropsMove(t *testing.T) {
	m := NewMover(nil)

	var arrivals int
	m.MoveTo(Point{X: 100, Y: 100}, false, func() { arrivals++ })
	m.Teleport(Point{X: 5, Y: 5})

	settle(m, 10)

	if pos := m.Position(); pos.X != 5 || pos.Y != 5 {
		t.Errorf("Position = %+v, want (5, 5)", pos)
	}
	if arrivals != 0 {
		t.Error("Teleport must not fire the pending callback")
	}
}
