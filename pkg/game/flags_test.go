package game

import "testing"

func TestSetFlag_RoundTripAndEvent(t *testing.T) {
	m, _ := newTestManager(t)

	var got Event
	m.Subscribe(func(ev Event) {
		if ev.Type == EventFlagChanged {
			got = ev
		}
	})

	m.SetFlag("door_open", true)

	if v := m.Flag("door_open"); v != true {
		t.Errorf("Flag value = %v, want true", v)
	}
	if got.Data["flag"] != "door_open" || got.Data["new"] != true || got.Data["old"] != nil {
		t.Errorf("Unexpected flag-changed data: %v", got.Data)
	}

	m.SetFlag("door_open", false)
	if m.FlagBool("door_open") {
		t.Error("Expected flag false after overwrite")
	}
}

func TestFlagBool_Truthiness(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"unset", nil, false},
		{"bool true", true, true},
		{"bool false", false, false},
		{"non-empty string", "yes", true},
		{"empty string", "", false},
		{"non-zero number", float64(2), true},
		{"zero number", float64(0), false},
		{"zero int", 0, false},
		{"other type", []string{"x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t)
			if tt.value != nil {
				m.SetFlag("f", tt.value)
			}
			if got := m.FlagBool("f"); got != tt.want {
				t.Errorf("FlagBool(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFlags_ReturnsCopy(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetFlag("a", 1)

	flags := m.Flags()
	flags["a"] = 99

	if v := m.Flag("a"); v != 1 {
		t.Errorf("Mutating the returned map must not affect state, got %v", v)
	}
}
