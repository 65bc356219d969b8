package scene

import (
	"testing"

	"github.com/solhwan/pointclick/pkg/action"
)

func boolp(b bool) *bool { return &b }

func TestNewHotspot_Defaults(t *testing.T) {
	hs := NewHotspot(HotspotConfig{ID: "door", X: 100, Y: 200})

	if hs.Bounds.Width != defaultHotspotSize || hs.Bounds.Height != defaultHotspotSize {
		t.Errorf("Bounds = %+v, want default size", hs.Bounds)
	}
	if !hs.Enabled || !hs.Visible {
		t.Error("Hotspots default to enabled and visible")
	}

	// Interaction point defaults to bottom center.
	ip := hs.InteractionPoint()
	if ip.X != 125 || ip.Y != 250 {
		t.Errorf("InteractionPoint = %+v, want (125, 250)", ip)
	}
}

func TestNewHotspot_ExplicitConfig(t *testing.T) {
	hs := NewHotspot(HotspotConfig{
		ID: "door", X: 0, Y: 0, Width: 10, Height: 10,
		Enabled:          boolp(false),
		Visible:          boolp(false),
		InteractionPoint: &Point{X: 99, Y: 98},
		ReachDistance:    5,
	})

	if hs.Enabled || hs.Visible {
		t.Error("Explicit false flags should stick")
	}
	if ip := hs.InteractionPoint(); ip.X != 99 || ip.Y != 98 {
		t.Errorf("InteractionPoint = %+v", ip)
	}
	if hs.WithinReach(Point{X: 99, Y: 90}) {
		t.Error("8 units away with reach 5 should be out of reach")
	}
	if !hs.WithinReach(Point{X: 99, Y: 94}) {
		t.Error("4 units away with reach 5 should be in reach")
	}
}

func TestHotspot_ContainsPoint(t *testing.T) {
	hs := NewHotspot(HotspotConfig{ID: "door", X: 10, Y: 10, Width: 20, Height: 20})

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 20, 20, true},
		{"on edge", 10, 10, true},
		{"far corner", 30, 30, true},
		{"outside", 31, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hs.ContainsPoint(tt.x, tt.y); got != tt.want {
				t.Errorf("ContainsPoint(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	hs.Visible = false
	if hs.ContainsPoint(20, 20) {
		t.Error("Invisible hotspots never hit")
	}
	hs.Visible = true
	hs.Enabled = false
	if hs.ContainsPoint(20, 20) {
		t.Error("Disabled hotspots never hit")
	}
}

func TestHotspot_ItemAction(t *testing.T) {
	hs := NewHotspot(HotspotConfig{
		ID: "door",
		ItemActions: map[string]*action.Action{
			"key": {Type: action.TypeChangeScene, TargetScene: "vault"},
		},
	})

	if _, ok := hs.ItemAction("key"); !ok {
		t.Error("Expected bound item action")
	}
	if _, ok := hs.ItemAction("wire"); ok {
		t.Error("Unbound item must not resolve")
	}
}
