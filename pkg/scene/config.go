// Package scene owns the per-scene lifecycle: spawning hotspot and item
// entities from declarative scene data, routing resolved input events, and
// tearing everything down on scene change. Game state lives in the game
// manager and survives transitions; everything here is scene-local.
package scene

import (
	"context"
	"math"

	"github.com/solhwan/pointclick/pkg/action"
)

// Point is a scene-space position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether both coordinates are finite numbers. Authoring
// mistakes produce NaN/Inf after arithmetic on missing fields; an invalid
// interaction point downgrades to immediate interaction instead of dropping
// the click.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Distance returns the straight-line distance to q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Rect is an axis-aligned bounding rectangle with origin at the top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point lies inside the rectangle, edges
// included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// HotspotConfig is the declarative form of a hotspot in scene data.
type HotspotConfig struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name,omitempty"`
	X                float64                   `json:"x"`
	Y                float64                   `json:"y"`
	Width            float64                   `json:"width,omitempty"`
	Height           float64                   `json:"height,omitempty"`
	Icon             string                    `json:"icon,omitempty"`
	Description      string                    `json:"description,omitempty"`
	Enabled          *bool                     `json:"enabled,omitempty"` // nil means true
	Visible          *bool                     `json:"visible,omitempty"` // nil means true
	VisibleWhen      string                    `json:"visible_when,omitempty"`
	InteractionPoint *Point                    `json:"interaction_point,omitempty"`
	ReachDistance    float64                   `json:"reach_distance,omitempty"`
	Action           *action.Action            `json:"action,omitempty"`
	ItemActions      map[string]*action.Action `json:"item_actions,omitempty"`
}

// ItemConfig places a collectible item in the scene.
type ItemConfig struct {
	ID            string  `json:"id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	PickupMessage string  `json:"pickup_message,omitempty"`
}

// PlayerConfig is the player's starting state in the scene.
type PlayerConfig struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Speed    float64 `json:"speed,omitempty"`
	RunSpeed float64 `json:"run_speed,omitempty"`
}

// Config is the per-scene document.
type Config struct {
	Background      string          `json:"background"`
	BackgroundMusic string          `json:"background_music,omitempty"`
	Hotspots        []HotspotConfig `json:"hotspots,omitempty"`
	Items           []ItemConfig    `json:"items,omitempty"`
	Player          *PlayerConfig   `json:"player,omitempty"`
	IntroEvent      *action.Action  `json:"intro_event,omitempty"`
}

// Source loads scene documents by key. The filesystem implementation lives
// in internal/storage.
type Source interface {
	LoadScene(ctx context.Context, sceneKey string) (*Config, error)
}
