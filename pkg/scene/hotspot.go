package scene

import (
	"github.com/solhwan/pointclick/pkg/action"
)

const (
	defaultHotspotSize   = 50.0
	defaultReachDistance = 50.0
)

// Hotspot is a live interactive region spawned from a HotspotConfig.
type Hotspot struct {
	ID          string
	Name        string
	Bounds      Rect
	Icon        string
	Description string
	Enabled     bool
	Visible     bool

	interactionPoint Point
	interactionSet   bool
	reachDistance    float64
	visibleWhen      string
	act              *action.Action
	itemActions      map[string]*action.Action
}

// NewHotspot builds a hotspot entity, applying the config defaults: hotspots
// are enabled and visible unless declared otherwise, the reach distance
// defaults to 50 units, and the interaction point defaults to the bottom
// center of the bounds.
func NewHotspot(cfg HotspotConfig) *Hotspot {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = defaultHotspotSize
	}
	if h <= 0 {
		h = defaultHotspotSize
	}
	reach := cfg.ReachDistance
	if reach <= 0 {
		reach = defaultReachDistance
	}
	hs := &Hotspot{
		ID:            cfg.ID,
		Name:          cfg.Name,
		Bounds:        Rect{X: cfg.X, Y: cfg.Y, Width: w, Height: h},
		Icon:          cfg.Icon,
		Description:   cfg.Description,
		Enabled:       cfg.Enabled == nil || *cfg.Enabled,
		Visible:       cfg.Visible == nil || *cfg.Visible,
		reachDistance: reach,
		visibleWhen:   cfg.VisibleWhen,
		act:           cfg.Action,
		itemActions:   cfg.ItemActions,
	}
	if cfg.InteractionPoint != nil {
		hs.interactionPoint = *cfg.InteractionPoint
		hs.interactionSet = true
	} else {
		hs.interactionPoint = Point{X: cfg.X + w/2, Y: cfg.Y + h}
	}
	return hs
}

// ContainsPoint reports whether the scene coordinate hits this hotspot.
// Invisible or disabled hotspots never hit.
func (h *Hotspot) ContainsPoint(x, y float64) bool {
	if !h.Visible || !h.Enabled {
		return false
	}
	return h.Bounds.Contains(x, y)
}

// InteractionPoint is where the player walks to before interacting.
func (h *Hotspot) InteractionPoint() Point {
	return h.interactionPoint
}

// WithinReach reports whether pos is close enough to the interaction point
// for the interaction to fire without walking.
func (h *Hotspot) WithinReach(pos Point) bool {
	return pos.Distance(h.interactionPoint) <= h.reachDistance
}

// Action returns the hotspot's default interaction, or nil if it has none.
func (h *Hotspot) Action() *action.Action {
	return h.act
}

// ItemAction returns the interaction bound to using the given inventory item
// on this hotspot.
func (h *Hotspot) ItemAction(itemID string) (*action.Action, bool) {
	a, ok := h.itemActions[itemID]
	return a, ok && a != nil
}

// Enable makes the hotspot interactive again.
func (h *Hotspot) Enable() { h.Enabled = true }

// Disable keeps the hotspot visible but inert.
func (h *Hotspot) Disable() { h.Enabled = false }

// Show makes the hotspot visible and hit-testable.
func (h *Hotspot) Show() { h.Visible = true }

// Hide removes the hotspot from hit-testing without despawning it.
func (h *Hotspot) Hide() { h.Visible = false }

// Item is a collectible entity placed in the scene. Once the underlying item
// is in the inventory the entity is despawned and not respawned on revisit.
type Item struct {
	ID            string
	Bounds        Rect
	PickupMessage string
}

// NewItem builds a scene item entity from its config.
func NewItem(cfg ItemConfig) *Item {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = defaultHotspotSize
	}
	if h <= 0 {
		h = defaultHotspotSize
	}
	return &Item{
		ID:            cfg.ID,
		Bounds:        Rect{X: cfg.X, Y: cfg.Y, Width: w, Height: h},
		PickupMessage: cfg.PickupMessage,
	}
}

// ContainsPoint reports whether the scene coordinate hits this item.
func (i *Item) ContainsPoint(x, y float64) bool {
	return i.Bounds.Contains(x, y)
}

// Center is the item's midpoint, used as the walk target for pickup.
func (i *Item) Center() Point {
	return Point{X: i.Bounds.X + i.Bounds.Width/2, Y: i.Bounds.Y + i.Bounds.Height/2}
}
