package scene

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/solhwan/pointclick/pkg/action"
	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/engine"
	"github.com/solhwan/pointclick/pkg/game"
	"github.com/solhwan/pointclick/pkg/inventory"
)

const (
	doubleTapWindow  = 350 * time.Millisecond
	cannotUseText    = "That doesn't work here."
	cannotCombineTxt = "These cannot be combined."
	pickupTweenTime  = 300 * time.Millisecond
)

// Controller runs one loaded scene: it owns the spawned entities, the
// player mover, and the input routing. Input resolution is synchronous on
// the game loop, so an action triggered by one tap fully executes before
// the next tap is hit-tested.
type Controller struct {
	game     *game.Manager
	executor *engine.Executor
	dialog   *dialog.Machine
	inv      *inventory.View
	stage    engine.Stage
	source   Source
	logger   *slog.Logger

	mu       sync.Mutex
	sceneKey string
	cfg      *Config
	hotspots []*Hotspot
	items    []*Item
	player   *Mover
	lastTap  time.Time
}

// NewController wires the scene controller to the shared game systems.
// Conditionally visible hotspots are re-evaluated whenever a flag changes,
// so a reveal takes effect without reloading the scene.
func NewController(g *game.Manager, ex *engine.Executor, d *dialog.Machine, inv *inventory.View, stage engine.Stage, source Source, logger *slog.Logger) *Controller {
	c := &Controller{
		game:     g,
		executor: ex,
		dialog:   d,
		inv:      inv,
		stage:    stage,
		source:   source,
		logger:   logger,
		player:   NewMover(nil),
	}
	g.Subscribe(func(ev game.Event) {
		if ev.Type == game.EventFlagChanged {
			c.refreshVisibility()
		}
	})
	return c
}

func (c *Controller) refreshVisibility() {
	c.mu.Lock()
	hotspots := make([]*Hotspot, len(c.hotspots))
	copy(hotspots, c.hotspots)
	c.mu.Unlock()

	for _, hs := range hotspots {
		if hs.visibleWhen == "" {
			continue
		}
		visible, err := c.executor.EvalCondition(hs.visibleWhen)
		if err != nil {
			continue
		}
		hs.Visible = visible
	}
}

// Load tears down the current scene and brings up the named one: entities
// are spawned from scene data, already-collected items are filtered out,
// persisted toggle states are re-applied, and on first visit the intro
// event runs.
func (c *Controller) Load(ctx context.Context, sceneKey string) error {
	cfg, err := c.source.LoadScene(ctx, sceneKey)
	if err != nil {
		return fmt.Errorf("load scene %q: %w", sceneKey, err)
	}

	firstVisit := !c.game.HasVisitedScene(sceneKey)
	c.game.SetCurrentScene(sceneKey)

	c.mu.Lock()
	c.teardownLocked()
	c.sceneKey = sceneKey
	c.cfg = cfg
	c.player = NewMover(cfg.Player)

	for _, hc := range cfg.Hotspots {
		hs := NewHotspot(hc)
		if hc.VisibleWhen != "" {
			visible, err := c.executor.EvalCondition(hc.VisibleWhen)
			if err != nil {
				c.logger.Warn("Hotspot visibility condition failed", "hotspot", hc.ID, "error", err)
			} else {
				hs.Visible = visible
			}
		}
		c.hotspots = append(c.hotspots, hs)
	}
	for _, ic := range cfg.Items {
		if c.game.HasItem(ic.ID) {
			continue
		}
		c.items = append(c.items, NewItem(ic))
	}
	hotspots := make([]*Hotspot, len(c.hotspots))
	copy(hotspots, c.hotspots)
	c.mu.Unlock()

	// Toggled objects keep their state across scene changes and reloads;
	// the flag is the source of truth, the texture follows it.
	if state := c.game.SavedSceneState(sceneKey); state != nil {
		for _, hs := range hotspots {
			act := hs.Action()
			if act == nil || act.Type != action.TypeToggleObject {
				continue
			}
			on, _ := state.Flags[hs.ID+"_state"].(bool)
			if on && act.ToggleTexture != "" {
				c.stage.SwapTexture(hs.ID, act.ToggleTexture)
			}
		}
	}

	if cfg.BackgroundMusic != "" {
		c.stage.PlaySound(cfg.BackgroundMusic)
	}

	c.logger.Debug("Scene loaded", "scene", sceneKey, "hotspots", len(hotspots), "first_visit", firstVisit)

	if firstVisit && cfg.IntroEvent != nil {
		c.executor.Execute(cfg.IntroEvent, engine.Env{SceneKey: sceneKey})
	}
	return nil
}

// Teardown despawns all entities and cancels any pending move.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

func (c *Controller) teardownLocked() {
	c.hotspots = nil
	c.items = nil
	c.cfg = nil
	if c.player != nil {
		c.player.Cancel()
	}
}

// SceneKey returns the currently loaded scene key, or "" before Load.
func (c *Controller) SceneKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sceneKey
}

// Background returns the loaded scene's background key.
func (c *Controller) Background() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return ""
	}
	return c.cfg.Background
}

// Hotspots returns the live hotspot entities.
func (c *Controller) Hotspots() []*Hotspot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Hotspot, len(c.hotspots))
	copy(out, c.hotspots)
	return out
}

// Items returns the item entities still present in the scene.
func (c *Controller) Items() []*Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}

// Player returns the scene's player mover.
func (c *Controller) Player() *Mover {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player
}

// Update advances per-frame state by the elapsed time.
func (c *Controller) Update(delta time.Duration) {
	c.Player().Update(delta)
}

// Tap routes a primary tap or click. Priority order: an active dialog
// consumes the tap, then hotspots, then scene items, then walking. Two taps
// inside the double-tap window make the walk a run.
func (c *Controller) Tap(x, y float64) {
	if c.dialog.Active() {
		// A line advances; a pending choice waits for Choose.
		if c.dialog.State() == dialog.StateShowingLine {
			c.dialog.Continue()
		}
		return
	}

	c.mu.Lock()
	now := time.Now()
	running := now.Sub(c.lastTap) <= doubleTapWindow
	c.lastTap = now
	c.mu.Unlock()

	if hs := c.hotspotAt(x, y); hs != nil {
		if sel := c.inv.Selected(); sel != nil {
			c.useItemOn(hs, sel.ID)
			return
		}
		c.interact(hs, running)
		return
	}
	if it := c.itemAt(x, y); it != nil {
		if sel := c.inv.Selected(); sel != nil {
			c.combineWithSceneItem(sel.ID, it)
			return
		}
		c.pickUp(it, running)
		return
	}
	c.Player().MoveTo(Point{X: x, Y: y}, running, nil)
}

// Examine routes a secondary (right-click or long-press) tap: it shows the
// description of whatever is under the cursor without triggering its action.
func (c *Controller) Examine(x, y float64) {
	if c.dialog.Active() {
		return
	}
	if hs := c.hotspotAt(x, y); hs != nil {
		text := hs.Description
		if text == "" {
			text = hs.Name
		}
		if text != "" {
			c.dialog.Show(text, dialog.ShowOptions{})
		}
		return
	}
	if it := c.itemAt(x, y); it != nil {
		if def := c.game.ItemData(it.ID); def != nil && def.Description != "" {
			c.dialog.Show(def.Description, dialog.ShowOptions{})
		}
	}
}

// Choose forwards a dialog choice selection.
func (c *Controller) Choose(i int) {
	c.dialog.Choose(i)
}

func (c *Controller) hotspotAt(x, y float64) *Hotspot {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Later entries draw on top, so hit-test back to front.
	for i := len(c.hotspots) - 1; i >= 0; i-- {
		if c.hotspots[i].ContainsPoint(x, y) {
			return c.hotspots[i]
		}
	}
	return nil
}

func (c *Controller) itemAt(x, y float64) *Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i].ContainsPoint(x, y) {
			return c.items[i]
		}
	}
	return nil
}

// interact walks the player to the hotspot's interaction point, then fires
// its action. Already in reach, or an unusable interaction point, fires
// immediately. A second interaction before arrival replaces the pending
// one, so the action fires at most once per command.
func (c *Controller) interact(hs *Hotspot, running bool) {
	c.approach(hs.InteractionPoint(), hs.WithinReach(c.Player().Position()), running, func() {
		c.fire(hs)
	})
}

func (c *Controller) fire(hs *Hotspot) {
	act := hs.Action()
	if act == nil {
		c.logger.Debug("Hotspot has no action", "hotspot", hs.ID)
		return
	}
	c.executor.Execute(act, engine.Env{HotspotID: hs.ID, SceneKey: c.SceneKey()})
}

// useItemOn attempts the hotspot's item-specific interaction with the
// selected inventory item. The selection is cleared either way.
func (c *Controller) useItemOn(hs *Hotspot, itemID string) {
	defer c.inv.Deselect()
	act, ok := hs.ItemAction(itemID)
	if !ok {
		c.dialog.Show(cannotUseText, dialog.ShowOptions{})
		return
	}
	c.approach(hs.InteractionPoint(), hs.WithinReach(c.Player().Position()), false, func() {
		c.executor.Execute(act, engine.Env{HotspotID: hs.ID, SceneKey: c.SceneKey()})
	})
}

// pickUp walks to the item, plays a short fade, and collects it.
func (c *Controller) pickUp(it *Item, running bool) {
	c.approach(it.Center(), false, running, func() {
		c.stage.PlayTween(it.ID, engine.TweenSpec{
			Props:    map[string]float64{"alpha": 0},
			Duration: pickupTweenTime,
		}, func() {
			c.collect(it)
		})
	})
}

func (c *Controller) collect(it *Item) {
	if !c.game.CollectItem(it.ID) {
		return
	}
	c.despawnItem(it.ID)

	def := c.game.ItemData(it.ID)
	if def != nil {
		c.inv.AddItem(*def)
	}

	msg := it.PickupMessage
	if msg == "" && def != nil {
		msg = def.PickupMessage
	}
	if msg == "" && def != nil {
		msg = "Picked up " + def.Name + "."
	}
	if msg != "" {
		c.dialog.Show(msg, dialog.ShowOptions{AutoClose: true})
	}
}

// combineWithSceneItem tries to combine the selected inventory item with an
// item still lying in the scene. Combination resolution stays in the game
// manager; the scene only reflects the outcome.
func (c *Controller) combineWithSceneItem(selectedID string, it *Item) {
	defer c.inv.Deselect()

	comb, ok := c.game.CombinationFor(selectedID, it.ID)
	result := c.game.CombineItems(selectedID, it.ID)
	if result == nil {
		c.dialog.Show(cannotCombineTxt, dialog.ShowOptions{})
		return
	}
	c.despawnItem(it.ID)
	c.inv.Reload()

	msg := comb.CreationMessage
	if msg == "" && ok {
		msg = "Created " + result.Name + "."
	}
	if msg != "" {
		c.dialog.Show(msg, dialog.ShowOptions{AutoClose: true})
	}
}

func (c *Controller) despawnItem(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.ID == itemID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// approach moves toward target and runs fn on arrival. When already in
// reach, or the target is not a usable point, fn runs immediately instead.
func (c *Controller) approach(target Point, inReach, running bool, fn func()) {
	if inReach || !target.Valid() {
		fn()
		return
	}
	c.Player().MoveTo(target, running, fn)
}
