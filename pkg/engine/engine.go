// Package engine interprets Action values against game state and the
// presentation capabilities. Dispatch is an exhaustive switch over the
// action type; unknown types are logged and skipped so newer authoring data
// degrades instead of crashing the session.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/solhwan/pointclick/pkg/action"
	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/game"
)

// fallbackHint is shown by requireItem when the author gave no hint text.
const fallbackHint = "It seems something is missing."

// Dialog is the slice of the dialog machine the engine drives.
type Dialog interface {
	Show(text string, opts dialog.ShowOptions)
	ShowConversation(lines []action.Line)
}

// TweenSpec describes a requested animation.
type TweenSpec struct {
	Props    map[string]float64
	Duration time.Duration
	Ease     string
	Yoyo     bool
	Repeat   int
}

// Stage is the presentation capability surface. The engine never touches
// drawing primitives; it only issues these calls. Terminal and test
// implementations resolve tweens immediately.
type Stage interface {
	PlayTween(target string, spec TweenSpec, onComplete func())
	PlaySound(key string)
	SwapTexture(hotspotID, texture string)
	TransitionScene(sceneKey string)
}

// Env carries the execution context: which hotspot fired the action and in
// which scene.
type Env struct {
	HotspotID string
	SceneKey  string
}

// Handler is a registered custom-action function.
type Handler func(env Env)

// ScriptRunner resolves custom handlers not registered in Go, typically
// script-defined ones.
type ScriptRunner interface {
	Has(name string) bool
	Call(name string, env Env) error
}

// Executor runs actions. It is safe for use from the single cooperative
// game loop plus observer callbacks.
type Executor struct {
	game   *game.Manager
	dialog Dialog
	stage  Stage
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	scripts  ScriptRunner
}

func New(g *game.Manager, d Dialog, s Stage, logger *slog.Logger) *Executor {
	return &Executor{
		game:     g,
		dialog:   d,
		stage:    s,
		logger:   logger,
		handlers: make(map[string]Handler),
	}
}

// RegisterHandler binds a name to a Go custom-action handler.
func (e *Executor) RegisterHandler(name string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[name] = h
}

// SetScriptRunner installs the fallback lookup for script-defined handlers.
func (e *Executor) SetScriptRunner(r ScriptRunner) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scripts = r
}

// Run satisfies dialog.Runner for choice actions.
func (e *Executor) Run(act *action.Action) {
	e.Execute(act, Env{SceneKey: e.game.CurrentScene()})
}

// Execute interprets one action, then recurses into its OnComplete chain.
// Execution is synchronous except where a branch hands control to an
// asynchronous presentation primitive (tween completion).
func (e *Executor) Execute(act *action.Action, env Env) {
	if act == nil {
		return
	}

	switch act.Type {
	case action.TypeDialog:
		e.dialog.Show(act.Text, dialog.ShowOptions{Speaker: act.Speaker})

	case action.TypeConversation:
		e.dialog.ShowConversation(act.Conversation)

	case action.TypeChangeScene:
		e.stage.TransitionScene(act.TargetScene)

	case action.TypeGiveItem:
		e.giveItem(act.ItemID)

	case action.TypeRequireItem:
		e.requireItem(act, env)

	case action.TypeToggleObject:
		e.toggleObject(act, env)

	case action.TypePlayAnimation:
		e.playAnimation(act, env)

	case action.TypePlaySound:
		e.stage.PlaySound(act.Sound)

	case action.TypeSetFlag:
		value := act.Value
		if value == nil {
			value = true
		}
		e.game.SetFlag(act.Flag, value)

	case action.TypeConditional:
		e.conditional(act, env)

	case action.TypeCustom:
		e.custom(act, env)

	default:
		e.logger.Warn("Unknown action type", "type", act.Type, "hotspot", env.HotspotID)
	}

	if act.OnComplete != nil {
		e.Execute(act.OnComplete, env)
	}
}

func (e *Executor) giveItem(itemID string) {
	if !e.game.CollectItem(itemID) {
		return
	}
	if item := e.game.ItemData(itemID); item != nil && item.PickupMessage != "" {
		e.dialog.Show(item.PickupMessage, dialog.ShowOptions{})
	}
}

// requireItem is the only conditional-branch action driven purely by
// inventory: holding the item unlocks the success path, otherwise the hint
// is shown and nothing changes.
func (e *Executor) requireItem(act *action.Action, env Env) {
	if !e.game.HasItem(act.Item) {
		hint := act.HintText
		if hint == "" {
			hint = fallbackHint
		}
		e.dialog.Show(hint, dialog.ShowOptions{})
		return
	}

	if act.ConsumeItem {
		e.game.RemoveItem(act.Item)
	}

	switch {
	case act.SuccessAction != nil:
		e.Execute(act.SuccessAction, env)
	case act.SuccessText != "":
		e.dialog.Show(act.SuccessText, dialog.ShowOptions{})
	}
}

// toggleObject flips the hotspot's persistent state flag and applies the
// optional texture, sound, and message effects.
func (e *Executor) toggleObject(act *action.Action, env Env) {
	if env.HotspotID == "" {
		e.logger.Warn("toggleObject without a hotspot context")
		return
	}

	flagName := env.HotspotID + "_state"
	wasOn := e.game.FlagBool(flagName)
	e.game.SetFlag(flagName, !wasOn)

	if act.ToggleTexture != "" {
		texture := act.ToggleTexture
		if wasOn {
			texture = act.DefaultTexture
		}
		e.stage.SwapTexture(env.HotspotID, texture)
	}

	if act.Sound != "" {
		e.stage.PlaySound(act.Sound)
	}

	if len(act.StateTexts) >= 2 {
		text := act.StateTexts[1]
		if wasOn {
			text = act.StateTexts[0]
		}
		e.dialog.Show(text, dialog.ShowOptions{})
	}
}

func (e *Executor) playAnimation(act *action.Action, env Env) {
	spec := TweenSpec{
		Props:    act.Props,
		Duration: time.Duration(act.DurationMS) * time.Millisecond,
		Ease:     act.Ease,
		Yoyo:     act.Yoyo,
		Repeat:   act.Repeat,
	}
	target := act.Target
	if target == "" || target == "this" {
		target = env.HotspotID
	}
	chained := act.OnAnimComplete
	e.stage.PlayTween(target, spec, func() {
		if chained != nil {
			e.Execute(chained, env)
		}
	})
}

func (e *Executor) custom(act *action.Action, env Env) {
	e.mu.Lock()
	h, ok := e.handlers[act.Handler]
	scripts := e.scripts
	e.mu.Unlock()

	if ok {
		h(env)
		return
	}
	if scripts != nil && scripts.Has(act.Handler) {
		if err := scripts.Call(act.Handler, env); err != nil {
			e.logger.Error("Script handler failed", "handler", act.Handler, "error", err)
		}
		return
	}
	e.logger.Warn("No handler registered for custom action", "handler", act.Handler)
}
