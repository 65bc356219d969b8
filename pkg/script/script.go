// Package script runs author-provided Lua handlers for custom actions.
// Handlers are plain global functions in the loaded script file; the
// executor falls back here when no Go handler matches the name.
package script

import (
	"fmt"
	"log/slog"
	"sync"

	lua "github.com/Shopify/go-lua"

	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/engine"
	"github.com/solhwan/pointclick/pkg/game"
)

// Engine hosts a single Lua state with the game API registered. The state
// is not safe for concurrent use, so all entry points serialize on one
// mutex.
type Engine struct {
	mu     sync.Mutex
	state  *lua.State
	game   *game.Manager
	dialog engine.Dialog
	stage  engine.Stage
	logger *slog.Logger
}

// New creates the Lua state and registers the host functions. The stage may
// be nil in headless contexts; stage calls then no-op.
func New(g *game.Manager, d engine.Dialog, s engine.Stage, logger *slog.Logger) *Engine {
	e := &Engine{
		state:  lua.NewState(),
		game:   g,
		dialog: d,
		stage:  s,
		logger: logger,
	}
	lua.OpenLibraries(e.state)
	e.register()
	return e
}

// LoadFile loads and executes a script file, defining its handler
// functions as globals.
func (e *Engine) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := lua.DoFile(e.state, path); err != nil {
		return fmt.Errorf("load script %q: %w", path, err)
	}
	return nil
}

// LoadString executes inline script source. Used by tests and authoring
// tools.
func (e *Engine) LoadString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := lua.DoString(e.state, src); err != nil {
		return fmt.Errorf("load script source: %w", err)
	}
	return nil
}

// Has reports whether the script defines a global function with this name.
func (e *Engine) Has(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Global(name)
	isFunc := e.state.TypeOf(-1) == lua.TypeFunction
	e.state.Pop(1)
	return isFunc
}

// Call invokes the named handler as handler(hotspot_id, scene_key).
func (e *Engine) Call(name string, env engine.Env) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Global(name)
	if e.state.TypeOf(-1) != lua.TypeFunction {
		e.state.Pop(1)
		return fmt.Errorf("script handler %q not defined", name)
	}
	e.state.PushString(env.HotspotID)
	e.state.PushString(env.SceneKey)
	if err := e.state.ProtectedCall(2, 0, 0); err != nil {
		return fmt.Errorf("script handler %q: %w", name, err)
	}
	return nil
}

// register installs the host API available to handlers.
func (e *Engine) register() {
	e.state.Register("set_flag", func(l *lua.State) int {
		name, _ := l.ToString(1)
		var value any
		switch l.TypeOf(2) {
		case lua.TypeBoolean:
			value = l.ToBoolean(2)
		case lua.TypeNumber:
			value, _ = l.ToNumber(2)
		case lua.TypeString:
			value, _ = l.ToString(2)
		case lua.TypeNil, lua.TypeNone:
			value = true
		default:
			value = l.ToBoolean(2)
		}
		e.game.SetFlag(name, value)
		return 0
	})

	e.state.Register("get_flag", func(l *lua.State) int {
		name, _ := l.ToString(1)
		switch v := e.game.Flag(name).(type) {
		case nil:
			l.PushNil()
		case bool:
			l.PushBoolean(v)
		case string:
			l.PushString(v)
		case float64:
			l.PushNumber(v)
		case int:
			l.PushNumber(float64(v))
		default:
			l.PushString(fmt.Sprintf("%v", v))
		}
		return 1
	})

	e.state.Register("give_item", func(l *lua.State) int {
		id, _ := l.ToString(1)
		l.PushBoolean(e.game.CollectItem(id))
		return 1
	})

	e.state.Register("remove_item", func(l *lua.State) int {
		id, _ := l.ToString(1)
		l.PushBoolean(e.game.RemoveItem(id))
		return 1
	})

	e.state.Register("has_item", func(l *lua.State) int {
		id, _ := l.ToString(1)
		l.PushBoolean(e.game.HasItem(id))
		return 1
	})

	e.state.Register("current_scene", func(l *lua.State) int {
		l.PushString(e.game.CurrentScene())
		return 1
	})

	e.state.Register("show_dialog", func(l *lua.State) int {
		text, _ := l.ToString(1)
		speaker, _ := l.ToString(2)
		if e.dialog != nil {
			e.dialog.Show(text, dialog.ShowOptions{Speaker: speaker})
		}
		return 0
	})

	e.state.Register("play_sound", func(l *lua.State) int {
		key, _ := l.ToString(1)
		if e.stage != nil {
			e.stage.PlaySound(key)
		}
		return 0
	})

	e.state.Register("change_scene", func(l *lua.State) int {
		key, _ := l.ToString(1)
		if e.stage != nil {
			e.stage.TransitionScene(key)
		}
		return 0
	})

	e.state.Register("log", func(l *lua.State) int {
		msg, _ := l.ToString(1)
		e.logger.Info("Script log", "message", msg)
		return 0
	})
}
