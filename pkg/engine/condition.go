package engine

import (
	"fmt"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/solhwan/pointclick/pkg/action"
)

var (
	programMu    sync.Mutex
	programCache = map[string]*exprvm.Program{}
)

// conditional evaluates the when expression against current game state and
// runs the then or else branch. Evaluation errors are authoring mistakes:
// logged, branch skipped, session continues.
func (e *Executor) conditional(act *action.Action, env Env) {
	ok, err := e.EvalCondition(act.When)
	if err != nil {
		e.logger.Warn("Condition evaluation failed", "when", act.When, "error", err)
		return
	}
	branch := act.Else
	if ok {
		branch = act.Then
	}
	if branch != nil {
		e.Execute(branch, env)
	}
}

// EvalCondition evaluates a boolean expression against current game state.
// Programs are compiled once and cached; condition sets in scene data are
// small and stable for a session.
func (e *Executor) EvalCondition(expression string) (bool, error) {
	if expression == "" {
		return false, fmt.Errorf("empty condition expression")
	}

	programMu.Lock()
	program, cached := programCache[expression]
	programMu.Unlock()

	if !cached {
		var err error
		program, err = exprlang.Compile(expression)
		if err != nil {
			return false, fmt.Errorf("compile condition: %w", err)
		}
		programMu.Lock()
		programCache[expression] = program
		programMu.Unlock()
	}

	result, err := exprlang.Run(program, e.conditionEnv())
	if err != nil {
		return false, fmt.Errorf("run condition: %w", err)
	}

	switch v := result.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("condition yielded %T, want bool", result)
	}
}

// conditionEnv exposes game state to expressions: flags and inventory maps
// plus helper predicates, e.g. `has_item("key") && flag("door_open")`.
func (e *Executor) conditionEnv() map[string]any {
	return map[string]any{
		"flags":     e.game.Flags(),
		"inventory": e.game.CollectedItems(),
		"scene":     e.game.CurrentScene(),
		"has_item":  func(id string) bool { return e.game.HasItem(id) },
		"flag":      func(name string) bool { return e.game.FlagBool(name) },
		"visited":   func(sceneKey string) bool { return e.game.HasVisitedScene(sceneKey) },
	}
}
