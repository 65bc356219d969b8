package engine

import (
	"testing"

	"github.com/solhwan/pointclick/pkg/action"
)

func TestEvalCondition(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		setup      func(e *Executor)
		want       bool
		wantErr    bool
	}{
		{
			name:       "has_item true",
			expression: `has_item("key")`,
			setup: func(e *Executor) {
				e.game.CollectItem("key")
			},
			want: true,
		},
		{
			name:       "has_item false",
			expression: `has_item("key")`,
			want:       false,
		},
		{
			name:       "flag helper",
			expression: `flag("door_open")`,
			setup: func(e *Executor) {
				e.game.SetFlag("door_open", true)
			},
			want: true,
		},
		{
			name:       "visited helper",
			expression: `visited("study")`,
			setup: func(e *Executor) {
				e.game.SetCurrentScene("study")
			},
			want: true,
		},
		{
			name:       "visited helper before entering",
			expression: `visited("study")`,
			want:       false,
		},
		{
			name:       "scene comparison",
			expression: `scene == "study"`,
			want:       true,
		},
		{
			name:       "compound expression",
			expression: `has_item("key") && !flag("door_open")`,
			setup: func(e *Executor) {
				e.game.CollectItem("key")
			},
			want: true,
		},
		{
			name:       "flags map access",
			expression: `flags["count"] == 3`,
			setup: func(e *Executor) {
				e.game.SetFlag("count", 3)
			},
			want: true,
		},
		{
			name:       "empty expression",
			expression: "",
			wantErr:    true,
		},
		{
			name:       "syntax error",
			expression: "has_item(",
			wantErr:    true,
		},
		{
			name:       "non-bool result",
			expression: `"text"`,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _, _ := newTestExecutor(t)
			if tt.setup != nil {
				tt.setup(e)
			}

			got, err := e.EvalCondition(tt.expression)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("EvalCondition failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("EvalCondition(%q) = %v, want %v", tt.expression, got, tt.want)
			}
		})
	}
}

func TestExecute_ConditionalBranches(t *testing.T) {
	e, m, d, _ := newTestExecutor(t)

	act := &action.Action{
		Type: action.TypeConditional,
		When: `has_item("key")`,
		Then: &action.Action{Type: action.TypeDialog, Text: "Unlocked."},
		Else: &action.Action{Type: action.TypeDialog, Text: "Locked."},
	}

	e.Run(act)
	if d.shown[len(d.shown)-1] != "Locked." {
		t.Errorf("Else branch expected, got %v", d.shown)
	}

	m.CollectItem("key")
	e.Run(act)
	if d.shown[len(d.shown)-1] != "Unlocked." {
		t.Errorf("Then branch expected, got %v", d.shown)
	}
}

func TestExecute_ConditionalErrorSkipsBothBranches(t *testing.T) {
	e, _, d, _ := newTestExecutor(t)

	e.Run(&action.Action{
		Type: action.TypeConditional,
		When: "not valid (",
		Then: &action.Action{Type: action.TypeDialog, Text: "A"},
		Else: &action.Action{Type: action.TypeDialog, Text: "B"},
	})

	if len(d.shown) != 0 {
		t.Errorf("No branch should run on a broken condition, got %v", d.shown)
	}
}
