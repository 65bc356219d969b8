package script

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/solhwan/pointclick/pkg/action"
	"github.com/solhwan/pointclick/pkg/catalog"
	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/engine"
	"github.com/solhwan/pointclick/pkg/game"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubContent struct{ doc *catalog.Document }

func (s stubContent) LoadCatalog(ctx context.Context) (*catalog.Document, error) {
	return s.doc, nil
}

type nullStore struct{}

func (nullStore) SaveSnapshot(ctx context.Context, slot string, snap *game.Snapshot) error {
	return nil
}
func (nullStore) LoadSnapshot(ctx context.Context, slot string) (*game.Snapshot, error) {
	return nil, nil
}
func (nullStore) DeleteSnapshot(ctx context.Context, slot string) error { return nil }
func (nullStore) HasSnapshot(ctx context.Context, slot string) (bool, error) {
	return false, nil
}

type recordingDialog struct {
	texts    []string
	speakers []string
}

func (d *recordingDialog) Show(text string, opts dialog.ShowOptions) {
	d.texts = append(d.texts, text)
	d.speakers = append(d.speakers, opts.Speaker)
}
func (d *recordingDialog) ShowConversation(lines []action.Line) {}

type recordingStage struct {
	sounds []string
	scenes []string
}

func (s *recordingStage) PlayTween(target string, spec engine.TweenSpec, onComplete func()) {
	if onComplete != nil {
		onComplete()
	}
}
func (s *recordingStage) PlaySound(key string)                  { s.sounds = append(s.sounds, key) }
func (s *recordingStage) SwapTexture(hotspotID, texture string) {}
func (s *recordingStage) TransitionScene(sceneKey string)       { s.scenes = append(s.scenes, sceneKey) }

func newTestEngine(t *testing.T) (*Engine, *game.Manager, *recordingDialog, *recordingStage) {
	t.Helper()
	doc := &catalog.Document{
		Items: []catalog.Item{
			{ID: "key", Name: "Brass Key"},
			{ID: "coin", Name: "Old Coin"},
		},
		StartingScene: "study",
	}
	m := game.NewManager(nullStore{}, stubContent{doc: doc}, "test", testLogger())
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	m.SetCurrentScene("study")
	d := &recordingDialog{}
	s := &recordingStage{}
	return New(m, d, s, testLogger()), m, d, s
}

func TestEngine_HasReportsFunctions(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	src := `
		handled = true
		function open_vault(hotspot, scene) end
	`
	if err := e.LoadString(src); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	if !e.Has("open_vault") {
		t.Error("Has should report a defined function")
	}
	if e.Has("handled") {
		t.Error("Has must not report non-function globals")
	}
	if e.Has("missing") {
		t.Error("Has must not report undefined names")
	}
}

func TestEngine_CallPassesEnvironment(t *testing.T) {
	e, m, _, _ := newTestEngine(t)

	src := `
		function inspect(hotspot, scene)
			set_flag("seen_" .. hotspot, scene)
		end
	`
	if err := e.LoadString(src); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	err := e.Call("inspect", engine.Env{HotspotID: "painting", SceneKey: "study"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if got := m.Flag("seen_painting"); got != "study" {
		t.Errorf("Flag = %v, want %q", got, "study")
	}
}

func TestEngine_CallUndefinedHandler(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	if err := e.Call("nothing_here", engine.Env{}); err == nil {
		t.Fatal("Call on an undefined handler should fail")
	}
}

func TestEngine_CallRuntimeError(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	if err := e.LoadString(`function boom() error("broken handler") end`); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if err := e.Call("boom", engine.Env{}); err == nil {
		t.Fatal("Runtime error inside the handler should surface to the caller")
	}
}

func TestEngine_LoadStringSyntaxError(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	if err := e.LoadString(`function broken(`); err == nil {
		t.Fatal("Invalid source should fail to load")
	}
}

func TestEngine_GameStateAPI(t *testing.T) {
	e, m, _, _ := newTestEngine(t)

	src := `
		function run(hotspot, scene)
			set_flag("door_open", true)
			set_flag("count", 3)
			set_flag("note")
			if get_flag("door_open") then
				give_item("key")
			end
			if has_item("key") then
				give_item("coin")
				remove_item("coin")
			end
			set_flag("where", current_scene())
		end
	`
	if err := e.LoadString(src); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if err := e.Call("run", engine.Env{SceneKey: "study"}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if got := m.Flag("door_open"); got != true {
		t.Errorf("door_open = %v, want true", got)
	}
	if got := m.Flag("count"); got != float64(3) {
		t.Errorf("count = %v, want 3", got)
	}
	if got := m.Flag("note"); got != true {
		t.Errorf("set_flag without a value should default to true, got %v", got)
	}
	if !m.HasItem("key") {
		t.Error("give_item should add to inventory")
	}
	if m.HasItem("coin") {
		t.Error("remove_item should take the item back out")
	}
	if got := m.Flag("where"); got != "study" {
		t.Errorf("current_scene returned %v", got)
	}
}

func TestEngine_PresentationAPI(t *testing.T) {
	e, _, d, s := newTestEngine(t)

	src := `
		function cutscene(hotspot, scene)
			show_dialog("The lock clicks open.", "Narrator")
			play_sound("sfx_unlock")
			change_scene("vault")
		end
	`
	if err := e.LoadString(src); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if err := e.Call("cutscene", engine.Env{}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if len(d.texts) != 1 || d.texts[0] != "The lock clicks open." {
		t.Errorf("Dialog texts = %v", d.texts)
	}
	if d.speakers[0] != "Narrator" {
		t.Errorf("Speaker = %q", d.speakers[0])
	}
	if len(s.sounds) != 1 || s.sounds[0] != "sfx_unlock" {
		t.Errorf("Sounds = %v", s.sounds)
	}
	if len(s.scenes) != 1 || s.scenes[0] != "vault" {
		t.Errorf("Scene transitions = %v", s.scenes)
	}
}

func TestEngine_NilStageNoOps(t *testing.T) {
	doc := &catalog.Document{StartingScene: "study"}
	m := game.NewManager(nullStore{}, stubContent{doc: doc}, "test", testLogger())
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	e := New(m, nil, nil, testLogger())

	src := `
		function quiet(hotspot, scene)
			show_dialog("ignored", "")
			play_sound("ignored")
			change_scene("ignored")
		end
	`
	if err := e.LoadString(src); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if err := e.Call("quiet", engine.Env{}); err != nil {
		t.Fatalf("Call with nil presentation should not fail: %v", err)
	}
}
