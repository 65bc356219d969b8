package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/solhwan/pointclick/internal/storage"
	"github.com/solhwan/pointclick/pkg/catalog"
	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/engine"
	"github.com/solhwan/pointclick/pkg/game"
	"github.com/solhwan/pointclick/pkg/inventory"
	"github.com/solhwan/pointclick/pkg/scene"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

type stubContent struct{ doc *catalog.Document }

func (s stubContent) LoadCatalog(ctx context.Context) (*catalog.Document, error) {
	return s.doc, nil
}

type stubSource struct {
	scenes map[string]*scene.Config
}

func (s *stubSource) LoadScene(ctx context.Context, sceneKey string) (*scene.Config, error) {
	cfg, ok := s.scenes[sceneKey]
	if !ok {
		return nil, fmt.Errorf("scene not found: %s", sceneKey)
	}
	return cfg, nil
}

type nullPresenter struct{}

func (nullPresenter) ShowLine(text, speaker string, choices []string) {}
func (nullPresenter) Hide()                                           {}

type nullStage struct{}

func (nullStage) PlayTween(target string, spec engine.TweenSpec, onComplete func()) {
	if onComplete != nil {
		onComplete()
	}
}
func (nullStage) PlaySound(key string)                  {}
func (nullStage) SwapTexture(hotspotID, texture string) {}
func (nullStage) TransitionScene(sceneKey string)       {}

type testSession struct {
	game       *game.Manager
	inv        *inventory.View
	controller *scene.Controller
	dlg        *dialog.Machine
	store      *storage.MemoryStore
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	doc := &catalog.Document{
		Items: []catalog.Item{
			{ID: "key", Name: "Brass Key"},
			{ID: "wire", Name: "Copper Wire"},
			{ID: "lockpick", Name: "Lockpick"},
		},
		Combinations: []catalog.Combination{
			{Item1: "key", Item2: "wire", Result: "lockpick"},
		},
		StartingScene: "study",
	}
	store := storage.NewMemoryStore()
	m := game.NewManager(store, stubContent{doc: doc}, "default", testLogger())
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	dlg := dialog.NewMachine(nullPresenter{}, nil, testLogger())
	ex := engine.New(m, dlg, nullStage{}, testLogger())
	dlg.SetRunner(ex)
	inv := inventory.NewView(m, inventory.DefaultPageSize, testLogger())
	source := &stubSource{scenes: map[string]*scene.Config{
		"study":  {Background: "study_bg"},
		"cellar": {Background: "cellar_bg"},
	}}
	controller := scene.NewController(m, ex, dlg, inv, nullStage{}, source, testLogger())
	if err := controller.Load(context.Background(), "study"); err != nil {
		t.Fatalf("Scene load failed: %v", err)
	}
	return &testSession{game: m, inv: inv, controller: controller, dlg: dlg, store: store}
}

func (s *testSession) handler() *SessionHandler {
	return NewSessionHandler(s.game, s.inv, s.controller, s.dlg, testLogger())
}

func TestSessionHandler_State(t *testing.T) {
	s := newTestSession(t)
	s.game.CollectItem("key")
	s.inv.Reload()
	s.inv.Select("key")

	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	rr := httptest.NewRecorder()
	s.handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}

	var state SessionState
	if err := json.NewDecoder(rr.Body).Decode(&state); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if state.Scene != "study" {
		t.Errorf("Scene = %q", state.Scene)
	}
	if state.Background != "study_bg" {
		t.Errorf("Background = %q", state.Background)
	}
	if len(state.Inventory) != 1 || state.Inventory[0].ID != "key" {
		t.Errorf("Inventory = %+v", state.Inventory)
	}
	if state.Selected != "key" {
		t.Errorf("Selected = %q", state.Selected)
	}
	if state.DialogState != dialog.StateIdle {
		t.Errorf("DialogState = %q", state.DialogState)
	}
}

func TestSessionHandler_SaveLoadRoundTrip(t *testing.T) {
	s := newTestSession(t)
	s.game.CollectItem("key")
	s.game.SetFlag("door_open", true)

	req := httptest.NewRequest(http.MethodPost, "/v1/save", nil)
	rr := httptest.NewRecorder()
	s.handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Save status = %d: %s", rr.Code, rr.Body.String())
	}

	// Mutate the session, then load the snapshot back.
	s.game.RemoveItem("key")
	s.game.SetFlag("door_open", false)

	req = httptest.NewRequest(http.MethodPost, "/v1/load", nil)
	rr = httptest.NewRecorder()
	s.handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Load status = %d: %s", rr.Code, rr.Body.String())
	}

	if !s.game.HasItem("key") {
		t.Error("Inventory should be restored from the snapshot")
	}
	if !s.game.FlagBool("door_open") {
		t.Error("Flags should be restored from the snapshot")
	}
}

func TestSessionHandler_LoadWithoutSave(t *testing.T) {
	s := newTestSession(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/load", nil)
	rr := httptest.NewRecorder()
	s.handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an empty slot, got %d", rr.Code)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error == "" {
		t.Error("Expected an error message")
	}
}

func TestSessionHandler_SaveFailure(t *testing.T) {
	s := newTestSession(t)
	s.store.SetSaveError(fmt.Errorf("disk full"))

	req := httptest.NewRequest(http.MethodPost, "/v1/save", nil)
	rr := httptest.NewRecorder()
	s.handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 on store failure, got %d", rr.Code)
	}
}

func TestSessionHandler_Reset(t *testing.T) {
	s := newTestSession(t)
	s.game.CollectItem("key")
	s.game.SetFlag("door_open", true)
	s.game.SetCurrentScene("cellar")

	req := httptest.NewRequest(http.MethodPost, "/v1/reset", nil)
	rr := httptest.NewRecorder()
	s.handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Reset status = %d: %s", rr.Code, rr.Body.String())
	}
	var state SessionState
	if err := json.NewDecoder(rr.Body).Decode(&state); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if state.Scene != "study" {
		t.Errorf("Scene after reset = %q, want the starting scene", state.Scene)
	}
	if s.game.HasItem("key") {
		t.Error("Inventory should be cleared by reset")
	}
	if s.game.FlagBool("door_open") {
		t.Error("Flags should be cleared by reset")
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	s := newTestSession(t)

	req := httptest.NewRequest(http.MethodDelete, "/v1/state", nil)
	rr := httptest.NewRecorder()
	s.handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rr.Code)
	}
}
