// Package game owns the canonical session state of a running adventure:
// current scene, inventory, progress flags, visited scenes, and the item and
// combination catalogs. All mutation goes through the Manager API, and every
// mutating call notifies subscribed observers after the change is fully
// applied. The manager is handed explicitly to every component that needs
// it; there is no ambient singleton.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/solhwan/pointclick/pkg/catalog"
)

// FallbackScene is used when neither the catalog nor a snapshot names one.
const FallbackScene = "room1"

// ContentSource loads the catalog document. Implementations live in
// internal/storage.
type ContentSource interface {
	LoadCatalog(ctx context.Context) (*catalog.Document, error)
}

type initState struct {
	done chan struct{}
	err  error
}

// Manager is the single source of truth for session state.
type Manager struct {
	store   SaveStore
	content ContentSource
	logger  *slog.Logger
	slot    string

	mu           sync.Mutex
	init         *initState
	initialized  bool
	doc          *catalog.Document
	items        map[string]catalog.Item
	combinations map[string]catalog.Combination

	currentScene  string
	inventory     []string
	flags         map[string]any
	visitedScenes map[string]struct{}

	observers    []observer
	nextObserver int
}

// NewManager wires the manager to its persistence and content collaborators.
// slot names the save record; an empty slot defaults to "default".
func NewManager(store SaveStore, content ContentSource, slot string, logger *slog.Logger) *Manager {
	if slot == "" {
		slot = "default"
	}
	return &Manager{
		store:         store,
		content:       content,
		logger:        logger,
		slot:          slot,
		flags:         make(map[string]any),
		visitedScenes: make(map[string]struct{}),
	}
}

// Initialize loads the catalog and either restores the saved snapshot or
// starts a fresh game. A catalog load failure is not fatal: the manager
// falls back to an empty catalog, emits init-error, and returns the load
// error so the caller can surface a warning. The manager is usable either
// way. Concurrent calls are coalesced: a second call issued while the first
// is in flight waits for and returns the same result.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.init != nil {
		init := m.init
		m.mu.Unlock()
		select {
		case <-init.done:
			return init.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	init := &initState{done: make(chan struct{})}
	m.init = init
	m.mu.Unlock()

	init.err = m.runInit(ctx)
	close(init.done)
	return init.err
}

func (m *Manager) runInit(ctx context.Context) error {
	doc, err := m.content.LoadCatalog(ctx)
	if err != nil {
		m.logger.Error("Catalog load failed, continuing with defaults", "error", err)
		m.mu.Lock()
		m.doc = &catalog.Document{}
		m.items = map[string]catalog.Item{}
		m.combinations = map[string]catalog.Combination{}
		m.initialized = true
		m.mu.Unlock()
		m.ResetState()
		m.emit(Event{Type: EventInitError, Data: map[string]any{"error": err.Error()}})
		return fmt.Errorf("load catalog: %w", err)
	}

	combos := make(map[string]catalog.Combination, len(doc.Combinations))
	for _, c := range doc.Combinations {
		combos[catalog.CombinationKey(c.Item1, c.Item2)] = c
	}

	m.mu.Lock()
	m.doc = doc
	m.items = doc.ItemIndex()
	m.combinations = combos
	m.initialized = true
	m.mu.Unlock()

	if snap, err := m.store.LoadSnapshot(ctx, m.slot); err != nil {
		m.logger.Warn("Saved game unavailable, starting fresh", "slot", m.slot, "error", err)
		m.ResetState()
	} else if snap != nil {
		m.LoadSnapshot(snap)
	} else {
		m.ResetState()
	}

	m.logger.Info("Game manager initialized",
		"items", len(doc.Items),
		"combinations", len(doc.Combinations),
		"starting_scene", doc.StartingScene)
	m.emit(Event{Type: EventInitComplete})
	return nil
}

// ensureInitialized reports whether the manager is ready. Query and mutation
// methods degrade to zero values before initialization instead of failing.
func (m *Manager) ensureInitialized() bool {
	m.mu.Lock()
	ok := m.initialized
	m.mu.Unlock()
	if !ok {
		m.logger.Warn("Game manager used before initialization")
	}
	return ok
}

// ResetState returns the session to a new game: catalog starting scene (or
// the fixed fallback), empty inventory, flags, and visited set, then grants
// any catalog-declared starting items.
func (m *Manager) ResetState() {
	m.mu.Lock()
	scene := FallbackScene
	var starting []string
	if m.doc != nil {
		if m.doc.StartingScene != "" {
			scene = m.doc.StartingScene
		}
		starting = m.doc.StartingItems
	}
	m.currentScene = scene
	m.inventory = nil
	m.flags = make(map[string]any)
	m.visitedScenes = make(map[string]struct{})
	m.mu.Unlock()

	for _, id := range starting {
		m.CollectItem(id)
	}
	m.emit(Event{Type: EventStateReset})
}

// LoadSnapshot overwrites state from a saved snapshot. Missing fields fall
// back to defaults; a partial or malformed snapshot never fails the load.
func (m *Manager) LoadSnapshot(snap *Snapshot) {
	if snap == nil {
		return
	}
	m.mu.Lock()
	scene := snap.CurrentScene
	if scene == "" {
		if m.doc != nil && m.doc.StartingScene != "" {
			scene = m.doc.StartingScene
		} else {
			scene = FallbackScene
		}
	}
	m.currentScene = scene
	m.inventory = append([]string(nil), snap.Inventory...)
	m.flags = make(map[string]any, len(snap.Flags))
	for k, v := range snap.Flags {
		m.flags[k] = v
	}
	m.visitedScenes = make(map[string]struct{}, len(snap.VisitedScenes))
	for _, s := range snap.VisitedScenes {
		m.visitedScenes[s] = struct{}{}
	}
	m.mu.Unlock()

	m.emit(Event{Type: EventGameLoaded, Data: map[string]any{"scene": scene}})
}

// SaveSnapshot serializes current state and writes it to the save store. The
// snapshot is built before the write, so callers get one even when the store
// fails; the error reports the failed write.
func (m *Manager) SaveSnapshot(ctx context.Context) (*Snapshot, error) {
	if !m.ensureInitialized() {
		return nil, fmt.Errorf("game manager not initialized")
	}

	m.mu.Lock()
	visited := make([]string, 0, len(m.visitedScenes))
	for s := range m.visitedScenes {
		visited = append(visited, s)
	}
	sort.Strings(visited)
	flags := make(map[string]any, len(m.flags))
	for k, v := range m.flags {
		flags[k] = v
	}
	snap := &Snapshot{
		CurrentScene:  m.currentScene,
		Inventory:     append([]string(nil), m.inventory...),
		Flags:         flags,
		VisitedScenes: visited,
		Timestamp:     time.Now().UTC(),
	}
	m.mu.Unlock()

	if err := m.store.SaveSnapshot(ctx, m.slot, snap); err != nil {
		m.logger.Error("Failed to persist snapshot", "slot", m.slot, "error", err)
		return snap, fmt.Errorf("save snapshot: %w", err)
	}

	m.emit(Event{Type: EventGameSaved, Data: map[string]any{"scene": snap.CurrentScene}})
	return snap, nil
}

// ReloadSnapshot fetches the slot's snapshot from the store and applies it.
// Returns nil, nil when the slot has no save.
func (m *Manager) ReloadSnapshot(ctx context.Context) (*Snapshot, error) {
	if !m.ensureInitialized() {
		return nil, fmt.Errorf("game manager not initialized")
	}

	snap, err := m.store.LoadSnapshot(ctx, m.slot)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil, nil
	}
	m.LoadSnapshot(snap)
	return snap, nil
}

// SetCurrentScene updates the active scene and records it as visited.
func (m *Manager) SetCurrentScene(sceneKey string) {
	if !m.ensureInitialized() {
		return
	}
	m.mu.Lock()
	previous := m.currentScene
	m.currentScene = sceneKey
	m.visitedScenes[sceneKey] = struct{}{}
	m.mu.Unlock()

	m.emit(Event{Type: EventSceneChanged, Data: map[string]any{
		"previous": previous,
		"scene":    sceneKey,
	}})
}

// CurrentScene returns the active scene key.
func (m *Manager) CurrentScene() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentScene
}

// HasVisitedScene reports whether the scene was ever entered this session.
func (m *Manager) HasVisitedScene(sceneKey string) bool {
	if !m.ensureInitialized() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.visitedScenes[sceneKey]
	return ok
}

// SceneState is the per-scene view handed to the scene controller on load.
type SceneState struct {
	SceneKey      string
	Flags         map[string]any
	VisitedBefore bool
}

// SavedSceneState returns the saved view for the active scene, or nil when
// sceneKey is not the current scene.
func (m *Manager) SavedSceneState(sceneKey string) *SceneState {
	if !m.ensureInitialized() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sceneKey != m.currentScene {
		return nil
	}
	flags := make(map[string]any, len(m.flags))
	for k, v := range m.flags {
		flags[k] = v
	}
	_, visited := m.visitedScenes[sceneKey]
	return &SceneState{SceneKey: sceneKey, Flags: flags, VisitedBefore: visited}
}
