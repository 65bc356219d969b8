package game

import (
	"context"
	"time"
)

// Snapshot is the only externally persisted shape. It is version-agnostic:
// loading tolerates missing fields and fills defaults instead of rejecting.
type Snapshot struct {
	CurrentScene  string         `json:"current_scene,omitempty"`
	Inventory     []string       `json:"inventory,omitempty"`
	Flags         map[string]any `json:"flags,omitempty"`
	VisitedScenes []string       `json:"visited_scenes,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// SaveStore persists snapshots under named slots. Implementations live in
// internal/storage; the manager only depends on this interface.
type SaveStore interface {
	SaveSnapshot(ctx context.Context, slot string, snap *Snapshot) error
	LoadSnapshot(ctx context.Context, slot string) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, slot string) error
	HasSnapshot(ctx context.Context, slot string) (bool, error)
}
