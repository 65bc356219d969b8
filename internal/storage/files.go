package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/solhwan/pointclick/pkg/catalog"
	"github.com/solhwan/pointclick/pkg/scene"
)

// FileSource loads static game content from a data directory:
// game-data.json for the item catalog and scenes/<key>.json for scene
// documents. Content is authored data, read-only at runtime.
type FileSource struct {
	dataDir string
	logger  *slog.Logger
}

// NewFileSource creates a content source rooted at dataDir.
func NewFileSource(dataDir string, logger *slog.Logger) *FileSource {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &FileSource{dataDir: dataDir, logger: logger}
}

// LoadCatalog reads and validates the game data document.
func (f *FileSource) LoadCatalog(ctx context.Context) (*catalog.Document, error) {
	path := filepath.Join(f.dataDir, "game-data.json")
	f.logger.Debug("Loading catalog", "path", path)

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("game data not found at %s", path)
		}
		return nil, fmt.Errorf("failed to read game data: %w", err)
	}

	var doc catalog.Document
	if err := json.Unmarshal(file, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game data: %w", err)
	}

	if errs := doc.Validate(); len(errs) > 0 {
		for _, e := range errs {
			f.logger.Warn("Catalog validation issue", "error", e)
		}
		return nil, fmt.Errorf("game data is invalid: %v", errs[0])
	}

	return &doc, nil
}

// LoadScene reads a scene document by key.
func (f *FileSource) LoadScene(ctx context.Context, sceneKey string) (*scene.Config, error) {
	// Scene keys come from authored data, but changeScene targets pass
	// through player-reachable paths; keep them inside the scenes dir.
	if strings.ContainsAny(sceneKey, `/\`) || strings.Contains(sceneKey, "..") {
		return nil, fmt.Errorf("invalid scene key: %s", sceneKey)
	}

	path := filepath.Join(f.dataDir, "scenes", sceneKey+".json")
	f.logger.Debug("Loading scene", "scene", sceneKey, "path", path)

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("scene not found: %s", sceneKey)
		}
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var cfg scene.Config
	if err := json.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scene %s: %w", sceneKey, err)
	}

	return &cfg, nil
}

// ListScenes returns the scene keys available under the data directory.
func (f *FileSource) ListScenes(ctx context.Context) ([]string, error) {
	scenesDir := filepath.Join(f.dataDir, "scenes")
	var keys []string

	err := filepath.WalkDir(scenesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		keys = append(keys, strings.TrimSuffix(filepath.Base(path), ".json"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}

	return keys, nil
}
