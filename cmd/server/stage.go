package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/solhwan/pointclick/internal/network"
	"github.com/solhwan/pointclick/pkg/engine"
	"github.com/solhwan/pointclick/pkg/game"
)

// hubPresenter mirrors dialog presentation onto the websocket feed. The
// server has no screen; clients render what they receive.
type hubPresenter struct {
	hub *network.Hub
}

func (p *hubPresenter) ShowLine(text, speaker string, choices []string) {
	p.hub.Broadcast(game.Event{Type: "dialog-line", Data: map[string]any{
		"text":    text,
		"speaker": speaker,
		"choices": choices,
	}})
}

func (p *hubPresenter) Hide() {
	p.hub.Broadcast(game.Event{Type: "dialog-hidden"})
}

// hubStage forwards presentation commands to clients. Tweens resolve
// immediately so action chains do not stall on a headless server.
type hubStage struct {
	hub    *network.Hub
	logger *slog.Logger

	mu         sync.Mutex
	controller sceneLoader
}

type sceneLoader interface {
	Load(ctx context.Context, sceneKey string) error
}

func (s *hubStage) setController(c sceneLoader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller = c
}

func (s *hubStage) PlayTween(target string, spec engine.TweenSpec, onComplete func()) {
	s.hub.Broadcast(game.Event{Type: "tween", Data: map[string]any{
		"target":   target,
		"props":    spec.Props,
		"duration": spec.Duration.Milliseconds(),
		"ease":     spec.Ease,
		"yoyo":     spec.Yoyo,
		"repeat":   spec.Repeat,
	}})
	if onComplete != nil {
		onComplete()
	}
}

func (s *hubStage) PlaySound(key string) {
	s.hub.Broadcast(game.Event{Type: "sound", Data: map[string]any{"key": key}})
}

func (s *hubStage) SwapTexture(hotspotID, texture string) {
	s.hub.Broadcast(game.Event{Type: "texture", Data: map[string]any{
		"hotspot": hotspotID,
		"texture": texture,
	}})
}

func (s *hubStage) TransitionScene(sceneKey string) {
	s.mu.Lock()
	c := s.controller
	s.mu.Unlock()
	if c == nil {
		s.logger.Warn("Scene transition before controller ready", "scene", sceneKey)
		return
	}
	if err := c.Load(context.Background(), sceneKey); err != nil {
		s.logger.Error("Scene transition failed", "scene", sceneKey, "error", err)
	}
}
