package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/solhwan/pointclick/pkg/engine"
	"github.com/solhwan/pointclick/pkg/game"
	"github.com/solhwan/pointclick/pkg/scene"
)

// Messages delivered into the bubbletea loop.

type dialogLineMsg struct {
	text    string
	speaker string
	choices []string
}

type dialogHiddenMsg struct{}

type soundMsg struct{ key string }

type sceneLoadedMsg struct{ sceneKey string }

type gameEventMsg struct{ event game.Event }

type tickMsg struct{}

// teaPresenter feeds dialog presentation into the UI loop.
type teaPresenter struct {
	program *tea.Program
}

func (p *teaPresenter) ShowLine(text, speaker string, choices []string) {
	if p.program != nil {
		p.program.Send(dialogLineMsg{text: text, speaker: speaker, choices: choices})
	}
}

func (p *teaPresenter) Hide() {
	if p.program != nil {
		p.program.Send(dialogHiddenMsg{})
	}
}

// teaStage renders presentation commands as terminal notices. Tweens have
// no visual; they complete immediately so action chains continue.
type teaStage struct {
	program    *tea.Program
	controller *scene.Controller
}

func (s *teaStage) PlayTween(target string, spec engine.TweenSpec, onComplete func()) {
	if onComplete != nil {
		onComplete()
	}
}

func (s *teaStage) PlaySound(key string) {
	if s.program != nil {
		s.program.Send(soundMsg{key: key})
	}
}

func (s *teaStage) SwapTexture(hotspotID, texture string) {}

func (s *teaStage) TransitionScene(sceneKey string) {
	if s.controller == nil {
		return
	}
	if err := s.controller.Load(context.Background(), sceneKey); err == nil && s.program != nil {
		s.program.Send(sceneLoadedMsg{sceneKey: sceneKey})
	}
}
