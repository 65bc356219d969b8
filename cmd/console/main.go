package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/solhwan/pointclick/internal/config"
	"github.com/solhwan/pointclick/internal/storage"
	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/engine"
	"github.com/solhwan/pointclick/pkg/game"
	"github.com/solhwan/pointclick/pkg/inventory"
	"github.com/solhwan/pointclick/pkg/scene"
	"github.com/solhwan/pointclick/pkg/script"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout; logs go to a file, or nowhere.
	logOut := io.Discard
	if f, err := os.OpenFile("console.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		defer f.Close()
		logOut = f
	}
	logg := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	var store game.SaveStore
	switch cfg.Storage {
	case config.StorageSQLite:
		ss, err := storage.NewSQLiteStore(cfg.SQLitePath, logg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sqlite: %v\n", err)
			os.Exit(1)
		}
		defer ss.Close()
		store = ss
	case config.StorageRedis:
		rs := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, logg)
		defer rs.Close()
		store = rs
	default:
		store = storage.NewMemoryStore()
	}

	content := storage.NewFileSource(cfg.DataDir, logg)
	manager := game.NewManager(store, content, cfg.SaveSlot, logg)

	presenter := &teaPresenter{}
	stage := &teaStage{}
	dlg := dialog.NewMachine(presenter, nil, logg)
	executor := engine.New(manager, dlg, stage, logg)
	dlg.SetRunner(executor)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := manager.Initialize(initCtx); err != nil {
		logg.Error("Game initialization degraded", "error", err)
	}
	cancel()

	inv := inventory.NewView(manager, inventory.DefaultPageSize, logg)
	controller := scene.NewController(manager, executor, dlg, inv, stage, content, logg)
	stage.controller = controller

	if cfg.ScriptPath != "" {
		eng := script.New(manager, dlg, stage, logg)
		if err := eng.LoadFile(cfg.ScriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "scripts: %v\n", err)
			os.Exit(1)
		}
		executor.SetScriptRunner(eng)
	}

	ui := NewConsoleUI(manager, controller, inv, dlg, logg)
	p := tea.NewProgram(ui, tea.WithAltScreen())
	presenter.program = p
	stage.program = p

	unsubscribe := manager.Subscribe(func(ev game.Event) {
		p.Send(gameEventMsg{event: ev})
	})
	defer unsubscribe()

	if err := controller.Load(context.Background(), manager.CurrentScene()); err != nil {
		fmt.Fprintf(os.Stderr, "load scene: %v\n", err)
		os.Exit(1)
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
