package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solhwan/pointclick/internal/config"
	"github.com/solhwan/pointclick/internal/handlers"
	"github.com/solhwan/pointclick/internal/logger"
	"github.com/solhwan/pointclick/internal/network"
	"github.com/solhwan/pointclick/internal/storage"
	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/engine"
	"github.com/solhwan/pointclick/pkg/game"
	"github.com/solhwan/pointclick/pkg/inventory"
	"github.com/solhwan/pointclick/pkg/scene"
	"github.com/solhwan/pointclick/pkg/script"
)

const frameInterval = 50 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logg := logger.Setup(cfg)

	logg.Info("Starting point-and-click server",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage", cfg.Storage,
		"data_dir", cfg.DataDir)

	var store game.SaveStore
	var pinger handlers.Pinger
	var closeStore func() error

	switch cfg.Storage {
	case config.StorageRedis:
		rs := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, logg)
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := rs.WaitForConnection(storageCtx); err != nil {
			storageCancel()
			logg.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		storageCancel()
		store, pinger, closeStore = rs, rs, rs.Close
		logg.Info("Using redis save store", "addr", cfg.RedisAddr)
	case config.StorageSQLite:
		ss, err := storage.NewSQLiteStore(cfg.SQLitePath, logg)
		if err != nil {
			logg.Error("Failed to open sqlite save store", "error", err)
			os.Exit(1)
		}
		store, pinger, closeStore = ss, ss, ss.Close
		logg.Info("Using sqlite save store", "path", cfg.SQLitePath)
	default:
		store = storage.NewMemoryStore()
		logg.Info("Using in-memory save store")
	}

	content := storage.NewFileSource(cfg.DataDir, logg)
	manager := game.NewManager(store, content, cfg.SaveSlot, logger.WithSlot(logg, cfg.SaveSlot))

	hub := network.NewHub(logg)
	unsubscribe := hub.Attach(manager)
	defer unsubscribe()

	dlg := dialog.NewMachine(&hubPresenter{hub: hub}, nil, logg)
	stage := &hubStage{hub: hub, logger: logg}
	executor := engine.New(manager, dlg, stage, logg)
	dlg.SetRunner(executor)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()
	if err := manager.Initialize(initCtx); err != nil {
		// Degraded init still serves; the client sees the fallback scene.
		logg.Error("Game initialization failed", "error", err)
	}

	inv := inventory.NewView(manager, inventory.DefaultPageSize, logg)
	controller := scene.NewController(manager, executor, dlg, inv, stage, content, logg)
	stage.setController(controller)

	if cfg.ScriptPath != "" {
		eng := script.New(manager, dlg, stage, logg)
		if err := eng.LoadFile(cfg.ScriptPath); err != nil {
			logg.Error("Failed to load script handlers", "error", err)
			os.Exit(1)
		}
		executor.SetScriptRunner(eng)
		logg.Info("Script handlers loaded", "path", cfg.ScriptPath)
	}

	if err := controller.Load(context.Background(), manager.CurrentScene()); err != nil {
		logg.Error("Failed to load starting scene", "error", err)
		os.Exit(1)
	}

	// Game loop. Player movement and arrival callbacks advance on ticks;
	// everything else is input-driven through the handlers.
	loopCtx, loopCancel := context.WithCancel(context.Background())
	defer loopCancel()
	go func() {
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-loopCtx.Done():
				return
			case now := <-ticker.C:
				controller.Update(now.Sub(last))
				last = now
			}
		}
	}()

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(pinger, logg))
	mux.Handle("/v1/events", hub)

	sessionHandler := handlers.NewSessionHandler(manager, inv, controller, dlg, logg)
	mux.Handle("/v1/state", sessionHandler)
	mux.Handle("/v1/save", sessionHandler)
	mux.Handle("/v1/load", sessionHandler)
	mux.Handle("/v1/reset", sessionHandler)

	mux.Handle("/v1/interact", handlers.NewInteractHandler(controller, inv, dlg, logg))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logg.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Server is shutting down...")

	loopCancel()

	if closeStore != nil {
		if err := closeStore(); err != nil {
			logg.Error("Error closing save store", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logg.Info("Server exited")
}
