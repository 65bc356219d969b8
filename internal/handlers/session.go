package handlers

import (
	"log/slog"
	"net/http"

	"github.com/solhwan/pointclick/pkg/catalog"
	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/game"
	"github.com/solhwan/pointclick/pkg/inventory"
	"github.com/solhwan/pointclick/pkg/scene"
)

// SessionState is the client-facing view of the running session.
type SessionState struct {
	Scene       string         `json:"scene"`
	Background  string         `json:"background,omitempty"`
	Inventory   []catalog.Item `json:"inventory"`
	Visible     []catalog.Item `json:"visible_inventory"`
	Selected    string         `json:"selected_item,omitempty"`
	Flags       map[string]any `json:"flags"`
	DialogState dialog.State   `json:"dialog_state"`
}

// SessionHandler serves session state and the save lifecycle.
type SessionHandler struct {
	game       *game.Manager
	inv        *inventory.View
	controller *scene.Controller
	dlg        *dialog.Machine
	logger     *slog.Logger
}

func NewSessionHandler(g *game.Manager, inv *inventory.View, c *scene.Controller, d *dialog.Machine, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		game:       g,
		inv:        inv,
		controller: c,
		dlg:        d,
		logger:     logger,
	}
}

// ServeHTTP handles session operations
// Routes:
// GET  /v1/state - Current session state
// POST /v1/save  - Save a snapshot to the configured slot
// POST /v1/load  - Load the slot snapshot into the session
// POST /v1/reset - Reset to a fresh game
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/state":
		h.handleState(w)
	case r.Method == http.MethodPost && r.URL.Path == "/v1/save":
		h.handleSave(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/v1/load":
		h.handleLoad(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/v1/reset":
		h.handleReset(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SessionHandler) handleState(w http.ResponseWriter) {
	state := SessionState{
		Scene:       h.game.CurrentScene(),
		Background:  h.controller.Background(),
		Inventory:   h.inv.Items(),
		Visible:     h.inv.Visible(),
		Flags:       h.game.Flags(),
		DialogState: h.dlg.State(),
	}
	if sel := h.inv.Selected(); sel != nil {
		state.Selected = sel.ID
	}
	writeJSON(w, h.logger, http.StatusOK, state)
}

func (h *SessionHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	snap, err := h.game.SaveSnapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to save snapshot", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, snap)
}

func (h *SessionHandler) handleLoad(w http.ResponseWriter, r *http.Request) {
	snap, err := h.game.ReloadSnapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to load snapshot", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if snap == nil {
		writeError(w, h.logger, http.StatusNotFound, "No saved game")
		return
	}
	if err := h.controller.Load(r.Context(), h.game.CurrentScene()); err != nil {
		h.logger.Error("Failed to load scene after restore", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load scene")
		return
	}
	h.inv.Reload()
	writeJSON(w, h.logger, http.StatusOK, snap)
}

func (h *SessionHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.game.ResetState()
	if err := h.controller.Load(r.Context(), h.game.CurrentScene()); err != nil {
		h.logger.Error("Failed to load scene after reset", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load scene")
		return
	}
	h.inv.Reload()
	h.handleState(w)
}
