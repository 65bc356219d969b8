package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/solhwan/pointclick/pkg/dialog"
	"github.com/solhwan/pointclick/pkg/inventory"
	"github.com/solhwan/pointclick/pkg/scene"
)

// InteractRequest is one player input, already resolved to scene
// coordinates by the client.
type InteractRequest struct {
	// Type selects the input: tap, examine, choose, select, deselect,
	// combine, scroll.
	Type string `json:"type"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// Choice index for type "choose".
	Choice int `json:"choice,omitempty"`

	// Item ids for "select" and "combine".
	ItemID   string `json:"item_id,omitempty"`
	TargetID string `json:"target_id,omitempty"`

	// Direction for "scroll": "back" or "forward".
	Direction string `json:"direction,omitempty"`
}

// InteractResponse reports the immediate outcome; state changes stream over
// the websocket feed.
type InteractResponse struct {
	DialogState dialog.State `json:"dialog_state"`
	Selected    string       `json:"selected_item,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// InteractHandler routes player input into the scene controller and
// inventory view.
type InteractHandler struct {
	controller *scene.Controller
	inv        *inventory.View
	dlg        *dialog.Machine
	logger     *slog.Logger
}

func NewInteractHandler(c *scene.Controller, inv *inventory.View, d *dialog.Machine, logger *slog.Logger) *InteractHandler {
	return &InteractHandler{
		controller: c,
		inv:        inv,
		dlg:        d,
		logger:     logger,
	}
}

// ServeHTTP handles POST /v1/interact
func (h *InteractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid interact request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp := InteractResponse{}

	switch req.Type {
	case "tap":
		h.controller.Tap(req.X, req.Y)
	case "examine":
		h.controller.Examine(req.X, req.Y)
	case "choose":
		h.controller.Choose(req.Choice)
	case "select":
		if req.ItemID == "" {
			writeError(w, h.logger, http.StatusBadRequest, "item_id is required for select")
			return
		}
		h.inv.Select(req.ItemID)
	case "deselect":
		h.inv.Deselect()
	case "combine":
		if req.ItemID == "" || req.TargetID == "" {
			writeError(w, h.logger, http.StatusBadRequest, "item_id and target_id are required for combine")
			return
		}
		// Select toggles; skip it when the item is already selected so a
		// prior select request does not undo itself.
		if sel := h.inv.Selected(); sel == nil || sel.ID != req.ItemID {
			h.inv.Select(req.ItemID)
		}
		result, msg := h.inv.CombineSelectedWith(req.TargetID)
		resp.Message = msg
		if result == nil && msg == "" {
			resp.Message = "Nothing happens."
		}
	case "scroll":
		switch req.Direction {
		case "back":
			h.inv.ScrollBack()
		case "forward":
			h.inv.ScrollForward()
		default:
			writeError(w, h.logger, http.StatusBadRequest, "direction must be back or forward")
			return
		}
	default:
		writeError(w, h.logger, http.StatusBadRequest, "Unknown interaction type: "+req.Type)
		return
	}

	resp.DialogState = h.dlg.State()
	if sel := h.inv.Selected(); sel != nil {
		resp.Selected = sel.ID
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}
