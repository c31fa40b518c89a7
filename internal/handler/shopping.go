package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mlecomte/foyer/internal/auth"
	"github.com/mlecomte/foyer/internal/household"
	"github.com/mlecomte/foyer/internal/push"
	"github.com/mlecomte/foyer/internal/sync"
)

type ShoppingHandler struct {
	engine     *sync.Engine
	households *household.Service
	push       *push.Service
	logger     *slog.Logger
}

func NewShoppingHandler(engine *sync.Engine, hs *household.Service, ps *push.Service, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{engine: engine, households: hs, push: ps, logger: logger}
}

// household loads the household after checking the caller owns it.
func (h *ShoppingHandler) household(w http.ResponseWriter, r *http.Request) (*hhRef, bool) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid household id"})
		return nil, false
	}
	userID := auth.UserID(r.Context())
	hh, err := h.households.Get(userID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	return &hhRef{id: hh.ID, name: hh.Name, ownerID: hh.OwnerID, userID: userID}, true
}

type hhRef struct {
	id      int64
	name    string
	ownerID int64
	userID  int64
}

// List handles GET /api/households/{id}/shopping
func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	hh, ok := h.household(w, r)
	if !ok {
		return
	}

	snap, err := h.engine.Snapshot(hh.id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type addItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// AddItem handles POST /api/households/{id}/shopping/items
func (h *ShoppingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	hh, ok := h.household(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.engine.AddItem(hh.userID, hh.id, req.Category, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if item == nil {
		// Blank name, nothing written
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// The owner is also the adder, so this reaches their other devices. The
	// push service skips users who turned notifications off.
	go h.push.NotifyItemAdded(hh.ownerID, hh.name, item.Name)

	writeJSON(w, http.StatusCreated, item)
}

// ToggleItem handles POST /api/households/{id}/shopping/items/{itemID}/toggle
func (h *ShoppingHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	hh, ok := h.household(w, r)
	if !ok {
		return
	}
	itemID, err := parseIDParam(r, "itemID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	item, err := h.engine.ToggleBought(hh.id, itemID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/households/{id}/shopping/items/{itemID}
func (h *ShoppingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	hh, ok := h.household(w, r)
	if !ok {
		return
	}
	itemID, err := parseIDParam(r, "itemID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	if err := h.engine.RemoveItem(hh.id, itemID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categories handles GET /api/categories
func (h *ShoppingHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"ordered":  cfg.Ordered,
		"fallback": cfg.Fallback,
	})
}
