package websocket

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	ws "github.com/coder/websocket"

	"github.com/mlecomte/foyer/internal/apperr"
	"github.com/mlecomte/foyer/internal/auth"
	"github.com/mlecomte/foyer/internal/household"
)

// Handle returns an HTTP handler that upgrades connections to WebSocket and
// streams shopping-list snapshots for the household named in the household_id
// query parameter. Authentication happens upstream in middleware; the caller
// must own the household, same as the REST routes.
func Handle(hub *Hub, households *household.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		householdID, err := strconv.ParseInt(r.URL.Query().Get("household_id"), 10, 64)
		if err != nil || householdID <= 0 {
			http.Error(w, "invalid household_id", http.StatusBadRequest)
			return
		}

		if _, err := households.Get(userID, householdID); err != nil {
			switch {
			case errors.Is(err, apperr.ErrUnauthenticated):
				http.Error(w, "authentication required", http.StatusUnauthorized)
			case errors.Is(err, apperr.ErrNotFound):
				http.Error(w, "household not found", http.StatusNotFound)
			default:
				logger.Error("websocket household lookup", "household_id", householdID, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Mobile clients connect from app origins
		})
		if err != nil {
			logger.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, householdID)
		if err := hub.Register(userID, client); err != nil {
			logger.Error("websocket register", "household_id", householdID, "error", err)
			conn.Close(ws.StatusPolicyViolation, "subscription refused")
			return
		}
		client.Run(r.Context())
	}
}
