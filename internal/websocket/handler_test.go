package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/mlecomte/foyer/internal/auth"
	"github.com/mlecomte/foyer/internal/household"
	"github.com/mlecomte/foyer/internal/store"
)

// serveWS serves the websocket handler with the given user injected as the
// authenticated caller, the way RequireAuth would upstream.
func serveWS(t *testing.T, hub *Hub, households *household.Service, userID int64) *httptest.Server {
	t.Helper()
	h := Handle(hub, households, slog.Default())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(auth.WithAuth(r.Context(), auth.AuthContext{UserID: userID, SessionID: 1}))
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, householdID int64) string {
	return fmt.Sprintf("%s/ws?household_id=%d", strings.Replace(srv.URL, "http", "ws", 1), householdID)
}

func TestHandleStreamsOwnerHousehold(t *testing.T) {
	hub, db, userID, householdID := setupHub(t)
	households := household.NewService(store.NewHouseholdStore(db), slog.Default())

	srv := serveWS(t, hub, households, userID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, wsURL(srv, householdID), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "snapshot" || msg.Snapshot.HouseholdID != householdID {
		t.Errorf("got %s for household %d, want snapshot for %d", msg.Type, msg.Snapshot.HouseholdID, householdID)
	}
}

func TestHandleRejectsNonOwner(t *testing.T) {
	hub, db, _, householdID := setupHub(t)
	households := household.NewService(store.NewHouseholdStore(db), slog.Default())

	// A second user who owns nothing must not be able to stream the first
	// user's list.
	intruder, err := store.NewUserStore(db).Create("mallory@example.com", "hash", "mallory")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	srv := serveWS(t, hub, households, intruder.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := ws.Dial(ctx, wsURL(srv, householdID), nil)
	if err == nil {
		t.Fatal("expected dial to fail for a household the caller does not own")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients, got %d", got)
	}
}

func TestHandleRejectsBadHouseholdID(t *testing.T) {
	hub, db, userID, _ := setupHub(t)
	households := household.NewService(store.NewHouseholdStore(db), slog.Default())

	srv := serveWS(t, hub, households, userID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws?household_id=abc"
	_, resp, err := ws.Dial(ctx, url, nil)
	if err == nil {
		t.Fatal("expected dial to fail for a malformed household_id")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %+v", resp)
	}
}
