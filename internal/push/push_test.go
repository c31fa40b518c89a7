package push

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/mlecomte/foyer/internal/database"
	"github.com/mlecomte/foyer/internal/model"
	"github.com/mlecomte/foyer/internal/store"
)

func setupPush(t *testing.T) (*Service, *store.UserStore, *store.PushStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	subs := store.NewPushStore(db)
	u, err := users.Create("carol@example.com", "hash", "carol")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	svc := NewService("pub", "priv", users, subs, slog.Default())
	return svc, users, subs, u.ID
}

func TestNotifyFansOutToSubscriptions(t *testing.T) {
	svc, users, subs, userID := setupPush(t)

	if _, err := users.UpdateProfile(userID, "carol", "", true); err != nil {
		t.Fatalf("enable notifications: %v", err)
	}
	for _, endpoint := range []string{"https://push.example/a", "https://push.example/b"} {
		if _, err := subs.CreateSubscription(userID, endpoint, "p256dh", "auth"); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	var sent []string
	svc.send = func(data []byte, sub *model.PushSubscription) error {
		var p Payload
		if err := json.Unmarshal(data, &p); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if p.Body != "Milk was added to the shopping list" {
			t.Errorf("body = %q", p.Body)
		}
		if p.Title != "Foyer" {
			t.Errorf("title = %q, want Foyer", p.Title)
		}
		sent = append(sent, sub.Endpoint)
		return nil
	}

	svc.NotifyItemAdded(userID, "Foyer", "Milk")
	if len(sent) != 2 {
		t.Errorf("expected 2 sends, got %v", sent)
	}
}

func TestNotifySkipsOptedOutUser(t *testing.T) {
	svc, _, subs, userID := setupPush(t)

	// notifications_enabled defaults to off
	if _, err := subs.CreateSubscription(userID, "https://push.example/a", "p", "a"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	svc.send = func(data []byte, sub *model.PushSubscription) error {
		t.Error("unexpected send to opted-out user")
		return nil
	}
	svc.NotifyItemAdded(userID, "Foyer", "Milk")
}

func TestNotifyPrunesExpiredSubscriptions(t *testing.T) {
	svc, users, subs, userID := setupPush(t)

	if _, err := users.UpdateProfile(userID, "carol", "", true); err != nil {
		t.Fatalf("enable notifications: %v", err)
	}
	if _, err := subs.CreateSubscription(userID, "https://push.example/dead", "p", "a"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := subs.CreateSubscription(userID, "https://push.example/live", "p", "a"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	svc.send = func(data []byte, sub *model.PushSubscription) error {
		if sub.Endpoint == "https://push.example/dead" {
			return ErrExpired
		}
		return nil
	}
	svc.NotifyItemAdded(userID, "Foyer", "Milk")

	remaining, err := subs.ListByUser(userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Endpoint != "https://push.example/live" {
		t.Errorf("remaining = %+v, want only the live endpoint", remaining)
	}
}

func TestNotifyDisabledService(t *testing.T) {
	svc, users, subs, userID := setupPush(t)
	svc.publicKey = ""
	svc.privateKey = ""

	if _, err := users.UpdateProfile(userID, "carol", "", true); err != nil {
		t.Fatalf("enable notifications: %v", err)
	}
	if _, err := subs.CreateSubscription(userID, "https://push.example/a", "p", "a"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	svc.send = func(data []byte, sub *model.PushSubscription) error {
		t.Error("unexpected send from disabled service")
		return nil
	}
	svc.NotifyItemAdded(userID, "Foyer", "Milk")
}

func TestSendErrorsDoNotStopFanOut(t *testing.T) {
	svc, users, subs, userID := setupPush(t)

	if _, err := users.UpdateProfile(userID, "carol", "", true); err != nil {
		t.Fatalf("enable notifications: %v", err)
	}
	if _, err := subs.CreateSubscription(userID, "https://push.example/flaky", "p", "a"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := subs.CreateSubscription(userID, "https://push.example/ok", "p", "a"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	var delivered []string
	svc.send = func(data []byte, sub *model.PushSubscription) error {
		if sub.Endpoint == "https://push.example/flaky" {
			return errors.New("push service returned 502")
		}
		delivered = append(delivered, sub.Endpoint)
		return nil
	}
	svc.NotifyItemAdded(userID, "Foyer", "Milk")

	if len(delivered) != 1 || delivered[0] != "https://push.example/ok" {
		t.Errorf("delivered = %v, want the healthy endpoint", delivered)
	}
}

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}
