package store

import (
	"testing"

	"github.com/mlecomte/foyer/internal/database"
)

func setupPushTestDB(t *testing.T) (*PushStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db), NewUserStore(db)
}

func TestPushCreateSubscription(t *testing.T) {
	ps, us := setupPushTestDB(t)

	u, _ := us.Create("alice@example.com", "hash", "alice")

	sub, err := ps.CreateSubscription(u.ID, "https://push.example.com/abc", "p256dh", "auth")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if sub.Endpoint != "https://push.example.com/abc" {
		t.Errorf("endpoint = %q", sub.Endpoint)
	}
}

func TestPushCreateSubscriptionUpsert(t *testing.T) {
	ps, us := setupPushTestDB(t)

	u, _ := us.Create("alice@example.com", "hash", "alice")

	first, _ := ps.CreateSubscription(u.ID, "https://push.example.com/abc", "k1", "a1")
	second, err := ps.CreateSubscription(u.ID, "https://push.example.com/abc", "k2", "a2")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same row on upsert, got %d and %d", first.ID, second.ID)
	}
	if second.P256dhKey != "k2" {
		t.Errorf("p256dh = %q, want k2", second.P256dhKey)
	}

	subs, _ := ps.ListByUser(u.ID)
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	ps, us := setupPushTestDB(t)

	u, _ := us.Create("alice@example.com", "hash", "alice")
	ps.CreateSubscription(u.ID, "https://push.example.com/abc", "k", "a")

	if err := ps.DeleteByEndpoint(u.ID, "https://push.example.com/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sub, _ := ps.GetByEndpoint("https://push.example.com/abc")
	if sub != nil {
		t.Error("expected nil after delete")
	}
}

func TestPushDeleteByEndpointOtherUser(t *testing.T) {
	ps, us := setupPushTestDB(t)

	alice, _ := us.Create("alice@example.com", "hash", "alice")
	bob, _ := us.Create("bob@example.com", "hash", "bob")
	ps.CreateSubscription(alice.ID, "https://push.example.com/abc", "k", "a")

	if err := ps.DeleteByEndpoint(bob.ID, "https://push.example.com/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sub, _ := ps.GetByEndpoint("https://push.example.com/abc")
	if sub == nil {
		t.Fatal("expected alice's subscription to survive bob's delete")
	}
	if sub.UserID != alice.ID {
		t.Errorf("user id = %d, want %d", sub.UserID, alice.ID)
	}
}
