package store

import (
	"testing"

	"github.com/mlecomte/foyer/internal/database"
)

func setupShoppingTestDB(t *testing.T) (*ShoppingStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	hs := NewHouseholdStore(db)
	u, err := us.Create("alice@example.com", "hash", "alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	h, err := hs.Create(u.ID, "Foyer Test", 1, nil, "", false)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return NewShoppingStore(db), h.ID
}

func TestShoppingCreateItem(t *testing.T) {
	ss, hid := setupShoppingTestDB(t)

	item, err := ss.CreateItem(hid, "chicken breast", "Meats", 1)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if item.Name != "chicken breast" {
		t.Errorf("name = %q, want %q", item.Name, "chicken breast")
	}
	if item.Category != "Meats" {
		t.Errorf("category = %q, want %q", item.Category, "Meats")
	}
	if item.Bought {
		t.Error("new item should not be bought")
	}
	if item.CreatedBy != 1 {
		t.Errorf("created_by = %d, want 1", item.CreatedBy)
	}
	if item.CreatedAt.IsZero() {
		t.Error("expected server-assigned created_at")
	}
}

func TestShoppingListNewestFirst(t *testing.T) {
	ss, hid := setupShoppingTestDB(t)

	a, _ := ss.CreateItem(hid, "eggs", "Dairy", 1)
	b, _ := ss.CreateItem(hid, "milk", "Dairy", 1)
	c, _ := ss.CreateItem(hid, "butter", "Dairy", 1)

	items, err := ss.ListByHousehold(hid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != c.ID || items[1].ID != b.ID || items[2].ID != a.ID {
		t.Errorf("expected order [%d %d %d], got [%d %d %d]",
			c.ID, b.ID, a.ID, items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestShoppingToggleBought(t *testing.T) {
	ss, hid := setupShoppingTestDB(t)

	created, _ := ss.CreateItem(hid, "milk", "Dairy", 1)
	other, _ := ss.CreateItem(hid, "eggs", "Dairy", 1)

	item, err := ss.ToggleBought(hid, created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !item.Bought {
		t.Error("expected bought after first toggle")
	}

	// Only the toggled item changes.
	unchanged, _ := ss.GetItemByID(hid, other.ID)
	if unchanged.Bought {
		t.Error("other item must not be affected")
	}

	item, err = ss.ToggleBought(hid, created.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if item.Bought {
		t.Error("expected not bought after second toggle")
	}
}

func TestShoppingToggleBoughtNotFound(t *testing.T) {
	ss, hid := setupShoppingTestDB(t)

	item, err := ss.ToggleBought(hid, 999)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if item != nil {
		t.Error("expected nil for nonexistent item")
	}
}

func TestShoppingDeleteItem(t *testing.T) {
	ss, hid := setupShoppingTestDB(t)

	created, _ := ss.CreateItem(hid, "milk", "Dairy", 1)

	if err := ss.DeleteItem(hid, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	items, err := ss.ListByHousehold(hid)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	for _, it := range items {
		if it.ID == created.ID {
			t.Error("deleted item still present in snapshot")
		}
	}
}

func TestShoppingScopedToHousehold(t *testing.T) {
	ss, hid := setupShoppingTestDB(t)

	created, _ := ss.CreateItem(hid, "milk", "Dairy", 1)

	item, err := ss.GetItemByID(hid+1, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item != nil {
		t.Error("expected nil when reading through the wrong household")
	}
}
