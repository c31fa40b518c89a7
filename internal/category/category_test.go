package category

import (
	"testing"

	"github.com/mlecomte/foyer/internal/model"
)

func TestGroupPlacesItemsInTheirBuckets(t *testing.T) {
	cfg := Default()
	items := []model.ShoppingItem{
		{ID: 1, Category: "Meats"},
		{ID: 2, Category: "Dairy"},
		{ID: 3, Category: "Unknown"},
	}

	groups := Group(cfg, items)

	if len(groups["Meats"]) != 1 || groups["Meats"][0].ID != 1 {
		t.Errorf("Meats = %v, want item 1", groups["Meats"])
	}
	if len(groups["Dairy"]) != 1 || groups["Dairy"][0].ID != 2 {
		t.Errorf("Dairy = %v, want item 2", groups["Dairy"])
	}
	if len(groups["Other"]) != 1 || groups["Other"][0].ID != 3 {
		t.Errorf("Other = %v, want item 3", groups["Other"])
	}

	total := 0
	for _, bucket := range groups {
		total += len(bucket)
	}
	if total != len(items) {
		t.Errorf("grouped %d items, want %d (none dropped or duplicated)", total, len(items))
	}
}

func TestGroupAllBucketsPresent(t *testing.T) {
	cfg := Default()

	groups := Group(cfg, nil)

	if len(groups) != len(cfg.Ordered)+1 {
		t.Fatalf("expected %d buckets, got %d", len(cfg.Ordered)+1, len(groups))
	}
	for _, cat := range cfg.Buckets() {
		bucket, ok := groups[cat]
		if !ok {
			t.Errorf("missing bucket %q", cat)
		}
		if len(bucket) != 0 {
			t.Errorf("bucket %q should be empty, got %d items", cat, len(bucket))
		}
	}
}

func TestGroupPreservesInputOrder(t *testing.T) {
	cfg := Default()
	// Snapshot order: newest first.
	items := []model.ShoppingItem{
		{ID: 3, Category: "Dairy"},
		{ID: 2, Category: "Dairy"},
		{ID: 1, Category: "Dairy"},
	}

	groups := Group(cfg, items)

	dairy := groups["Dairy"]
	if len(dairy) != 3 {
		t.Fatalf("expected 3 dairy items, got %d", len(dairy))
	}
	for i, want := range []int64{3, 2, 1} {
		if dairy[i].ID != want {
			t.Errorf("dairy[%d].ID = %d, want %d", i, dairy[i].ID, want)
		}
	}
}

func TestGroupAlternateConfig(t *testing.T) {
	cfg := Config{Ordered: []string{"A", "B"}, Fallback: "Rest"}
	items := []model.ShoppingItem{
		{ID: 1, Category: "B"},
		{ID: 2, Category: "Meats"},
	}

	groups := Group(cfg, items)

	if len(groups["B"]) != 1 {
		t.Errorf("B = %v", groups["B"])
	}
	if len(groups["Rest"]) != 1 || groups["Rest"][0].ID != 2 {
		t.Errorf("Rest = %v, want item 2", groups["Rest"])
	}
	if _, ok := groups["Meats"]; ok {
		t.Error("unconfigured category must not create its own bucket")
	}
}
