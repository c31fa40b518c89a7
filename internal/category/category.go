// Package category carries the ordered shopping-category configuration and
// the grouping of a flat item snapshot into per-category buckets.
package category

import "github.com/mlecomte/foyer/internal/model"

// Config is an ordered category set plus the fallback bucket that catches
// items whose category is not in the set. The fallback bucket may stay
// empty but is always present in grouped output.
type Config struct {
	Ordered  []string
	Fallback string
}

// Default returns the category set shown in the app, in display order.
func Default() Config {
	return Config{
		Ordered: []string{
			"Meats",
			"Dairy",
			"Fruits & Vegetables",
			"Dry Condiments",
			"Household",
		},
		Fallback: "Other",
	}
}

// Buckets returns every bucket name in display order, fallback last.
func (c Config) Buckets() []string {
	buckets := make([]string, 0, len(c.Ordered)+1)
	buckets = append(buckets, c.Ordered...)
	return append(buckets, c.Fallback)
}

// Contains reports whether name is one of the configured categories.
// The fallback bucket does not count.
func (c Config) Contains(name string) bool {
	for _, cat := range c.Ordered {
		if cat == name {
			return true
		}
	}
	return false
}

// Group partitions items into a bucket per configured category plus the
// fallback bucket. Every bucket is present in the result even when empty,
// no item is dropped or duplicated, and each bucket preserves the input
// order of its items.
func Group(cfg Config, items []model.ShoppingItem) map[string][]model.ShoppingItem {
	groups := make(map[string][]model.ShoppingItem, len(cfg.Ordered)+1)
	for _, cat := range cfg.Buckets() {
		groups[cat] = []model.ShoppingItem{}
	}
	for _, item := range items {
		bucket := item.Category
		if !cfg.Contains(bucket) {
			bucket = cfg.Fallback
		}
		groups[bucket] = append(groups[bucket], item)
	}
	return groups
}
