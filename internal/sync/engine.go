// Package sync maintains live, category-grouped views of household shopping
// lists. Every mutation republishes a full snapshot of the household's items
// to all subscribers; there is no incremental patching.
package sync

import (
	"log/slog"
	"strings"
	stdsync "sync"

	"github.com/mlecomte/foyer/internal/apperr"
	"github.com/mlecomte/foyer/internal/category"
	"github.com/mlecomte/foyer/internal/model"
	"github.com/mlecomte/foyer/internal/store"
)

// Snapshot is the full state of a household's shopping list at some point in
// time. Items are ordered newest first; Groups buckets them per the engine's
// category configuration without changing that order.
type Snapshot struct {
	HouseholdID int64                           `json:"household_id"`
	Items       []model.ShoppingItem            `json:"items"`
	Groups      map[string][]model.ShoppingItem `json:"groups"`
}

type event struct {
	snap Snapshot
	err  error
}

// Engine applies shopping-list mutations and fans full snapshots out to the
// household's subscribers after each one.
type Engine struct {
	items  *store.ShoppingStore
	cfg    category.Config
	logger *slog.Logger

	mu   stdsync.RWMutex
	subs map[int64]map[*Subscription]struct{}
}

func NewEngine(items *store.ShoppingStore, cfg category.Config, logger *slog.Logger) *Engine {
	return &Engine{
		items:  items,
		cfg:    cfg,
		logger: logger,
		subs:   make(map[int64]map[*Subscription]struct{}),
	}
}

// Config returns the category configuration the engine groups with.
func (e *Engine) Config() category.Config {
	return e.cfg
}

// Snapshot reads the household's current list and groups it. One-shot; for a
// live view use Subscribe.
func (e *Engine) Snapshot(householdID int64) (Snapshot, error) {
	items, err := e.items.ListByHousehold(householdID)
	if err != nil {
		return Snapshot{}, apperr.Store("snapshot", err)
	}
	return Snapshot{
		HouseholdID: householdID,
		Items:       items,
		Groups:      category.Group(e.cfg, items),
	}, nil
}

// Subscribe attaches a live view of the household's list. The subscription
// receives the current snapshot immediately and a new one after every
// mutation; fn runs on the subscription's own goroutine. Requires an
// authenticated user id and a household id.
func (e *Engine) Subscribe(userID, householdID int64, fn func(Snapshot)) (*Subscription, error) {
	if userID == 0 {
		return nil, apperr.ErrUnauthenticated
	}
	if householdID == 0 {
		return nil, apperr.Validation("household_id", "required")
	}

	sub := &Subscription{
		engine:      e,
		householdID: householdID,
		fn:          fn,
		state:       StateSubscribing,
		events:      make(chan event, 1),
		done:        make(chan struct{}),
	}

	e.mu.Lock()
	if e.subs[householdID] == nil {
		e.subs[householdID] = make(map[*Subscription]struct{})
	}
	e.subs[householdID][sub] = struct{}{}
	e.mu.Unlock()

	go sub.run()

	// Initial delivery, mirroring the store's push-on-attach semantics.
	snap, err := e.Snapshot(householdID)
	sub.deliver(event{snap: snap, err: err})

	return sub, nil
}

// AddItem inserts a new unbought item and republishes. A blank or
// whitespace-only name is a silent no-op: no write, no snapshot, nil error.
func (e *Engine) AddItem(userID, householdID int64, categoryName, name string) (*model.ShoppingItem, error) {
	if userID == 0 {
		return nil, apperr.ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	item, err := e.items.CreateItem(householdID, name, categoryName, userID)
	if err != nil {
		return nil, apperr.Store("add item", err)
	}
	e.publish(householdID)
	return item, nil
}

// ToggleBought flips one item's bought flag and republishes. Failures are
// logged here as well as returned. Last-write-wins under concurrent toggles.
func (e *Engine) ToggleBought(householdID, itemID int64) (*model.ShoppingItem, error) {
	item, err := e.items.ToggleBought(householdID, itemID)
	if err != nil {
		e.logger.Error("toggle bought", "household_id", householdID, "item_id", itemID, "error", err)
		return nil, apperr.Store("toggle bought", err)
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	e.publish(householdID)
	return item, nil
}

// RemoveItem deletes an item and republishes. Irreversible; confirmation is
// the caller's concern.
func (e *Engine) RemoveItem(householdID, itemID int64) error {
	item, err := e.items.GetItemByID(householdID, itemID)
	if err != nil {
		return apperr.Store("remove item", err)
	}
	if item == nil {
		return apperr.ErrNotFound
	}
	if err := e.items.DeleteItem(householdID, itemID); err != nil {
		return apperr.Store("remove item", err)
	}
	e.publish(householdID)
	return nil
}

// publish rebuilds the household snapshot and delivers it to every
// subscriber. Rapid successive calls may coalesce at slow subscribers; each
// delivered snapshot is always at least as recent as the previous one.
func (e *Engine) publish(householdID int64) {
	e.mu.RLock()
	if len(e.subs[householdID]) == 0 {
		e.mu.RUnlock()
		return
	}
	e.mu.RUnlock()

	snap, err := e.Snapshot(householdID)
	ev := event{snap: snap, err: err}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for sub := range e.subs[householdID] {
		sub.deliver(ev)
	}
}

func (e *Engine) detach(sub *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if set, ok := e.subs[sub.householdID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(e.subs, sub.householdID)
		}
	}
}
