package store

import (
	"database/sql"
	"fmt"

	"github.com/mlecomte/foyer/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var bought int
	err := scanner.Scan(
		&item.ID, &item.HouseholdID, &item.Name, &item.Category,
		&bought, &item.CreatedBy, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Bought = bought != 0
	return &item, nil
}

const itemCols = `id, household_id, name, category, bought, created_by, created_at`

func (s *ShoppingStore) CreateItem(householdID int64, name, category string, createdBy int64) (*model.ShoppingItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO shopping_items (household_id, name, category, created_by) VALUES (?, ?, ?, ?)`,
		householdID, name, category, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(householdID, id)
}

func (s *ShoppingStore) GetItemByID(householdID, id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(
		`SELECT `+itemCols+` FROM shopping_items WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// ListByHousehold returns the household's items newest first. The id tiebreak
// keeps the order stable for items created within the same second.
func (s *ShoppingStore) ListByHousehold(householdID int64) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM shopping_items WHERE household_id = ? ORDER BY created_at DESC, id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ToggleBought flips the bought flag of a single item. Concurrent toggles are
// last-write-wins at the row level.
func (s *ShoppingStore) ToggleBought(householdID, id int64) (*model.ShoppingItem, error) {
	result, err := s.db.Exec(
		`UPDATE shopping_items SET bought = 1 - bought WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle bought: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetItemByID(householdID, id)
}

func (s *ShoppingStore) DeleteItem(householdID, id int64) error {
	_, err := s.db.Exec(
		`DELETE FROM shopping_items WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
