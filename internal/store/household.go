package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mlecomte/foyer/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	var restrictions string
	var isPublic int
	err := scanner.Scan(
		&h.ID, &h.OwnerID, &h.Name, &h.MemberCount, &restrictions,
		&h.Preferences, &isPublic, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	h.IsPublic = isPublic != 0
	if err := json.Unmarshal([]byte(restrictions), &h.Restrictions); err != nil {
		return nil, fmt.Errorf("decode restrictions: %w", err)
	}
	if h.Restrictions == nil {
		h.Restrictions = []string{}
	}
	return &h, nil
}

const householdCols = `id, owner_id, name, member_count, restrictions, preferences, is_public, created_at, updated_at`

// Create inserts a household under the owner and flips the owner's
// has_households flag in the same transaction.
func (s *HouseholdStore) Create(ownerID int64, name string, memberCount int, restrictions []string, preferences string, isPublic bool) (*model.Household, error) {
	encoded, err := json.Marshal(restrictions)
	if err != nil {
		return nil, fmt.Errorf("encode restrictions: %w", err)
	}
	public := 0
	if isPublic {
		public = 1
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO households (owner_id, name, member_count, restrictions, preferences, is_public) VALUES (?, ?, ?, ?, ?, ?)`,
		ownerID, name, memberCount, string(encoded), preferences, public,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET has_households = 1, updated_at = datetime('now') WHERE id = ?`,
		ownerID,
	); err != nil {
		return nil, fmt.Errorf("mark owner has households: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(ownerID, id)
}

// GetByID returns the household only if it belongs to the owner.
func (s *HouseholdStore) GetByID(ownerID, id int64) (*model.Household, error) {
	row := s.db.QueryRow(
		`SELECT `+householdCols+` FROM households WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) ListByOwner(ownerID int64) ([]model.Household, error) {
	rows, err := s.db.Query(
		`SELECT `+householdCols+` FROM households WHERE owner_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var households []model.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		households = append(households, *h)
	}
	return households, rows.Err()
}

func (s *HouseholdStore) Update(ownerID, id int64, name string, memberCount int, restrictions []string, preferences string, isPublic bool) (*model.Household, error) {
	encoded, err := json.Marshal(restrictions)
	if err != nil {
		return nil, fmt.Errorf("encode restrictions: %w", err)
	}
	public := 0
	if isPublic {
		public = 1
	}
	_, err = s.db.Exec(
		`UPDATE households SET name = ?, member_count = ?, restrictions = ?, preferences = ?, is_public = ?, updated_at = datetime('now')
		 WHERE id = ? AND owner_id = ?`,
		name, memberCount, string(encoded), preferences, public, id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	return s.GetByID(ownerID, id)
}
