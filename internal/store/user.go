package store

import (
	"database/sql"
	"fmt"

	"github.com/mlecomte/foyer/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var notif, hasHH int
	err := scanner.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Username, &u.Gender,
		&u.AvatarURL, &u.AvatarKey, &notif, &hasHH, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.NotificationsEnabled = notif != 0
	u.HasHouseholds = hasHH != 0
	return &u, nil
}

const userCols = `id, email, password_hash, username, gender, avatar_url, avatar_key, notifications_enabled, has_households, created_at, updated_at`

func (s *UserStore) Create(email, passwordHash, username string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, password_hash, username) VALUES (?, ?, ?)`,
		email, passwordHash, username,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) UpdateProfile(id int64, username, gender string, notificationsEnabled bool) (*model.User, error) {
	notif := 0
	if notificationsEnabled {
		notif = 1
	}
	_, err := s.db.Exec(
		`UPDATE users SET username = ?, gender = ?, notifications_enabled = ?, updated_at = datetime('now') WHERE id = ?`,
		username, gender, notif, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) SetAvatar(id int64, url, key string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET avatar_url = ?, avatar_key = ?, updated_at = datetime('now') WHERE id = ?`,
		url, key, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set avatar: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
