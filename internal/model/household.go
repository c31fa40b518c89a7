package model

import "time"

type Household struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Name         string    `json:"name"`
	MemberCount  int       `json:"member_count"`
	Restrictions []string  `json:"restrictions"`
	Preferences  string    `json:"preferences,omitempty"`
	IsPublic     bool      `json:"is_public"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
