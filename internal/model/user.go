package model

import "time"

type User struct {
	ID                   int64     `json:"id"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	Username             string    `json:"username"`
	Gender               string    `json:"gender,omitempty"`
	AvatarURL            string    `json:"avatar_url,omitempty"`
	AvatarKey            string    `json:"-"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	HasHouseholds        bool      `json:"has_households"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
