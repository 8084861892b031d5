package models

import (
	"database/sql"
	"time"
)

type LinkedInConnection struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	LinkedInUserID string         `db:"linkedin_user_id" json:"linkedin_user_id"`
	AccessToken    string         `db:"access_token" json:"-"`
	RefreshToken   sql.NullString `db:"refresh_token" json:"-"`
	TokenExpiresAt sql.NullTime   `db:"token_expires_at" json:"token_expires_at"`
	ProfileData    []byte         `db:"profile_data" json:"profile_data"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
