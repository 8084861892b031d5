package models

import (
	"database/sql"
	"time"
)

type Post struct {
	ID             int64         `db:"id" json:"id"`
	UserID         int64         `db:"user_id" json:"user_id"`
	RecordingID    sql.NullInt64 `db:"recording_id" json:"recording_id"`
	Title          string        `db:"title" json:"title"`
	Hook           string        `db:"hook" json:"hook"`
	Body           string        `db:"body" json:"body"`
	CallToAction   string        `db:"call_to_action" json:"call_to_action"`
	Platform       string        `db:"platform" json:"platform"`
	Status         string        `db:"status" json:"status"` // draft, scheduled, published
	PublishedAt    sql.NullTime  `db:"published_at" json:"published_at"`
	ScheduledAt    sql.NullTime  `db:"scheduled_at" json:"scheduled_at"`
	LinkedInPostID sql.NullString `db:"linkedin_post_id" json:"linkedin_post_id"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)
