package models

import (
	"database/sql"
	"time"
)

type ScheduledPost struct {
	ID             int64          `db:"id" json:"id"`
	PostID         int64          `db:"post_id" json:"post_id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	ScheduledAt    time.Time      `db:"scheduled_at" json:"scheduled_at"`
	Status         string         `db:"status" json:"status"` // pending, processing, completed, failed, cancelled
	LinkedInPostID sql.NullString `db:"linkedin_post_id" json:"linkedin_post_id"`
	ErrorMessage   sql.NullString `db:"error_message" json:"error_message"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	SchedulePending    = "pending"
	ScheduleProcessing = "processing"
	ScheduleCompleted  = "completed"
	ScheduleFailed     = "failed"
	ScheduleCancelled  = "cancelled"
)
