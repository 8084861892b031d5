package models

import (
	"database/sql"
	"time"
)

type Recording struct {
	ID              int64          `db:"id" json:"id"`
	UserID          int64          `db:"user_id" json:"user_id"`
	Title           string         `db:"title" json:"title"`
	AudioKey        string         `db:"audio_key" json:"audio_key"`
	AudioURL        string         `db:"audio_url" json:"audio_url"`
	Transcript      sql.NullString `db:"transcript" json:"transcript"`
	DurationSeconds sql.NullInt64  `db:"duration_seconds" json:"duration_seconds"`
	Status          string         `db:"status" json:"status"` // processing, completed, failed
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	RecordingProcessing = "processing"
	RecordingCompleted  = "completed"
	RecordingFailed     = "failed"
)
