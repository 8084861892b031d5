package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"speakpost/internal/models"
)

type RecordingRepository interface {
	Create(ctx context.Context, recording *models.Recording) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Recording, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Recording, error)
	CheckByUserID(ctx context.Context, recordingID, userID int64) (bool, error)
	SetTranscript(ctx context.Context, id int64, transcript string, durationSeconds int64) error
	MarkFailed(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
}

type recordingRepository struct {
	db *sql.DB
}

func NewRecordingRepository(db *sql.DB) RecordingRepository {
	return &recordingRepository{db: db}
}

const recordingColumns = `id, user_id, title, audio_key, audio_url, transcript, duration_seconds, status, created_at, updated_at`

func scanRecording(row interface{ Scan(...interface{}) error }) (*models.Recording, error) {
	var rec models.Recording
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.AudioKey, &rec.AudioURL,
		&rec.Transcript, &rec.DurationSeconds, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordingRepository) Create(ctx context.Context, recording *models.Recording) (int64, error) {
	query := `
		INSERT INTO recordings (user_id, title, audio_key, audio_url, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, recording.UserID, recording.Title, recording.AudioKey, recording.AudioURL, recording.Status).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *recordingRepository) GetByID(ctx context.Context, id int64) (*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = $1`

	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return rec, nil
}

func (r *recordingRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var recordings []*models.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		recordings = append(recordings, rec)
	}
	return recordings, rows.Err()
}

func (r *recordingRepository) CheckByUserID(ctx context.Context, recordingID, userID int64) (bool, error) {
	query := "SELECT 1 FROM recordings WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, recordingID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *recordingRepository) SetTranscript(ctx context.Context, id int64, transcript string, durationSeconds int64) error {
	query := `
		UPDATE recordings
		SET transcript = $1,
			duration_seconds = $2,
			status = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, transcript, durationSeconds, models.RecordingCompleted, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *recordingRepository) MarkFailed(ctx context.Context, id int64) error {
	query := `
		UPDATE recordings
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.RecordingFailed, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *recordingRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM recordings WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
