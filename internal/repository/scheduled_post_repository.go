package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"speakpost/internal/models"
)

type ScheduledPostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sp *models.ScheduledPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error)
	GetActiveByPostID(ctx context.Context, postID int64) (*models.ScheduledPost, error)
	ListDue(ctx context.Context, cutoff time.Time) ([]*models.ScheduledPost, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	Claim(ctx context.Context, id int64) (bool, error)
	Cancel(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
	MarkCompleted(ctx context.Context, id, postID int64, linkedinPostID string) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const scheduledPostColumns = `id, post_id, user_id, scheduled_at, status, linkedin_post_id, error_message, created_at, updated_at`

func scanScheduledPost(row interface{ Scan(...interface{}) error }) (*models.ScheduledPost, error) {
	var sp models.ScheduledPost
	err := row.Scan(&sp.ID, &sp.PostID, &sp.UserID, &sp.ScheduledAt, &sp.Status,
		&sp.LinkedInPostID, &sp.ErrorMessage, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *scheduledPostRepository) Create(ctx context.Context, tx *sql.Tx, sp *models.ScheduledPost) (int64, error) {
	query := `
		INSERT INTO scheduled_posts (post_id, user_id, scheduled_at, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, sp.PostID, sp.UserID, sp.ScheduledAt, sp.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, sp.PostID, sp.UserID, sp.ScheduledAt, sp.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE id = $1`

	sp, err := scanScheduledPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sp, nil
}

func (r *scheduledPostRepository) GetActiveByPostID(ctx context.Context, postID int64) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE post_id = $1 AND status IN ($2, $3)`

	sp, err := scanScheduledPost(r.db.QueryRowContext(ctx, query, postID, models.SchedulePending, models.ScheduleProcessing))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sp, nil
}

func (r *scheduledPostRepository) ListDue(ctx context.Context, cutoff time.Time) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + `
		FROM scheduled_posts
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at ASC`

	rows, err := r.db.QueryContext(ctx, query, models.SchedulePending, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var due []*models.ScheduledPost
	for rows.Next() {
		sp, err := scanScheduledPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		due = append(due, sp)
	}
	return due, rows.Err()
}

func (r *scheduledPostRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE user_id = $1 ORDER BY scheduled_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var list []*models.ScheduledPost
	for rows.Next() {
		sp, err := scanScheduledPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		list = append(list, sp)
	}
	return list, rows.Err()
}

// Claim transitions a row from pending to processing. The status guard in the
// WHERE clause makes the claim exclusive: when two runner invocations race on
// the same row, only one sees an affected row count of 1.
func (r *scheduledPostRepository) Claim(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, models.ScheduleProcessing, time.Now(), id, models.SchedulePending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// Cancel is guarded the same way as Claim: only a still-pending schedule can
// be cancelled.
func (r *scheduledPostRepository) Cancel(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.ExecContext(ctx, query, models.ScheduleCancelled, time.Now(), id, models.SchedulePending)
	} else {
		result, err = r.db.ExecContext(ctx, query, models.ScheduleCancelled, time.Now(), id, models.SchedulePending)
	}
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// MarkCompleted finalizes a successful publish. Both rows move together in one
// transaction so that scheduled_posts.status = completed always implies
// posts.status = published.
func (r *scheduledPostRepository) MarkCompleted(ctx context.Context, id, postID int64, linkedinPostID string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	now := time.Now()

	scheduleQuery := `
		UPDATE scheduled_posts
		SET status = $1,
			linkedin_post_id = $2,
			updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := tx.ExecContext(ctx, scheduleQuery, models.ScheduleCompleted, linkedinPostID, now, id, models.ScheduleProcessing)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		err = errors.New("scheduled post is not in processing state")
		slog.Info(err.Error())
		return err
	}

	postQuery := `
		UPDATE posts
		SET status = $1,
			linkedin_post_id = $2,
			published_at = $3,
			updated_at = $4
		WHERE id = $5
	`
	if _, err = tx.ExecContext(ctx, postQuery, models.PostStatusPublished, linkedinPostID, now, now, postID); err != nil {
		slog.Info(err.Error())
		return err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			error_message = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.ScheduleFailed, errorMessage, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
