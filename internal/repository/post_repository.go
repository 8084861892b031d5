package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"speakpost/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	MarkScheduled(ctx context.Context, tx *sql.Tx, postID int64, scheduledAt time.Time) error
	MarkDraft(ctx context.Context, tx *sql.Tx, postID int64) error
	MarkPublished(ctx context.Context, tx *sql.Tx, postID int64, linkedinPostID string, publishedAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, recording_id, title, hook, body, call_to_action, platform, status, published_at, scheduled_at, linkedin_post_id, created_at, updated_at`

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.UserID, &post.RecordingID, &post.Title, &post.Hook,
		&post.Body, &post.CallToAction, &post.Platform, &post.Status, &post.PublishedAt,
		&post.ScheduledAt, &post.LinkedInPostID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, recording_id, title, hook, body, call_to_action, platform, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.UserID, post.RecordingID, post.Title, post.Hook, post.Body, post.CallToAction, post.Platform, post.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.UserID, post.RecordingID, post.Title, post.Hook, post.Body, post.CallToAction, post.Platform, post.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) MarkScheduled(ctx context.Context, tx *sql.Tx, postID int64, scheduledAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			scheduled_at = $2,
			updated_at = $3
		WHERE id = $4
	`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, models.PostStatusScheduled, scheduledAt, time.Now(), postID)
	} else {
		_, err = r.db.ExecContext(ctx, query, models.PostStatusScheduled, scheduledAt, time.Now(), postID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkDraft(ctx context.Context, tx *sql.Tx, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			scheduled_at = NULL,
			updated_at = $2
		WHERE id = $3
	`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, models.PostStatusDraft, time.Now(), postID)
	} else {
		_, err = r.db.ExecContext(ctx, query, models.PostStatusDraft, time.Now(), postID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkPublished(ctx context.Context, tx *sql.Tx, postID int64, linkedinPostID string, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			linkedin_post_id = $2,
			published_at = $3,
			updated_at = $4
		WHERE id = $5
	`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, models.PostStatusPublished, linkedinPostID, publishedAt, time.Now(), postID)
	} else {
		_, err = r.db.ExecContext(ctx, query, models.PostStatusPublished, linkedinPostID, publishedAt, time.Now(), postID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
