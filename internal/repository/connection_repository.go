package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"speakpost/internal/models"
)

type ConnectionRepository interface {
	Upsert(ctx context.Context, conn *models.LinkedInConnection) (int64, error)
	GetActiveByUserID(ctx context.Context, userID int64) (*models.LinkedInConnection, bool, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.LinkedInConnection, error)
	SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	Deactivate(ctx context.Context, userID int64) error
}

type connectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

const connectionColumns = `id, user_id, linkedin_user_id, access_token, refresh_token, token_expires_at, profile_data, is_active, created_at, updated_at`

// Upsert deactivates any previous active connection for the user and inserts
// the new grant inside one transaction, keeping at most one active row per
// user.
func (r *connectionRepository) Upsert(ctx context.Context, conn *models.LinkedInConnection) (int64, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	deactivateQuery := `
		UPDATE linkedin_connections
		SET is_active = FALSE,
			updated_at = $1
		WHERE user_id = $2 AND is_active = TRUE
	`
	if _, err = tx.ExecContext(ctx, deactivateQuery, time.Now(), conn.UserID); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	insertQuery := `
		INSERT INTO linkedin_connections (user_id, linkedin_user_id, access_token, refresh_token, token_expires_at, profile_data, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id
	`

	var id int64
	err = tx.QueryRowContext(ctx, insertQuery,
		conn.UserID,
		conn.LinkedInUserID,
		conn.AccessToken,
		conn.RefreshToken,
		conn.TokenExpiresAt,
		conn.ProfileData,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *connectionRepository) GetActiveByUserID(ctx context.Context, userID int64) (*models.LinkedInConnection, bool, error) {
	query := `SELECT ` + connectionColumns + ` FROM linkedin_connections WHERE user_id = $1 AND is_active = TRUE`

	var conn models.LinkedInConnection
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&conn.ID, &conn.UserID, &conn.LinkedInUserID,
		&conn.AccessToken, &conn.RefreshToken, &conn.TokenExpiresAt, &conn.ProfileData,
		&conn.IsActive, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &conn, true, nil
}

func (r *connectionRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.LinkedInConnection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM linkedin_connections
		WHERE is_active = TRUE
		AND refresh_token IS NOT NULL
		AND (token_expires_at BETWEEN $1 AND $2 OR token_expires_at < $1)`

	rows, err := r.db.QueryContext(ctx, query, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.LinkedInConnection
	for rows.Next() {
		var conn models.LinkedInConnection
		err := rows.Scan(&conn.ID, &conn.UserID, &conn.LinkedInUserID,
			&conn.AccessToken, &conn.RefreshToken, &conn.TokenExpiresAt, &conn.ProfileData,
			&conn.IsActive, &conn.CreatedAt, &conn.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, &conn)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return connections, nil
}

func (r *connectionRepository) SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE linkedin_connections
		SET access_token = $1,
			refresh_token = COALESCE(NULLIF($2, ''), refresh_token),
			token_expires_at = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, accessToken, refreshToken, expiresAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *connectionRepository) Deactivate(ctx context.Context, userID int64) error {
	query := `
		UPDATE linkedin_connections
		SET is_active = FALSE,
			updated_at = $1
		WHERE user_id = $2 AND is_active = TRUE
	`
	_, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
