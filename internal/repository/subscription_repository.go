package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"speakpost/internal/models"
)

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error)
	Create(ctx context.Context, subscription *models.Subscription) (int64, error)
	UpdateSubscription(ctx context.Context, subscription *models.Subscription) error
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetByUserID returns the user's subscription row. Most users never have one;
// absence is not an error.
func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	var subscription models.Subscription
	query := `SELECT id, user_id, subscription_id, subscription_end_date, status
		FROM subscriptions WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&subscription.ID, &subscription.UserID,
		&subscription.SubscriptionID, &subscription.SubscriptionEndDate, &subscription.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &subscription, true, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) (int64, error) {
	query := "INSERT INTO subscriptions (user_id, subscription_id, subscription_end_date, status) VALUES ($1, $2, $3, $4) RETURNING id"
	var id int64
	err := r.db.QueryRowContext(ctx, query, subscription.UserID, subscription.SubscriptionID, subscription.SubscriptionEndDate, subscription.Status).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *subscriptionRepository) UpdateSubscription(ctx context.Context, subscription *models.Subscription) error {
	query := `
		UPDATE subscriptions
		SET subscription_id = $1,
			subscription_end_date = $2,
			status = $3,
			updated_at = $4
		WHERE user_id = $5
	`
	_, err := r.db.ExecContext(ctx, query, subscription.SubscriptionID, subscription.SubscriptionEndDate, subscription.Status, time.Now(), subscription.UserID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
