package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	config "speakpost/configs"
	"speakpost/internal/models"
	"speakpost/internal/repository"
	"speakpost/internal/transfer"
)

type SubscriptionService interface {
	HandleSubscription(ctx context.Context, payload *transfer.SubscriptionEvent) error
}

type subscriptionService struct {
	cfg config.Config
	u   repository.UserRepository
	s   repository.SubscriptionRepository
}

func NewSubscriptionService(cfg config.Config, u repository.UserRepository, s repository.SubscriptionRepository) SubscriptionService {
	return &subscriptionService{
		cfg: cfg,
		u:   u,
		s:   s,
	}
}

// HandleSubscription applies a payment provider event to the matching user.
// The provider only knows the customer email, so matching is by email
// (case-insensitive); a placeholder user is created when no account exists
// yet.
func (s *subscriptionService) HandleSubscription(ctx context.Context, payload *transfer.SubscriptionEvent) error {
	switch payload.EventType {
	case "subscription.paid", "subscription.active":
		return s.applyEvent(ctx, payload, payload.Object.Status)
	case "subscription.cancelled", "subscription.expired":
		return s.applyEvent(ctx, payload, "cancelled")
	default:
		slog.Info("ignoring payment event", "event_type", payload.EventType)
		return nil
	}
}

func (s *subscriptionService) applyEvent(ctx context.Context, payload *transfer.SubscriptionEvent, status string) error {
	customerEmail := strings.ToLower(payload.Object.Customer.Email)

	user, isExist, err := s.u.GetByEmail(ctx, customerEmail)
	if err != nil {
		return fmt.Errorf("fetching user by email failed: %w", err)
	}

	var userID int64
	if !isExist {
		userID, err = s.u.Create(ctx, nil, &models.User{
			Email: customerEmail,
			Name:  payload.Object.Customer.Name,
		})
		if err != nil {
			return err
		}

		_, err = s.s.Create(ctx, &models.Subscription{
			UserID:              userID,
			SubscriptionID:      payload.Object.ID,
			SubscriptionEndDate: payload.Object.CurrentPeriodEndDate,
			Status:              status,
		})
		return err
	}

	userID = user.ID
	return s.s.UpdateSubscription(ctx, &models.Subscription{
		UserID:              userID,
		SubscriptionID:      payload.Object.ID,
		SubscriptionEndDate: payload.Object.CurrentPeriodEndDate,
		Status:              status,
	})
}
