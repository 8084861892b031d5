package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"speakpost/internal/models"
	"speakpost/internal/repository"
	"speakpost/internal/service"
)

// TokenRefreshJob proactively refreshes LinkedIn tokens that expire soon so
// scheduled publishes don't pay the refresh round-trip at publish time.
type TokenRefreshJob struct {
	cr repository.ConnectionRepository
	ts service.TokenService
}

func NewTokenRefreshJob(cr repository.ConnectionRepository, ts service.TokenService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cr: cr,
		ts: ts,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	connections, err := c.cr.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, conn := range connections {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(conn *models.LinkedInConnection) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if _, err := c.ts.Refresh(ctx, conn); err != nil {
				slog.Info("unable to refresh LinkedIn token", "connection_id", conn.ID, "error", err.Error())
			}
		}(conn)
	}

	wg.Wait()
}
