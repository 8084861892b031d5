package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "speakpost/configs"
	job "speakpost/internal/jobs"
	"speakpost/internal/models"
)

type emptyScheduleRepo struct{}

func (emptyScheduleRepo) Create(ctx context.Context, tx *sql.Tx, sp *models.ScheduledPost) (int64, error) {
	return 0, nil
}

func (emptyScheduleRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	return nil, nil
}

func (emptyScheduleRepo) GetActiveByPostID(ctx context.Context, postID int64) (*models.ScheduledPost, error) {
	return nil, nil
}

func (emptyScheduleRepo) ListDue(ctx context.Context, cutoff time.Time) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (emptyScheduleRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (emptyScheduleRepo) Claim(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (emptyScheduleRepo) Cancel(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	return false, nil
}

func (emptyScheduleRepo) MarkCompleted(ctx context.Context, id, postID int64, linkedinPostID string) error {
	return nil
}

func (emptyScheduleRepo) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	return nil
}

func newCronTestApp(secret string) *fiber.App {
	publishJob := job.NewPublishJob(emptyScheduleRepo{}, nil, nil, nil, nil)
	handler := NewCronHandler(config.Config{CronSecret: secret}, publishJob)

	app := fiber.New()
	app.Get("/cron/publish-scheduled", handler.PublishScheduled)
	return app
}

func TestPublishScheduledWithoutConfiguredSecret(t *testing.T) {
	app := newCronTestApp("")

	req := httptest.NewRequest(http.MethodGet, "/cron/publish-scheduled", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPublishScheduledRejectsBadToken(t *testing.T) {
	app := newCronTestApp("topsecret")

	req := httptest.NewRequest(http.MethodGet, "/cron/publish-scheduled", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/cron/publish-scheduled", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublishScheduledRunsWithValidToken(t *testing.T) {
	app := newCronTestApp("topsecret")

	req := httptest.NewRequest(http.MethodGet, "/cron/publish-scheduled", nil)
	req.Header.Set("Authorization", "Bearer topsecret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success   bool `json:"success"`
		Processed int  `json:"processed"`
		Errors    int  `json:"errors"`
		Total     int  `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Zero(t, body.Processed)
	assert.Zero(t, body.Total)
}
