package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	config "speakpost/configs"
	job "speakpost/internal/jobs"
)

// CronHandler exposes the publish runner to an external time-based trigger.
// The caller is not a logged-in user, so the route is guarded by a shared
// secret instead of the session middleware.
type CronHandler struct {
	job *job.PublishJob
	cfg config.Config
}

func NewCronHandler(cfg config.Config, publishJob *job.PublishJob) *CronHandler {
	return &CronHandler{job: publishJob, cfg: cfg}
}

func (h *CronHandler) PublishScheduled(c *fiber.Ctx) error {
	if h.cfg.CronSecret == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "cron secret is not configured",
		})
	}

	authHeader := c.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || token != h.cfg.CronSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "unauthorized",
		})
	}

	summary, err := h.job.ProcessDue(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"message":   "scheduled posts processed",
		"processed": summary.Processed,
		"errors":    summary.Errors,
		"total":     summary.Total,
	})
}
