package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	config "speakpost/configs"
	"speakpost/internal/service"
)

type LinkedInHandler struct {
	s   service.LinkedInService
	cfg config.Config
}

func NewLinkedInHandler(cfg config.Config, service service.LinkedInService) *LinkedInHandler {
	return &LinkedInHandler{s: service, cfg: cfg}
}

// Connect starts the three-legged OAuth flow. The session user id rides in
// the state parameter and is checked on the way back.
func (h *LinkedInHandler) Connect(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not logged in",
		})
	}

	return c.Redirect(h.s.GetAuthURL(fmt.Sprintf("%d", userID)))
}

func (h *LinkedInHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	userID := GetUserID(c)
	if state != fmt.Sprintf("%d", userID) {
		slog.Info("state mismatch on LinkedIn callback")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid state",
		})
	}

	if err := h.s.Callback(c.Context(), code, userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to connect LinkedIn account",
		})
	}

	return c.Redirect(h.cfg.FrontendURL+"/settings", fiber.StatusTemporaryRedirect)
}

func (h *LinkedInHandler) Disconnect(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.s.Disconnect(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to disconnect LinkedIn account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
