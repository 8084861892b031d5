package handlers

import (
	"github.com/gofiber/fiber/v2"
	"speakpost/internal/service"
)

type UserHandler struct {
	s service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{s: service}
}

func (h *UserHandler) AccountInfo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	info, err := h.s.AccountInfo(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(info)
}
