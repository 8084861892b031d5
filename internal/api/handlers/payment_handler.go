package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	config "speakpost/configs"
	"speakpost/internal/service"
	"speakpost/internal/transfer"
)

type PaymentHandler struct {
	s   service.SubscriptionService
	cfg config.Config
}

func NewPaymentHandler(cfg config.Config, service service.SubscriptionService) *PaymentHandler {
	return &PaymentHandler{s: service, cfg: cfg}
}

func (h *PaymentHandler) PaymentWebhook(c *fiber.Ctx) error {
	if h.cfg.PaymentWebhookSecret == "" {
		slog.Info("payment webhook secret is not configured")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	body := c.Body()
	signature := c.Get("X-Signature")
	if !verifySignature(body, signature, h.cfg.PaymentWebhookSecret) {
		slog.Info("payment webhook signature mismatch")
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var requestData transfer.SubscriptionEvent
	if err := json.Unmarshal(body, &requestData); err != nil {
		slog.Info(err.Error())
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := h.s.HandleSubscription(c.Context(), &requestData); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}

// verifySignature checks an HMAC-SHA256 hex digest of the raw body.
func verifySignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
