package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"speakpost/internal/queue"
	"speakpost/internal/service"
)

type RecordingHandler struct {
	s           service.RecordingService
	AsynqClient *asynq.Client
}

func NewRecordingHandler(service service.RecordingService, asynqClient *asynq.Client) *RecordingHandler {
	return &RecordingHandler{s: service, AsynqClient: asynqClient}
}

func (h *RecordingHandler) CreateRecording(c *fiber.Ctx) error {
	userID := GetUserID(c)

	file, err := c.FormFile("audio")
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No audio file provided",
		})
	}

	title := c.FormValue("title")

	recordingID, err := h.s.Create(c.Context(), userID, title, file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err = queue.EnqueueTranscription(h.AsynqClient, queue.TranscribeRecordingPayload{RecordingID: recordingID})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error starting transcription",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":      "Recording uploaded",
		"recording_id": recordingID,
	})
}

func (h *RecordingHandler) ListRecordings(c *fiber.Ctx) error {
	userID := GetUserID(c)

	recordings, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list recordings",
		})
	}

	return c.Status(fiber.StatusOK).JSON(recordings)
}

func (h *RecordingHandler) RemoveRecording(c *fiber.Ctx) error {
	userID := GetUserID(c)
	recordingID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(recordingID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove recording",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
