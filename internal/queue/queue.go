package queue

import (
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

func EnqueueTranscription(asynqClient *asynq.Client, payload TranscribeRecordingPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeTranscribeRecording, taskPayload)

	if _, err = asynqClient.Enqueue(task, asynq.MaxRetry(3)); err != nil {
		return err
	}

	slog.Info("transcription task enqueued", "recording_id", payload.RecordingID)
	return nil
}
