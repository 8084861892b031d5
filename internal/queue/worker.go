package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleTranscribeRecordingTask(ctx context.Context, task *asynq.Task) error {
	var payload TranscribeRecordingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.pipeline.ProcessRecording(ctx, payload.RecordingID)
}
