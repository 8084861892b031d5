package queue

import (
	"speakpost/internal/service"
)

type Queue struct {
	pipeline service.PipelineService
}

func NewQueue(pipeline service.PipelineService) *Queue {
	return &Queue{
		pipeline: pipeline,
	}
}

const TaskTypeTranscribeRecording = "transcribe:recording"

type TranscribeRecordingPayload struct {
	RecordingID int64 `json:"recording_id"`
}
