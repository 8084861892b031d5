package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"speakpost/internal/models"
	"speakpost/internal/repository"
)

// PipelineService turns a stored audio artifact into a persisted draft post.
// The pipeline is at-least-once: a crash after the transcript is committed but
// before the post insert leaves a completed recording the user can retry from.
type PipelineService interface {
	ProcessRecording(ctx context.Context, recordingID int64) error
}

type pipelineService struct {
	rr repository.RecordingRepository
	pr repository.PostRepository
	ts TranscriptionService
	gs GenerationService
}

func NewPipelineService(
	rr repository.RecordingRepository,
	pr repository.PostRepository,
	ts TranscriptionService,
	gs GenerationService) PipelineService {
	return &pipelineService{
		rr: rr,
		pr: pr,
		ts: ts,
		gs: gs,
	}
}

func (s *pipelineService) ProcessRecording(ctx context.Context, recordingID int64) error {
	recording, err := s.rr.GetByID(ctx, recordingID)
	if err != nil {
		return err
	}
	if recording == nil {
		err = errors.New("recording not found")
		slog.Info(err.Error())
		return err
	}
	if recording.Status != models.RecordingProcessing {
		slog.Info("recording already processed", "recording_id", recordingID, "status", recording.Status)
		return nil
	}

	transcript, duration, err := s.ts.Transcribe(ctx, recording.AudioURL, recording.AudioKey)
	if err != nil {
		if markErr := s.rr.MarkFailed(ctx, recordingID); markErr != nil {
			slog.Info(markErr.Error())
		}
		return fmt.Errorf("transcribing recording %d: %w", recordingID, err)
	}

	if err := s.rr.SetTranscript(ctx, recordingID, transcript, duration); err != nil {
		return err
	}

	content, err := s.gs.Generate(ctx, transcript)
	if err != nil {
		return fmt.Errorf("generating content for recording %d: %w", recordingID, err)
	}

	post := &models.Post{
		UserID:       recording.UserID,
		RecordingID:  sql.NullInt64{Int64: recordingID, Valid: true},
		Title:        content.Title,
		Hook:         content.Hook,
		Body:         content.Body,
		CallToAction: content.CallToAction,
		Platform:     "linkedin",
		Status:       models.PostStatusDraft,
	}

	if _, err := s.pr.Create(ctx, nil, post); err != nil {
		return fmt.Errorf("persisting draft for recording %d: %w", recordingID, err)
	}

	return nil
}
