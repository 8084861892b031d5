package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"speakpost/internal/models"
	"speakpost/internal/repository"
)

type RecordingService interface {
	Create(ctx context.Context, userID int64, title string, file *multipart.FileHeader) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.Recording, error)
	Remove(ctx context.Context, userID, recordingID int64) error
}

type recordingService struct {
	rr      repository.RecordingRepository
	storage *StorageService
}

func NewRecordingService(rr repository.RecordingRepository, storage *StorageService) RecordingService {
	return &recordingService{
		rr:      rr,
		storage: storage,
	}
}

// Create stores the uploaded audio in R2 and inserts the recording row in
// processing state. Transcription itself happens asynchronously.
func (s *recordingService) Create(ctx context.Context, userID int64, title string, file *multipart.FileHeader) (int64, error) {
	if file == nil {
		err := errors.New("no audio file provided")
		slog.Info(err.Error())
		return 0, err
	}

	src, err := file.Open()
	if err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("unable to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("unable to read uploaded file: %w", err)
	}

	kind, err := filetype.Match(data)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	// browser voice recorders produce webm/mp4 containers, so audio-only
	// sniffing is too strict
	if !filetype.IsAudio(data) && kind.Extension != "webm" && kind.Extension != "mp4" {
		err = errors.New("uploaded file is not an audio recording")
		slog.Info(err.Error())
		return 0, err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	key := fmt.Sprintf("recordings/%d/%s.%s", userID, id, kind.Extension)

	if err := s.storage.Upload(ctx, key, data, kind.MIME.Value); err != nil {
		return 0, fmt.Errorf("error uploading audio: %w", err)
	}

	if title == "" {
		title = "Untitled recording"
	}

	recordingID, err := s.rr.Create(ctx, &models.Recording{
		UserID:   userID,
		Title:    title,
		AudioKey: key,
		AudioURL: s.storage.PublicURL(key),
		Status:   models.RecordingProcessing,
	})
	if err != nil {
		return 0, fmt.Errorf("error saving recording: %w", err)
	}

	return recordingID, nil
}

func (s *recordingService) List(ctx context.Context, userID int64) ([]*models.Recording, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}
	return s.rr.ListByUserID(ctx, userID)
}

func (s *recordingService) Remove(ctx context.Context, userID, recordingID int64) error {
	isOwner, err := s.rr.CheckByUserID(ctx, recordingID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		err = errors.New("recording doesn't exist")
		slog.Info(err.Error())
		return err
	}

	recording, err := s.rr.GetByID(ctx, recordingID)
	if err != nil {
		return err
	}

	if err := s.storage.Remove(ctx, recording.AudioKey); err != nil {
		slog.Info(err.Error())
	}

	return s.rr.Remove(ctx, recordingID)
}
