package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "speakpost/configs"
	"speakpost/internal/transfer"
)

const assemblyAIBaseURL = "https://api.assemblyai.com/v2"

// ErrTranscriptionFailed marks a transcript that could not be produced even
// after the upload fallback. Callers mark the recording failed instead of
// persisting placeholder text.
var ErrTranscriptionFailed = errors.New("transcription failed")

// AudioStore is the subset of the storage service the fallback path needs.
type AudioStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

type TranscriptionService interface {
	Transcribe(ctx context.Context, audioURL, audioKey string) (string, int64, error)
}

type transcriptionService struct {
	cfg          config.Config
	store        AudioStore
	client       *http.Client
	baseURL      string
	pollInterval time.Duration
	maxPolls     int
}

func NewTranscriptionService(cfg config.Config, store AudioStore) TranscriptionService {
	return &transcriptionService{
		cfg:          cfg,
		store:        store,
		client:       &http.Client{Timeout: 30 * time.Second},
		baseURL:      assemblyAIBaseURL,
		pollInterval: 3 * time.Second,
		maxPolls:     100,
	}
}

// Transcribe submits the public audio URL first. When the provider cannot
// fetch it, the audio bytes are re-uploaded to the provider and transcription
// is retried against the provider-hosted copy.
func (s *transcriptionService) Transcribe(ctx context.Context, audioURL, audioKey string) (string, int64, error) {
	text, duration, directErr := s.transcribeURL(ctx, audioURL)
	if directErr == nil {
		return text, duration, nil
	}
	slog.Info("direct transcription failed, retrying via upload", "error", directErr.Error())

	data, err := s.store.Download(ctx, audioKey)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrTranscriptionFailed, directErr)
	}

	uploadURL, err := s.upload(ctx, data)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	text, duration, err = s.transcribeURL(ctx, uploadURL)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	return text, duration, nil
}

func (s *transcriptionService) transcribeURL(ctx context.Context, audioURL string) (string, int64, error) {
	payload, err := json.Marshal(transfer.TranscriptRequest{AudioURL: audioURL})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", s.cfg.AssemblyAIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("transcript submit returned status %d", resp.StatusCode)
	}

	var submitted transfer.TranscriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		slog.Info(err.Error())
		return "", 0, err
	}

	return s.poll(ctx, submitted.ID)
}

func (s *transcriptionService) poll(ctx context.Context, transcriptID string) (string, int64, error) {
	for i := 0; i < s.maxPolls; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/transcript/"+transcriptID, nil)
		if err != nil {
			return "", 0, err
		}
		req.Header.Set("Authorization", s.cfg.AssemblyAIKey)

		resp, err := s.client.Do(req)
		if err != nil {
			slog.Info(err.Error())
			return "", 0, err
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return "", 0, fmt.Errorf("transcript poll returned status %d", resp.StatusCode)
		}

		var status transfer.TranscriptResponse
		err = json.NewDecoder(resp.Body).Decode(&status)
		resp.Body.Close()
		if err != nil {
			slog.Info(err.Error())
			return "", 0, err
		}

		switch status.Status {
		case "completed":
			return status.Text, int64(status.AudioDur), nil
		case "error":
			return "", 0, fmt.Errorf("transcription error: %s", status.Error)
		}

		select {
		case <-ctx.Done():
			return "", 0, ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
	return "", 0, errors.New("transcription timed out")
}

func (s *transcriptionService) upload(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/upload", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", s.cfg.AssemblyAIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload returned status %d", resp.StatusCode)
	}

	var upload transfer.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return upload.UploadURL, nil
}
