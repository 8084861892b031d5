package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "speakpost/configs"
	"speakpost/internal/transfer"
)

const openAIBaseURL = "https://api.openai.com/v1"

// ErrGenerationFailed marks a provider call or response that could not
// produce usable content. It is propagated, never swallowed.
var ErrGenerationFailed = errors.New("content generation failed")

const (
	defaultTitle = "Generated Post"
	defaultHook  = "Here's something worth sharing."
)

const generationPrompt = `You turn spoken transcripts into LinkedIn posts.
Reply with a JSON object containing exactly these fields:
"title" (short internal label), "hook" (one attention-grabbing opening line),
"body" (the main post text), "call_to_action" (a closing question or prompt, may be empty).
Do not include anything outside the JSON object.`

type GenerationService interface {
	Generate(ctx context.Context, transcript string) (*transfer.GeneratedContent, error)
}

type generationService struct {
	cfg     config.Config
	client  *http.Client
	baseURL string
}

func NewGenerationService(cfg config.Config) GenerationService {
	return &generationService{
		cfg:     cfg,
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: openAIBaseURL,
	}
}

func (s *generationService) Generate(ctx context.Context, transcript string) (*transfer.GeneratedContent, error) {
	reqBody := transfer.ChatCompletionRequest{
		Model: s.cfg.OpenAIModel,
		Messages: []transfer.ChatMessage{
			{Role: "system", Content: generationPrompt},
			{Role: "user", Content: transcript},
		},
		Temperature: 0.7,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var completion transfer.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	content, err := ParseGeneratedContent(completion.Choices[0].Message.Content, transcript)
	if err != nil {
		return nil, err
	}
	return content, nil
}

// ParseGeneratedContent unwraps an optional fenced code block, parses the
// JSON object, and fills any omitted field with its fallback.
func ParseGeneratedContent(raw, transcript string) (*transfer.GeneratedContent, error) {
	cleaned := StripCodeFence(raw)

	var content transfer.GeneratedContent
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: unparseable JSON: %v", ErrGenerationFailed, err)
	}

	if content.Title == "" {
		content.Title = defaultTitle
	}
	if content.Hook == "" {
		content.Hook = defaultHook
	}
	if content.Body == "" {
		content.Body = transcript
	}

	return &content, nil
}

// StripCodeFence removes a ```json ... ``` (or plain ```) wrapper when the
// provider fences its reply.
func StripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```")
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		// drop the language tag line (e.g. "json")
		cleaned = cleaned[idx+1:]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
