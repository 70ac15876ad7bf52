package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crystalenergy-backend/internal/config"
	"crystalenergy-backend/internal/errs"
)

const (
	openaiMaxRetries   = 3
	openaiInitialDelay = 1 * time.Second
)

type OpenAIClient interface {
	// Configured reports whether an API key is present; callers fall back to
	// static content when it is not.
	Configured() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

type openAIClientImpl struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type openaiChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewOpenAIClient(cfg *config.OpenAI) OpenAIClient {
	return &openAIClientImpl{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (c *openAIClientImpl) Configured() bool {
	return c.apiKey != ""
}

func (c *openAIClientImpl) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	reqBody := openaiChatRequest{
		Model: c.model,
		Messages: []openaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var lastErr error
	delay := openaiInitialDelay
	for attempt := 0; attempt < openaiMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", errs.ErrProviderUnavailable, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		text, retryable, err := c.doRequest(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", lastErr
}

func (c *openAIClientImpl) doRequest(ctx context.Context, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("%w: openai: %v", errs.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read openai response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr openaiError
		_ = json.Unmarshal(body, &apiErr)
		// Rate limits and server errors are worth retrying; 4xx are not.
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("%w: openai %d: %s", errs.ErrProviderUnavailable, resp.StatusCode, apiErr.Error.Message)
	}

	var chat openaiChatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return "", false, fmt.Errorf("decode openai response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", false, fmt.Errorf("openai returned no choices")
	}
	return chat.Choices[0].Message.Content, false, nil
}
