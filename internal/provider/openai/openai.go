// Package openai implements the fallback provider over the chat-completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Cyclone1070/termai/internal/provider/model"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Config holds the settings for a Provider.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Provider implements model.Generator for the OpenAI chat-completions API.
// Individual calls carry no internal deadline; the dispatcher bounds total
// wait through its retry count.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a Provider from config.
func New(cfg Config) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      cfg.Model,
		httpClient: &http.Client{},
	}
}

// ID identifies this provider to the dispatcher.
func (p *Provider) ID() model.ProviderID {
	return model.ProviderOpenAI
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the prompt and returns the completion text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", &model.ProviderError{
			Code:       model.ErrorCodeAuth,
			Provider:   model.ProviderOpenAI,
			Message:    "API key not configured",
			Underlying: model.ErrAuthentication,
		}
	}

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &model.ProviderError{
			Code:       model.ErrorCodeNetwork,
			Provider:   model.ProviderOpenAI,
			Message:    "request failed",
			Underlying: err,
		}
	}
	defer resp.Body.Close()

	// Cap the read; error payloads and completions are both small relative
	// to this.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", &model.ProviderError{
			Code:       model.ErrorCodeNetwork,
			Provider:   model.ProviderOpenAI,
			Message:    "read response",
			Underlying: err,
		}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &model.ProviderError{
			Code:       model.ErrorCodeAuth,
			Provider:   model.ProviderOpenAI,
			Message:    fmt.Sprintf("authentication failed (HTTP %d)", resp.StatusCode),
			Underlying: model.ErrAuthentication,
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &model.ProviderError{
			Code:       model.ErrorCodeNetwork,
			Provider:   model.ProviderOpenAI,
			Message:    fmt.Sprintf("malformed response (HTTP %d)", resp.StatusCode),
			Underlying: err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		code := model.ErrorCodeNetwork
		if resp.StatusCode == http.StatusTooManyRequests {
			code = model.ErrorCodeRateLimit
		}
		return "", &model.ProviderError{
			Code:     code,
			Provider: model.ProviderOpenAI,
			Message:  message,
		}
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &model.ProviderError{
			Code:       model.ErrorCodeEmpty,
			Provider:   model.ProviderOpenAI,
			Message:    "no choices in response",
			Underlying: model.ErrEmptyResponse,
		}
	}

	return parsed.Choices[0].Message.Content, nil
}
