// Package gemini implements the primary (low-latency) provider.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Cyclone1070/termai/internal/provider/model"
)

// Provider implements model.Generator for Google Gemini.
type Provider struct {
	client    Client
	modelName string
}

// New creates a new Provider with the specified client and model.
func New(client Client, modelName string) *Provider {
	return &Provider{
		client:    client,
		modelName: modelName,
	}
}

// ID identifies this provider to the dispatcher.
func (p *Provider) ID() model.ProviderID {
	return model.ProviderGemini
}

// Generate sends the prompt to the Gemini API and returns the response text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	contents := genai.Text(prompt)

	resp, err := p.client.GenerateContent(ctx, p.modelName, contents, nil)
	if err != nil {
		return "", mapError(err)
	}

	text := extractText(resp)
	if text == "" {
		return "", &model.ProviderError{
			Code:       model.ErrorCodeEmpty,
			Provider:   model.ProviderGemini,
			Message:    "no text in response",
			Underlying: model.ErrEmptyResponse,
		}
	}
	return text, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text
}

// mapError maps Gemini API errors onto the provider error taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 401, 403:
			return &model.ProviderError{
				Code:       model.ErrorCodeAuth,
				Provider:   model.ProviderGemini,
				Message:    "authentication failed",
				Underlying: model.ErrAuthentication,
			}
		case 429:
			return &model.ProviderError{
				Code:       model.ErrorCodeRateLimit,
				Provider:   model.ProviderGemini,
				Message:    "rate limit exceeded",
				Underlying: err,
			}
		case 400:
			return &model.ProviderError{
				Code:       model.ErrorCodeInvalid,
				Provider:   model.ProviderGemini,
				Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
				Underlying: err,
			}
		default:
			return &model.ProviderError{
				Code:       model.ErrorCodeNetwork,
				Provider:   model.ProviderGemini,
				Message:    fmt.Sprintf("API error: %s", apiErr.Message),
				Underlying: err,
			}
		}
	}

	return &model.ProviderError{
		Code:       model.ErrorCodeNetwork,
		Provider:   model.ProviderGemini,
		Message:    "network error",
		Underlying: err,
	}
}
