package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	// geminiTemperature keeps classification output consistent across
	// batches; creativity is not wanted here.
	geminiTemperature float32 = 0.3
	geminiMaxTokens   int32   = 4000
)

// TextGenerator is the narrow surface the classification client needs
// from an LLM. Failures must be reported as *Failure values so the
// pipeline can record their kind.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiClient implements TextGenerator against the Gemini API.
type GeminiClient struct {
	model   string
	gClient *genai.Client
	log     logrus.FieldLogger
}

// NewGeminiClient creates a Gemini-backed text generator. The API key
// is required; the model falls back to whatever the caller configured.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger logrus.FieldLogger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY in the environment or config file")
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		model:   model,
		gClient: gClient,
		log:     logger.WithField("component", "gemini"),
	}, nil
}

// GenerateText sends one prompt and returns the raw response text.
// Errors come back as *Failure: ServiceError for explicit API errors,
// TransportError for anything that kept the call from completing, and
// EmptyResponse when the model returned no usable text.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	temp := geminiTemperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: geminiMaxTokens,
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			c.log.WithError(err).WithField("status", apiErr.Code).Error("Gemini returned an API error")
			return "", &Failure{
				Kind:   ServiceError,
				Status: apiErr.Code,
				Detail: apiErr.Message,
				cause:  err,
			}
		}
		c.log.WithError(err).Error("Gemini call failed")
		return "", newFailure(TransportError, err, "request failed: %v", err)
	}

	text := resp.Text()
	if text == "" {
		return "", newFailure(EmptyResponse, nil, "no text content in response")
	}
	return text, nil
}
