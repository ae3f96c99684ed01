package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"server/internal/domain"
)

// GeminiGenerator produces images through the Gemini API (Imagen models).
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator dials the Gemini API with the given key and model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("image: gemini api key is required")
	}
	if model == "" {
		model = "imagen-3.0-generate-002"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("image: create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate renders a single image for the prompt and returns its bytes.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, opts Options) ([]byte, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	}
	if opts.Size != "" {
		cfg.AspectRatio = opts.Size
	}
	resp, err := g.client.Models.GenerateImages(ctx, g.model, prompt, cfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("image: empty response from gemini: %w", domain.ErrUnavailable)
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusBadRequest && apiErr.Status == "INVALID_ARGUMENT":
			// Prompt rejections surface as invalid-argument responses.
			return fmt.Errorf("image: %v: %w", err, domain.ErrSafetyRefused)
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("image: %v: %w", err, domain.ErrRateLimited)
		case apiErr.Code >= 500:
			return fmt.Errorf("image: %v: %w", err, domain.ErrUnavailable)
		}
		return fmt.Errorf("image: %w", err)
	}
	return fmt.Errorf("image: %v: %w", err, domain.ErrUnavailable)
}

var _ Generator = (*GeminiGenerator)(nil)
