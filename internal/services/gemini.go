package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// embeddingDim is the fixed output dimensionality requested from the
// embedding model. All vectors in the similarity index share it.
const embeddingDim = 384

// maxEmbedInputBytes caps the text sent to the embedding model.
const maxEmbedInputBytes = 40000

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32) (string, error)
}

type geminiService struct {
	client       *genai.Client
	logger       *zap.Logger
	modelName    string
	embedModel   string
	maxRetries   int
	initialDelay time.Duration
}

func NewGeminiService(apiKey, model, embedModel string, maxRetries int, initialDelay time.Duration, logger *zap.Logger) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if maxRetries < 1 {
		maxRetries = 1
	}
	if initialDelay <= 0 {
		initialDelay = 2 * time.Second
	}

	return &geminiService{
		client:       client,
		logger:       logger,
		modelName:    model,
		embedModel:   embedModel,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
	}, nil
}

// GenerateEmbedding implements GeminiService. The result is a fixed
// 384-dimension vector; identical input yields an identical vector for a
// given model version.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrEmbedding)
	}

	if len(text) > maxEmbedInputBytes {
		text = text[:maxEmbedInputBytes]
	}

	config := &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr[int32](embeddingDim),
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding call failed: %v", ErrExternalService, err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding result", ErrEmbedding)
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: generation call failed: %v", ErrExternalService, err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrExternalService)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", ErrExternalService)
	}

	return text, nil
}

// GenerateTextWithRetry implements GeminiService. Bounded exponential
// backoff; a persistently failing call is fatal for the calling resume only.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32) (string, error) {
	var lastErr error
	delay := g.initialDelay

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		result, err := g.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if attempt < g.maxRetries {
			g.logger.Warn("generation attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", g.maxRetries, lastErr)
}
