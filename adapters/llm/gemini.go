package llm

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/AlexanderWiman/verlo-websocket/domain/repositories"
)

const (
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 1024
)

// GeminiConfig holds configuration for the Gemini translator.
// Required fields:
// - APIKey: Google AI API key
// Optional fields with defaults:
// - Model: model name (default "gemini-2.0-flash")
// - MaxOutputTokens: output length bound (default 1024)
type GeminiConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
}

// GeminiTranslator implements Translator using Google's Gemini API with
// deterministic decoding. Temperature is pinned to zero so identical
// inputs produce identical translations, which is what makes cache
// entries idempotent reconstructions.
type GeminiTranslator struct {
	client          *genai.Client
	logger          *zap.Logger
	model           string
	maxOutputTokens int
}

var _ repositories.Translator = (*GeminiTranslator)(nil)

// ValidateGeminiConfig validates the GeminiConfig.
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}
	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}
	return nil
}

// NewGeminiTranslator creates a Gemini-backed translator.
func NewGeminiTranslator(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiTranslator, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxTokens
	}

	return &GeminiTranslator{
		client:          client,
		logger:          logger,
		model:           model,
		maxOutputTokens: maxOutputTokens,
	}, nil
}

// Translate converts text between two named languages.
func (g *GeminiTranslator) Translate(ctx context.Context, text string, fromLanguage string, toLanguage string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Respond with only the translation, no explanations.\n\n%s",
		fromLanguage, toLanguage, text,
	)

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0)),
		MaxOutputTokens: int32(g.maxOutputTokens),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate translation: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("no translation generated")
	}

	var translated strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		translated.WriteString(part.Text)
	}

	result := strings.TrimSpace(translated.String())
	if result == "" {
		return "", fmt.Errorf("empty translation response")
	}

	g.logger.Info("Translation completed",
		zap.String("fromLanguage", fromLanguage),
		zap.String("toLanguage", toLanguage),
		zap.Int("inputLength", len(text)),
		zap.Int("outputLength", len(result)))

	return result, nil
}

// NewGeminiConfigFromEnv creates a GeminiConfig from environment variables.
func NewGeminiConfigFromEnv() GeminiConfig {
	config := GeminiConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}

	if maxStr := os.Getenv("GEMINI_MAX_OUTPUT_TOKENS"); maxStr != "" {
		if max, err := strconv.Atoi(maxStr); err == nil && max > 0 {
			config.MaxOutputTokens = max
		}
	}

	return config
}
