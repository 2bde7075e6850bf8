package generation

import (
	"context"
	"strings"

	"github.com/siherrmann/vaultgraph/helper"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-1.5-flash"

type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultGeminiConfig returns the flash model with a low temperature.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Model:           DefaultGeminiModel,
		Temperature:     0.1,
		MaxOutputTokens: 1024,
	}
}

// NewGeminiConfigFromEnv reads GEMINI_API_KEY and GEMINI_MODEL on top of the defaults.
func NewGeminiConfigFromEnv() (GeminiConfig, error) {
	config := DefaultGeminiConfig()
	if err := helper.LoadEnv(); err != nil {
		return config, err
	}

	config.APIKey = helper.EnvOrDefault("GEMINI_API_KEY", "")
	config.Model = helper.EnvOrDefault("GEMINI_MODEL", config.Model)
	if config.APIKey == "" {
		return config, helper.NewError("gemini configuration", ErrMissingAPIKey)
	}
	return config, nil
}

// GeminiGenerator answers through the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	config GeminiConfig
}

// NewGeminiGenerator creates a Gemini API client. An API key is required.
func NewGeminiGenerator(ctx context.Context, config GeminiConfig) (*GeminiGenerator, error) {
	if config.APIKey == "" {
		return nil, helper.NewError("gemini generator", ErrMissingAPIKey)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, helper.NewError("gemini client", err)
	}

	return &GeminiGenerator{client: client, config: config}, nil
}

// Generate sends the system prompt as instruction and the question with its context as content.
func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt string, userPrompt string, retrieved string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(g.config.Temperature),
	}
	if g.config.MaxOutputTokens > 0 {
		config.MaxOutputTokens = g.config.MaxOutputTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(UserMessage(userPrompt, retrieved)), config)
	if err != nil {
		return "", helper.NewError("gemini generate content", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", helper.NewError("gemini generate content", ErrEmptyResponse)
	}
	return text, nil
}
