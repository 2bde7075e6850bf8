package generation

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/siherrmann/vaultgraph/helper"
)

const (
	DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1/"
	DefaultOpenAIModel   = "llama-3.3-70b-versatile"
)

// OpenAIConfig configures a generator for any OpenAI compatible chat completions API.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

// DefaultOpenAIConfig targets Groq with the settings of the chat assistant.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL:     DefaultOpenAIBaseURL,
		Model:       DefaultOpenAIModel,
		Temperature: 0.1,
		MaxTokens:   1024,
		Timeout:     60 * time.Second,
	}
}

// NewOpenAIConfigFromEnv reads GROQ_API_KEY, LLM_BASE_URL, LLM_MODEL and
// LLM_MAX_TOKENS on top of the defaults.
func NewOpenAIConfigFromEnv() (OpenAIConfig, error) {
	config := DefaultOpenAIConfig()
	if err := helper.LoadEnv(); err != nil {
		return config, err
	}

	config.APIKey = helper.EnvOrDefault("GROQ_API_KEY", helper.EnvOrDefault("OPENAI_API_KEY", ""))
	config.BaseURL = helper.EnvOrDefault("LLM_BASE_URL", config.BaseURL)
	config.Model = helper.EnvOrDefault("LLM_MODEL", config.Model)
	if raw := helper.EnvOrDefault("LLM_MAX_TOKENS", ""); raw != "" {
		maxTokens, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return config, helper.NewError("parse LLM_MAX_TOKENS", err)
		}
		config.MaxTokens = maxTokens
	}

	if config.APIKey == "" {
		return config, helper.NewError("openai configuration", ErrMissingAPIKey)
	}
	return config, nil
}

// OpenAIGenerator answers with a single chat completion call.
type OpenAIGenerator struct {
	client openai.Client
	config OpenAIConfig
}

// NewOpenAIGenerator creates a client for an OpenAI compatible endpoint. Retries are disabled.
func NewOpenAIGenerator(config OpenAIConfig) (*OpenAIGenerator, error) {
	if config.APIKey == "" {
		return nil, helper.NewError("openai generator", ErrMissingAPIKey)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		baseURL := config.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		config: config,
	}, nil
}

// Generate runs one chat completion with a system and a user message.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt string, userPrompt string, retrieved string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(UserMessage(userPrompt, retrieved)),
		},
		Temperature: openai.Float(g.config.Temperature),
	}
	if g.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(g.config.MaxTokens)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", helper.NewError("chat completion", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", helper.NewError("chat completion", ErrEmptyResponse)
	}

	return resp.Choices[0].Message.Content, nil
}
