package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/config"
	"github.com/reviewloop/backend/internal/models"
	"github.com/reviewloop/backend/pkg/logger"
	"github.com/reviewloop/backend/pkg/metrics"
)

// LLMClient resolves the active language-model configuration and dispatches
// completion requests to the matching provider SDK.
type LLMClient struct {
	db     *gorm.DB
	config *config.OpenAIConfig
}

func NewLLMClient(db *gorm.DB, cfg *config.OpenAIConfig) *LLMClient {
	return &LLMClient{db: db, config: cfg}
}

// Configured reports whether any usable provider credentials exist.
func (c *LLMClient) Configured() bool {
	if c.config != nil && c.config.APIKey != "" {
		return true
	}
	var count int64
	c.db.Model(&models.LLMConfig{}).Where("is_active = ?", true).Count(&count)
	return count > 0
}

// resolveConfig picks the default active DB row, then any active row, then
// the YAML fallback.
func (c *LLMClient) resolveConfig() *models.LLMConfig {
	var llmConfig models.LLMConfig
	if err := c.db.Where("is_default = ? AND is_active = ?", true, true).First(&llmConfig).Error; err == nil {
		return &llmConfig
	}
	if err := c.db.Where("is_active = ?", true).Order("id ASC").First(&llmConfig).Error; err == nil {
		return &llmConfig
	}
	return &models.LLMConfig{
		Name:     "fallback",
		Provider: "openai",
		BaseURL:  c.config.BaseURL,
		APIKey:   c.config.APIKey,
		Model:    c.config.Model,
	}
}

// Complete sends the system instruction and user prompt to the configured
// provider and returns the raw response text.
func (c *LLMClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	llmConfig := c.resolveConfig()
	logger.Debug().Str("provider", llmConfig.Provider).Str("model", llmConfig.Model).Msg("llm request")

	start := time.Now()
	content, err := c.call(ctx, llmConfig, system, prompt)
	metrics.ObserveProvider("llm", llmConfig.Provider, err, time.Since(start))
	return content, err
}

func (c *LLMClient) call(ctx context.Context, llmConfig *models.LLMConfig, system, prompt string) (string, error) {
	switch llmConfig.Provider {
	case "anthropic":
		return c.callAnthropic(ctx, llmConfig, system, prompt)
	case "ollama":
		return c.callOllama(ctx, llmConfig, system, prompt)
	case "gemini":
		return c.callGemini(ctx, llmConfig, system, prompt)
	default:
		// openai and other OpenAI-compatible services
		return c.callOpenAI(ctx, llmConfig, system, prompt)
	}
}

// callOpenAI handles OpenAI and OpenAI-compatible APIs (including custom endpoints)
func (c *LLMClient) callOpenAI(ctx context.Context, llmConfig *models.LLMConfig, system, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(llmConfig.APIKey)
	if llmConfig.BaseURL != "" {
		clientConfig.BaseURL = llmConfig.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	temperature := float32(0.3)
	if llmConfig.Temperature > 0 {
		temperature = float32(llmConfig.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: llmConfig.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// callAnthropic handles the Anthropic API using the native SDK
func (c *LLMClient) callAnthropic(ctx context.Context, llmConfig *models.LLMConfig, system, prompt string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(llmConfig.APIKey),
	)

	maxTokens := int64(llmConfig.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(llmConfig.Model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return content.String(), nil
}

// callOllama handles self-hosted Ollama endpoints
func (c *LLMClient) callOllama(ctx context.Context, llmConfig *models.LLMConfig, system, prompt string) (string, error) {
	baseURL := llmConfig.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model: llmConfig.Model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Options: map[string]interface{}{
			"temperature": llmConfig.Temperature,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}

	return content.String(), nil
}

// callGemini handles the Google Gemini API using the native SDK
func (c *LLMClient) callGemini(ctx context.Context, llmConfig *models.LLMConfig, system, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: llmConfig.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini client error: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, llmConfig.Model,
		genai.Text(system+"\n\n"+prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return resp.Text(), nil
}
