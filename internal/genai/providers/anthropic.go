package providers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/spark-rms/spark/internal/config"
	"github.com/spark-rms/spark/internal/genai"
)

// AnthropicProvider implements genai.Client using Anthropic's Claude API
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicProvider{
		client: &client,
		model:  model,
	}
}

// GenerateContent sends a prompt to Claude and returns the raw text output
func (c *AnthropicProvider) GenerateContent(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	// Extract text from response
	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return "", fmt.Errorf("Claude returned empty response")
	}

	// Cache the prompt/response for debugging
	if cachePath, err := genai.SaveExchange(genai.Exchange{
		Timestamp: time.Now(),
		Provider:  config.ProviderAnthropic,
		Model:     c.model,
		Prompt:    prompt,
		Response:  responseText,
	}); err != nil {
		log.Printf("Failed to cache AI exchange: %v", err)
	} else {
		log.Printf("Cached AI exchange to: %s", cachePath)
	}

	return responseText, nil
}
