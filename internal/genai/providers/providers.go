package providers

import (
	"fmt"

	"github.com/spark-rms/spark/internal/config"
	"github.com/spark-rms/spark/internal/genai"
)

// New creates the genai client named by the configuration
func New(cfg config.AIConfig) (genai.Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiProvider(cfg.APIKey, cfg.Model), nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}
