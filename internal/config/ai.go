package config

import "os"

// AIModels defines which models to use for different tasks
type AIModels struct {
	// Eval is for per-answer evaluation (needs to be fast)
	Eval string `json:"eval"`

	// Generate is for bank question generation (bulk, quality over speed)
	Generate string `json:"generate"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string   `json:"-"` // Never serialize
	BaseURL   string   `json:"baseUrl"`
	Models    AIModels `json:"models"`
	TimeoutMS int      `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: AIModels{
			Eval:     getEnvOrDefault("GEMINI_MODEL_EVAL", "gemini-2.0-flash"),
			Generate: getEnvOrDefault("GEMINI_MODEL_GENERATE", "gemini-2.0-flash"),
		},
		TimeoutMS: getEnvIntOrDefault("AI_TIMEOUT_MS", 10000),
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}
