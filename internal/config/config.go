package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all process configuration, read from the environment.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`
	BearerToken string `env:"BEARER_TOKEN,required"`

	// Generative-text service (any OpenAI-compatible endpoint).
	OpenAIAPIKey  string `env:"OPENAI_API_KEY,required"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// IP geolocation. Optional: without a token ipinfo still answers for
	// low volumes, and lookup failures fall back to the default location.
	IPInfoToken string `env:"IPINFO_TOKEN"`

	Port string `env:"PORT" envDefault:"8080"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
