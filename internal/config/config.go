// Package config provides environment configuration for the chat server.
package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds the chat server configuration.
type Config struct {
	// Server settings
	Port int `env:"PORT" envDefault:"8080"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:chat.db?cache=shared&mode=rwc"`

	// OpenAI settings
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL"`
	OpenAIModel    string `env:"OPENAI_MODEL" envDefault:"gpt-4"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`

	// Pinecone settings. Retrieval is skipped entirely when either is empty.
	PineconeAPIKey    string `env:"PINECONE_API_KEY"`
	PineconeIndexHost string `env:"PINECONE_INDEX_HOST"`

	// Timeouts
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"5m"`

	// Session memory eviction
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	SessionMaxEntries int           `env:"SESSION_MAX_ENTRIES" envDefault:"1024"`

	// Upload limit across all file parts of one request.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from the environment, reading a .env file first
// when one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: no .env file loaded: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// RetrievalConfigured reports whether the vector search backend is usable.
func (c *Config) RetrievalConfigured() bool {
	return c.PineconeAPIKey != "" && c.PineconeIndexHost != ""
}
