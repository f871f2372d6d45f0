// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned by Validate when no credential is configured
// for the remote chat-completion service.
var ErrMissingAPIKey = errors.New("no API key configured: set OPENAI_API_KEY or engine.api_key")

// Config represents the main configuration
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Fallback  FallbackConfig  `yaml:"fallback"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Source    SourceConfig    `yaml:"source"`
	Log       LogConfig       `yaml:"log"`
	UI        UIConfig        `yaml:"ui"`
}

// EngineConfig contains the remote chat-completion settings
type EngineConfig struct {
	ModelEndpoint string        `yaml:"model_endpoint"` // empty means api.openai.com
	APIKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	MaxTokens     int           `yaml:"max_tokens"` // 0 leaves it to the service
	Timeout       time.Duration `yaml:"timeout"`    // 0 disables the client-side timeout
}

// FallbackConfig selects and configures the local question-answering model
type FallbackConfig struct {
	Type         string  `yaml:"type"`     // "extractive" (default) or "local_server"
	Endpoint     string  `yaml:"endpoint"` // e.g. "http://localhost:11434/v1"
	APIKey       string  `yaml:"api_key"`
	Model        string  `yaml:"model"`       // e.g. "qwen2.5:0.5b"
	Temperature  float64 `yaml:"temperature"` // 0 keeps replies literal
	ChunkSize    int     `yaml:"chunk_size"`
	ChunkOverlap *int    `yaml:"chunk_overlap"` // nil means ChunkSize/4
	TopK         int     `yaml:"top_k"`
}

// EmbeddingConfig contains the optional embedding service used to rank
// chunks for the local_server fallback
type EmbeddingConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// SourceConfig controls how documents are read
type SourceConfig struct {
	MaxFileSize int64  `yaml:"max_file_size"` // bytes
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"` // custom endpoint for MinIO compatibility
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// UIConfig controls answer rendering
type UIConfig struct {
	Render string `yaml:"render"` // "auto", "markdown" or "plain"
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg
}

// Validate checks that the configuration can drive a session.
func (c *Config) Validate() error {
	if c.Engine.APIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.Fallback.Type {
	case "extractive":
	case "local_server":
		if c.Fallback.Endpoint == "" {
			return fmt.Errorf("fallback type local_server requires fallback.endpoint")
		}
		if c.Fallback.Model == "" {
			return fmt.Errorf("fallback type local_server requires fallback.model")
		}
	default:
		return fmt.Errorf("unknown fallback type %q", c.Fallback.Type)
	}
	switch c.UI.Render {
	case "auto", "markdown", "plain":
	default:
		return fmt.Errorf("unknown ui.render mode %q", c.UI.Render)
	}
	return nil
}

// applyEnv overrides file config with environment variables
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Engine.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_ENDPOINT"); v != "" {
		cfg.Engine.ModelEndpoint = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Engine.Model = v
	}

	if v := os.Getenv("FALLBACK_TYPE"); v != "" {
		cfg.Fallback.Type = v
	}
	if v := os.Getenv("FALLBACK_ENDPOINT"); v != "" {
		cfg.Fallback.Endpoint = v
	}
	if v := os.Getenv("FALLBACK_MODEL"); v != "" {
		cfg.Fallback.Model = v
	}

	if v := os.Getenv("EMBEDDING_ENDPOINT"); v != "" {
		cfg.Embedding.Endpoint = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = n
		}
	}

	if v := os.Getenv("DOCCHAT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Engine.Model == "" {
		cfg.Engine.Model = "gpt-3.5-turbo"
	}

	if cfg.Fallback.Type == "" {
		cfg.Fallback.Type = "extractive"
	}
	if cfg.Fallback.ChunkSize <= 0 {
		cfg.Fallback.ChunkSize = 800
	}
	if o := cfg.Fallback.ChunkOverlap; o == nil || *o < 0 || *o >= cfg.Fallback.ChunkSize {
		overlap := cfg.Fallback.ChunkSize / 4
		cfg.Fallback.ChunkOverlap = &overlap
	}
	if cfg.Fallback.TopK <= 0 {
		cfg.Fallback.TopK = 4
	}

	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}

	if cfg.Source.MaxFileSize <= 0 {
		cfg.Source.MaxFileSize = 20 << 20
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if cfg.UI.Render == "" {
		cfg.UI.Render = "auto"
	}
}
