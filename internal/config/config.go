// Package config provides application configuration management.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (RAGSERVE_* runtime override)
//  2. Config file (./ragserve.yaml, optional)
//  3. Default values (the shipped deployment constants)
//
// The defaults ARE the deployment: the service is designed to run with no
// flags and no config file, binding :8000 and indexing ./data into ./storage.
// Validation uses sentinel errors so callers can check with errors.Is().
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidModelName indicates the chat model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model name is empty.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidOllamaHost indicates the Ollama server address is malformed.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")

	// ErrInvalidChunking indicates chunk size/overlap values are out of range.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidTopK indicates the retrieval breadth is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top-k")

	// ErrInvalidGate indicates the admission gate values are out of range.
	ErrInvalidGate = errors.New("invalid admission gate parameters")
)

// Defaults for the shipped deployment. These mirror the production constants
// the service was originally tuned with.
const (
	DefaultAddr          = ":8000"
	DefaultDocDir        = "./data"
	DefaultStorageDir    = "./storage"
	DefaultOllamaHost    = "http://localhost:11434"
	DefaultModelName     = "gemma2:2b"
	DefaultEmbedderModel = "nomic-embed-text"

	// DefaultRequestTimeout bounds a single generation call. Generous because
	// small local models on modest hardware can be slow.
	DefaultRequestTimeout = 120 * time.Second

	// Chunking tuned for context retrieval quality: 350 token-like units per
	// chunk with 35 units of overlap between consecutive chunks.
	DefaultChunkSize    = 350
	DefaultChunkOverlap = 35

	// DefaultTopK is the number of most similar chunks retrieved per query.
	DefaultTopK = 3

	// DefaultGateCapacity is the number of chat requests allowed to generate
	// concurrently. DefaultGateQueueDepth bounds how many more may wait for a
	// slot before the service fast-fails new arrivals.
	DefaultGateCapacity   = 2
	DefaultGateQueueDepth = 8

	DefaultLogLevel = "info"
)

// DefaultCORSOrigins are the only origins permitted to call the API from a
// browser. Credentials are allowed, so a wildcard is not an option.
var DefaultCORSOrigins = []string{"https://chat.dtforg.in", "https://dtforg.in"}

// Config stores application configuration.
type Config struct {
	// HTTP server bind address.
	Addr string `mapstructure:"addr"`

	// Document corpus and index storage locations. StorageDir's internal
	// layout is owned by the index library; only its existence is checked.
	DocDir     string `mapstructure:"doc_dir"`
	StorageDir string `mapstructure:"storage_dir"`

	// Ollama server and models.
	OllamaHost    string `mapstructure:"ollama_host"`
	ModelName     string `mapstructure:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model"`

	// RequestTimeout bounds a single retrieval+generation call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Chunking and retrieval.
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	TopK         int `mapstructure:"top_k"`

	// Admission gate.
	GateCapacity   int `mapstructure:"gate_capacity"`
	GateQueueDepth int `mapstructure:"gate_queue_depth"`

	// CORS origin allowlist.
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Logging. LogLevel is one of debug, info, warn, error; LogJSON switches
	// the text handler for JSON output.
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > config file > default values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("doc_dir", DefaultDocDir)
	v.SetDefault("storage_dir", DefaultStorageDir)
	v.SetDefault("ollama_host", DefaultOllamaHost)
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("gate_capacity", DefaultGateCapacity)
	v.SetDefault("gate_queue_depth", DefaultGateQueueDepth)
	v.SetDefault("cors_origins", DefaultCORSOrigins)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_json", false)

	v.SetConfigName("ragserve")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RAGSERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; only a malformed file is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration values against their allowed ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder model must not be empty", ErrInvalidEmbedderModel)
	}
	if !strings.HasPrefix(c.OllamaHost, "http://") && !strings.HasPrefix(c.OllamaHost, "https://") {
		return fmt.Errorf("%w: %q must start with http:// or https://", ErrInvalidOllamaHost, c.OllamaHost)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be in [0, chunk size %d)", ErrInvalidChunking, c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK < 1 || c.TopK > 100 {
		return fmt.Errorf("%w: top-k %d must be in [1, 100]", ErrInvalidTopK, c.TopK)
	}
	if c.GateCapacity < 1 {
		return fmt.Errorf("%w: capacity %d must be at least 1", ErrInvalidGate, c.GateCapacity)
	}
	if c.GateQueueDepth < 0 {
		return fmt.Errorf("%w: queue depth %d must not be negative", ErrInvalidGate, c.GateQueueDepth)
	}
	return nil
}
