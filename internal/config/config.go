// Package config assembles the run configuration from the environment and
// the persona file in the input directory.
package config

import (
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/kiwi-persona/internal/util"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/rank"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/segment"

	"github.com/go-playground/validator"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	defaultInputDir  = "/app/input"
	defaultOutputDir = "/app/output"
)

// EmbedderConfig selects and configures the embedding backend.
type EmbedderConfig struct {
	Adapter       string `validate:"oneof=openai ollama fastembed"`
	Model         string
	URL           string
	Key           string
	Dimensions    int `validate:"min=0"`
	MaxTokens     int `validate:"min=0"`
	TokenEncoding string
	CacheDir      string
}

// ExtractorConfig selects and configures the entity extractor. The openai
// and ollama adapters use the chat endpoint.
type ExtractorConfig struct {
	Adapter    string `validate:"oneof=prose heuristic openai ollama"`
	Model      string
	URL        string
	Key        string
	MaxRetries int `validate:"min=0"`
}

// S3Config locates the object store used by the worker and the S3 source.
type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Config is the full run configuration.
type Config struct {
	InputDir          string  `validate:"required"`
	OutputDir         string  `validate:"required"`
	TopK              int     `validate:"min=1"`
	ChunkSize         int     `validate:"min=1"`
	ConnectivityBonus float64 `validate:"min=0"`
	Parallelism       int     `validate:"min=0"`

	Embedder  EmbedderConfig
	Extractor ExtractorConfig
	S3        S3Config
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		InputDir:          util.GetEnvString("INPUT_DIR", defaultInputDir),
		OutputDir:         util.GetEnvString("OUTPUT_DIR", defaultOutputDir),
		TopK:              util.GetEnvInt("TOP_K", rank.DefaultTopK),
		ChunkSize:         util.GetEnvInt("CHUNK_SIZE", segment.DefaultChunkSize),
		ConnectivityBonus: util.GetEnvNumeric("CONNECTIVITY_BONUS", rank.DefaultConnectivityBonus),
		Parallelism:       util.GetEnvInt("AI_PARALLEL_REQ", 0),

		Embedder: EmbedderConfig{
			Adapter:       util.GetEnvString("AI_ADAPTER", "fastembed"),
			Model:         util.GetEnv("AI_EMBED_MODEL"),
			URL:           util.GetEnv("AI_EMBED_URL"),
			Key:           util.GetEnv("AI_EMBED_KEY"),
			Dimensions:    util.GetEnvInt("AI_EMBED_DIM", 0),
			MaxTokens:     util.GetEnvInt("AI_EMBED_MAX_TOKENS", 256),
			TokenEncoding: util.GetEnvString("AI_TOKEN_ENCODING", "cl100k_base"),
			CacheDir:      util.GetEnv("AI_EMBED_CACHE_DIR"),
		},
		Extractor: ExtractorConfig{
			Adapter:    util.GetEnvString("NER_ADAPTER", "prose"),
			Model:      util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			URL:        util.GetEnv("AI_CHAT_URL"),
			Key:        util.GetEnv("AI_CHAT_KEY"),
			MaxRetries: util.GetEnvInt("NER_MAX_RETRIES", 3),
		},
		S3: S3Config{
			Bucket:    util.GetEnv("AWS_BUCKET"),
			Endpoint:  util.GetEnv("AWS_ENDPOINT"),
			Region:    util.GetEnv("AWS_REGION"),
			AccessKey: util.GetEnv("AWS_ACCESS_KEY"),
			SecretKey: util.GetEnv("AWS_SECRET_KEY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
