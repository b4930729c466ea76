package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported vector backends.
const (
	VectorBackendMemory   = "memory"
	VectorBackendQdrant   = "qdrant"
	VectorBackendPGVector = "pgvector"
)

// Supported model providers.
const (
	ProviderLlamaCpp = "llamacpp"
	ProviderOllama   = "ollama"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel  slog.Level
	LogFormat string
	APIPort   string

	StoriesDir   string
	DBPath       string
	WatchStories bool

	VectorBackend    string
	QdrantURL        string
	QdrantCollection string
	PGVectorDSN      string

	EmbeddingProvider   string
	EmbeddingBaseURL    string
	EmbeddingModelName  string
	EmbeddingVectorSize int

	LLMProvider  string
	LLMBaseURL   string
	LLMModelName string
	LLMAPIKey    string
	LLMAutoLoad  bool
	OllamaHost   string

	ChunkSize               int
	SimilarityThreshold     float64
	ContextOverlapThreshold float64
	MinResponseLength       int
	DirectAnswerByKeyword   bool
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	// Walk up to find a .env next to the project root
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		APIPort:            getEnv("API_PORT", "5000"),
		StoriesDir:         getEnv("STORIES_DIR", "./data/stories"),
		DBPath:             getEnv("DB_PATH", "./data/kahani-ai.db"),
		VectorBackend:      strings.ToLower(getEnv("VECTOR_BACKEND", VectorBackendMemory)),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "urdu_stories"),
		PGVectorDSN:        getEnv("PGVECTOR_DSN", ""),
		EmbeddingProvider:  strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderLlamaCpp)),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "paraphrase-multilingual-MiniLM-L12-v2"),
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderLlamaCpp)),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "tinyllama-1.1b-chat-v1.0.Q4_K_M"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		OllamaHost:         getEnv("OLLAMA_HOST", "http://localhost:11434"),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	// paraphrase-multilingual-MiniLM-L12-v2 produces 384-dimensional vectors.
	// Changing the embedding model requires updating this and rebuilding the index.
	if cfg.EmbeddingVectorSize, err = getEnvInt("EMBEDDING_VECTOR_SIZE", 384); err != nil {
		return nil, err
	}
	if cfg.EmbeddingVectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}

	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 200); err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}

	if cfg.MinResponseLength, err = getEnvInt("MIN_RESPONSE_LENGTH", 10); err != nil {
		return nil, err
	}
	if cfg.SimilarityThreshold, err = getEnvFloat("SIMILARITY_THRESHOLD", 0.5); err != nil {
		return nil, err
	}
	if cfg.ContextOverlapThreshold, err = getEnvFloat("CONTEXT_OVERLAP_THRESHOLD", 0.2); err != nil {
		return nil, err
	}

	if cfg.WatchStories, err = getEnvBool("WATCH_STORIES", false); err != nil {
		return nil, err
	}
	if cfg.LLMAutoLoad, err = getEnvBool("LLM_AUTOLOAD", false); err != nil {
		return nil, err
	}
	if cfg.DirectAnswerByKeyword, err = getEnvBool("DIRECT_ANSWER_BY_KEYWORD", false); err != nil {
		return nil, err
	}

	switch cfg.VectorBackend {
	case VectorBackendMemory, VectorBackendQdrant:
	case VectorBackendPGVector:
		if cfg.PGVectorDSN == "" {
			return nil, fmt.Errorf("PGVECTOR_DSN is required when VECTOR_BACKEND=pgvector")
		}
	default:
		return nil, fmt.Errorf("unsupported VECTOR_BACKEND %q", cfg.VectorBackend)
	}

	for key, provider := range map[string]string{
		"EMBEDDING_PROVIDER": cfg.EmbeddingProvider,
		"LLM_PROVIDER":       cfg.LLMProvider,
	} {
		if provider != ProviderLlamaCpp && provider != ProviderOllama {
			return nil, fmt.Errorf("unsupported %s %q", key, provider)
		}
	}

	// Validate required fields
	info, err := os.Stat(cfg.StoriesDir)
	if err != nil {
		return nil, fmt.Errorf("STORIES_DIR is not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("STORIES_DIR must be a directory: %s", cfg.StoriesDir)
	}

	// Create the data directory for the SQLite file if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%s must be between 0 and 1", key)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	return level, nil
}
