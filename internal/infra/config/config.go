package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env         string
	Port        string
	OtelEnabled bool

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	OllamaURL       string
	GenerationModel string
	EmbeddingModel  string
	EmbedCacheSize  int

	SearchAPIURL     string
	SearchAPIKey     string
	SearchMaxResults int
	SearchRatePerSec float64

	ChunkSize           int
	ChunkOverlap        int
	LoopMaxIterations   int
	LoopSearchK         int
	SufficiencyCtxChars int
}

func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "9020"),
		OtelEnabled: getEnvBool("OTEL_ENABLED", false),

		DBHost:     getEnv("DB_HOST", "course-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "course_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "course_password"),
		DBName:     getEnv("DB_NAME", "course_db"),

		OllamaURL:       getEnv("OLLAMA_URL", "http://ollama:11434"),
		GenerationModel: getEnv("GENERATION_MODEL", "gpt-oss20b-cpu"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "embeddinggemma"),
		EmbedCacheSize:  getEnvInt("EMBED_CACHE_SIZE", 2048),

		SearchAPIURL:     getEnv("SEARCH_API_URL", "https://api.tavily.com"),
		SearchAPIKey:     getSecret("SEARCH_API_KEY", "SEARCH_API_KEY_FILE", ""),
		SearchMaxResults: getEnvInt("SEARCH_MAX_RESULTS", 5),
		SearchRatePerSec: getEnvFloat("SEARCH_RATE_PER_SEC", 1),

		ChunkSize:           getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:        getEnvInt("CHUNK_OVERLAP", 100),
		LoopMaxIterations:   getEnvInt("LOOP_MAX_ITERATIONS", 3),
		LoopSearchK:         getEnvInt("LOOP_SEARCH_K", 10),
		SufficiencyCtxChars: getEnvInt("SUFFICIENCY_CONTEXT_CHARS", 32000),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
