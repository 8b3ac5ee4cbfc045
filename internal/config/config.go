package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
	Store     StoreConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	EmbeddingProvider  string // "gemini" or "ollama"
	EmbeddingModel     string
	EmbeddingDimension int // 0 = auto-detect from provider
	OllamaBaseURL      string
	LLMProvider        string // "gemini" or "ollama"
	LLMModel           string
}

type RetrievalConfig struct {
	SimilarityThreshold float32
	TopK                int
	MaxContextChars     int
	BatchSize           int
	RetryBudget         int
	GenerationTimeout   time.Duration
	RetryWallClock      time.Duration
	MaxEmbedInputRunes  int
}

type StoreConfig struct {
	Backend string // "chromem" (embedded) or "pgvector" (cloud)
	DataDir string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 0),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:        getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:           getEnv("LLM_MODEL", "gemini-1.5-flash"),
		},
		Retrieval: RetrievalConfig{
			SimilarityThreshold: getEnvAsFloat32("SIMILARITY_THRESHOLD", 0.7),
			TopK:                getEnvAsInt("TOP_K_RETRIEVAL", 5),
			MaxContextChars:     getEnvAsInt("MAX_CONTEXT_CHARS", 6000),
			BatchSize:           getEnvAsInt("LOAD_BATCH_SIZE", 50),
			RetryBudget:         getEnvAsInt("GENERATION_RETRY_BUDGET", 3),
			GenerationTimeout:   getEnvAsDuration("GENERATION_TIMEOUT", 30*time.Second),
			RetryWallClock:      getEnvAsDuration("GENERATION_RETRY_WALL_CLOCK", 90*time.Second),
			MaxEmbedInputRunes:  getEnvAsInt("MAX_EMBED_INPUT_RUNES", 2048),
		},
		Store: StoreConfig{
			Backend: getEnv("VECTOR_STORE_BACKEND", "chromem"),
			DataDir: getEnv("VECTOR_STORE_DIR", "data/vectorstore"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat32(key string, fallback float32) float32 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 32); err == nil {
		return float32(value)
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
