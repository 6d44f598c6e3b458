package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	RAG      RAGConfig
	Quiz     QuizConfig
	Runner   RunnerConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
	SessionTTL         time.Duration
	MaterialTTL        time.Duration
	SweepInterval      time.Duration
	MaxUploadBytes     int
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	ContactTo  string
}

type APIKeys struct {
	GoogleGemini string
	OpenRouter   string
	JWTSecret    string
	AdminKey     string
}

type AIConfig struct {
	EmbeddingProvider  string // "gemini", "ollama" or "openai"
	EmbeddingModel     string
	EmbeddingDimension int
	EmbeddingMaxChars  int
	OllamaBaseURL      string
	OpenAIBaseURL      string
	LLMProvider        string // "openrouter", "openai", "ollama" or "gemini"
	LLMModel           string
	QuizModel          string
	TutorTemperature   float64
}

type RAGConfig struct {
	Mode          string // "lexical" or "vector"
	TopK          int
	MinSimilarity float64
	ChunkSize     int
	ChunkOverlap  int
	CodeChunkSize int
	CodeOverlap   int
	CodeMinLines  int
	ChunkCacheTTL time.Duration
}

type QuizConfig struct {
	HashStore     string // "memory" or "redis"
	MaxAttempts   int
	Retention     time.Duration
	SweepInterval time.Duration
	HistoryItems  int
	HistoryTurns  int
	Topics        []string
}

type RunnerConfig struct {
	Interpreter    string
	Timeout        time.Duration
	MaxCodeBytes   int
	MaxOutputBytes int
	RateLimitMax   int
	RateLimitWin   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", 2*time.Hour),
			MaterialTTL:        getEnvAsDuration("MATERIAL_TTL", 2*time.Hour),
			SweepInterval:      getEnvAsDuration("EXPIRY_SWEEP_INTERVAL", 15*time.Minute),
			MaxUploadBytes:     getEnvAsInt("MAX_UPLOAD_BYTES", 10*1024*1024),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Haskify"),
			ContactTo:  getEnv("CONTACT_RECIPIENT", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenRouter:   getEnv("OPENAI_API_KEY", ""),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			AdminKey:     getEnv("ADMIN_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			EmbeddingMaxChars:  getEnvAsInt("EMBEDDING_MAX_CHARS", 8000),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://openrouter.ai/api/v1"),
			LLMProvider:        getEnv("LLM_PROVIDER", "openrouter"),
			LLMModel:           getEnv("LLM_MODEL", "google/gemma-3-27b-it:free"),
			QuizModel:          getEnv("QUIZ_MODEL", "deepseek-chat"),
			TutorTemperature:   getEnvAsFloat("TUTOR_TEMPERATURE", 0.3),
		},
		RAG: RAGConfig{
			Mode:          getEnv("RETRIEVAL_MODE", "lexical"),
			TopK:          getEnvAsInt("RETRIEVAL_TOP_K", 6),
			MinSimilarity: getEnvAsFloat("RETRIEVAL_MIN_SIMILARITY", 0.4),
			ChunkSize:     getEnvAsInt("CHUNK_SIZE", 900),
			ChunkOverlap:  getEnvAsInt("CHUNK_OVERLAP", 120),
			CodeChunkSize: getEnvAsInt("CODE_CHUNK_LINES", 60),
			CodeOverlap:   getEnvAsInt("CODE_CHUNK_OVERLAP", 10),
			CodeMinLines:  getEnvAsInt("CODE_CHUNK_MIN_LINES", 20),
			ChunkCacheTTL: getEnvAsDuration("CHUNK_CACHE_TTL", 30*time.Minute),
		},
		Quiz: QuizConfig{
			HashStore:     getEnv("QUIZ_HASH_STORE", "memory"),
			MaxAttempts:   getEnvAsInt("QUIZ_MAX_ATTEMPTS", 5),
			Retention:     getEnvAsDuration("QUIZ_HASH_RETENTION", 2*time.Hour),
			SweepInterval: getEnvAsDuration("QUIZ_HASH_SWEEP_INTERVAL", 15*time.Minute),
			HistoryItems:  getEnvAsInt("QUIZ_HISTORY_ITEMS", 2),
			HistoryTurns:  getEnvAsInt("QUIZ_CONTEXT_TURNS", 8),
			Topics: getEnvAsList("QUIZ_TOPICS", []string{
				"variables", "strings", "lists", "dictionaries", "loops",
				"conditionals", "functions", "recursion", "exceptions", "classes",
			}),
		},
		Runner: RunnerConfig{
			Interpreter:    getEnv("PYTHON_BIN", "python3"),
			Timeout:        getEnvAsDuration("RUN_TIMEOUT", 10*time.Second),
			MaxCodeBytes:   getEnvAsInt("RUN_MAX_CODE_BYTES", 10000),
			MaxOutputBytes: getEnvAsInt("RUN_MAX_OUTPUT_BYTES", 1024*1024),
			RateLimitMax:   getEnvAsInt("RUN_RATE_LIMIT_MAX", 100),
			RateLimitWin:   getEnvAsDuration("RUN_RATE_LIMIT_WINDOW", 15*time.Minute),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
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

func getEnvAsList(key string, fallback []string) []string {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
