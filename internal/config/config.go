package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Pipeline PipelineConfig
	Store    StoreConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RunLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	JwtSecret   string
	HuggingFace string
}

type AIConfig struct {
	LLMProvider   string // "ollama", "huggingface" or "offline"
	LLMModel      string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL string
	LLMBaseURL    string // Overrides the provider default when set
}

type PipelineConfig struct {
	Reduced       bool
	PersistTopic  string
	OfflinePaceMs int
}

type StoreConfig struct {
	Backend     string // "memory", "redis" or "postgres"
	RunTTLHours int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
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
			RunLogFilePath:     getEnv("RUN_LOG_FILE_PATH", "logs/pipeline_runs.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			JwtSecret:   getEnv("JWT_SECRET", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", "ollama")),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMBaseURL:    getEnv("LLM_BASE_URL", ""),
		},
		Pipeline: PipelineConfig{
			Reduced:       getEnvAsBool("REDUCED_PIPELINE", false),
			PersistTopic:  getEnv("PERSIST_RUN_TOPIC_NAME", "PERSIST_PIPELINE_RUN"),
			OfflinePaceMs: getEnvAsInt("OFFLINE_PACE_MS", 400),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("RUN_STORE", "memory")),
			RunTTLHours: getEnvAsInt("RUN_TTL_HOURS", 72),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ai-permit-planner-backend"),
		},
	}
}

// BaseURL returns the backend URL for the configured LLM provider.
func (c AIConfig) BaseURL() string {
	if c.LLMBaseURL != "" {
		return c.LLMBaseURL
	}
	if c.LLMProvider == "ollama" {
		return c.OllamaBaseURL
	}
	return ""
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
