package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartquery/text2sql-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Config holds application configuration values
type Config struct {
	ServerPort    string
	JWTSecret     string
	JWTExpiration time.Duration

	MetadataDbDir  string
	MetadataDbFile string

	// Target database the generated SQL runs against.
	TargetDriver string // "sqlite3" or "mysql"
	TargetDSN    string

	// Persisted schema artifact (table -> column names), written by the
	// reflection step and read on startup/reconnect.
	SchemaArtifactPath string

	QueryPromptFile      string
	SuggestionPromptFile string

	CompletionBaseURL     string
	CompletionToken       string
	CompletionModel       string
	CompletionMaxTokens   int
	CompletionTemperature float32
	CompletionTimeout     time.Duration

	// GenerationAttempts is the number of completion calls made before the
	// pipeline falls back to a suggestion. Deliberately defaults to 1.
	GenerationAttempts int

	// AllowedTable is the single table literal a RESTRICTED caller's SQL
	// must contain.
	AllowedTable string

	CORSOrigins []string
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		MetadataDbDir:        getEnv("DATABASE_DIRECTORY", "data"),
		MetadataDbFile:       getEnv("DATABASE_DIRECTORY_FILE", "metadata.db"),
		TargetDriver:         getEnv("TARGET_DB_DRIVER", "sqlite3"),
		TargetDSN:            getEnv("TARGET_DB_DSN", "data/business.db"),
		SchemaArtifactPath:   getEnv("SCHEMA_ARTIFACT_PATH", "data/schema.json"),
		QueryPromptFile:      getEnv("QUERY_PROMPT_FILE", "templates/query_prompt.txt"),
		SuggestionPromptFile: getEnv("SUGGESTION_PROMPT_FILE", "templates/suggestion_prompt.txt"),
		CompletionBaseURL:    getEnv("COMPLETION_BASE_URL", "https://api.siliconflow.cn/v1"),
		CompletionToken:      os.Getenv("COMPLETION_API_TOKEN"),
		CompletionModel:      getEnv("COMPLETION_MODEL", "deepseek-ai/DeepSeek-R1-Distill-Qwen-7B"),
		AllowedTable:         getEnv("ALLOWED_TABLE", "商品信息表"),
	}

	if cfg.CompletionToken == "" {
		return nil, errors.New("COMPLETION_API_TOKEN environment variable must be set")
	}

	cfg.CompletionMaxTokens = getEnvInt("COMPLETION_MAX_TOKENS", 512)
	cfg.CompletionTimeout = time.Duration(getEnvInt("COMPLETION_TIMEOUT_SECONDS", 30)) * time.Second
	cfg.GenerationAttempts = getEnvInt("GENERATION_ATTEMPTS", 1)
	if cfg.GenerationAttempts < 1 {
		customLog.Warnf("GENERATION_ATTEMPTS must be >= 1, using 1")
		cfg.GenerationAttempts = 1
	}

	temp, err := strconv.ParseFloat(getEnv("COMPLETION_TEMPERATURE", "0.7"), 32)
	if err != nil || temp < 0 {
		customLog.Warnf("Invalid COMPLETION_TEMPERATURE, using default 0.7. Error: %v", err)
		temp = 0.7
	}
	cfg.CompletionTemperature = float32(temp)

	jwtExpHours := getEnvInt("JWT_EXPIRATION_HOURS", 6)
	if jwtExpHours <= 0 {
		customLog.Warnf("Invalid JWT_EXPIRATION_HOURS, using default 6h")
		jwtExpHours = 6
	}
	cfg.JWTExpiration = time.Hour * time.Duration(jwtExpHours)

	// JWT_SECRET from the environment wins; otherwise the secret lives in a
	// rotating on-disk store next to the metadata database.
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		storePath := getEnv("SECRET_STORE_FILE", "data/secret_store.json")
		secret, err := LoadOrRotateSecret(storePath, cfg.JWTExpiration)
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
	}

	origins := getEnv("CORS_ORIGINS", "http://localhost:8081")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, Model: %s, Attempts: %d",
		cfg.ServerPort, cfg.CompletionModel, cfg.GenerationAttempts)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		customLog.Warnf("Invalid %s '%s'. Using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return n
}
