package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	LogLevel     string
	DatabasePath string

	// Parser strategy selection: "heuristic" (default) or "gemini".
	// The heuristic pipeline remains the fallback tier regardless.
	ParserStrategy string

	// Gemini-assisted extraction. Absence of the API key must not affect
	// the heuristic pipeline in any way.
	GeminiAPIKey        string
	GeminiModel         string
	MaxAITextChars      int
	AIRequestsPerMinute int

	ExtractTimeout        time.Duration
	MaxStatementSizeBytes int64
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, relying on OS environment variables and defaults.")
	} else {
		log.Println(".env file loaded successfully.")
	}

	extractTimeout := getEnvAsDuration("EXTRACT_TIMEOUT", 30*time.Second)

	maxStatementSizeStr := getEnv("MAX_STATEMENT_SIZE_BYTES", "20971520")
	maxStatementSize, err := strconv.ParseInt(maxStatementSizeStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_STATEMENT_SIZE_BYTES format '%s'. Using default 20MB. Error: %v", maxStatementSizeStr, err)
		maxStatementSize = 20 * 1024 * 1024
	}

	strategy := getEnv("CAS_PARSER_STRATEGY", "heuristic")
	if strategy != "heuristic" && strategy != "gemini" {
		log.Printf("WARNING: Unknown CAS_PARSER_STRATEGY '%s'. Using 'heuristic'.", strategy)
		strategy = "heuristic"
	}

	Cfg = &AppConfig{
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabasePath:   getEnv("DATABASE_PATH", "./fundfolio.db"),
		ParserStrategy: strategy,

		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		MaxAITextChars:      getEnvAsInt("MAX_AI_TEXT_CHARS", 60000),
		AIRequestsPerMinute: getEnvAsInt("AI_REQUESTS_PER_MINUTE", 6),

		ExtractTimeout:        extractTimeout,
		MaxStatementSizeBytes: maxStatementSize,
	}

	if Cfg.ParserStrategy == "gemini" && Cfg.GeminiAPIKey == "" {
		log.Println("WARNING: CAS_PARSER_STRATEGY is 'gemini' but GEMINI_API_KEY is not set; the heuristic pipeline will handle all statements.")
	}

	log.Printf("Configuration loaded: LogLevel=%s, DBPath=%s, Strategy=%s",
		Cfg.LogLevel, Cfg.DatabasePath, Cfg.ParserStrategy)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
