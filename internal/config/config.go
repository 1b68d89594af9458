package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AmountLocale selects how an ambiguous decimal/thousands separator is read
// when a raw amount alone cannot decide it (e.g. "2.700").
type AmountLocale string

const (
	// LocaleCommaDecimal reads "," as the decimal separator and "." as the
	// thousands separator ("2.700,50").
	LocaleCommaDecimal AmountLocale = "comma-decimal"
	// LocaleDotDecimal reads "." as the decimal separator and "," as the
	// thousands separator ("2,700.50").
	LocaleDotDecimal AmountLocale = "dot-decimal"
)

// Config holds all runtime configuration for the bot.
type Config struct {
	BotToken string

	// Fallback extraction model.
	GeminiModel    string
	ExtractTimeout time.Duration

	// Vector memory.
	MemoryPath       string
	MemoryCollection string
	OllamaBaseURL    string
	EmbedModel       string

	// Ledger.
	DBPath string

	// Normalization defaults.
	DefaultCurrency string
	AmountLocale    AmountLocale
	Timezone        string

	// Memory projection retry bounds.
	ProjectionWorkers    int
	ProjectionMaxRetries int
	ProjectionQueueSize  int
}

// Load reads configuration from a .env file (if present) and the environment.
// Only the bot token is mandatory; everything else has a working default.
func Load() (*Config, error) {
	// A missing .env is fine: containerized deployments pass plain env vars.
	_ = godotenv.Load()

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("config: missing BOT_TOKEN in environment")
	}

	cfg := &Config{
		BotToken:             token,
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ExtractTimeout:       getDuration("EXTRACT_TIMEOUT", 30*time.Second),
		MemoryPath:           getEnv("MEMORY_PATH", "data/memory"),
		MemoryCollection:     getEnv("MEMORY_COLLECTION", "expenses"),
		OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434/api"),
		EmbedModel:           getEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		DBPath:               getEnv("EXPENSES_DB_PATH", "data/expenses.db"),
		DefaultCurrency:      getEnv("APP_CURRENCY", "ARS"),
		Timezone:             getEnv("APP_TIMEZONE", "UTC"),
		ProjectionWorkers:    getInt("PROJECTION_WORKERS", 1),
		ProjectionMaxRetries: getInt("PROJECTION_MAX_RETRIES", 5),
		ProjectionQueueSize:  getInt("PROJECTION_QUEUE_SIZE", 100),
	}

	switch AmountLocale(getEnv("AMOUNT_LOCALE", string(LocaleCommaDecimal))) {
	case LocaleDotDecimal:
		cfg.AmountLocale = LocaleDotDecimal
	default:
		cfg.AmountLocale = LocaleCommaDecimal
	}

	return cfg, nil
}

// Location resolves the configured timezone, falling back to UTC when the
// name is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return defaultVal
	}
	return value
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return defaultVal
	}
	return value
}
