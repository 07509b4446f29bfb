package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"clinic-similar-cases/internal/similarity"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"ENV"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DBConnectAttempts int           `mapstructure:"DB_CONNECT_ATTEMPTS"`
	DBConnectDelay    time.Duration `mapstructure:"DB_CONNECT_DELAY"`
	MigrationsDir     string        `mapstructure:"MIGRATIONS_DIR"`
	CORSOrigin        string        `mapstructure:"CORS_ORIGIN"`

	LLMProvider     string        `mapstructure:"LLM_PROVIDER"`
	LLMTimeout      time.Duration `mapstructure:"LLM_TIMEOUT"`
	LLMRatePerSec   float64       `mapstructure:"LLM_RATE_PER_SEC"`
	DeepSeekAPIKey  string        `mapstructure:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL string        `mapstructure:"DEEPSEEK_BASE_URL"`
	DeepSeekModel   string        `mapstructure:"DEEPSEEK_MODEL"`
	OllamaURL       string        `mapstructure:"OLLAMA_URL"`
	OllamaModel     string        `mapstructure:"OLLAMA_MODEL"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	DoctorChatID     int64  `mapstructure:"DOCTOR_CHAT_ID"`

	MinScore         float64 `mapstructure:"SIMILARITY_MIN_SCORE"`
	HighConfidence   float64 `mapstructure:"SIMILARITY_HIGH_CONFIDENCE"`
	MediumConfidence float64 `mapstructure:"SIMILARITY_MEDIUM_CONFIDENCE"`
	MaxResults       int     `mapstructure:"SIMILARITY_MAX_RESULTS"`
	MaxDifferences   int     `mapstructure:"SIMILARITY_MAX_DIFFERENCES"`
	HistoryLimit     int     `mapstructure:"SIMILARITY_HISTORY_LIMIT"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_CONNECT_ATTEMPTS", "DB_CONNECT_DELAY", "MIGRATIONS_DIR", "CORS_ORIGIN",
	"LLM_PROVIDER", "LLM_TIMEOUT", "LLM_RATE_PER_SEC",
	"DEEPSEEK_API_KEY", "DEEPSEEK_BASE_URL", "DEEPSEEK_MODEL", "OLLAMA_URL", "OLLAMA_MODEL",
	"TELEGRAM_BOT_TOKEN", "DOCTOR_CHAT_ID",
	"SIMILARITY_MIN_SCORE", "SIMILARITY_HIGH_CONFIDENCE", "SIMILARITY_MEDIUM_CONFIDENCE",
	"SIMILARITY_MAX_RESULTS", "SIMILARITY_MAX_DIFFERENCES", "SIMILARITY_HISTORY_LIMIT",
}

// Load reads configuration from the environment, after loading .env if present.
// It does not require DATABASE_URL; commands that need a database call RequireDatabase.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_CONNECT_ATTEMPTS", 10)
	v.SetDefault("DB_CONNECT_DELAY", "2s")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("LLM_PROVIDER", "none")
	v.SetDefault("LLM_TIMEOUT", "20s")
	v.SetDefault("LLM_RATE_PER_SEC", 1.0)
	v.SetDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com")
	v.SetDefault("DEEPSEEK_MODEL", "deepseek-chat")
	v.SetDefault("OLLAMA_URL", "http://localhost:11434/api")
	v.SetDefault("OLLAMA_MODEL", "llama3")
	v.SetDefault("SIMILARITY_MIN_SCORE", similarity.DefaultMinScore)
	v.SetDefault("SIMILARITY_HIGH_CONFIDENCE", similarity.DefaultHighConfidence)
	v.SetDefault("SIMILARITY_MEDIUM_CONFIDENCE", similarity.DefaultMediumConfidence)
	v.SetDefault("SIMILARITY_MAX_RESULTS", similarity.DefaultMaxResults)
	v.SetDefault("SIMILARITY_MAX_DIFFERENCES", similarity.DefaultMaxDifferences)
	v.SetDefault("SIMILARITY_HISTORY_LIMIT", 200)

	// Unmarshal only sees keys viper knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// RequireDatabase fails when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Validate checks provider selection and the similarity thresholds.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "none", "deepseek", "ollama":
	default:
		return fmt.Errorf("LLM_PROVIDER must be \"none\", \"deepseek\", or \"ollama\", got %q", c.LLMProvider)
	}
	if c.LLMProvider == "deepseek" && c.DeepSeekAPIKey == "" {
		return fmt.Errorf("DEEPSEEK_API_KEY is required when LLM_PROVIDER is \"deepseek\"")
	}
	if c.LLMRatePerSec <= 0 {
		return fmt.Errorf("LLM_RATE_PER_SEC must be positive, got %v", c.LLMRatePerSec)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("SIMILARITY_HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	return c.ValidateThresholds()
}

// ValidateThresholds checks only the similarity settings. The offline rank
// command uses it so LLM settings cannot block local scoring.
func (c *Config) ValidateThresholds() error {
	if c.MinScore < 0 {
		return fmt.Errorf("SIMILARITY_MIN_SCORE must not be negative, got %v", c.MinScore)
	}
	if c.MediumConfidence > c.HighConfidence {
		return fmt.Errorf("SIMILARITY_MEDIUM_CONFIDENCE (%v) must not exceed SIMILARITY_HIGH_CONFIDENCE (%v)",
			c.MediumConfidence, c.HighConfidence)
	}
	if c.MaxResults <= 0 || c.MaxDifferences <= 0 {
		return fmt.Errorf("SIMILARITY_MAX_RESULTS and SIMILARITY_MAX_DIFFERENCES must be positive")
	}
	return nil
}

// Thresholds converts the similarity settings for the ranker.
func (c *Config) Thresholds() similarity.Thresholds {
	return similarity.Thresholds{
		MinScore:         c.MinScore,
		HighConfidence:   c.HighConfidence,
		MediumConfidence: c.MediumConfidence,
		MaxResults:       c.MaxResults,
		MaxDifferences:   c.MaxDifferences,
	}
}
