package config

import (
	"errors"
	"fmt"
	"os"

	"sportbot/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	AI         AIConfig         `yaml:"ai"`
	Quota      QuotaConfig      `yaml:"quota"`
	Referral   ReferralConfig   `yaml:"referral"`
	History    HistoryConfig    `yaml:"history"`
	Payments   PaymentsConfig   `yaml:"payments"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Exports    ExportConfig     `yaml:"exports"`
	Bot        BotConfig        `yaml:"bot"`
	Admins     []int64          `yaml:"admins"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken        string `yaml:"bot_token"`
	Debug           bool   `yaml:"debug"`
	RequiredChannel string `yaml:"required_channel"` // @channel, пусто = без проверки
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AIConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxRetries     int     `yaml:"max_retries"`
}

type QuotaConfig struct {
	FreeQuestionsPerDay int `yaml:"free_questions_per_day"`
}

// ReferralConfig задает бонусы рефералки. Размеры вынесены в конфигурацию:
// в разных развертываниях приглашенному начисляли то 0, то несколько дней.
type ReferralConfig struct {
	ReferrerBonusDays int `yaml:"referrer_bonus_days"`
	ReferredBonusDays int `yaml:"referred_bonus_days"`
}

type HistoryConfig struct {
	Keep            int `yaml:"keep"`
	ContextWindow   int `yaml:"context_window"`
	MaxContentRunes int `yaml:"max_content_runes"`
}

type PaymentsConfig struct {
	ProviderToken string `yaml:"provider_token"`
	Currency      string `yaml:"currency"`
	PriceAmount   int    `yaml:"price_amount"` // в минимальных единицах валюты
	PremiumDays   int    `yaml:"premium_days"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type BotConfig struct {
	RateLimitMessages int `yaml:"rate_limit_messages"`
	RateLimitWindow   int `yaml:"rate_limit_window"` // секунды
	UpdateTimeout     int `yaml:"update_timeout"`
}

func Load(configPath string) (*Config, error) {
	// .env подхватывается, если есть; его отсутствие не ошибка
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Referral.ReferrerBonusDays < 0 || c.Referral.ReferredBonusDays < 0 {
		return errors.New("referral bonus days must not be negative")
	}

	if c.Quota.FreeQuestionsPerDay <= 0 {
		return errors.New("quota.free_questions_per_day must be positive")
	}

	return nil
}

// IsAdmin проверяет, входит ли пользователь в список администраторов.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) applyDefaults() {
	if c.Quota.FreeQuestionsPerDay == 0 {
		c.Quota.FreeQuestionsPerDay = models.DefaultFreeQuestions
	}
	if c.Referral.ReferrerBonusDays == 0 {
		c.Referral.ReferrerBonusDays = models.DefaultReferrerBonusDays
	}
	if c.History.Keep == 0 {
		c.History.Keep = models.HistoryKeep
	}
	if c.History.ContextWindow == 0 {
		c.History.ContextWindow = models.ContextWindow
	}
	if c.History.MaxContentRunes == 0 {
		c.History.MaxContentRunes = models.MaxContentRunes
	}
	if c.Payments.PremiumDays == 0 {
		c.Payments.PremiumDays = models.DefaultPaidPremiumDays
	}
	if c.Payments.Currency == "" {
		c.Payments.Currency = "RUB"
	}

	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.AI.Model == "" {
		c.AI.Model = "llama-3.3-70b-versatile"
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 800
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = 0.7
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 30
	}
	if c.AI.MaxRetries == 0 {
		c.AI.MaxRetries = 3
	}

	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Enabled && !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
	if c.Bot.UpdateTimeout == 0 {
		c.Bot.UpdateTimeout = 60
	}
}
