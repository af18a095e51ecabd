package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config содержит все конфигурационные параметры приложения
type Config struct {
	Google   GoogleConfig
	TTS      TTSConfig
	Paths    PathsConfig
	Chat     ChatConfig
	Database DatabaseConfig
	App      AppConfig
}

// GoogleConfig содержит настройки подключения к Vertex AI / Gemini API
type GoogleConfig struct {
	Project         string
	Location        string
	CredentialsFile string
	APIKey          string
}

// TTSConfig содержит настройки синтеза речи
type TTSConfig struct {
	Provider       string // gemini, piper
	Model          string
	Voice          string
	EmotionVoice   string
	EmotionEnabled bool
	MaxAttempts    int
	BaseDelay      time.Duration
	PacingDelay    time.Duration
	PiperBaseURL   string
}

// PathsConfig содержит пути к учебным данным и аудио
type PathsConfig struct {
	LessonDataFile string
	AudioOutputDir string
	MappingFile    string
	AudioExt       string
}

// ChatConfig содержит настройки чата
type ChatConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

type DatabaseConfig struct {
	LedgerEnabled bool
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
}

type AppConfig struct {
	Env               string
	LogLevel          string
	Port              int
	TTSRateLimitRPS   float64
	TTSRateLimitBurst int
	PushgatewayURL    string // пусто: метрики генератора не отправляются
}

// Load загружает конфигурацию из переменных окружения и .env
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Google
	cfg.Google.Project = os.Getenv("GOOGLE_CLOUD_PROJECT")
	cfg.Google.Location = getEnvDefault("GOOGLE_CLOUD_LOCATION", "us-central1")
	cfg.Google.CredentialsFile = getEnvDefault("GOOGLE_CREDENTIALS_FILE", "credentials/service-account.json")
	cfg.Google.APIKey = os.Getenv("GEMINI_API_KEY")

	// TTS
	cfg.TTS.Provider = getEnvDefault("TTS_PROVIDER", "gemini")
	cfg.TTS.Model = getEnvDefault("TTS_MODEL", "gemini-2.5-flash-preview-tts")
	cfg.TTS.Voice = getEnvDefault("TTS_VOICE", "Aoede")
	cfg.TTS.EmotionVoice = getEnvDefault("TTS_EMOTION_VOICE", "Puck")
	cfg.TTS.EmotionEnabled = getEnvBoolDefault("TTS_EMOTION_ENABLED", false)
	cfg.TTS.MaxAttempts = getEnvIntDefault("TTS_MAX_ATTEMPTS", 3)
	cfg.TTS.BaseDelay = getEnvDurationDefault("TTS_BASE_DELAY", 15*time.Second)
	cfg.TTS.PacingDelay = getEnvDurationDefault("TTS_PACING_DELAY", 2*time.Second)
	cfg.TTS.PiperBaseURL = getEnvDefault("PIPER_BASE_URL", "http://localhost:5000")

	// Paths
	cfg.Paths.LessonDataFile = getEnvDefault("LESSON_DATA_FILE", "data/patterns.json")
	cfg.Paths.AudioOutputDir = getEnvDefault("AUDIO_OUTPUT_DIR", "docs/audio")
	cfg.Paths.MappingFile = getEnvDefault("AUDIO_MAPPING_FILE", filepath.Join(cfg.Paths.AudioOutputDir, "audio_mapping.json"))
	cfg.Paths.AudioExt = strings.TrimPrefix(getEnvDefault("AUDIO_EXT", "mp3"), ".")

	// Chat
	cfg.Chat.Model = getEnvDefault("CHAT_MODEL", "gemini-2.0-flash")
	cfg.Chat.MaxTokens = getEnvIntDefault("CHAT_MAX_TOKENS", 500)
	cfg.Chat.Temperature = getEnvFloatDefault("CHAT_TEMPERATURE", 0.7)

	// Database
	cfg.Database.LedgerEnabled = getEnvBoolDefault("LEDGER_ENABLED", false)
	cfg.Database.Host = getEnvDefault("DB_HOST", "localhost")
	cfg.Database.Port = getEnvIntDefault("DB_PORT", 5432)
	cfg.Database.User = os.Getenv("DB_USER")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Database.Name = os.Getenv("DB_NAME")
	cfg.Database.SSLMode = getEnvDefault("DB_SSL_MODE", "disable")

	// App
	cfg.App.Env = getEnvDefault("APP_ENV", "development")
	cfg.App.LogLevel = getEnvDefault("LOG_LEVEL", "info")
	cfg.App.Port = getEnvIntDefault("APP_PORT", 3001)
	cfg.App.TTSRateLimitRPS = getEnvFloatDefault("TTS_RATE_LIMIT_RPS", 0.5)
	cfg.App.TTSRateLimitBurst = getEnvIntDefault("TTS_RATE_LIMIT_BURST", 5)
	cfg.App.PushgatewayURL = os.Getenv("PUSHGATEWAY_URL")

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getEnvDurationDefault принимает формат time.ParseDuration ("15s") или целое число секунд
func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// validateConfig проверяет корректность конфигурации.
// Отсутствие учетных данных Google не ошибка: клиент сообщит об этом при старте.
func validateConfig(config *Config) error {
	if config.TTS.Provider != "gemini" && config.TTS.Provider != "piper" {
		return fmt.Errorf("поддерживаются только TTS_PROVIDER: gemini, piper")
	}
	if config.TTS.MaxAttempts < 1 {
		return fmt.Errorf("TTS_MAX_ATTEMPTS должен быть не меньше 1")
	}
	if config.TTS.BaseDelay < 0 || config.TTS.PacingDelay < 0 {
		return fmt.Errorf("TTS_BASE_DELAY и TTS_PACING_DELAY не могут быть отрицательными")
	}
	if config.Paths.AudioExt == "" {
		return fmt.Errorf("AUDIO_EXT не установлен")
	}
	if config.App.Port <= 0 || config.App.Port > 65535 {
		return fmt.Errorf("некорректный APP_PORT: %d", config.App.Port)
	}
	if config.App.TTSRateLimitRPS <= 0 || config.App.TTSRateLimitBurst < 1 {
		return fmt.Errorf("TTS_RATE_LIMIT_RPS и TTS_RATE_LIMIT_BURST должны быть положительными")
	}
	if config.Database.LedgerEnabled {
		if config.Database.Host == "" {
			return fmt.Errorf("DB_HOST не установлен")
		}
		if config.Database.User == "" {
			return fmt.Errorf("DB_USER не установлен")
		}
		if config.Database.Name == "" {
			return fmt.Errorf("DB_NAME не установлен")
		}
	}

	return nil
}

// GetDSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// IsDevelopment проверяет, запущено ли приложение в режиме разработки
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction проверяет, запущено ли приложение в продакшн режиме
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// GetLogLevel возвращает уровень логирования в формате zap
func (c *AppConfig) GetLogLevel() zap.AtomicLevel {
	switch c.LogLevel {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
