// Package config содержит загрузку и валидацию конфигурации.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinSecretKeyLength минимальная длина ключа подписи токенов
const MinSecretKeyLength = 32

// Config представляет конфигурацию приложения
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Admin     AdminConfig
	Schedule  ScheduleConfig
	Telegram  TelegramConfig
	Bot       BotConfig
	Redis     RedisConfig
	Health    HealthConfig
	RateLimit RateLimitConfig

	// HTTP клиент бота к API
	HTTPClientConfig HTTPClientConfig

	// Retry
	RetryConfig RetryConfig
}

// AppConfig общие параметры приложения
type AppConfig struct {
	Name       string
	Debug      bool
	LogLevel   string
	LogPath    string
	AppDataDir string
}

// HTTPConfig параметры API сервера
type HTTPConfig struct {
	Port            string
	APIPrefix       string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig параметры подключения к PostgreSQL
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectRetries  int
	RetryDelay      time.Duration
	// Debug включает логирование SQL запросов через bundebug
	Debug bool
}

// AuthConfig параметры выпуска токенов
type AuthConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int
	// BotSecret разделяемый секрет для входа бота по telegram_id
	BotSecret string
}

// AdminConfig учетная запись администратора, создаваемая при старте
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// ScheduleConfig расписание рассылок
type ScheduleConfig struct {
	Enabled             bool
	Timezone            string
	MorningTaskTime     string
	EveningReminderTime string
}

// TelegramConfig параметры Telegram Bot API
type TelegramConfig struct {
	BotToken string
	AdminIDs []int64
}

// BotConfig параметры чат-клиента
type BotConfig struct {
	BackendURL          string
	ConversationTimeout time.Duration
	SessionTTL          time.Duration
	Workers             int
	QueueSize           int
}

// RedisConfig параметры хранилища сессий
type RedisConfig struct {
	URL string
}

// HealthConfig параметры health check сервера
type HealthConfig struct {
	Port    string
	Enabled bool
}

// RateLimitConfig ограничения частоты запросов
type RateLimitConfig struct {
	APIRequestsPerSecond float64
	APIBurst             int
	BotRequests          int
	BotWindow            time.Duration
}

// HTTPClientConfig представляет конфигурацию HTTP клиента
type HTTPClientConfig struct {
	Timeout               time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	DisableKeepAlives     bool
}

// RetryConfig представляет конфигурацию retry механизма
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:       getEnv("APP_NAME", "Psychology Bot API"),
			Debug:      getEnvBool("DEBUG", false),
			LogLevel:   getEnv("LOG_LEVEL", "info"),
			LogPath:    getEnv("LOG_PATH", ""),
			AppDataDir: getEnv("APP_DATA_DIR", "./data"),
		},
		HTTP: HTTPConfig{
			Port:            getEnv("HTTP_PORT", "8000"),
			APIPrefix:       getEnv("API_V1_PREFIX", "/api/v1"),
			CORSOrigins:     getEnvList("BACKEND_CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:8000"}),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
			ConnectRetries:  getEnvInt("DB_CONNECT_RETRIES", 10),
			RetryDelay:      getEnvDuration("DB_RETRY_DELAY", 5*time.Second),
			Debug:           getEnvBool("DB_DEBUG", false),
		},
		Auth: AuthConfig{
			SecretKey:       getEnv("SECRET_KEY", ""),
			AccessTokenTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
			RefreshTokenTTL: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
			BcryptCost:      getEnvInt("BCRYPT_COST", 10),
			BotSecret:       getEnv("BOT_API_SECRET", ""),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
		Schedule: ScheduleConfig{
			Enabled:             getEnvBool("SCHEDULER_ENABLED", true),
			Timezone:            getEnv("SCHEDULER_TIMEZONE", "Europe/Moscow"),
			MorningTaskTime:     getEnv("MORNING_TASK_TIME", "09:00"),
			EveningReminderTime: getEnv("EVENING_REMINDER_TIME", "20:00"),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminIDs: getEnvInt64List("ADMIN_TELEGRAM_IDS"),
		},
		Bot: BotConfig{
			BackendURL:          getEnv("BACKEND_API_URL", "http://backend:8000"),
			ConversationTimeout: getEnvDuration("CONVERSATION_TIMEOUT", 15*time.Minute),
			SessionTTL:          getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			Workers:             getEnvInt("BOT_WORKERS", 4),
			QueueSize:           getEnvInt("BOT_QUEUE_SIZE", 100),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Health: HealthConfig{
			Port:    getEnv("HEALTH_PORT", "8080"),
			Enabled: getEnvBool("HEALTH_CHECK_ENABLED", true),
		},
		RateLimit: RateLimitConfig{
			APIRequestsPerSecond: getEnvFloat("API_RATE_LIMIT_RPS", 10),
			APIBurst:             getEnvInt("API_RATE_LIMIT_BURST", 20),
			BotRequests:          getEnvInt("RATE_LIMIT_REQUESTS", 10),
			BotWindow:            getEnvDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		},
		HTTPClientConfig: HTTPClientConfig{
			Timeout:               getEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
			MaxIdleConns:          getEnvInt("HTTP_MAX_IDLE_CONNS", 100),
			MaxIdleConnsPerHost:   getEnvInt("HTTP_MAX_IDLE_CONNS_PER_HOST", 10),
			IdleConnTimeout:       getEnvDuration("HTTP_IDLE_CONN_TIMEOUT", 90*time.Second),
			TLSHandshakeTimeout:   getEnvDuration("HTTP_TLS_HANDSHAKE_TIMEOUT", 10*time.Second),
			ResponseHeaderTimeout: getEnvDuration("HTTP_RESPONSE_HEADER_TIMEOUT", 30*time.Second),
			DisableKeepAlives:     getEnvBool("HTTP_DISABLE_KEEP_ALIVES", false),
		},
		RetryConfig: RetryConfig{
			MaxRetries:        getEnvInt("RETRY_MAX_RETRIES", 3),
			InitialDelay:      getEnvDuration("RETRY_INITIAL_DELAY", 1*time.Second),
			MaxDelay:          getEnvDuration("RETRY_MAX_DELAY", 30*time.Second),
			BackoffMultiplier: getEnvFloat("RETRY_BACKOFF_MULTIPLIER", 2.0),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate проверяет общие для обоих процессов параметры
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE is invalid: %w", err)
	}

	if _, _, err := ParseClock(c.Schedule.MorningTaskTime); err != nil {
		return fmt.Errorf("MORNING_TASK_TIME is invalid: %w", err)
	}

	if _, _, err := ParseClock(c.Schedule.EveningReminderTime); err != nil {
		return fmt.Errorf("EVENING_REMINDER_TIME is invalid: %w", err)
	}

	if c.RetryConfig.MaxRetries < 0 {
		return fmt.Errorf("RETRY_MAX_RETRIES must be non-negative")
	}

	return nil
}

// ValidateServer проверяет параметры API сервера
func (c *Config) ValidateServer() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if len(c.Auth.SecretKey) < MinSecretKeyLength {
		return fmt.Errorf("SECRET_KEY must be at least %d characters", MinSecretKeyLength)
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}

	if c.HTTP.Port == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}

	if c.Health.Enabled && c.Health.Port == "" {
		return fmt.Errorf("HEALTH_PORT is required when health check is enabled")
	}

	return nil
}

// ValidateBot проверяет параметры чат-клиента
func (c *Config) ValidateBot() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Bot.BackendURL == "" {
		return fmt.Errorf("BACKEND_API_URL is required")
	}

	if c.Auth.BotSecret == "" {
		return fmt.Errorf("BOT_API_SECRET is required")
	}

	if c.Bot.Workers <= 0 {
		return fmt.Errorf("BOT_WORKERS must be positive")
	}

	return nil
}

// Location возвращает часовой пояс расписания
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseClock разбирает время в формате HH:MM
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}

	return hour, minute, nil
}

// CronSpec переводит HH:MM в ежедневное cron выражение
func CronSpec(clock string) (string, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как time.Duration
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvList получает список через запятую
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

// getEnvInt64List получает список int64 через запятую, некорректные элементы пропускаются
func getEnvInt64List(key string) []int64 {
	var result []int64
	for _, item := range getEnvList(key, nil) {
		if id, err := strconv.ParseInt(item, 10, 64); err == nil {
			result = append(result, id)
		}
	}
	return result
}
