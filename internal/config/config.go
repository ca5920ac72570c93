// Package config собирает конфигурацию сервиса из значений по умолчанию,
// JSON-файла, флагов командной строки и переменных окружения.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/goccy/go-json"
)

// Значения по умолчанию
const (
	DefaultServerAddress     = ":8080"
	DefaultAPIPrefix         = "/v1.0"
	DefaultSecretKey         = "your-secret-key"
	DefaultTLSCertFile       = "server.crt"
	DefaultTLSKeyFile        = "server.key"
	DefaultBatchMaxRequests  = 20
	DefaultBatchItemTimeout  = 10 * time.Second
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = time.Minute
	DefaultLogLevel          = "info"
)

// Config хранит конфигурацию приложения.
type Config struct {
	ServerAddress     string        `env:"SERVER_ADDRESS"`                        // Адрес для запуска HTTP-сервера
	APIPrefix         string        `env:"API_PREFIX"`                            // Префикс версии API, например /v1.0
	FileStoragePath   string        `env:"FILE_STORAGE_PATH"`                     // Путь к файлу хранилища
	DatabaseDSN       string        `env:"DATABASE_DSN"`                          // Строка подключения к PostgreSQL
	SecretKey         string        `env:"SECRET_KEY"`                            // Ключ подписи JWT
	EnableHTTPS       string        `env:"ENABLE_HTTPS"`                          // Любое непустое значение включает HTTPS
	TLSCertFile       string        `env:"TLS_CERT_FILE"`                         // Сертификат TLS
	TLSKeyFile        string        `env:"TLS_KEY_FILE"`                          // Ключ TLS
	BatchMaxRequests  int           `env:"BATCH_MAX_REQUESTS"`                    // Максимум подзапросов в одном $batch
	BatchItemTimeout  time.Duration `env:"BATCH_ITEM_TIMEOUT"`                    // Таймаут одного подзапроса
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS"`                   // Лимит запросов $batch с одного IP
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW"`                     // Окно лимита
	LogLevel          string        `env:"LOG_LEVEL"`                             // Уровень логирования zap
	CORSOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","` // Разрешенные источники CORS, пусто - CORS выключен
	ConfigFile        string        `env:"CONFIG"`                                // Путь к JSON-файлу конфигурации
}

// JSONConfig описывает файл конфигурации. Указатели отличают
// отсутствующее поле от нулевого значения.
type JSONConfig struct {
	ServerAddress     *string  `json:"server_address,omitempty"`
	APIPrefix         *string  `json:"api_prefix,omitempty"`
	FileStoragePath   *string  `json:"file_storage_path,omitempty"`
	DatabaseDSN       *string  `json:"database_dsn,omitempty"`
	SecretKey         *string  `json:"secret_key,omitempty"`
	EnableHTTPS       *bool    `json:"enable_https,omitempty"`
	TLSCertFile       *string  `json:"tls_cert_file,omitempty"`
	TLSKeyFile        *string  `json:"tls_key_file,omitempty"`
	BatchMaxRequests  *int     `json:"batch_max_requests,omitempty"`
	BatchItemTimeout  *string  `json:"batch_item_timeout,omitempty"`
	RateLimitRequests *int     `json:"rate_limit_requests,omitempty"`
	RateLimitWindow   *string  `json:"rate_limit_window,omitempty"`
	LogLevel          *string  `json:"log_level,omitempty"`
	CORSOrigins       []string `json:"cors_allowed_origins,omitempty"`
}

// ErrInvalidConfig возвращается при недопустимых значениях конфигурации
var ErrInvalidConfig = errors.New("invalid config")

// IsHTTPSEnabled сообщает, нужно ли запускать HTTPS сервер
func (c *Config) IsHTTPSEnabled() bool {
	return c.EnableHTTPS != ""
}

// NewConfig инициализирует конфигурацию из аргументов процесса и окружения.
func NewConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		ServerAddress:     DefaultServerAddress,
		APIPrefix:         DefaultAPIPrefix,
		SecretKey:         DefaultSecretKey,
		TLSCertFile:       DefaultTLSCertFile,
		TLSKeyFile:        DefaultTLSKeyFile,
		BatchMaxRequests:  DefaultBatchMaxRequests,
		BatchItemTimeout:  DefaultBatchItemTimeout,
		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,
		LogLevel:          DefaultLogLevel,
	}
}

// Load собирает конфигурацию. Приоритет по возрастанию:
// значения по умолчанию, JSON-файл, флаги, переменные окружения.
func Load(args []string) (*Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	flags := &Config{}
	fs.StringVar(&flags.ServerAddress, "a", cfg.ServerAddress, "Адрес запуска HTTP-сервера (env: SERVER_ADDRESS)")
	fs.StringVar(&flags.APIPrefix, "p", cfg.APIPrefix, "Префикс API (env: API_PREFIX)")
	fs.StringVar(&flags.FileStoragePath, "f", cfg.FileStoragePath, "Путь к файлу хранилища (env: FILE_STORAGE_PATH)")
	fs.StringVar(&flags.DatabaseDSN, "d", cfg.DatabaseDSN, "Строка подключения к БД (env: DATABASE_DSN)")
	fs.StringVar(&flags.SecretKey, "k", cfg.SecretKey, "Ключ подписи JWT (env: SECRET_KEY)")
	fs.StringVar(&flags.EnableHTTPS, "s", cfg.EnableHTTPS, "Включить HTTPS (env: ENABLE_HTTPS)")
	fs.StringVar(&flags.ConfigFile, "c", "", "Путь к JSON-файлу конфигурации (env: CONFIG)")
	fs.StringVar(&flags.ConfigFile, "config", "", "Путь к JSON-файлу конфигурации (env: CONFIG)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	configFile := flags.ConfigFile
	if fromEnv, ok := os.LookupEnv("CONFIG"); ok {
		configFile = fromEnv
	}

	jsonConfig, err := loadJSONConfig(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyJSONConfig(jsonConfig); err != nil {
		return nil, err
	}
	cfg.ConfigFile = configFile

	// применяем только явно заданные флаги, чтобы не затереть значения из файла
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.ServerAddress = flags.ServerAddress
		case "p":
			cfg.APIPrefix = flags.APIPrefix
		case "f":
			cfg.FileStoragePath = flags.FileStoragePath
		case "d":
			cfg.DatabaseDSN = flags.DatabaseDSN
		case "k":
			cfg.SecretKey = flags.SecretKey
		case "s":
			cfg.EnableHTTPS = flags.EnableHTTPS
		}
	})

	// переменные окружения имеют наивысший приоритет
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.APIPrefix = normalizePrefix(cfg.APIPrefix)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadJSONConfig читает файл конфигурации. Пустое имя или отсутствующий
// файл дают пустую конфигурацию.
func loadJSONConfig(filename string) (*JSONConfig, error) {
	cfg := &JSONConfig{}
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// applyJSONConfig переносит заданные в файле поля в конфигурацию
func (c *Config) applyJSONConfig(j *JSONConfig) error {
	setString(&c.ServerAddress, j.ServerAddress)
	setString(&c.APIPrefix, j.APIPrefix)
	setString(&c.FileStoragePath, j.FileStoragePath)
	setString(&c.DatabaseDSN, j.DatabaseDSN)
	setString(&c.SecretKey, j.SecretKey)
	setString(&c.TLSCertFile, j.TLSCertFile)
	setString(&c.TLSKeyFile, j.TLSKeyFile)
	setString(&c.LogLevel, j.LogLevel)

	if j.CORSOrigins != nil {
		c.CORSOrigins = j.CORSOrigins
	}
	if j.EnableHTTPS != nil {
		if *j.EnableHTTPS {
			c.EnableHTTPS = "true"
		} else {
			c.EnableHTTPS = ""
		}
	}
	if j.BatchMaxRequests != nil {
		c.BatchMaxRequests = *j.BatchMaxRequests
	}
	if j.RateLimitRequests != nil {
		c.RateLimitRequests = *j.RateLimitRequests
	}
	if err := setDuration(&c.BatchItemTimeout, j.BatchItemTimeout); err != nil {
		return fmt.Errorf("batch_item_timeout: %w", err)
	}
	if err := setDuration(&c.RateLimitWindow, j.RateLimitWindow); err != nil {
		return fmt.Errorf("rate_limit_window: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.APIPrefix == "" {
		return fmt.Errorf("%w: api prefix is empty", ErrInvalidConfig)
	}
	if c.BatchMaxRequests <= 0 {
		return fmt.Errorf("%w: batch max requests must be positive, got %d", ErrInvalidConfig, c.BatchMaxRequests)
	}
	if c.BatchItemTimeout < 0 {
		return fmt.Errorf("%w: batch item timeout must not be negative", ErrInvalidConfig)
	}
	if c.RateLimitRequests < 0 || c.RateLimitWindow < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("%w: secret key is empty", ErrInvalidConfig)
	}
	return nil
}

// normalizePrefix приводит префикс к виду "/v1.0" без завершающего слэша
func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	*dst = d
	return nil
}
