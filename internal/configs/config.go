package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"bayut-parser-service/internal/constants"
	"bayut-parser-service/internal/core/classifier"

	"github.com/joho/godotenv"
)

// BayutConfig - доступ к сайту и параметры конвейера
type BayutConfig struct {
	BaseURL           string
	ChainedQuery      bool
	PageSchemaPath    string // пусто - встроенная схема
	FetchMinDelay     time.Duration
	FetchMaxDelay     time.Duration
	FetchTimeout      time.Duration
	DetailConcurrency int
	FuzzyThreshold    int
}

type HTTPConfig struct {
	Port           string
	AllowedOrigins []string
}

// RabbitMQConfig - пустой URL или Enabled=false отключают очередь задач
type RabbitMQConfig struct {
	URL         string
	Enabled     bool
	TaskTimeout time.Duration
}

// DBconfig - пустой URL отключает историю поисков
type DBconfig struct {
	URL string
}

type StdoutLogConfig struct {
	Level string
	JSON  bool
	Color bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Bayut        BayutConfig
	HTTP         HTTPConfig
	Database     DBconfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig читает .env (если он есть) и переменные окружения
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using environment only\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "bayut-parser-service")

	cfg.Bayut = BayutConfig{
		BaseURL:           strings.TrimRight(getEnvAsString("BAYUT_BASE_URL", constants.DefaultBaseURL), "/"),
		ChainedQuery:      getEnvAsBool("BAYUT_CHAINED_QUERY", false),
		PageSchemaPath:    getEnvAsString("PAGE_SCHEMA_PATH", ""),
		FetchMinDelay:     getEnvAsDuration("FETCH_MIN_DELAY", constants.DefaultFetchMinDelay),
		FetchMaxDelay:     getEnvAsDuration("FETCH_MAX_DELAY", constants.DefaultFetchMaxDelay),
		FetchTimeout:      getEnvAsDuration("FETCH_TIMEOUT", constants.DefaultFetchTimeout),
		DetailConcurrency: getEnvAsInt("DETAIL_CONCURRENCY", constants.DefaultDetailConcurrency),
		FuzzyThreshold:    getEnvAsInt("FUZZY_THRESHOLD", classifier.DefaultFuzzyThreshold),
	}
	if err := cfg.Bayut.Validate(); err != nil {
		return nil, err
	}

	cfg.HTTP.Port = getEnvAsString("HTTP_PORT", "8080")
	cfg.HTTP.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS")

	cfg.Database.URL = os.Getenv("DATABASE_URL")

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", cfg.RabbitMQ.URL != "")
	if cfg.RabbitMQ.Enabled && cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
	}
	cfg.RabbitMQ.TaskTimeout = getEnvAsDuration("RABBITMQ_TASK_TIMEOUT", 15*time.Minute)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.JSON = getEnvAsBool("STDOUT_LOG_JSON", false)
	cfg.StdoutLogger.Color = getEnvAsBool("STDOUT_LOG_COLOR", true)

	return cfg, nil
}

// Validate проверяет параметры конвейера
func (c BayutConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BAYUT_BASE_URL must not be empty")
	}
	if c.FetchMinDelay < 0 || c.FetchMaxDelay < c.FetchMinDelay {
		return fmt.Errorf("FETCH_MIN_DELAY (%s) must be non-negative and not greater than FETCH_MAX_DELAY (%s)", c.FetchMinDelay, c.FetchMaxDelay)
	}
	if c.DetailConcurrency < 1 {
		return fmt.Errorf("DETAIL_CONCURRENCY must be at least 1, got %d", c.DetailConcurrency)
	}
	if c.FuzzyThreshold < 1 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("FUZZY_THRESHOLD must be in 1..100, got %d", c.FuzzyThreshold)
	}
	return nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt логирует значение, которое не удалось разобрать, и возвращает значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration понимает "1500ms", "2s", "1m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
