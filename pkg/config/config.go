package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// App holds runtime configuration derived from env vars or files.
type App struct {
	DBDriver         string
	DBHost           string
	DBPort           int
	DBUser           string
	DBPassword       string
	DBName           string
	DBMaxOpenConns   int
	DBConnectTimeout time.Duration
	SanitizeValues   bool

	APIPort       string
	Environment   string
	LogLevel      string
	LogEncoding   string
	LogFile       string
	CORSOrigins   []string
	AllowedTables []string

	KafkaBrokers string
	KafkaTopic   string

	PurgeJobsFile string
}

// FromEnv loads the application configuration from environment variables.
func FromEnv() App {
	return App{
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnvInt("DB_PORT", 3306),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBMaxOpenConns:   getEnvInt("DB_MAX_OPEN_CONNS", 1),
		DBConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		SanitizeValues:   getEnvBool("SANITIZE_VALUES", false),

		APIPort:       getEnv("API_PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "production"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogEncoding:   getEnv("LOG_ENCODING", "json"),
		LogFile:       os.Getenv("LOG_FILE"),
		CORSOrigins:   getCORSOrigins(),
		AllowedTables: splitList(os.Getenv("ALLOWED_TABLES")),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "table-changes"),

		PurgeJobsFile: getEnv("PURGE_JOBS_FILE", "purge-jobs.yaml"),
	}
}

// Brokers splits KafkaBrokers on commas. An empty result disables publishing.
func (a App) Brokers() []string {
	return splitList(a.KafkaBrokers)
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

func getCORSOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	return splitList(raw)
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
