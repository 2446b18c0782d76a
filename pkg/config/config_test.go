package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv_WhenAllVariablesSet_ThenReturnsConfigWithSetValues(t *testing.T) {
	// Arrange
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("DB_CONNECT_TIMEOUT", "2s")
	t.Setenv("SANITIZE_VALUES", "true")
	t.Setenv("API_PORT", "9000")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_ENCODING", "console")
	t.Setenv("LOG_FILE", "/var/log/crud.log")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://example.com")
	t.Setenv("ALLOWED_TABLES", "users, orders")
	t.Setenv("KAFKA_BROKERS", "kafka1:9092,kafka2:9092")
	t.Setenv("KAFKA_TOPIC", "changes")
	t.Setenv("PURGE_JOBS_FILE", "/etc/crud/jobs.yaml")

	// Act
	config := FromEnv()

	// Assert
	if config.DBDriver != "sqlite3" || config.DBHost != "db.internal" || config.DBPort != 3307 {
		t.Errorf("unexpected database target: %s %s %d", config.DBDriver, config.DBHost, config.DBPort)
	}
	if config.DBUser != "app" || config.DBPassword != "secret" || config.DBName != "shop" {
		t.Errorf("unexpected credentials: %s %s %s", config.DBUser, config.DBPassword, config.DBName)
	}
	if config.DBMaxOpenConns != 4 {
		t.Errorf("expected DBMaxOpenConns to be 4, got %d", config.DBMaxOpenConns)
	}
	if config.DBConnectTimeout != 2*time.Second {
		t.Errorf("expected DBConnectTimeout to be 2s, got %v", config.DBConnectTimeout)
	}
	if !config.SanitizeValues {
		t.Error("expected SanitizeValues to be true")
	}
	if config.APIPort != "9000" {
		t.Errorf("expected APIPort to be '9000', got '%s'", config.APIPort)
	}
	if config.Environment != "development" {
		t.Errorf("expected Environment to be 'development', got '%s'", config.Environment)
	}
	if config.LogLevel != "debug" {
		t.Errorf("expected LogLevel to be 'debug', got '%s'", config.LogLevel)
	}
	if config.LogEncoding != "console" {
		t.Errorf("expected LogEncoding to be 'console', got '%s'", config.LogEncoding)
	}
	if config.LogFile != "/var/log/crud.log" {
		t.Errorf("expected LogFile to be set, got '%s'", config.LogFile)
	}
	if len(config.CORSOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %d", len(config.CORSOrigins))
	}
	if len(config.AllowedTables) != 2 || config.AllowedTables[1] != "orders" {
		t.Errorf("expected allowed tables [users orders], got %v", config.AllowedTables)
	}
	if brokers := config.Brokers(); len(brokers) != 2 || brokers[0] != "kafka1:9092" {
		t.Errorf("unexpected brokers: %v", brokers)
	}
	if config.KafkaTopic != "changes" {
		t.Errorf("expected KafkaTopic to be 'changes', got '%s'", config.KafkaTopic)
	}
	if config.PurgeJobsFile != "/etc/crud/jobs.yaml" {
		t.Errorf("expected PurgeJobsFile to be set, got '%s'", config.PurgeJobsFile)
	}
}

func TestFromEnv_WhenNoVariablesSet_ThenReturnsDefaults(t *testing.T) {
	// Arrange
	for _, key := range []string{
		"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_MAX_OPEN_CONNS", "DB_CONNECT_TIMEOUT", "SANITIZE_VALUES",
		"API_PORT", "ENVIRONMENT", "LOG_LEVEL", "LOG_ENCODING", "LOG_FILE",
		"CORS_ORIGINS", "ALLOWED_TABLES", "KAFKA_BROKERS", "KAFKA_TOPIC", "PURGE_JOBS_FILE",
	} {
		t.Setenv(key, "")
	}

	// Act
	config := FromEnv()

	// Assert
	if config.DBDriver != "mysql" || config.DBHost != "localhost" || config.DBPort != 3306 {
		t.Errorf("unexpected database defaults: %s %s %d", config.DBDriver, config.DBHost, config.DBPort)
	}
	if config.DBMaxOpenConns != 1 {
		t.Errorf("expected DBMaxOpenConns to be 1, got %d", config.DBMaxOpenConns)
	}
	if config.DBConnectTimeout != 5*time.Second {
		t.Errorf("expected DBConnectTimeout to be 5s, got %v", config.DBConnectTimeout)
	}
	if config.SanitizeValues {
		t.Error("expected SanitizeValues to default to false")
	}
	if config.APIPort != "8080" {
		t.Errorf("expected APIPort to be '8080', got '%s'", config.APIPort)
	}
	if config.Environment != "production" {
		t.Errorf("expected Environment to be 'production', got '%s'", config.Environment)
	}
	if config.LogLevel != "info" {
		t.Errorf("expected LogLevel to be 'info', got '%s'", config.LogLevel)
	}
	if config.LogEncoding != "json" {
		t.Errorf("expected LogEncoding to be 'json', got '%s'", config.LogEncoding)
	}
	if len(config.CORSOrigins) != 1 || config.CORSOrigins[0] != "*" {
		t.Errorf("expected CORS origins to be ['*'], got %v", config.CORSOrigins)
	}
	if len(config.AllowedTables) != 0 {
		t.Errorf("expected no allowed tables, got %v", config.AllowedTables)
	}
	if len(config.Brokers()) != 0 {
		t.Errorf("expected no brokers, got %v", config.Brokers())
	}
	if config.KafkaTopic != "table-changes" {
		t.Errorf("expected KafkaTopic to be 'table-changes', got '%s'", config.KafkaTopic)
	}
}

func TestFromEnv_WhenNumbersAreInvalid_ThenUsesDefaults(t *testing.T) {
	// Arrange
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("DB_CONNECT_TIMEOUT", "soon")
	t.Setenv("SANITIZE_VALUES", "maybe")

	// Act
	config := FromEnv()

	// Assert
	if config.DBPort != 3306 {
		t.Errorf("expected DBPort to fall back to 3306, got %d", config.DBPort)
	}
	if config.DBConnectTimeout != 5*time.Second {
		t.Errorf("expected DBConnectTimeout to fall back to 5s, got %v", config.DBConnectTimeout)
	}
	if config.SanitizeValues {
		t.Error("expected SanitizeValues to fall back to false")
	}
}

func TestGetCORSOrigins_WhenMultipleOriginsWithWhitespace_ThenTrimsCorrectly(t *testing.T) {
	// Arrange
	t.Setenv("CORS_ORIGINS", " http://localhost:3000 , https://example.com ,  ")

	// Act
	origins := getCORSOrigins()

	// Assert
	if len(origins) != 2 {
		t.Fatalf("expected 2 origins, got %d", len(origins))
	}
	if origins[0] != "http://localhost:3000" {
		t.Errorf("expected first origin to be 'http://localhost:3000', got '%s'", origins[0])
	}
	if origins[1] != "https://example.com" {
		t.Errorf("expected second origin to be 'https://example.com', got '%s'", origins[1])
	}
}

func TestGetCORSOrigins_WhenOnlyWhitespace_ThenReturnsEmpty(t *testing.T) {
	// Arrange
	t.Setenv("CORS_ORIGINS", "   ,  ,  ")

	// Act
	origins := getCORSOrigins()

	// Assert
	if len(origins) != 0 {
		t.Errorf("expected empty slice, got %v", origins)
	}
}

func TestGetEnv_WhenVariableEmpty_ThenReturnsDefault(t *testing.T) {
	// Arrange
	t.Setenv("EMPTY_VAR", "")

	// Act
	result := getEnv("EMPTY_VAR", "default_value")

	// Assert
	if result != "default_value" {
		t.Errorf("expected 'default_value', got '%s'", result)
	}
}

func TestLoadDotEnv_WhenFileExists_ThenSetsUnsetVariables(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DOTENV_TEST_NAME=from-file\nDOTENV_TEST_KEEP=from-file\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("DOTENV_TEST_KEEP", "from-env")
	os.Unsetenv("DOTENV_TEST_NAME")
	t.Cleanup(func() { os.Unsetenv("DOTENV_TEST_NAME") })

	// Act
	err := LoadDotEnv(filepath.Join(dir, "missing.env"), path)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_NAME"); got != "from-file" {
		t.Errorf("expected DOTENV_TEST_NAME from file, got '%s'", got)
	}
	if got := os.Getenv("DOTENV_TEST_KEEP"); got != "from-env" {
		t.Errorf("expected existing variable to win, got '%s'", got)
	}
}
