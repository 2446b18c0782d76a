package database

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dhima/mysql-crud/pkg/config"
	"github.com/go-sql-driver/mysql"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Config holds the connection parameters of a Database. It is copied into the
// Database on construction and never modified afterwards.
type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	MaxOpenConns   int
	ConnectTimeout time.Duration

	// SanitizeValues trims and HTML-escapes string values of inserts and
	// updates before they are bound.
	SanitizeValues bool
}

// ConfigFromApp extracts the DB_* settings of the application config.
func ConfigFromApp(a config.App) Config {
	return Config{
		Driver:         a.DBDriver,
		Host:           a.DBHost,
		Port:           a.DBPort,
		User:           a.DBUser,
		Password:       a.DBPassword,
		Name:           a.DBName,
		MaxOpenConns:   a.DBMaxOpenConns,
		ConnectTimeout: a.DBConnectTimeout,
		SanitizeValues: a.SanitizeValues,
	}
}

// DefaultConfig returns the settings used for any field left zero.
func DefaultConfig() Config {
	return Config{
		Driver:         DriverMySQL,
		Host:           "localhost",
		Port:           3306,
		MaxOpenConns:   1,
		ConnectTimeout: 5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Driver == "" {
		c.Driver = d.Driver
	}
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = d.MaxOpenConns
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	return c
}

// DSN returns the data source name understood by the configured driver.
// For sqlite3 the database name is the file path (or ":memory:").
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		cfg := mysql.NewConfig()
		cfg.User = c.User
		cfg.Passwd = c.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		cfg.DBName = c.Name
		cfg.Timeout = c.ConnectTimeout
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case DriverSQLite:
		if c.Name == "" {
			return "", fmt.Errorf("sqlite3 requires a database path")
		}
		return c.Name, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", c.Driver)
	}
}

// String describes the target without the password, for logs.
func (c Config) String() string {
	if c.Driver == DriverSQLite {
		return c.Driver + ":" + c.Name
	}
	return fmt.Sprintf("%s://%s@%s/%s", c.Driver, c.User, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Name)
}
