package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	minSecretLength = 32
	maxSessionTTL   = 24 * time.Hour
)

type Config struct {
	AppPort  string
	LogLevel string

	DBDriver    string
	DBLogLevel  string
	AutoMigrate bool

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	SessionSecret string
	SessionTTL    time.Duration
	SessionIssuer string

	OTLPEndpoint string
	ServiceName  string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// LoadDotEnv reads a local .env file when there is one. Variables already set in the
// environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

func Load() *Config {
	c := &Config{
		AppPort:    getenv("APP_PORT", "8080"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		DBDriver:   strings.ToLower(getenv("DB_DRIVER", "mysql")),
		DBLogLevel: getenv("DB_LOG_LEVEL", "warn"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "estimateur"),
		MySQLUser:  getenv("MYSQL_USER", "estimateur"),
		MySQLPass:  getenv("MYSQL_PASS", "estimateur"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    24 * time.Hour,
		SessionIssuer: getenv("SESSION_ISSUER", "estimateur-carrosserie"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  getenv("OTEL_SERVICE_NAME", "estimateur-api"),
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = d
		}
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		c.AutoMigrate, _ = strconv.ParseBool(v)
	}
	return c
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if len(c.SessionSecret) < minSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSecretLength)
	}
	if c.SessionTTL <= 0 || c.SessionTTL > maxSessionTTL {
		return fmt.Errorf("SESSION_TTL must be positive and at most %s", maxSessionTTL)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.PostgresDSN
	}
	return c.MySQLDSN()
}
