// Package config loads the server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"

	CartMemory = "memory"
	CartRedis  = "redis"

	defaultJWTSecret = "dev-secret-change-me"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR,default=:3000"`
	// GRPCAddr left empty disables the gRPC listener.
	GRPCAddr string `env:"GRPC_ADDR,default=:50051"`

	DBDriver           string        `env:"DB_DRIVER,default=mysql"`
	MySQLHost          string        `env:"MYSQL_HOST,default=localhost"`
	MySQLPort          int           `env:"MYSQL_PORT,default=3306"`
	MySQLUser          string        `env:"MYSQL_USER,default=root"`
	MySQLPassword      string        `env:"MYSQL_PASSWORD,default=root"`
	MySQLDatabase      string        `env:"MYSQL_DATABASE,default=libreriaDB"`
	DBMaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS,default=10"`
	DBMaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS,default=5"`
	DBConnMaxLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME,default=5m"`
	MigrateOnStart     bool          `env:"MIGRATE_ON_START,default=false"`
	PasswordHashing    string        `env:"PASSWORD_HASHING,default=plain"`
	JWTSecret          string        `env:"JWT_SECRET"`
	JWTTTL             time.Duration `env:"JWT_TTL,default=24h"`
	CartBackend        string        `env:"CART_BACKEND,default=memory"`
	RedisAddr          string        `env:"REDIS_ADDR,default=localhost:6379"`
	RabbitMQURL        string        `env:"RABBITMQ_URL"`
	RabbitMQExchange   string        `env:"RABBITMQ_EXCHANGE,default=bookstore.events"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS,default=*"`
	RateLimitRPS       float64       `env:"RATE_LIMIT_RPS,default=0"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST,default=20"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	LogLevel           string        `env:"LOG_LEVEL,default=info"`
	LogFormat          string        `env:"LOG_FORMAT,default=console"`
}

// Load reads envFile when it exists, then decodes the environment. Variables
// already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverMySQL, DriverMemory, c.DBDriver)
	}
	switch c.CartBackend {
	case CartMemory, CartRedis:
	default:
		return fmt.Errorf("CART_BACKEND must be %q or %q, got %q", CartMemory, CartRedis, c.CartBackend)
	}
	switch c.PasswordHashing {
	case "plain", "bcrypt":
	default:
		return fmt.Errorf("PASSWORD_HASHING must be \"plain\" or \"bcrypt\", got %q", c.PasswordHashing)
	}
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// UsingDefaultSecret reports whether tokens are signed with the built-in
// development secret.
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == ""
}

func (c *Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte(defaultJWTSecret)
	}
	return []byte(c.JWTSecret)
}

// MySQLDSN renders the go-sql-driver DSN for the configured database.
func (c *Config) MySQLDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.MySQLUser
	mc.Passwd = c.MySQLPassword
	mc.Net = "tcp"
	mc.Addr = c.MySQLHost + ":" + strconv.Itoa(c.MySQLPort)
	mc.DBName = c.MySQLDatabase
	mc.ParseTime = true
	return mc.FormatDSN()
}

func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// NewLogger builds the process logger for the configured level and format.
func (c *Config) NewLogger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if c.LogFormat != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
