package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"`
	AppPort string `mapstructure:"APP_PORT"`

	DBHost        string        `mapstructure:"DB_HOST"`
	DBPort        int           `mapstructure:"DB_PORT"`
	DBUser        string        `mapstructure:"DB_USER"`
	DBPassword    string        `mapstructure:"DB_PASSWORD"`
	DBName        string        `mapstructure:"DB_NAME"`
	DBScheme      string        `mapstructure:"DB_SCHEME"`
	DBMaxConns    int32         `mapstructure:"DB_MAX_CONNS"`
	DBLockTimeout time.Duration `mapstructure:"DB_LOCK_TIMEOUT"`

	// --- Redis (blacklist отозванных токенов) ---
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisTimeout  time.Duration `mapstructure:"REDIS_TIMEOUT"`

	// --- Auth ---
	AuthJWTSecret string        `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer    string        `mapstructure:"AUTH_ISSUER"`
	AuthTokenTTL  time.Duration `mapstructure:"AUTH_TOKEN_TTL"`
	// false (по умолчанию): при недоступном Redis запрос отклоняется (fail closed)
	AuthRevocationFailOpen bool     `mapstructure:"AUTH_REVOCATION_FAIL_OPEN"`
	AuthPublicPaths        []string `mapstructure:"AUTH_PUBLIC_PATHS"`
}

var defaultPublicPaths = []string{
	"/api/v1/auth/**",
	"/swagger/**",
	"/v3/api-docs/**",
	"/healthz",
	"/readyz",
}

// String реализует интерфейс Stringer
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppEnv: %s\n", c.AppEnv))
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
	sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
	sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
	sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
	sb.WriteString(fmt.Sprintf("  DBScheme: %s\n", c.DBScheme))
	sb.WriteString(fmt.Sprintf("  DBMaxConns: %d\n", c.DBMaxConns))
	sb.WriteString(fmt.Sprintf("  DBLockTimeout: %s\n", c.DBLockTimeout))

	// пароли и секреты маскируем
	sb.WriteString(fmt.Sprintf("  DBPassword: %s\n", mask(c.DBPassword)))

	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	sb.WriteString(fmt.Sprintf("  RedisPassword: %s\n", mask(c.RedisPassword)))
	sb.WriteString(fmt.Sprintf("  RedisTimeout: %s\n", c.RedisTimeout))

	sb.WriteString(fmt.Sprintf("  AuthJWTSecret: %s\n", mask(c.AuthJWTSecret)))
	sb.WriteString(fmt.Sprintf("  AuthIssuer: %s\n", c.AuthIssuer))
	sb.WriteString(fmt.Sprintf("  AuthTokenTTL: %s\n", c.AuthTokenTTL))
	sb.WriteString(fmt.Sprintf("  AuthRevocationFailOpen: %v\n", c.AuthRevocationFailOpen))
	sb.WriteString(fmt.Sprintf("  AuthPublicPaths: %s\n", strings.Join(c.AuthPublicPaths, ", ")))

	return sb.String()
}

func mask(s string) string {
	if s == "" {
		return "(empty)"
	}
	return "********"
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SCHEME", "public")
	v.SetDefault("DB_LOCK_TIMEOUT", "3s")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_TIMEOUT", "500ms")
	v.SetDefault("AUTH_ISSUER", "community")
	v.SetDefault("AUTH_TOKEN_TTL", "1h")
	v.SetDefault("AUTH_REVOCATION_FAIL_OPEN", false)
	v.SetDefault("AUTH_PUBLIC_PATHS", strings.Join(defaultPublicPaths, ","))

	// Регистрируем интересующие ключи окружения
	keys := []string{
		"APP_ENV", "APP_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEME",
		"DB_MAX_CONNS", "DB_LOCK_TIMEOUT",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD", "REDIS_TIMEOUT",
		"AUTH_JWT_SECRET", "AUTH_ISSUER", "AUTH_TOKEN_TTL",
		"AUTH_REVOCATION_FAIL_OPEN", "AUTH_PUBLIC_PATHS",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.AuthPublicPaths = trimAll(cfg.AuthPublicPaths)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет то, без чего сервис стартовать не должен.
func (c *Config) Validate() error {
	var errs []error
	if c.AuthJWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	if c.AuthTokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	if c.DBLockTimeout < 0 {
		errs = append(errs, errors.New("DB_LOCK_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
