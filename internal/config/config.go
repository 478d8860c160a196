package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AuthModeDev    = "dev"
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"
)

type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`

	// DBDSN vacío => repos en memoria.
	DBDSN          string `mapstructure:"DB_DSN"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MigrateOnStart bool   `mapstructure:"MIGRATE_ON_START"`

	AuthMode         string        `mapstructure:"AUTH_MODE"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	JWTJWKSURL       string        `mapstructure:"JWT_JWKS_URL"`
	JWTIssuer        string        `mapstructure:"JWT_ISSUER"`
	IdentityBaseURL  string        `mapstructure:"IDENTITY_BASE_URL"`
	IdentityAPIKey   string        `mapstructure:"IDENTITY_API_KEY"`
	IdentityCacheTTL time.Duration `mapstructure:"IDENTITY_CACHE_TTL"`

	NotifyWebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL"`
	NotifyAPIKey     string `mapstructure:"NOTIFY_API_KEY"`

	SweepInterval    time.Duration `mapstructure:"SWEEP_INTERVAL"`
	HTTPReadTimeout  time.Duration `mapstructure:"HTTP_READ_TIMEOUT"`
	HTTPWriteTimeout time.Duration `mapstructure:"HTTP_WRITE_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
	"DB_DSN", "DB_MAX_OPEN_CONNS", "MIGRATE_ON_START",
	"AUTH_MODE", "JWT_SECRET", "JWT_JWKS_URL", "JWT_ISSUER",
	"IDENTITY_BASE_URL", "IDENTITY_API_KEY", "IDENTITY_CACHE_TTL",
	"NOTIFY_WEBHOOK_URL", "NOTIFY_API_KEY",
	"SWEEP_INTERVAL", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT",
}

// Load lee env vars (y un .env opcional en el directorio actual).
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "medisync-hub")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("MIGRATE_ON_START", false)
	v.SetDefault("AUTH_MODE", AuthModeDev)
	v.SetDefault("IDENTITY_CACHE_TTL", time.Minute)
	v.SetDefault("SWEEP_INTERVAL", time.Minute)
	v.SetDefault("HTTP_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 15*time.Second)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env es opcional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) UsesPostgres() bool {
	return strings.TrimSpace(c.DBDSN) != ""
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

// Validate rechaza combinaciones que dejarían el servicio sin autenticación real
// o con un barrido que no avanza.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthModeDev:
		if c.Env == "production" {
			return fmt.Errorf("AUTH_MODE=dev is not allowed with ENV=production")
		}
	case AuthModeJWT:
		if c.JWTSecret == "" && c.JWTJWKSURL == "" {
			return fmt.Errorf("AUTH_MODE=jwt requires JWT_SECRET or JWT_JWKS_URL")
		}
	case AuthModeRemote:
		if c.IdentityBaseURL == "" || c.IdentityAPIKey == "" {
			return fmt.Errorf("AUTH_MODE=remote requires IDENTITY_BASE_URL and IDENTITY_API_KEY")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q, %q or %q, got %q", AuthModeDev, AuthModeJWT, AuthModeRemote, c.AuthMode)
	}

	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.MigrateOnStart && !c.UsesPostgres() {
		return fmt.Errorf("MIGRATE_ON_START requires DB_DSN")
	}
	return nil
}
