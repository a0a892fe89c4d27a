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

// DefaultFile is read when no config path is given and the file exists.
const DefaultFile = "chatsight.yaml"

type Config struct {
	Server    Server
	Database  Database
	Auth      Auth
	Insights  Insights
	RateLimit RateLimit `mapstructure:"rate_limit"`
	Logging   Logging
}

type Server struct {
	Addr            string
	StaticDir       string        `mapstructure:"static_dir"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Database struct {
	Driver string
	DSN    string
}

type Auth struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type Insights struct {
	Enabled     bool
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type RateLimit struct {
	RPS   float64
	Burst int
}

type Logging struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "chatsight.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)

	v.SetDefault("insights.enabled", true)
	v.SetDefault("insights.api_key", "")
	v.SetDefault("insights.base_url", "https://api.openai.com")
	v.SetDefault("insights.model", "gpt-4o-mini")
	v.SetDefault("insights.temperature", 0.4)
	v.SetDefault("insights.timeout", 60*time.Second)

	v.SetDefault("rate_limit.rps", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Environment names used by earlier deployments, accepted alongside CHATSIGHT_*.
var legacyEnv = map[string]string{
	"auth.jwt_secret":  "JWT_SECRET",
	"insights.api_key": "OPENAI_API_KEY",
	"insights.model":   "OPENAI_SUMMARY_MODEL",
	"database.dsn":     "DATABASE_URL",
}

// Load reads .env, the YAML file at path (or DefaultFile when present) and
// CHATSIGHT_* environment overrides, in increasing precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("CHATSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envKey := "CHATSIGHT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, err
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &c, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Insights.Enabled && c.Insights.APIKey == "" {
		errs = append(errs, errors.New("insights.api_key (OPENAI_API_KEY) is required when insights are enabled"))
	}
	return errors.Join(errs...)
}
