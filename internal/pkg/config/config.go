package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       required"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`

	// CORSOrigins is a comma separated allow-list; "*" allows any origin.
	CORSOrigins        string `env:"CORS_ORIGINS,         default=*"`
	AdminSignupEnabled bool   `env:"ADMIN_SIGNUP_ENABLED, default=false"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	Scheme   string `env:"DB_SCHEME,   default=mongodb+srv"`
	Username string `env:"DB_USERNAME, required"`
	Password string `env:"DB_PASSWORD, required"`
	Host     string `env:"DB_HOST,     required"`
	Database string `env:"DB_NAME,     required"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("config: JWT_SECRET must not be blank")
	}
	switch cfg.Mongo.Scheme {
	case "mongodb", "mongodb+srv":
	default:
		return nil, fmt.Errorf("config: unsupported DB_SCHEME %q", cfg.Mongo.Scheme)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AllowedOrigins splits CORSOrigins, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// URI builds the connection string with escaped credentials.
func (m MongoConfig) URI() string {
	u := url.URL{
		Scheme:   m.Scheme,
		User:     url.UserPassword(m.Username, m.Password),
		Host:     m.Host,
		Path:     "/" + m.Database,
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}
