package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Content ContentConfig
	Auth    AuthConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=content_platform"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,    default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,      default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT, default=5s"`
}

type ContentConfig struct {
	// PinLimit caps how many items may be pinned at once.
	PinLimit     int `env:"PIN_LIMIT,     default=3"`
	PreviewLimit int `env:"PREVIEW_LIMIT, default=180"`
	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`
}

type AuthConfig struct {
	TokenTTL time.Duration `env:"TOKEN_TTL, default=168h"`
	// Rate is requests per second per client IP on /auth routes.
	Rate float64 `env:"AUTH_RATE, default=5"`
	// AdminEmail is promoted to admin at startup when the account exists.
	AdminEmail string `env:"ADMIN_EMAIL"`
}

// Client configures the contentctl command line client.
type Client struct {
	Server string `env:"CONTENTCTL_SERVER, default=http://localhost:8080"`
	// CredentialsPath overrides the default credential file location.
	CredentialsPath string `env:"CONTENTCTL_CREDENTIALS"`
	// RedisAddr stores the credential in Redis instead of a file when set.
	RedisAddr string `env:"CONTENTCTL_REDIS_ADDR"`
	LogLevel  string `env:"CONTENTCTL_LOG_LEVEL, default=warn"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads a .env file when present and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := load(ctx, &cfg, envconfig.OsLookuper()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadClient(ctx context.Context) (*Client, error) {
	var cfg Client
	if err := load(ctx, &cfg, envconfig.OsLookuper()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func load(ctx context.Context, target any, lookuper envconfig.Lookuper) error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   target,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
