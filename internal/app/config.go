package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	MongoURL     string        `usage:"MongoDB connection URL (STORE_MONGO_URL or MONGO_URL)" flag:"mongo-url"`
	MongoDB      string        `default:"storefront" usage:"MongoDB database name" flag:"mongo-db"`
	JWTSecret    string        `usage:"HMAC secret for signing auth tokens (STORE_JWT_SECRET)" flag:"jwt-secret"`
	TokenTTL     time.Duration `default:"720h" usage:"Auth token lifetime" flag:"token-ttl"`
	NATSURL      string        `usage:"NATS server URL for order events; empty disables publishing" flag:"nats-url"`
	UploadDir    string        `default:"uploads" usage:"Directory for product image uploads" flag:"upload-dir"`
	ImageBaseURL string        `default:"" usage:"Base URL for product images (e.g. https://cdn.example.com)" flag:"image-base-url"`
	SMTP         SMTPConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// SMTPConfig configures transactional mail delivery. Mail is disabled when
// Host is empty.
type SMTPConfig struct {
	Host     string `default:"" usage:"SMTP server host; empty disables mail"`
	Port     int    `default:"587" usage:"SMTP server port"`
	From     string `default:"noreply@storefront.local" usage:"Mail from address"`
	Username string `usage:"SMTP auth username"`
	Password string `usage:"SMTP auth password"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.MongoURL == "" {
		return nil, errors.New("MongoDB URL is required: set STORE_MONGO_URL or MONGO_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is required: set STORE_JWT_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, Atlas-style deploys) that use standard names to the application's
// STORE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.MongoURL == "" {
		for _, name := range []string{"MONGO_URL", "MONGODB_URI"} {
			if v := os.Getenv(name); v != "" {
				c.MongoURL = v
				break
			}
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
