// Package config is the basket-service configuration, read from flags and
// environment variables with kong.
package config

import (
	"errors"
	"time"

	"github.com/alecthomas/kong"

	"github.com/jcmexdev/ecommerce-basket/internal/pkg/telemetry"
)

type Config struct {
	HTTPAddr             string        `name:"http-addr" help:"HTTP listen address." env:"HTTP_ADDR" default:":8080"`
	SlowRequestThreshold time.Duration `help:"Requests slower than this are logged at WARN." env:"SLOW_REQUEST_THRESHOLD" default:"3s"`
	ShutdownTimeout      time.Duration `help:"Grace period for in-flight requests on shutdown." env:"SHUTDOWN_TIMEOUT" default:"10s"`

	Telemetry telemetry.Config `embed:""`
	Store     Store            `embed:"" prefix:"store-"`
	Cache     Cache            `embed:"" prefix:"cache-"`
	Discount  Discount         `embed:"" prefix:"discount-"`
}

type Store struct {
	Driver               string        `help:"Authoritative basket store." env:"STORE_DRIVER" enum:"postgres,firestore" default:"postgres"`
	PostgresDSN          string        `name:"postgres-dsn" help:"PostgreSQL connection string." env:"DATABASE_URL" default:""`
	ConnectTimeout       time.Duration `help:"How long to wait for the store at startup." env:"STORE_CONNECT_TIMEOUT" default:"30s"`
	FirestoreProject     string        `help:"Google Cloud project holding the baskets collection." env:"FIRESTORE_PROJECT_ID" default:""`
	FirestoreCredentials string        `help:"Service account file; empty uses ADC." env:"GOOGLE_APPLICATION_CREDENTIALS" default:""`
}

type Cache struct {
	Driver    string        `help:"Basket cache." env:"CACHE_DRIVER" enum:"redis,memory" default:"redis"`
	RedisAddr string        `help:"Redis host:port." env:"REDIS_ADDR" default:"localhost:6379"`
	TTL       time.Duration `name:"ttl" help:"Lifetime of a cached basket." env:"BASKET_CACHE_TTL" default:"5m"`
}

type Discount struct {
	Addr           string        `help:"Discount gRPC service address." env:"DISCOUNT_SERVICE_ADDR" default:"localhost:9090"`
	Timeout        time.Duration `help:"Per-call pricing timeout." env:"DISCOUNT_TIMEOUT" default:"2s"`
	MaxConcurrency int           `help:"Concurrent pricing calls per basket." env:"PRICING_MAX_CONCURRENCY" default:"4"`
}

// Validate is called by kong after parsing.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "postgres":
		if c.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case "firestore":
		if c.Store.FirestoreProject == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT_ID is required for the firestore store"))
		}
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("BASKET_CACHE_TTL must be positive"))
	}
	if c.Discount.MaxConcurrency < 1 {
		errs = append(errs, errors.New("PRICING_MAX_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
}

// Parse reads args and the environment into a Config.
func Parse(args []string, options ...kong.Option) (*Config, error) {
	var cfg Config
	parser, err := kong.New(&cfg, append([]kong.Option{
		kong.Name("basket-service"),
		kong.Description("Shopping basket HTTP API."),
	}, options...)...)
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}
