package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CatalogPostgres = "postgres"
	CatalogMemory   = "memory"

	StorageRedis  = "redis"
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Config is the whole service configuration, read from the environment.
type Config struct {
	Port     string // listen port (8080)
	GoEnv    string // dev/prod
	LogLevel string // logrus level name

	JWTSecret string // HS256 secret of the auth service tokens
	FEURL     string // storefront origin for CORS

	DatabaseDSN   string // DATABASE_URL or built from POSTGRES_*
	CatalogSource string // postgres/memory
	CatalogSeed   bool   // seed an empty postgres catalog with the default menu

	CartStorage            string // redis/file/memory
	CartStorageDir         string
	CartKey                string
	CartTTL                time.Duration
	CartIdleTTL            time.Duration // in-memory sessions idle this long are evicted
	CartLookupTimeout      time.Duration
	CartPricingConcurrency int
	RedisAddr              string

	RabbitMQURI      string
	OrderEventsQueue string

	OTLPEndpoint string
	ServiceName  string
}

func (c Config) IsDev() bool { return c.GoEnv == "dev" }

// Load reads the environment. Unset optional values fall back to defaults.
func Load() (Config, error) {
	var err error
	cfg := Config{
		Port:     getenv("PORT", "8080"),
		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		FEURL:     getenv("FE_URL", "http://localhost:5173"),

		DatabaseDSN: databaseDSN(),

		CartStorage:    strings.ToLower(getenv("CART_STORAGE", StorageMemory)),
		CartStorageDir: getenv("CART_STORAGE_DIR", "./data/carts"),
		CartKey:        getenv("CART_KEY", "cart"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),

		RabbitMQURI:      os.Getenv("RABBITMQ_URI"),
		OrderEventsQueue: getenv("ORDER_EVENTS_QUEUE", "orders"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  getenv("OTEL_SERVICE_NAME", "bakery-api"),
	}

	defaultCatalog := CatalogMemory
	if cfg.DatabaseDSN != "" {
		defaultCatalog = CatalogPostgres
	}
	cfg.CatalogSource = strings.ToLower(getenv("CATALOG_SOURCE", defaultCatalog))

	if cfg.CatalogSeed, err = boolOr("CATALOG_SEED", false); err != nil {
		return Config{}, err
	}
	if cfg.CartTTL, err = durationOr("CART_TTL", 30*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CartIdleTTL, err = durationOr("CART_IDLE_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CartLookupTimeout, err = durationOr("CART_LOOKUP_TIMEOUT", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CartPricingConcurrency, err = atoiOr("CART_PRICING_CONCURRENCY", 8); err != nil {
		return Config{}, err
	}

	// required / consistency checks
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be number: %w", err)
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = "dev_secret_change_me"
	}
	switch cfg.CatalogSource {
	case CatalogMemory:
	case CatalogPostgres:
		if cfg.DatabaseDSN == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required")
		}
	default:
		return Config{}, fmt.Errorf("CATALOG_SOURCE must be postgres or memory")
	}
	switch cfg.CartStorage {
	case StorageMemory, StorageFile:
	case StorageRedis:
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("REDIS_ADDR is required")
		}
	default:
		return Config{}, fmt.Errorf("CART_STORAGE must be redis, file or memory")
	}
	if cfg.CartPricingConcurrency < 1 {
		return Config{}, fmt.Errorf("CART_PRICING_CONCURRENCY must be >= 1")
	}

	return cfg, nil
}

// DATABASE_URL wins; otherwise POSTGRES_HOST enables the key=value form.
func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host,
		getenv("POSTGRES_PORT", "5432"),
		getenv("POSTGRES_USER", "postgres"),
		getenv("POSTGRES_PASSWORD", "postgres"),
		getenv("POSTGRES_DB", "bakery"),
		getenv("POSTGRES_SSLMODE", "disable"),
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolOr(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}
