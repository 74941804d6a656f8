package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "CHATCART"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv = "CHATCART_APP_ENV"
	EnvDBDSN  = "CHATCART_DB_DSN"
	EnvDBHost = "CHATCART_DB_HOST"
	EnvDBUser = "CHATCART_DB_USER"
	EnvDBName = "CHATCART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Notifier     NotifierConfig
	Orders       OrdersConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CHATCART_APP_ENV" required:"true"`
	Port         string `envconfig:"CHATCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CHATCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHATCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CHATCART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CHATCART_DB_DSN"`
	Driver string `envconfig:"CHATCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CHATCART_DB_HOST"`
	LegacyPort     int    `envconfig:"CHATCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHATCART_DB_USER"`
	LegacyPassword string `envconfig:"CHATCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHATCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHATCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHATCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHATCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHATCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHATCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHATCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CHATCART_REDIS_ADDR"`
	Password     string        `envconfig:"CHATCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHATCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHATCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHATCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHATCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHATCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHATCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CHATCART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CHATCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CHATCART_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CHATCART_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CHATCART_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CHATCART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CHATCART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"CHATCART_PUBSUB_ORDERS_TOPIC" default:"cc-order-events"`
	OrdersSubscription string `envconfig:"CHATCART_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"CHATCART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"CHATCART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"CHATCART_OUTBOX_MAX_ATTEMPTS" default:"10"`
	ProcessedTTL   time.Duration `envconfig:"CHATCART_OUTBOX_PROCESSED_TTL" default:"168h"`
	MetricsPort    string        `envconfig:"CHATCART_OUTBOX_METRICS_PORT" default:"9090"`
}

type NotifierConfig struct {
	Timeout   time.Duration `envconfig:"CHATCART_NOTIFIER_TIMEOUT" default:"10s"`
	UserAgent string        `envconfig:"CHATCART_NOTIFIER_USER_AGENT" default:"chatcart-notifier/1.0"`
}

// RateLimitConfig throttles authenticated API traffic per merchant.
type RateLimitConfig struct {
	Window        time.Duration `envconfig:"CHATCART_RATE_LIMIT_WINDOW" default:"1m"`
	MerchantLimit int           `envconfig:"CHATCART_RATE_LIMIT_MERCHANT" default:"240"`
}

// OrdersConfig carries order-engine policy knobs.
type OrdersConfig struct {
	// DeductPackageStock controls whether package orders decrement product
	// stock. The reference behavior only tracks stock for single-product
	// orders, so this defaults to off.
	DeductPackageStock bool `envconfig:"CHATCART_ORDERS_DEDUCT_PACKAGE_STOCK" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
