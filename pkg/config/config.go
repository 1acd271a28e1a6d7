package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FURNIWEB_DB_DSN"
	EnvDBHost = "FURNIWEB_DB_HOST"
	EnvDBUser = "FURNIWEB_DB_USER"
	EnvDBName = "FURNIWEB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Square       SquareConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"FURNIWEB_APP_ENV" required:"true"`
	Port         string `envconfig:"FURNIWEB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FURNIWEB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FURNIWEB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FURNIWEB_DB_DSN"`
	Driver string `envconfig:"FURNIWEB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FURNIWEB_DB_HOST"`
	LegacyPort     int    `envconfig:"FURNIWEB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FURNIWEB_DB_USER"`
	LegacyPassword string `envconfig:"FURNIWEB_DB_PASSWORD"`
	LegacyName     string `envconfig:"FURNIWEB_DB_NAME"`
	LegacySSLMode  string `envconfig:"FURNIWEB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FURNIWEB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FURNIWEB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FURNIWEB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FURNIWEB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FURNIWEB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FURNIWEB_REDIS_ADDR"`
	Password     string        `envconfig:"FURNIWEB_REDIS_PASSWORD"`
	DB           int           `envconfig:"FURNIWEB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FURNIWEB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FURNIWEB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FURNIWEB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FURNIWEB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FURNIWEB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FURNIWEB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FURNIWEB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FURNIWEB_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CheckoutConfig struct {
	// FlatShippingFeeCents is charged per sub-order when no shipping quoter
	// collaborator is configured.
	FlatShippingFeeCents int           `envconfig:"FURNIWEB_CHECKOUT_FLAT_SHIPPING_FEE_CENTS" default:"500"`
	AppliedCouponTTL     time.Duration `envconfig:"FURNIWEB_CHECKOUT_APPLIED_COUPON_TTL" default:"2h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FURNIWEB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"FURNIWEB_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"FURNIWEB_PUBSUB_ORDERS_TOPIC" default:"furniweb-order-events"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"FURNIWEB_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"FURNIWEB_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"FURNIWEB_SQUARE_LOCATION_ID"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FURNIWEB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FURNIWEB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FURNIWEB_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
