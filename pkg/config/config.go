package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DISTRILINK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "DISTRILINK_DB_DSN"
	EnvDBHost = "DISTRILINK_DB_HOST"
	EnvDBUser = "DISTRILINK_DB_USER"
	EnvDBName = "DISTRILINK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Orders       OrdersConfig
	Expiry       ExpiryConfig
	Sweep        SweepConfig
	Email        EmailConfig
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
	Env          string `envconfig:"DISTRILINK_APP_ENV" required:"true"`
	Port         string `envconfig:"DISTRILINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DISTRILINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DISTRILINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DISTRILINK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DISTRILINK_DB_DSN"`
	Driver string `envconfig:"DISTRILINK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DISTRILINK_DB_HOST"`
	LegacyPort     int    `envconfig:"DISTRILINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DISTRILINK_DB_USER"`
	LegacyPassword string `envconfig:"DISTRILINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"DISTRILINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"DISTRILINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DISTRILINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DISTRILINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DISTRILINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DISTRILINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DISTRILINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DISTRILINK_REDIS_ADDR"`
	Password     string        `envconfig:"DISTRILINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"DISTRILINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DISTRILINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DISTRILINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DISTRILINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DISTRILINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DISTRILINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DISTRILINK_AUTO_MIGRATE" default:"false"`
}

type OrdersConfig struct {
	// MinWalletBalance is the cheap pre-check applied before full order
	// validation; the authoritative balance check happens at debit time.
	MinWalletBalance string `envconfig:"DISTRILINK_ORDERS_MIN_WALLET_BALANCE" default:"10.00"`
	// TransferGrace is how long a stockist has to replenish stock before a
	// pending order request is handed to the default stockist.
	TransferGrace time.Duration `envconfig:"DISTRILINK_ORDERS_TRANSFER_GRACE" default:"24h"`
}

type ExpiryConfig struct {
	ThresholdDays int `envconfig:"DISTRILINK_EXPIRY_THRESHOLD_DAYS" default:"30"`
}

type SweepConfig struct {
	Interval time.Duration `envconfig:"DISTRILINK_SWEEP_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"DISTRILINK_SWEEP_LOCK_TTL" default:"55m"`
}

type EmailConfig struct {
	FromAddress string `envconfig:"DISTRILINK_EMAIL_FROM" default:"no-reply@distrilink.local"`
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
