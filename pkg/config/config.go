package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App             AppConfig
	DB              DBConfig
	Redis           RedisConfig
	Billing         BillingConfig
	StatusRateLimit StatusRateLimitConfig
	FeatureFlags    FeatureFlagsConfig
	GCP             GCPConfig
	PubSub          PubSubConfig
	Outbox          OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Billing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BOLAJOY_APP_ENV" required:"true"`
	Port         string `envconfig:"BOLAJOY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOLAJOY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOLAJOY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOLAJOY_DB_DSN"`
	Driver string `envconfig:"BOLAJOY_DB_DRIVER" default:"postgres"`

	// SQLitePath backs the flat-file deployment mode; only read when
	// Driver is "sqlite".
	SQLitePath string `envconfig:"BOLAJOY_DB_SQLITE_PATH" default:"bolajoy.db"`

	LegacyHost     string `envconfig:"BOLAJOY_DB_HOST"`
	LegacyPort     int    `envconfig:"BOLAJOY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOLAJOY_DB_USER"`
	LegacyPassword string `envconfig:"BOLAJOY_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOLAJOY_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOLAJOY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOLAJOY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOLAJOY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOLAJOY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOLAJOY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"BOLAJOY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOLAJOY_REDIS_ADDR"`
	Password     string        `envconfig:"BOLAJOY_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOLAJOY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOLAJOY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOLAJOY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOLAJOY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOLAJOY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOLAJOY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// BillingConfig carries the ledger defaults used when a child has no group
// fee on record.
type BillingConfig struct {
	DefaultMonthlyFee string `envconfig:"BOLAJOY_BILLING_DEFAULT_MONTHLY_FEE" default:"500000"`
	DueDay            int    `envconfig:"BOLAJOY_BILLING_DUE_DAY" default:"5"`
}

func (b BillingConfig) validate() error {
	if _, err := decimal.NewFromString(b.DefaultMonthlyFee); err != nil {
		return fmt.Errorf("invalid default monthly fee %q: %w", b.DefaultMonthlyFee, err)
	}
	if b.DueDay < 1 || b.DueDay > 28 {
		return fmt.Errorf("billing due day must be within 1..28, got %d", b.DueDay)
	}
	return nil
}

// DefaultFee returns the parsed default monthly fee.
func (b BillingConfig) DefaultFee() decimal.Decimal {
	fee, err := decimal.NewFromString(b.DefaultMonthlyFee)
	if err != nil {
		return decimal.Zero
	}
	return fee
}

type StatusRateLimitConfig struct {
	Window     time.Duration `envconfig:"BOLAJOY_STATUS_RATE_LIMIT_WINDOW" default:"1m"`
	PhoneLimit int           `envconfig:"BOLAJOY_STATUS_RATE_LIMIT_PHONE_LIMIT" default:"5"`
	IPLimit    int           `envconfig:"BOLAJOY_STATUS_RATE_LIMIT_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOLAJOY_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BOLAJOY_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"BOLAJOY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BOLAJOY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"BOLAJOY_PUBSUB_NOTIFICATION_TOPIC" default:"bolajoy-notification-events"`
	NotificationSubscription string `envconfig:"BOLAJOY_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BOLAJOY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BOLAJOY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BOLAJOY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}

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
