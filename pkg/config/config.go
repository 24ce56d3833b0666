package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "AUTOMARKT"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and tooling.
const (
	EnvAppEnv    = "AUTOMARKT_APP_ENV"
	EnvPort      = "AUTOMARKT_APP_PORT"
	EnvDBDSN     = "AUTOMARKT_DB_DSN"
	EnvDBHost    = "AUTOMARKT_DB_HOST"
	EnvDBUser    = "AUTOMARKT_DB_USER"
	EnvDBName    = "AUTOMARKT_DB_NAME"
	EnvRedisURL  = "AUTOMARKT_REDIS_URL"
	EnvJWTSecret = "AUTOMARKT_JWT_SECRET"
	EnvJWTIssuer = "AUTOMARKT_JWT_ISSUER"
	EnvGCSBucket = "AUTOMARKT_GCS_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	Search       SearchConfig
	Drafts       DraftsConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"AUTOMARKT_APP_ENV" required:"true"`
	Port         string `envconfig:"AUTOMARKT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AUTOMARKT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTOMARKT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOMARKT_DB_DSN"`
	Driver string `envconfig:"AUTOMARKT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AUTOMARKT_DB_HOST"`
	LegacyPort     int    `envconfig:"AUTOMARKT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AUTOMARKT_DB_USER"`
	LegacyPassword string `envconfig:"AUTOMARKT_DB_PASSWORD"`
	LegacyName     string `envconfig:"AUTOMARKT_DB_NAME"`
	LegacySSLMode  string `envconfig:"AUTOMARKT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUTOMARKT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUTOMARKT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOMARKT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOMARKT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOMARKT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AUTOMARKT_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOMARKT_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOMARKT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOMARKT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOMARKT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOMARKT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOMARKT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOMARKT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AUTOMARKT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AUTOMARKT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AUTOMARKT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AUTOMARKT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AUTOMARKT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AUTOMARKT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"AUTOMARKT_GCS_BUCKET_NAME" required:"true"`
	KeyPrefix  string `envconfig:"AUTOMARKT_GCS_KEY_PREFIX" default:"car-images"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"AUTOMARKT_MAX_UPLOAD_MB" default:"10"`
	MaxImages   int `envconfig:"AUTOMARKT_MEDIA_MAX_IMAGES" default:"12"`
}

type SearchConfig struct {
	PageSize int `envconfig:"AUTOMARKT_SEARCH_PAGE_SIZE" default:"12"`
}

type DraftsConfig struct {
	TTL time.Duration `envconfig:"AUTOMARKT_DRAFT_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AUTOMARKT_AUTO_MIGRATE" default:"false"`
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
