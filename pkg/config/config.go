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

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App          AppConfig
	Upstream     UpstreamConfig
	Catalog      CatalogConfig
	Search       SearchConfig
	Views        ViewsConfig
	Contact      ContactConfig
	DB           DBConfig
	Redis        RedisConfig
	Supabase     SupabaseConfig
	Resend       ResendConfig
	Revalidation RevalidationConfig
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
	Env          string `envconfig:"ELECTROHOGAR_APP_ENV" default:"development"`
	Port         string `envconfig:"ELECTROHOGAR_APP_PORT" default:"8080"`
	SiteURL      string `envconfig:"ELECTROHOGAR_SITE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"ELECTROHOGAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ELECTROHOGAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points at the external catalog REST API.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"ELECTROHOGAR_API_URL" default:"http://localhost:3001/api/v1"`
	Timeout time.Duration `envconfig:"ELECTROHOGAR_API_TIMEOUT" default:"10s"`
}

type CatalogConfig struct {
	PageSize      int           `envconfig:"ELECTROHOGAR_CATALOG_PAGE_SIZE" default:"8"`
	ListingTTL    time.Duration `envconfig:"ELECTROHOGAR_CATALOG_LISTING_TTL" default:"30m"`
	FilterOptsTTL time.Duration `envconfig:"ELECTROHOGAR_CATALOG_FILTER_OPTS_TTL" default:"24h"`
	CacheDisabled bool          `envconfig:"ELECTROHOGAR_CATALOG_CACHE_DISABLED" default:"false"`
}

type SearchConfig struct {
	DebounceInterval time.Duration `envconfig:"ELECTROHOGAR_SEARCH_DEBOUNCE" default:"350ms"`
	MinQueryLength   int           `envconfig:"ELECTROHOGAR_SEARCH_MIN_QUERY_LEN" default:"3"`
	SuggestionLimit  int           `envconfig:"ELECTROHOGAR_SEARCH_SUGGESTION_LIMIT" default:"5"`
}

type ViewsConfig struct {
	RecentCap  int           `envconfig:"ELECTROHOGAR_VIEWS_RECENT_CAP" default:"5"`
	SessionTTL time.Duration `envconfig:"ELECTROHOGAR_VIEWS_SESSION_TTL" default:"12h"`
}

type ContactConfig struct {
	RateLimitWindow time.Duration `envconfig:"ELECTROHOGAR_CONTACT_RATE_WINDOW" default:"1h"`
	RateLimitPerIP  int           `envconfig:"ELECTROHOGAR_CONTACT_RATE_LIMIT" default:"5"`
	NotifyEmail     string        `envconfig:"ELECTROHOGAR_CONTACT_NOTIFY_EMAIL"`
}

type DBConfig struct {
	DSN    string `envconfig:"ELECTROHOGAR_DB_DSN"`
	Driver string `envconfig:"ELECTROHOGAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ELECTROHOGAR_DB_HOST"`
	LegacyPort     int    `envconfig:"ELECTROHOGAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ELECTROHOGAR_DB_USER"`
	LegacyPassword string `envconfig:"ELECTROHOGAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"ELECTROHOGAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"ELECTROHOGAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ELECTROHOGAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ELECTROHOGAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ELECTROHOGAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ELECTROHOGAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ELECTROHOGAR_REDIS_URL"`
	Address      string        `envconfig:"ELECTROHOGAR_REDIS_ADDR"`
	Password     string        `envconfig:"ELECTROHOGAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"ELECTROHOGAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ELECTROHOGAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ELECTROHOGAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ELECTROHOGAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ELECTROHOGAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ELECTROHOGAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SupabaseConfig carries the project credentials used by the admin area.
type SupabaseConfig struct {
	URL        string `envconfig:"ELECTROHOGAR_SUPABASE_URL"`
	AnonKey    string `envconfig:"ELECTROHOGAR_SUPABASE_ANON_KEY"`
	ServiceKey string `envconfig:"ELECTROHOGAR_SUPABASE_SERVICE_KEY"`
	JWTSecret  string `envconfig:"ELECTROHOGAR_SUPABASE_JWT_SECRET"`
}

type ResendConfig struct {
	APIKey      string `envconfig:"ELECTROHOGAR_RESEND_API_KEY"`
	DefaultFrom string `envconfig:"ELECTROHOGAR_RESEND_FROM_EMAIL" default:"no-reply@electrohogar.example"`
}

type RevalidationConfig struct {
	SecretToken string `envconfig:"ELECTROHOGAR_REVALIDATION_SECRET_TOKEN"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ELECTROHOGAR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ELECTROHOGAR_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"ELECTROHOGAR_DB_HOST": db.LegacyHost,
		"ELECTROHOGAR_DB_USER": db.LegacyUser,
		"ELECTROHOGAR_DB_NAME": db.LegacyName,
	}
	for _, envVar := range []string{"ELECTROHOGAR_DB_HOST", "ELECTROHOGAR_DB_USER", "ELECTROHOGAR_DB_NAME"} {
		if legacyValues[envVar] == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either ELECTROHOGAR_DB_DSN or %s are required", strings.Join(missing, ", "))
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
