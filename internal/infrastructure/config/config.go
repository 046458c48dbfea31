package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// STOREFRONT_STORAGE_BACKEND
const EnvPrefix = "STOREFRONT"

// Config is the full runtime configuration. Keys follow the mapstructure tags,
// so [store] checkout_delay in the TOML file is STOREFRONT_STORE_CHECKOUT_DELAY
// in the environment.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Session   SessionConfig   `mapstructure:"session"`
	Cookie    CookieConfig    `mapstructure:"cookie"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// DatabaseConfig picks the SQL backend. Driver "sqlite" reads Path and
// "postgres" reads the host fields.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int           `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int           `mapstructure:"conn_max_idle_time"` // minutes
	SlowQuery       time.Duration `mapstructure:"slow_query"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Storage backends for the persisted identity
const (
	StorageBackendMemory   = "memory"
	StorageBackendFile     = "file"
	StorageBackendDatabase = "database"
	StorageBackendRedis    = "redis"
)

// StorageConfig selects where session identities are persisted. FilePath only
// applies to the file backend and TTL only to redis, where 0 never expires.
type StorageConfig struct {
	Backend   string        `mapstructure:"backend"`
	FilePath  string        `mapstructure:"file_path"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// SessionConfig controls the browser session. TTL is idle time.
type SessionConfig struct {
	CookieName    string        `mapstructure:"cookie_name"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// CookieConfig shapes the session cookie. An empty Domain means the host that
// served the response.
type CookieConfig struct {
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"` // strict, lax or none
}

// StoreConfig tunes the simulated latency and pricing of the stores
type StoreConfig struct {
	LoginDelay    time.Duration `mapstructure:"login_delay"`
	SignupDelay   time.Duration `mapstructure:"signup_delay"`
	CheckoutDelay time.Duration `mapstructure:"checkout_delay"`
	TaxRate       float64       `mapstructure:"tax_rate"` // 0.1 = 10%
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type HTTPConfig struct {
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	MaxBodySize    int64         `mapstructure:"max_body_size"`

	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`

	// The auth limit applies to login and signup only
	AuthRateLimitEnabled  bool          `mapstructure:"auth_rate_limit_enabled"`
	AuthRateLimitRequests int           `mapstructure:"auth_rate_limit_requests"`
	AuthRateLimitWindow   time.Duration `mapstructure:"auth_rate_limit_window"`

	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`
}

// TelemetryConfig drives the OTLP exporters. Enabled covers traces only.
type TelemetryConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	CollectorEndpoint     string        `mapstructure:"collector_endpoint"`
	SamplingRatio         float64       `mapstructure:"sampling_ratio"`
	ServiceName           string        `mapstructure:"service_name"`
	Insecure              bool          `mapstructure:"insecure"`
	MetricsEnabled        bool          `mapstructure:"metrics_enabled"`
	MetricsExportInterval time.Duration `mapstructure:"metrics_export_interval"`
	LogsEnabled           bool          `mapstructure:"logs_enabled"`
	LogsLevel             string        `mapstructure:"logs_level"`
	DBTraceEnabled        bool          `mapstructure:"db_trace_enabled"`
}

// defaults registers every key with viper. AutomaticEnv only reaches
// Unmarshal for keys viper already knows, so keys without a meaningful default
// are listed with their zero value.
var defaults = map[string]any{
	"app.name": "storefront",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "sqlite",
	"database.path":               "storefront.db",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "storefront",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,
	"database.slow_query":         200 * time.Millisecond,
	"database.auto_migrate":       true,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"storage.backend":    StorageBackendDatabase,
	"storage.file_path":  "storefront-storage.json",
	"storage.key_prefix": "storefront",
	"storage.ttl":        time.Duration(0),

	"session.cookie_name":    "storefront_session",
	"session.ttl":            24 * time.Hour,
	"session.sweep_interval": 5 * time.Minute,

	"cookie.domain":    "",
	"cookie.path":      "/",
	"cookie.secure":    false,
	"cookie.same_site": "lax",

	"store.login_delay":    time.Second,
	"store.signup_delay":   time.Second,
	"store.checkout_delay": 2 * time.Second,
	"store.tax_rate":       0.1,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":             15 * time.Second,
	"http.write_timeout":            15 * time.Second,
	"http.idle_timeout":             time.Minute,
	"http.max_header_bytes":         1 << 20,
	"http.max_body_size":            int64(1 << 20),
	"http.rate_limit_enabled":       false,
	"http.rate_limit_requests":      100,
	"http.rate_limit_window":        time.Minute,
	"http.auth_rate_limit_enabled":  false,
	"http.auth_rate_limit_requests": 5,
	"http.auth_rate_limit_window":   time.Minute,
	// no origin default: an empty list rejects cross-origin requests
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "X-Request-ID"},
	"http.trusted_proxies":    []string{},

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "storefront",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_export_interval": time.Minute,
	"telemetry.logs_enabled":            false,
	"telemetry.logs_level":              "info",
	"telemetry.db_trace_enabled":        false,
}

// Load reads ./config.toml or /etc/storefront/config.toml when present, then
// applies STOREFRONT_* environment overrides on top of the built-in defaults.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file, which must exist
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/storefront")
	} else {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type check struct {
	failed bool
	err    error
}

func (c *Config) checks() []check {
	db, store, cookie := c.Database, c.Store, c.Cookie
	checks := []check{
		{!slices.Contains([]string{"sqlite", "postgres"}, db.Driver),
			fmt.Errorf("database.driver must be sqlite or postgres, got %q", db.Driver)},
		{db.MaxOpenConns <= 0, errors.New("database.max_open_conns must be positive")},
		{db.MaxIdleConns < 0, errors.New("database.max_idle_conns cannot be negative")},
		{db.MaxIdleConns > db.MaxOpenConns,
			fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)},
		{!slices.Contains([]string{StorageBackendMemory, StorageBackendFile, StorageBackendDatabase, StorageBackendRedis}, c.Storage.Backend),
			fmt.Errorf("storage.backend must be one of memory, file, database, redis, got %q", c.Storage.Backend)},
		{c.Storage.TTL < 0, errors.New("storage.ttl cannot be negative")},
		{min(store.LoginDelay, store.SignupDelay, store.CheckoutDelay) < 0, errors.New("store delays cannot be negative")},
		{store.TaxRate < 0 || store.TaxRate > 1,
			fmt.Errorf("store.tax_rate must be between 0.0 and 1.0, got %f", store.TaxRate)},
		{!slices.Contains([]string{"strict", "lax", "none"}, strings.ToLower(cookie.SameSite)),
			fmt.Errorf("cookie.same_site must be strict, lax or none, got %q", cookie.SameSite)},
		{strings.EqualFold(cookie.SameSite, "none") && !cookie.Secure,
			errors.New("cookie.same_site=none requires cookie.secure=true")},
		{c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1,
			fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)},
	}
	if !c.IsProduction() {
		return checks
	}
	return append(checks,
		check{!cookie.Secure, errors.New("cookie.secure must be true in production")},
		check{c.Storage.Backend == StorageBackendMemory,
			errors.New("storage.backend=memory loses identities on restart and is not allowed in production")},
		check{db.Driver == "postgres" && db.SSLMode == "disable",
			errors.New("database.sslmode cannot be 'disable' in production")},
		check{slices.Contains(c.HTTP.CORSAllowOrigins, "*"),
			errors.New("http.cors_allow_origins cannot contain '*' in production")},
	)
}

// validate returns the first failed check
func (c *Config) validate() error {
	for _, ck := range c.checks() {
		if ck.failed {
			return ck.err
		}
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN is the postgres connection URL with user info escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Addr is the redis host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
