package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	Catalog      CatalogConfig
	Search       SearchConfig
	Quotation    QuotationConfig
	Company      CompanyConfig
	Session      SessionConfig
	DB           DBConfig
	Redis        RedisConfig
	Metrics      MetricsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv parses the environment without the cross-field checks of Load.
// Tools that only touch one dependency, like migrations, validate what they use.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case SourceXLSX, SourceCSV:
		if strings.TrimSpace(c.Catalog.Path) == "" {
			return fmt.Errorf("%s is required for source %q", EnvCatalogPath, c.Catalog.Source)
		}
	case SourceDB:
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvCatalogSource, c.Catalog.Source)
	}

	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s is required when %s=redis", EnvRedisURL, EnvSessionStore)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvSessionStore, c.Session.Store)
	}

	if c.FeatureFlags.AutoMigrate {
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"QUOTECATALOG_APP_ENV" required:"true"`
	Port         string `envconfig:"QUOTECATALOG_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"QUOTECATALOG_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"QUOTECATALOG_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"QUOTECATALOG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// HTTPConfig covers the API server surface.
type HTTPConfig struct {
	CORSOrigins       []string      `envconfig:"QUOTECATALOG_HTTP_CORS_ORIGINS" default:"http://localhost:3000"`
	ReadHeaderTimeout time.Duration `envconfig:"QUOTECATALOG_HTTP_READ_HEADER_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `envconfig:"QUOTECATALOG_HTTP_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout   time.Duration `envconfig:"QUOTECATALOG_HTTP_SHUTDOWN_TIMEOUT" default:"15s"`

	// Per-IP limits for the quotation and document endpoints. Zero disables.
	RateLimitWindow time.Duration `envconfig:"QUOTECATALOG_HTTP_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerIP  int           `envconfig:"QUOTECATALOG_HTTP_RATE_LIMIT_PER_IP" default:"30"`
}

// CatalogConfig selects where the price list comes from and how its columns map.
type CatalogConfig struct {
	Source          string        `envconfig:"QUOTECATALOG_CATALOG_SOURCE" default:"xlsx"`
	Path            string        `envconfig:"QUOTECATALOG_CATALOG_PATH"`
	Sheet           string        `envconfig:"QUOTECATALOG_CATALOG_SHEET"`
	Profile         string        `envconfig:"QUOTECATALOG_CATALOG_PROFILE" default:"maderas"`
	ProfilesFile    string        `envconfig:"QUOTECATALOG_CATALOG_PROFILES_FILE"`
	Name            string        `envconfig:"QUOTECATALOG_CATALOG_NAME"`
	RequireNonEmpty bool          `envconfig:"QUOTECATALOG_CATALOG_REQUIRE_NON_EMPTY" default:"true"`
	ReloadInterval  time.Duration `envconfig:"QUOTECATALOG_CATALOG_RELOAD_INTERVAL" default:"0s"`
}

// CatalogName is the key used for SQL-backed price lists. Defaults to the profile name.
func (c CatalogConfig) CatalogName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return c.Profile
}

type SearchConfig struct {
	DefaultLimit int `envconfig:"QUOTECATALOG_SEARCH_DEFAULT_LIMIT" default:"10"`
	MaxLimit     int `envconfig:"QUOTECATALOG_SEARCH_MAX_LIMIT" default:"200"`
}

type QuotationConfig struct {
	MaxDiscountPercent float64 `envconfig:"QUOTECATALOG_QUOTATION_MAX_DISCOUNT" default:"50"`
	ValidityDays       int     `envconfig:"QUOTECATALOG_QUOTATION_VALIDITY_DAYS" default:"30"`
	IDSuffix           string  `envconfig:"QUOTECATALOG_QUOTATION_ID_SUFFIX"`
	// Terms overrides the general conditions. Entries are separated by "|".
	Terms string `envconfig:"QUOTECATALOG_QUOTATION_TERMS"`
	// Signatures names the signature lines printed at the end, "|" separated.
	Signatures string `envconfig:"QUOTECATALOG_QUOTATION_SIGNATURES"`
}

// TermList splits Terms into trimmed, non-empty entries.
func (q QuotationConfig) TermList() []string {
	return splitList(q.Terms)
}

func (q QuotationConfig) SignatureList() []string {
	return splitList(q.Signatures)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type CompanyConfig struct {
	Name     string `envconfig:"QUOTECATALOG_COMPANY_NAME"`
	TaxID    string `envconfig:"QUOTECATALOG_COMPANY_TAX_ID"`
	Address  string `envconfig:"QUOTECATALOG_COMPANY_ADDRESS"`
	Phone    string `envconfig:"QUOTECATALOG_COMPANY_PHONE"`
	City     string `envconfig:"QUOTECATALOG_COMPANY_CITY"`
	Email    string `envconfig:"QUOTECATALOG_COMPANY_EMAIL"`
	LogoPath string `envconfig:"QUOTECATALOG_COMPANY_LOGO_PATH"`
}

type SessionConfig struct {
	Store string        `envconfig:"QUOTECATALOG_SESSION_STORE" default:"memory"`
	TTL   time.Duration `envconfig:"QUOTECATALOG_SESSION_TTL" default:"24h"`
}

type DBConfig struct {
	DSN    string `envconfig:"QUOTECATALOG_DB_DSN"`
	Driver string `envconfig:"QUOTECATALOG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUOTECATALOG_DB_HOST"`
	LegacyPort     int    `envconfig:"QUOTECATALOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUOTECATALOG_DB_USER"`
	LegacyPassword string `envconfig:"QUOTECATALOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUOTECATALOG_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUOTECATALOG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUOTECATALOG_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"QUOTECATALOG_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTECATALOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUOTECATALOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"QUOTECATALOG_REDIS_URL"`
	Address      string        `envconfig:"QUOTECATALOG_REDIS_ADDR"`
	Password     string        `envconfig:"QUOTECATALOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUOTECATALOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUOTECATALOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTECATALOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTECATALOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTECATALOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUOTECATALOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"QUOTECATALOG_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"QUOTECATALOG_METRICS_PATH" default:"/metrics"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"QUOTECATALOG_AUTO_MIGRATE" default:"false"`
}

// EnsureDSN builds the DSN from the legacy parts when it is not set directly.
func (db *DBConfig) EnsureDSN() error {
	return db.ensureDSN()
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
