package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
// Optional backends (Redis, RabbitMQ, Elasticsearch, GCS) stay disabled while
// their address is empty.
type Config struct {
	AppName string
	Env     string // development, testing, production
	Port    string
	GinMode string

	// Reported by GET /
	ServiceName    string
	ServiceVersion string

	// Database; DBDriver is "postgres" or "memory"
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Migrations
	MigrationsDir string
	AutoMigrate   bool

	// Redis (rate limiting)
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	// Bypass the limiter for loopback and private client addresses
	RateLimitBypassPrivate bool

	// Client IP resolution. Forwarding headers are only honored from
	// TrustedProxies (comma-separated IPs or CIDRs, empty trusts none).
	// TrustedPlatform "cloudflare" reads CF-Connecting-IP.
	TrustedProxies  string
	TrustedPlatform string

	// CORS
	CORSAllowedOrigins string // comma-separated, "*" reflects any origin

	// Adds Strict-Transport-Security
	ForceHTTPS bool

	// RabbitMQ
	RabbitMQURL          string
	RabbitMQAccountQueue string

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESAccountsIndex    string

	// Google Cloud Storage (exports)
	GCSBucket              string
	GCSCredentialsJSONPath string

	// Mailgun
	MailgunDomain   string
	MailgunAPIKey   string
	MailgunSender   string
	MailSendEnabled bool

	// Debug metrics (/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	env := getenv("APP_ENV", "development")
	return &Config{
		AppName: getenv("APP_NAME", "account-service"),
		Env:     env,
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		ServiceName:    getenv("SERVICE_NAME", "Account REST API Service"),
		ServiceVersion: getenv("SERVICE_VERSION", "1.0"),

		DBDriver:      getenv("DB_DRIVER", defaultDriver(env)),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "accounts"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),
		AutoMigrate:   getbool("AUTO_MIGRATE", true),

		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            getint("REDIS_DB", 0),
		RateLimitPerMinute: getint("RATE_LIMIT_PER_MINUTE", 300),

		RateLimitBypassPrivate: getbool("RATE_LIMIT_BYPASS_PRIVATE", false),
		TrustedProxies:         getenv("TRUSTED_PROXIES", ""),
		TrustedPlatform:        getenv("TRUSTED_PLATFORM", ""),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "*"),
		ForceHTTPS:         getbool("FORCE_HTTPS", env == "production"),

		RabbitMQURL:          getenv("RABBITMQ_URL", ""),
		RabbitMQAccountQueue: getenv("RABBITMQ_ACCOUNT_QUEUE", "account_events"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESAccountsIndex:    getenv("ES_ACCOUNTS_INDEX", "accounts"),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		MailgunDomain:   getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:   getenv("MAILGUN_API_KEY", ""),
		MailgunSender:   getenv("MAILGUN_SENDER", ""),
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),
		HTTPLogEnabled:      getbool("HTTP_LOG_ENABLED", false),
	}
}

// testing runs against the in-process store unless told otherwise
func defaultDriver(env string) string {
	if env == "testing" {
		return "memory"
	}
	return "postgres"
}

// UseMemoryStore reports whether accounts live in process memory.
func (c *Config) UseMemoryStore() bool {
	return strings.EqualFold(c.DBDriver, "memory")
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// AllowAnyOrigin reports whether CORS should reflect every request origin.
func (c *Config) AllowAnyOrigin() bool {
	for _, o := range c.CORSOrigins() {
		if o == "*" {
			return true
		}
	}
	return false
}

// TrustedProxyList returns the proxies whose forwarding headers are honored.
// A nil result trusts none.
func (c *Config) TrustedProxyList() []string {
	if l := splitList(c.TrustedProxies); len(l) > 0 {
		return l
	}
	return nil
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
