package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Checkout  CheckoutConfig
	Wallet    WalletConfig
	Paystack  PaystackConfig
	OPay      OPayConfig
	Storage   StorageConfig
	Breaker   BreakerConfig
	Webhook   WebhookConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string // public URL used to build default callback URLs
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT verification settings. Tokens are issued by the identity service.
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	// Per-client fixed window limit for customer routes; webhooks are exempt
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only, disable in prod for security)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
	// Continuous profiling
	Profiling ProfilingConfig
}

// ProfilingConfig holds Pyroscope settings. With tracing on as well, CPU
// samples are linked to the checkout, webhook and transfer spans.
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://localhost:4040"
	ApplicationName   string // defaults to the telemetry service name
	BasicAuthUser     string
	BasicAuthPassword string
	ProfileTypes      []string // pyroscope names, e.g. "cpu", "inuse_space"
}

// CheckoutConfig holds checkout pricing and lifecycle settings
type CheckoutConfig struct {
	ExpiryWindow   time.Duration   // active orders older than this are cancelled on next checkout
	InvoiceDueIn   time.Duration   // invoice due date offset
	Currency       string          // ISO 4217
	TaxRate        decimal.Decimal // fraction of subtotal, e.g. 0.075
	FlatShipping   decimal.Decimal // flat shipping fee per order
	CallbackURL    string          // default return URL after hosted payment
	DefaultGateway string          // paystack, opay
	LockTTL        time.Duration   // per-owner checkout lock TTL
	GatewayTimeout time.Duration   // upper bound for a single gateway call
}

// WalletConfig holds wallet settings
type WalletConfig struct {
	Currency    string
	MinDeposit  decimal.Decimal
	Gateway     string // gateway used for deposits
	CallbackURL string
}

// PaystackConfig holds Paystack-style gateway credentials
type PaystackConfig struct {
	Enabled       bool
	BaseURL       string
	SecretKey     string
	WebhookSecret string // defaults to SecretKey, Paystack signs webhooks with it
	Timeout       time.Duration
}

// OPayConfig holds OPay-style gateway credentials
type OPayConfig struct {
	Enabled       bool
	BaseURL       string
	MerchantID    string
	PublicKey     string
	SecretKey     string
	WebhookSecret string
	Country       string
	Timeout       time.Duration
}

// StorageConfig holds S3-compatible storage settings for the webhook archive
type StorageConfig struct {
	Enabled      bool
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Prefix       string
	UsePathStyle bool
}

// BreakerConfig holds circuit breaker settings for gateway calls
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// WebhookConfig holds webhook delivery settings
type WebhookConfig struct {
	MaxBodySize    int64
	IdempotencyTTL time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with APP_ prefix (e.g., APP_PAYSTACK_SECRET_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := fromViper(v)

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			BaseURL: v.GetString("app.base_url"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			Profiling: ProfilingConfig{
				Enabled:           v.GetBool("telemetry.profiling.enabled"),
				ServerAddress:     v.GetString("telemetry.profiling.server_address"),
				ApplicationName:   v.GetString("telemetry.profiling.application_name"),
				BasicAuthUser:     v.GetString("telemetry.profiling.basic_auth_user"),
				BasicAuthPassword: v.GetString("telemetry.profiling.basic_auth_password"),
				ProfileTypes:      v.GetStringSlice("telemetry.profiling.profile_types"),
			},
		},
		Checkout: CheckoutConfig{
			ExpiryWindow:   v.GetDuration("checkout.expiry_window"),
			InvoiceDueIn:   v.GetDuration("checkout.invoice_due_in"),
			Currency:       v.GetString("checkout.currency"),
			TaxRate:        decimalOrZero(v.GetString("checkout.tax_rate")),
			FlatShipping:   decimalOrZero(v.GetString("checkout.flat_shipping")),
			CallbackURL:    v.GetString("checkout.callback_url"),
			DefaultGateway: v.GetString("checkout.default_gateway"),
			LockTTL:        v.GetDuration("checkout.lock_ttl"),
			GatewayTimeout: v.GetDuration("checkout.gateway_timeout"),
		},
		Wallet: WalletConfig{
			Currency:    v.GetString("wallet.currency"),
			MinDeposit:  decimalOrZero(v.GetString("wallet.min_deposit")),
			Gateway:     v.GetString("wallet.gateway"),
			CallbackURL: v.GetString("wallet.callback_url"),
		},
		Paystack: PaystackConfig{
			Enabled:       v.GetBool("paystack.enabled"),
			BaseURL:       v.GetString("paystack.base_url"),
			SecretKey:     v.GetString("paystack.secret_key"),
			WebhookSecret: v.GetString("paystack.webhook_secret"),
			Timeout:       v.GetDuration("paystack.timeout"),
		},
		OPay: OPayConfig{
			Enabled:       v.GetBool("opay.enabled"),
			BaseURL:       v.GetString("opay.base_url"),
			MerchantID:    v.GetString("opay.merchant_id"),
			PublicKey:     v.GetString("opay.public_key"),
			SecretKey:     v.GetString("opay.secret_key"),
			WebhookSecret: v.GetString("opay.webhook_secret"),
			Country:       v.GetString("opay.country"),
			Timeout:       v.GetDuration("opay.timeout"),
		},
		Storage: StorageConfig{
			Enabled:      v.GetBool("storage.enabled"),
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			Prefix:       v.GetString("storage.prefix"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
		},
		Breaker: BreakerConfig{
			MaxRequests:         v.GetUint32("breaker.max_requests"),
			Interval:            v.GetDuration("breaker.interval"),
			Timeout:             v.GetDuration("breaker.timeout"),
			ConsecutiveFailures: v.GetUint32("breaker.consecutive_failures"),
		},
		Webhook: WebhookConfig{
			MaxBodySize:    v.GetInt64("webhook.max_body_size"),
			IdempotencyTTL: v.GetDuration("webhook.idempotency_ttl"),
		},
	}
}

func decimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "checkout-service"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "shop"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "shop.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "identity-service"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 45 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 120
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Guest-ID"}
	}

	// Telemetry defaults
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0 // 100% in development
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.Profiling.ServerAddress == "" {
		cfg.Telemetry.Profiling.ServerAddress = "http://localhost:4040"
	}
	if cfg.Telemetry.Profiling.ApplicationName == "" {
		cfg.Telemetry.Profiling.ApplicationName = cfg.Telemetry.ServiceName
	}

	if cfg.Checkout.ExpiryWindow == 0 {
		cfg.Checkout.ExpiryWindow = 24 * time.Hour
	}
	if cfg.Checkout.InvoiceDueIn == 0 {
		cfg.Checkout.InvoiceDueIn = 7 * 24 * time.Hour
	}
	if cfg.Checkout.Currency == "" {
		cfg.Checkout.Currency = "NGN"
	}
	if cfg.Checkout.CallbackURL == "" {
		cfg.Checkout.CallbackURL = strings.TrimRight(cfg.App.BaseURL, "/") + "/api/v1/checkout/callback"
	}
	if cfg.Checkout.DefaultGateway == "" {
		cfg.Checkout.DefaultGateway = "paystack"
	}
	if cfg.Checkout.LockTTL == 0 {
		cfg.Checkout.LockTTL = 30 * time.Second
	}
	if cfg.Checkout.GatewayTimeout == 0 {
		cfg.Checkout.GatewayTimeout = 20 * time.Second
	}

	if cfg.Wallet.Currency == "" {
		cfg.Wallet.Currency = cfg.Checkout.Currency
	}
	if cfg.Wallet.MinDeposit.IsZero() {
		cfg.Wallet.MinDeposit = decimal.NewFromInt(100)
	}
	if cfg.Wallet.Gateway == "" {
		cfg.Wallet.Gateway = "paystack"
	}
	if cfg.Wallet.CallbackURL == "" {
		cfg.Wallet.CallbackURL = strings.TrimRight(cfg.App.BaseURL, "/") + "/api/v1/wallet/callback"
	}

	if cfg.Paystack.BaseURL == "" {
		cfg.Paystack.BaseURL = "https://api.paystack.co"
	}
	if cfg.Paystack.WebhookSecret == "" {
		cfg.Paystack.WebhookSecret = cfg.Paystack.SecretKey
	}
	if cfg.Paystack.Timeout == 0 {
		cfg.Paystack.Timeout = 30 * time.Second
	}
	if cfg.OPay.BaseURL == "" {
		cfg.OPay.BaseURL = "https://liveapi.opaycheckout.com"
	}
	if cfg.OPay.Country == "" {
		cfg.OPay.Country = "NG"
	}
	if cfg.OPay.Timeout == 0 {
		cfg.OPay.Timeout = 30 * time.Second
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "webhooks"
	}

	if cfg.Breaker.MaxRequests == 0 {
		cfg.Breaker.MaxRequests = 1
	}
	if cfg.Breaker.Interval == 0 {
		cfg.Breaker.Interval = time.Minute
	}
	if cfg.Breaker.Timeout == 0 {
		cfg.Breaker.Timeout = 30 * time.Second
	}
	if cfg.Breaker.ConsecutiveFailures == 0 {
		cfg.Breaker.ConsecutiveFailures = 5
	}

	if cfg.Webhook.MaxBodySize == 0 {
		cfg.Webhook.MaxBodySize = 256 << 10 // 256KB
	}
	if cfg.Webhook.IdempotencyTTL == 0 {
		cfg.Webhook.IdempotencyTTL = 72 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Checkout.TaxRate.IsNegative() || c.Checkout.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("checkout.tax_rate must be in [0, 1), got %s", c.Checkout.TaxRate)
	}
	if c.Checkout.FlatShipping.IsNegative() {
		return fmt.Errorf("checkout.flat_shipping cannot be negative")
	}
	if !c.Wallet.MinDeposit.IsPositive() {
		return fmt.Errorf("wallet.min_deposit must be positive")
	}
	if !c.Paystack.Enabled && !c.OPay.Enabled && c.App.Env == "production" {
		return fmt.Errorf("at least one payment gateway must be enabled in production")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver != "postgres" {
			return fmt.Errorf("database.driver must be postgres in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Paystack.Enabled && c.Paystack.SecretKey == "" {
			return fmt.Errorf("paystack.secret_key is required in production")
		}
		if c.OPay.Enabled && (c.OPay.SecretKey == "" || c.OPay.WebhookSecret == "") {
			return fmt.Errorf("opay.secret_key and opay.webhook_secret are required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		// Database tracing: full SQL logging is a security risk in production
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	// Validate telemetry configuration (all environments)
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
