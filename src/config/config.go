package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	PushBackendLog  = "log"
	PushBackendFCM  = "fcm"
	PushBackendAMQP = "amqp"
)

type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string

	RunMigrations bool
	ReadOnly      bool

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RateLimitPerMinute             int
	TransactionsRateLimitPerMinute int
	CORSAllowedOrigins             []string

	PushBackend string
	Firebase    FirebaseConfig
	AMQP        AMQPConfig
}

// FirebaseConfig holds the service-account fields, one env var each.
type FirebaseConfig struct {
	ProjectID         string
	PrivateKeyID      string
	PrivateKey        string
	ClientEmail       string
	ClientID          string
	ClientX509CertURL string
}

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

func Load() (Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		PushBackend: strings.ToLower(getEnv("PUSH_BACKEND", PushBackendLog)),
		Firebase: FirebaseConfig{
			ProjectID:         getEnv("FIREBASE_PROJECT_ID", ""),
			PrivateKeyID:      getEnv("FIREBASE_PRIVATE_KEY_ID", ""),
			PrivateKey:        getEnv("FIREBASE_PRIVATE_KEY", ""),
			ClientEmail:       getEnv("FIREBASE_CLIENT_EMAIL", ""),
			ClientID:          getEnv("FIREBASE_CLIENT_ID", ""),
			ClientX509CertURL: getEnv("FIREBASE_CLIENT_X509_CERT_URL", ""),
		},
		AMQP: AMQPConfig{
			URL:        getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "ledgerly.push"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "push"),
		},
	}

	var errs []error
	var err error
	if cfg.RunMigrations, err = getEnvBool("RUN_MIGRATIONS", true); err != nil {
		errs = append(errs, err)
	}
	if cfg.ReadOnly, err = getEnvBool("READ_ONLY_MODE", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.AccessTokenTTL, err = getEnvDuration("ACCESS_TOKEN_TTL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.RefreshTokenTTL, err = getEnvDuration("REFRESH_TOKEN_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		errs = append(errs, err)
	}
	if cfg.TransactionsRateLimitPerMinute, err = getEnvInt("TRANSACTIONS_RATE_LIMIT_PER_MINUTE", 100); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}

	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	} else if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Port))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.RateLimitPerMinute <= 0 || c.TransactionsRateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}

	switch c.PushBackend {
	case PushBackendLog:
	case PushBackendFCM:
		if c.Firebase.ProjectID == "" || c.Firebase.PrivateKey == "" || c.Firebase.ClientEmail == "" {
			errs = append(errs, errors.New("PUSH_BACKEND=fcm requires FIREBASE_PROJECT_ID, FIREBASE_PRIVATE_KEY and FIREBASE_CLIENT_EMAIL"))
		}
	case PushBackendAMQP:
		if c.AMQP.URL == "" {
			errs = append(errs, errors.New("PUSH_BACKEND=amqp requires AMQP_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("PUSH_BACKEND must be one of log, fcm, amqp, got %q", c.PushBackend))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("%s must be a duration like 5m: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
