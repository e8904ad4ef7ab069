package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Realtime backends supported by the agent.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendFirebase = "firebase"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress     string
	BackendAddress string
	BackendTimeout time.Duration
	LogLevel       string
	CORSOrigins    []string

	RealtimeBackend string
	RedisAddress    string
	RedisPassword   string
	RedisDB         int
	DatabaseURI     string

	FirebaseCredentialsFile string
	FirebaseDatabaseURL     string
	FirebaseProjectID       string
	FirebasePollInterval    time.Duration

	JWTSecret    string
	TokenTTL     time.Duration
	InsecureAuth bool

	LocationInterval      time.Duration
	OrderLocationInterval time.Duration
	PopupTimeout          time.Duration
	ShutdownTimeout       time.Duration
}

const (
	defaultRunAddress            = ":8080"
	defaultBackendTimeout        = 10 * time.Second
	defaultLogLevel              = "info"
	defaultRealtimeBackend       = BackendMemory
	defaultRedisAddress          = "localhost:6379"
	defaultFirebasePollInterval  = 2 * time.Second
	defaultJWTSecret             = "change-me-in-production"
	defaultTokenTTL              = 24 * time.Hour
	defaultLocationInterval      = 10 * time.Second
	defaultOrderLocationInterval = 5 * time.Second
	defaultPopupTimeout          = 10 * time.Second
	defaultShutdownTimeout       = 10 * time.Second
	defaultEnvFile               = ".env"

	// MinOrderLocationInterval bounds the fine sampler.
	MinOrderLocationInterval = 3 * time.Second
)

// Load parses configuration from flags, the environment and an optional .env file.
func Load() (*Config, error) {
	path := defaultEnvFile
	if v, ok := os.LookupEnv("ENV_FILE"); ok && v != "" {
		path = v
	}
	fileEnv, err := readEnvFile(path)
	if err != nil {
		return nil, err
	}
	return load(os.Args[1:], layered(os.LookupEnv, fileEnv))
}

type envLookup func(string) (string, bool)

func readEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return values, nil
}

// layered consults the process environment before values from the env file.
func layered(primary envLookup, fallback map[string]string) envLookup {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok {
			return v, true
		}
		v, ok := fallback[key]
		return v, ok
	}
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:              getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		BackendAddress:          getString(lookup, "BACKEND_ADDRESS", ""),
		BackendTimeout:          getDuration(lookup, "BACKEND_TIMEOUT", defaultBackendTimeout),
		LogLevel:                getString(lookup, "LOG_LEVEL", defaultLogLevel),
		CORSOrigins:             splitList(getString(lookup, "CORS_ORIGINS", "")),
		RealtimeBackend:         getString(lookup, "REALTIME_BACKEND", defaultRealtimeBackend),
		RedisAddress:            getString(lookup, "REDIS_ADDRESS", defaultRedisAddress),
		RedisPassword:           getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:                 getInt(lookup, "REDIS_DB", 0),
		DatabaseURI:             getString(lookup, "DATABASE_URI", ""),
		FirebaseCredentialsFile: getString(lookup, "FIREBASE_CREDENTIALS_FILE", ""),
		FirebaseDatabaseURL:     getString(lookup, "FIREBASE_DATABASE_URL", ""),
		FirebaseProjectID:       getString(lookup, "FIREBASE_PROJECT_ID", ""),
		FirebasePollInterval:    getDuration(lookup, "FIREBASE_POLL_INTERVAL", defaultFirebasePollInterval),
		JWTSecret:               getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:                getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		InsecureAuth:            getBool(lookup, "AUTH_INSECURE", false),
		LocationInterval:        getDuration(lookup, "LOCATION_INTERVAL", defaultLocationInterval),
		OrderLocationInterval:   getDuration(lookup, "ORDER_LOCATION_INTERVAL", defaultOrderLocationInterval),
		PopupTimeout:            getDuration(lookup, "POPUP_TIMEOUT", defaultPopupTimeout),
		ShutdownTimeout:         getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("courieragent", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		locationIntervalStr = cfg.LocationInterval.String()
		orderIntervalStr    = cfg.OrderLocationInterval.String()
		shutdownTimeoutStr  = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.BackendAddress, "b", cfg.BackendAddress, "Platform REST backend base URL")
	fs.StringVar(&cfg.RealtimeBackend, "realtime", cfg.RealtimeBackend, "Realtime store: memory, redis, postgres or firebase")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN for the postgres realtime store")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for the redis realtime store")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing session tokens")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.BoolVar(&cfg.InsecureAuth, "insecure-auth", cfg.InsecureAuth, "Accept identity tokens without verification")
	fs.StringVar(&locationIntervalStr, "location-interval", locationIntervalStr, "Interval of driver presence updates")
	fs.StringVar(&orderIntervalStr, "order-location-interval", orderIntervalStr, "Interval of order tracking location updates")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.LocationInterval, err = time.ParseDuration(locationIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid location interval: %w", err)
	}

	if cfg.OrderLocationInterval, err = time.ParseDuration(orderIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid order location interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	normalize(cfg)

	if cfg.BackendAddress == "" {
		return nil, fmt.Errorf("backend address must be provided")
	}

	switch cfg.RealtimeBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURI == "" {
			return nil, fmt.Errorf("database URI must be provided for the postgres realtime store")
		}
	case BackendFirebase:
		if cfg.FirebaseDatabaseURL == "" {
			return nil, fmt.Errorf("firebase database URL must be provided for the firebase realtime store")
		}
	default:
		return nil, fmt.Errorf("unknown realtime backend %q", cfg.RealtimeBackend)
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.RealtimeBackend = strings.ToLower(strings.TrimSpace(cfg.RealtimeBackend))

	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = defaultBackendTimeout
	}

	if cfg.LocationInterval <= 0 {
		cfg.LocationInterval = defaultLocationInterval
	}

	if cfg.OrderLocationInterval <= 0 {
		cfg.OrderLocationInterval = defaultOrderLocationInterval
	}
	if cfg.OrderLocationInterval < MinOrderLocationInterval {
		cfg.OrderLocationInterval = MinOrderLocationInterval
	}

	if cfg.FirebasePollInterval <= 0 {
		cfg.FirebasePollInterval = defaultFirebasePollInterval
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.PopupTimeout <= 0 {
		cfg.PopupTimeout = defaultPopupTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
