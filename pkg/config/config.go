package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings of the console and the stub API.
type Config struct {
	Addr       string
	APIURL     string
	APITimeout time.Duration
	StubAddr   string
	StubDB     string
	LogLevel   string
	Dev        bool
	SessionTTL time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:       ":5173",
		APIURL:     "http://localhost:8080",
		APITimeout: 10 * time.Second,
		StubAddr:   ":8080",
		StubDB:     "jokes.db",
		LogLevel:   "info",
		SessionTTL: 12 * time.Hour,
	}
}

// Load reads the environment on top of Default. When envFile is not empty and
// exists, its variables are loaded first without overriding the real
// environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	cfg.Addr = getEnv("JOKEADMIN_ADDR", cfg.Addr)
	cfg.APIURL = getEnv("JOKEADMIN_API_URL", cfg.APIURL)
	cfg.StubAddr = getEnv("JOKEADMIN_STUB_ADDR", cfg.StubAddr)
	cfg.StubDB = getEnv("JOKEADMIN_STUB_DB", cfg.StubDB)
	cfg.LogLevel = getEnv("JOKEADMIN_LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.APITimeout, err = getDuration("JOKEADMIN_API_TIMEOUT", cfg.APITimeout); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getDuration("JOKEADMIN_SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if raw, ok := os.LookupEnv("JOKEADMIN_DEV"); ok {
		if cfg.Dev, err = strconv.ParseBool(strings.TrimSpace(raw)); err != nil {
			return Config{}, fmt.Errorf("JOKEADMIN_DEV: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIURL) == "" {
		errs = append(errs, errors.New("api url is required"))
	}
	if c.APITimeout < 0 {
		errs = append(errs, errors.New("api timeout must not be negative"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// getEnv returns the value of key or fallback when it is unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
