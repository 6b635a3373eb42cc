package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// API key names a source may require.
const (
	KeyAlphaVantage = "ALPHA_VANTAGE_API_KEY"
	KeyFRED         = "FRED_API_KEY"
	KeyEIA          = "EIA_API_KEY"
	KeyCoinGecko    = "COINGECKO_API_KEY"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// Storage
	Storage     string
	DatabaseURL string
	DBMigrate   bool
	// Pipelines
	PipelinesFile string
	SnapshotDir   string
	Strict        bool
	ScheduleEvery time.Duration
	// Upstreams; Provider "fake" swaps every source for a synthetic one
	Provider         string
	RequestTimeout   time.Duration
	APIKeys          map[string]string
	AlphaVantageBase string
	YahooBase        string
	EIABase          string
	CoinGeckoBase    string
	FREDBase         string
	// Run lock
	LockBackend   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration
	// API
	Port string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

// LoadDotEnv reads a local .env file if present. Variables already set in
// the environment win over the file.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:            getEnv("ENV", "local"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Storage:        getEnv("STORAGE", "pg"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBMigrate:      boolDef(getEnv("DB_MIGRATE", "false"), false),
		PipelinesFile:  getEnv("PIPELINES_FILE", ""),
		SnapshotDir:    getEnv("SNAPSHOT_DIR", "data"),
		Strict:         boolDef(getEnv("CONFIG_STRICT", "true"), true),
		ScheduleEvery:  time.Duration(atoiDef(getEnv("SCHEDULE_EVERY_MS", "0"), 0)) * time.Millisecond,
		Provider:       getEnv("PROVIDER", "live"),
		RequestTimeout: time.Duration(atoiDef(getEnv("REQUEST_TIMEOUT_MS", "30000"), 30000)) * time.Millisecond,
		APIKeys: map[string]string{
			KeyAlphaVantage: os.Getenv(KeyAlphaVantage),
			KeyFRED:         os.Getenv(KeyFRED),
			KeyEIA:          os.Getenv(KeyEIA),
			KeyCoinGecko:    os.Getenv(KeyCoinGecko),
		},
		AlphaVantageBase: getEnv("ALPHA_VANTAGE_BASE", "https://www.alphavantage.co"),
		YahooBase:        getEnv("YAHOO_BASE", "https://query1.finance.yahoo.com"),
		EIABase:          getEnv("EIA_BASE", "https://api.eia.gov"),
		CoinGeckoBase:    getEnv("COINGECKO_BASE", "https://api.coingecko.com"),
		FREDBase:         getEnv("FRED_BASE", "https://api.stlouisfed.org"),
		LockBackend:      getEnv("LOCK_BACKEND", "none"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          atoiDef(getEnv("REDIS_DB", "0"), 0),
		LockTTL:          time.Duration(atoiDef(getEnv("LOCK_TTL_MS", "3600000"), 3600000)) * time.Millisecond,
		Port:             getEnv("PORT", "8080"),
	}
}

// APIKey returns the configured value for name, or "".
func (c Config) APIKey(name string) string { return c.APIKeys[name] }

// MissingKeys lists the names among keys that have no value.
func (c Config) MissingKeys(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if strings.TrimSpace(c.APIKeys[k]) == "" {
			out = append(out, k)
		}
	}
	return out
}
