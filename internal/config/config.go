package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Logging
	LogLevel  string
	LogPretty bool
	LogFile   string // optional extra log destination

	// Datastore configuration (history backend)
	DatastoreType string // "file", "memory", "redis", or "mysql"
	DatastorePath string // path to the history file for the "file" backend

	// MySQL configuration
	MySQLDSN string // Data Source Name

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Upstream providers
	IPLookupURL     string        // network-info endpoint, called with ?ip=
	DomainLookupURL string        // WHOIS-backed endpoint, called with ?domain=
	MyIPURL         string        // fixed self-lookup endpoint, no parameters
	APIKey          string        // bearer token for the lookup and WHOIS endpoints
	MyIPAPIKey      string        // bearer token for MyIPURL, usually empty
	UpstreamTimeout time.Duration // 0 keeps the transport default

	// Domain lookup
	DomainFallbackPolicy string        // "fabricate" or "surface-error"
	SyntheticDelay       time.Duration // artificial delay before a synthetic record

	// Environment inspection for CLI self-lookups
	UserAgent string
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port: getEnv("PORT", "3000"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
		LogFile:   getEnv("LOG_FILE", ""),

		DatastoreType: strings.ToLower(getEnv("DATASTORE_TYPE", "file")),
		DatastorePath: getEnv("DATASTORE_PATH", "./data/history.csv"),

		MySQLDSN: getEnv("MYSQL_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		IPLookupURL:     getEnv("IP_LOOKUP_URL", "http://localhost:54321/functions/v1/ip-lookup"),
		DomainLookupURL: getEnv("DOMAIN_LOOKUP_URL", "http://localhost:54321/functions/v1/domain-lookup"),
		MyIPURL:         getEnv("MY_IP_URL", "https://ipapi.co/json/"),
		APIKey:          getEnv("API_KEY", ""),
		MyIPAPIKey:      getEnv("MY_IP_API_KEY", ""),
		UpstreamTimeout: time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT", 0)) * time.Second,

		DomainFallbackPolicy: strings.ToLower(getEnv("DOMAIN_FALLBACK_POLICY", "fabricate")),
		SyntheticDelay:       time.Duration(getEnvAsInt("SYNTHETIC_DELAY_MS", 800)) * time.Millisecond,

		UserAgent: getEnv("USER_AGENT", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean
// Accepts anything strconv.ParseBool does; returns default otherwise
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
