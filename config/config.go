package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "rtsp_livestream"
	DefaultPort         = 5000
	DefaultLogoDir      = "./.logos"
	DefaultMaxLogoBytes = 5 << 20
)

type Config struct {
	MongoURI     string
	MongoURISet  bool
	DatabaseName string
	Port         int
	LogoDir      string
	MaxLogoBytes int64

	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration

	Debug bool
}

// Load reads envFile into the environment, without overriding variables that
// are already set, and builds the Config from the environment. A missing
// envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		MongoURI:          getEnv("MONGO_URI", ""),
		DatabaseName:      getEnv("DATABASE_NAME", DefaultDatabaseName),
		Port:              getEnvAsInt("PORT", DefaultPort),
		LogoDir:           getEnv("LOGO_DIR", DefaultLogoDir),
		MaxLogoBytes:      int64(getEnvAsInt("MAX_LOGO_BYTES", DefaultMaxLogoBytes)),
		CORSOrigins:       getEnvAsList("CORS_ORIGINS", []string{"*"}),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		Debug:             getEnvAsBool("DEBUG", false),
	}

	// The process still starts without MONGO_URI so the health check can
	// report the database as disconnected.
	cfg.MongoURISet = cfg.MongoURI != ""
	if !cfg.MongoURISet {
		cfg.MongoURI = DefaultMongoURI
	}

	return cfg, nil
}

// RedactedMongoURI returns the MongoDB URI with any password masked, suitable
// for logging.
func (c *Config) RedactedMongoURI() string {
	u, err := url.Parse(c.MongoURI)
	if err != nil {
		return "<unparseable uri>"
	}
	return u.Redacted()
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	var values []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
