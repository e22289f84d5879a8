package config

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataDir string
	LogDir  string

	BaseURL            string
	LandingURL         string
	ListingURLTemplate string

	RegionWaitTimeout  time.Duration
	ListingWaitTimeout time.Duration
	DetailWaitTimeout  time.Duration
	ReviewWaitTimeout  time.Duration
	PageLoadTimeout    time.Duration

	MaxRetries      int
	RateLimitMs     int
	ReviewWorkers   int
	CheckpointEvery int

	Headless  bool
	ChromeBin string
	UserAgent string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	MemcacheAddr string
	PageCacheTTL time.Duration

	Selectors Selectors
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataDir: getEnv("DATA_DIR", "data"),
		LogDir:  getEnv("LOG_DIR", "logs"),

		BaseURL:    getEnv("HITCHED_BASE_URL", "https://www.hitched.co.uk"),
		LandingURL: getEnv("HITCHED_LANDING_URL", "https://www.hitched.co.uk/wedding-venues/"),
		ListingURLTemplate: getEnv("HITCHED_LISTING_URL_TEMPLATE",
			"https://www.hitched.co.uk/busc.php?id_grupo=1&id_region=1001&showmode=list"+
				"&priceType=menu&userSearch=1&showNearByListing=0&isNearby=0&NumPage=%d"),

		RegionWaitTimeout:  getEnvDuration("REGION_WAIT_SECONDS", 30*time.Second),
		ListingWaitTimeout: getEnvDuration("LISTING_WAIT_SECONDS", 15*time.Second),
		DetailWaitTimeout:  getEnvDuration("DETAIL_WAIT_SECONDS", 15*time.Second),
		ReviewWaitTimeout:  getEnvDuration("REVIEW_WAIT_SECONDS", 5*time.Second),
		PageLoadTimeout:    getEnvDuration("PAGE_LOAD_SECONDS", 60*time.Second),

		MaxRetries:      getEnvInt("MAX_RETRIES", 2),
		RateLimitMs:     getEnvInt("RATE_LIMIT_MS", 1000),
		ReviewWorkers:   getEnvInt("REVIEW_WORKERS", defaultWorkers()),
		CheckpointEvery: getEnvInt("CHECKPOINT_EVERY", 10),

		Headless:  getEnvBool("HEADLESS", true),
		ChromeBin: getEnv("CHROME_BIN", ""),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) "+
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "venues_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "hitched"),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 10000),

		MemcacheAddr: getEnv("MEMCACHE_ADDR", ""),
		PageCacheTTL: getEnvDuration("PAGE_CACHE_TTL_SECONDS", 6*time.Hour),

		Selectors: DefaultSelectors(),
	}
}

// Validate checks the values that would otherwise fail deep inside a crawl.
func (c *Config) Validate() error {
	var problems []string

	if c.DataDir == "" {
		problems = append(problems, "DATA_DIR is empty")
	}
	if c.LogDir == "" {
		problems = append(problems, "LOG_DIR is empty")
	}
	if !strings.HasPrefix(c.LandingURL, "http") {
		problems = append(problems, "HITCHED_LANDING_URL must be an absolute URL")
	}
	if !strings.Contains(c.ListingURLTemplate, "%d") {
		problems = append(problems, "HITCHED_LISTING_URL_TEMPLATE must contain %d")
	}
	for name, d := range map[string]time.Duration{
		"REGION_WAIT_SECONDS":  c.RegionWaitTimeout,
		"LISTING_WAIT_SECONDS": c.ListingWaitTimeout,
		"DETAIL_WAIT_SECONDS":  c.DetailWaitTimeout,
		"REVIEW_WAIT_SECONDS":  c.ReviewWaitTimeout,
		"PAGE_LOAD_SECONDS":    c.PageLoadTimeout,
	} {
		if d <= 0 {
			problems = append(problems, name+" must be positive")
		}
	}
	if c.ReviewWorkers < 1 {
		problems = append(problems, "REVIEW_WORKERS must be at least 1")
	}
	if c.CheckpointEvery < 1 {
		problems = append(problems, "CHECKPOINT_EVERY must be at least 1")
	}
	if c.MaxRetries < 1 {
		problems = append(problems, "MAX_RETRIES must be at least 1")
	}
	if err := c.Selectors.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	sort.Strings(problems)
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Review workers default to three quarters of the CPUs, at least one.
func defaultWorkers() int {
	n := runtime.NumCPU() * 3 / 4
	if n < 1 {
		return 1
	}
	return n
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration reads a whole number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
