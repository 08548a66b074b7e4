package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	TaxRate           float64
	BusinessOpenHour  int
	BusinessCloseHour int
	BusinessDays      []time.Weekday // empty means every day

	RedisAddr         string
	PromotionCacheTTL time.Duration
	KafkaBroker       string
	SalesTopic        string

	PublicBaseURL string // used in receipt QR codes
	ChatEndpoint  string // remote assistant; empty uses the built-in answers
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=gastro port=5432 sslmode=disable"

func Load() *Config {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] could not read .env: %v", err)
	}

	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:       getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CORSOrigins:       getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		TaxRate:           getFloat("TAX_RATE", 0.13),
		BusinessOpenHour:  getInt("BUSINESS_OPEN_HOUR", 0),
		BusinessCloseHour: getInt("BUSINESS_CLOSE_HOUR", 24),
		BusinessDays:      parseWeekdays(getEnv("BUSINESS_DAYS", "")),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		PromotionCacheTTL: getDuration("PROMOTION_CACHE_TTL", 5*time.Minute),
		KafkaBroker:       getEnv("KAFKA_BROKER", ""),
		SalesTopic:        getEnv("SALES_TOPIC", "sales"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:5173"),
		ChatEndpoint:      getEnv("CHAT_ENDPOINT", ""),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own Postgres DSN in production")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the default value")
	}
	if cfg.RedisAddr == "" {
		log.Println("[WARN] REDIS_ADDR is empty, promotion cache and live sales counters are disabled")
	}
	if cfg.KafkaBroker == "" {
		log.Println("[WARN] KAFKA_BROKER is empty, sale events will not be published")
	}

	return cfg
}

// OpenAt reports whether sales are accepted at t.
func (c *Config) OpenAt(t time.Time) bool {
	if len(c.BusinessDays) > 0 {
		open := false
		for _, d := range c.BusinessDays {
			if d == t.Weekday() {
				open = true
				break
			}
		}
		if !open {
			return false
		}
	}
	h := t.Hour()
	return h >= c.BusinessOpenHour && h < c.BusinessCloseHour
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] invalid %s (%q), using default %d", key, v, def)
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[WARN] invalid %s (%q), using default %v", key, v, def)
		return def
	}
	return f
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] invalid %s (%q), using default %s", key, v, def)
		return def
	}
	return d
}

// parseWeekdays reads "0,1,2" (0 = Sunday) into weekdays, skipping junk.
func parseWeekdays(s string) []time.Weekday {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}
