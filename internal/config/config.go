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
	ServiceName string
	Env         string
	LogLevel    string

	HTTPAddr string

	DBDriver    string
	DatabaseURL string

	JWTSecret []byte

	PasswordHasher string
	BcryptCost     int

	RevocationBackend string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int

	KafkaBrokers []string
	KafkaTopic   string

	CORSOrigins     []string
	RateLimitMax    int
	RateLimitWindow time.Duration
	CookieSecure    bool

	CleanupInterval time.Duration
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	env := EnvDefault("APP_ENV", "development")

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "auth"),
		Env:         env,
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		HTTPAddr: EnvDefault("AUTH_ADDR", ":3000"),

		DBDriver:    EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET_KEY")),

		PasswordHasher: EnvDefault("PASSWORD_HASHER", "bcrypt"),
		BcryptCost:     EnvIntDefault("BCRYPT_COST", 10),

		RevocationBackend: EnvDefault("REVOCATION_BACKEND", "db"),
		RedisAddr:         EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "user_events"),

		CORSOrigins:     CSV(EnvDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		RateLimitMax:    EnvIntDefault("RATE_LIMIT_MAX", 100),
		RateLimitWindow: EnvDurationDefault("RATE_LIMIT_WINDOW", 15*time.Minute),
		CookieSecure:    EnvBoolDefault("COOKIE_SECURE", env == "production"),

		CleanupInterval: EnvDurationDefault("CLEANUP_INTERVAL", 0),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
