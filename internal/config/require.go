package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// Validate fatals on settings the service cannot start without.
func (c Config) Validate() {
	MustNonEmptyBytes(c.JWTSecret, "JWT_SECRET_KEY")
	MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	if c.RevocationBackend == "redis" {
		MustNonEmpty(c.RedisAddr, "REDIS_ADDR")
	}
}
