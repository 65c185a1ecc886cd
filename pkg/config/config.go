package config

import "os"

// Config holds server configuration.
type Config struct {
	Port          string
	LogLevel      string
	AdminAddress  string
	RelayAddress  string
	MeterBackend  string // "memory" | "postgres" | "redis"
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	AuditDBPath   string
	OTLPEndpoint  string
	OTelEnabled   bool
	JWTSecret     string
	PagerEndpoint string
	ProfilePath   string
	RateRPS       int
	RateBurst     int
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		LogLevel:      getenv("LOG_LEVEL", "INFO"),
		AdminAddress:  os.Getenv("SUBSIDY_ADMIN_ADDRESS"),
		RelayAddress:  os.Getenv("SUBSIDY_RELAY_ADDRESS"),
		MeterBackend:  getenv("METER_BACKEND", "memory"),
		DatabaseURL:   getenv("DATABASE_URL", "postgres://subsidy@localhost:5432/subsidy?sslmode=disable"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		AuditDBPath:   getenv("AUDIT_DB_PATH", "subsidy_audit.db"),
		OTLPEndpoint:  getenv("OTLP_ENDPOINT", "localhost:4317"),
		OTelEnabled:   os.Getenv("OTEL_ENABLED") == "true",
		JWTSecret:     os.Getenv("JWT_SECRET"),
		PagerEndpoint: os.Getenv("PAGER_ENDPOINT"),
		ProfilePath:   getenv("SUBSIDY_PROFILE", "profile.yaml"),
		RateRPS:       10,
		RateBurst:     20,
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
