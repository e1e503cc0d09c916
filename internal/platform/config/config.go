package config

import (
	"log"
	"os"
	"time"
)

// App es la configuración de runtime cargada desde variables de entorno.
type App struct {
	Addr        string
	DatabaseDSN string

	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration

	LogLevel  string
	LogFormat string
}

// Load arma la config con defaults razonables para dev.
// DatabaseDSN vacío => repos in-memory (modo dev / tests de integración).
func Load() App {
	return App{
		Addr:          ":" + getEnv("PORT", "8080"),
		DatabaseDSN:   getEnv("DB_DSN", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "event-attendance"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", ""),
		AccessTTL:     durationEnv("ACCESS_TTL", 15*time.Minute),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}
