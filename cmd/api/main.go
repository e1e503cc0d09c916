package main

import (
	"net/http"
	"os"
	"time"

	"event-attendance/internal/adapters/auth/jwtauth"
	pg "event-attendance/internal/adapters/storage/postgres"
	"event-attendance/internal/platform/config"
	"event-attendance/internal/platform/logger"
	"event-attendance/internal/ports/auth"
	"event-attendance/internal/router"
)

// @title Event Attendance API
// @version 1.0
// @description Registro de asistencia a eventos con ventana temporal.
// @BasePath /
func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "event-attendance",
	})

	jwt := jwtauth.New(jwtauth.Config{
		Issuer: cfg.JWTIssuer,
		Key:    cfg.JWTSigningKey,
		TTL:    cfg.AccessTTL,
	})

	// Sin signing key explícita: modo dev (header X-Debug-Person-ID).
	var verifier auth.AuthVerifier
	if cfg.JWTSigningKey != "" {
		verifier = jwt
	}

	opts := router.Options{
		AuthVerifier: verifier,
		TokenIssuer:  jwt,
		Logger:       log,
	}

	// DSN vacío => repos in-memory (modo dev).
	if cfg.DatabaseDSN != "" {
		db, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Error("postgres connect failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		opts.DB = db
	}

	r := router.NewRouter(opts)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": cfg.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
