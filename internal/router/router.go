package router

import (
	"database/sql"
	"net/http"
	"os"

	_ "event-attendance/docs"
	"event-attendance/internal/adapters/auth/jwtauth"
	mem "event-attendance/internal/adapters/storage/memory"
	pg "event-attendance/internal/adapters/storage/postgres"
	"event-attendance/internal/domain/attendance"
	"event-attendance/internal/domain/events"
	"event-attendance/internal/domain/persons"
	"event-attendance/internal/middleware"
	"event-attendance/internal/platform/logger"
	"event-attendance/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: header X-Debug-Person-ID)
	TokenIssuer  auth.TokenIssuer  // si es nil se arma un emisor JWT con defaults de dev

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if opts.Logger != nil {
		r.Use(middleware.RequestLog(opts.Logger))
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		personRepo     persons.Repository
		eventRepo      events.Repository
		attendanceRepo attendance.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		personRepo = pg.NewPersonsRepo(db)
		eventRepo = pg.NewEventsRepo(db)
		attendanceRepo = pg.NewAttendanceRepo(db)
	} else {
		personRepo = mem.NewPersonRepo()
		eventRepo = mem.NewEventRepo()
		attendanceRepo = mem.NewAttendanceRepo()
	}

	issuer := opts.TokenIssuer
	if issuer == nil {
		issuer = jwtauth.New(jwtauth.Config{})
	}

	// Services por módulo
	personsSvc := persons.NewService(personRepo)
	eventsSvc := events.NewService(eventRepo)
	attendanceSvc := attendance.NewService(attendanceRepo, eventsSvc, personsSvc)

	// Rutas por módulo
	persons.RegisterRoutes(r, personsSvc, issuer)
	events.RegisterRoutes(r, eventsSvc)
	attendance.RegisterRoutes(r, attendanceSvc, eventsSvc, personsSvc)

	return r
}
