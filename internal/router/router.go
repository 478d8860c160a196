package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "medisync-hub/docs"
	mem "medisync-hub/internal/adapters/storage/memory"
	pg "medisync-hub/internal/adapters/storage/postgres"
	"medisync-hub/internal/domain/accessrequests"
	"medisync-hub/internal/domain/records"
	"medisync-hub/internal/middleware"
	"medisync-hub/internal/platform/logger"
	"medisync-hub/internal/ports/auth"
	"medisync-hub/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Services agrupa los servicios de dominio para que main pueda compartirlos
// con el sweeper y la CLI.
type Services struct {
	AccessRequests *accessrequests.Service
	Records        *records.Service
}

// NewServices arma repos y servicios: Postgres si db != nil, memoria si no.
func NewServices(db *sql.DB, notifier notify.Notifier, now func() time.Time) Services {
	var (
		requestsRepo accessrequests.Repository
		recordsRepo  records.Repository
	)

	if db != nil {
		requestsRepo = pg.NewAccessRequestsRepo(db)
		recordsRepo = pg.NewRecordsRepo(db)
	} else {
		requestsRepo = mem.NewAccessRequestsRepo()
		recordsRepo = mem.NewRecordsRepo()
	}

	return Services{
		AccessRequests: accessrequests.NewService(requestsRepo, notifier).WithClock(now),
		Records:        records.NewService(recordsRepo).WithClock(now),
	}
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Logger       logger.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Notifier notify.Notifier
	Now      func() time.Time

	// Si viene, se usa tal cual e ignora DB/Notifier/Now.
	Services *Services
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	svcs := opts.Services
	if svcs == nil {
		built := NewServices(opts.DB, opts.Notifier, opts.Now)
		svcs = &built
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics)

	r.Get("/health", healthHandler(opts.DB))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	accessrequests.RegisterRoutes(r, svcs.AccessRequests)
	records.RegisterRoutes(r, svcs.Records, svcs.AccessRequests)

	return r
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
