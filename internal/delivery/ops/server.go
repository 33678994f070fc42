package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Pinger checks the database connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the ops server dependencies. DB may be nil when running on
// the in-memory store.
type Config struct {
	Version string
	DB      Pinger
	// Sweep runs the subscription sweep; it is called in its own goroutine
	Sweep func()
	Log   *logrus.Entry
}

// NewRouter builds the ops router
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: cfg.Log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Routes
	r.Get("/", handleRoot(cfg.Version))
	r.Get("/health", handleHealth(cfg.DB))
	r.Post("/jobs/sweep", handleTriggerSweep(cfg.Sweep, cfg.Log))

	return r
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func handleRoot(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "botdash ops endpoint",
			"version": version,
			"endpoints": map[string]string{
				"health":        "GET /health",
				"trigger_sweep": "POST /jobs/sweep",
			},
		})
	}
}

func handleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "memory"
		if db != nil {
			// Check database
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			dbStatus = "healthy"
			if err := db.Ping(ctx); err != nil {
				dbStatus = "unhealthy"
			}
		}

		code, status := http.StatusOK, "healthy"
		if dbStatus == "unhealthy" {
			code, status = http.StatusServiceUnavailable, "unhealthy"
		}
		writeJSON(w, code, map[string]string{
			"status":    status,
			"service":   "botdash",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func handleTriggerSweep(sweep func(), log *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Manual subscription sweep triggered")
		go sweep()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"message": "Subscription sweep triggered",
			"status":  "processing",
		})
	}
}
