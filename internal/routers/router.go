package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"macrocode/internal/api"
	"macrocode/internal/metrics"
	"macrocode/internal/session"
	"macrocode/internal/store"
	"macrocode/internal/utils"
)

func New(log *utils.Logger, hub *session.Hub, archive *store.RoomArchive) http.Handler {
	h := api.NewHandlersWithDeps(log, hub, archive)
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(metrics.Middleware)

	r.Get("/healthz", h.Health)
	r.Get("/stats", h.Stats)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/api/v1/rooms/{id}", h.GetRoomStatus)

	// Fixed handshake sub-path carried over from the front-end contract.
	r.Get("/macro-code/socket-connection", h.CollabWS)

	return r
}
