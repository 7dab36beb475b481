package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all routes mounted.
// authEnabled controls whether Bearer token auth is enforced on /api.
// webhookHandler, if non-nil, is mounted at POST /webhook outside the
// auth group: its HMAC signature is its authentication.
// sseHandler, if non-nil, is mounted at GET /api/events inside it.
func NewRouter(engine Syncer, authEnabled bool, token string,
	webhookHandler, sseHandler http.Handler) chi.Router {

	h := NewHandler(engine)

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if webhookHandler != nil {
		r.Post("/webhook", webhookHandler.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		r.Post("/sync", h.Sync)
		r.Get("/preview", h.Preview)
		r.Get("/status", h.Status)

		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
