package profiles

import (
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /api/v1/auth/client/profile.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.With(mw.RequireAdmin).Get("/", h.ServeList)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireClient)
		r.Post("/", h.ServeCreate)
		r.Get("/{clientId}", h.ServeGet)
		r.Put("/{clientId}", h.ServeUpdate)
		r.Delete("/{clientId}", h.ServeDelete)
	})

	return r
}
