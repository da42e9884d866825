// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// Routes mounts the redirect sign-in flow at /api/v1/client/google. Both
// endpoints are public.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/start", h.ServeStart)
	r.Get("/callback", h.ServeCallback)
	return r
}
