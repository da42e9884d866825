package humanagents

import "github.com/go-chi/chi/v5"

// Routes mounts at /api/v1/client/human-agents behind RequireClient.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/{agentId}", h.ServeGet)
	r.Put("/{agentId}", h.ServeUpdate)
	r.Delete("/{agentId}", h.ServeDelete)
	return r
}
