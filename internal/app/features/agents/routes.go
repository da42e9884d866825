package agents

import "github.com/go-chi/chi/v5"

// Routes mounts at /api/v1/client/agents behind RequireClient.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Put("/mob/{id}", h.ServeMobileUpdate)
	r.Put("/{id}", h.ServeUpdate)
	r.Delete("/{id}", h.ServeDelete)
	r.Get("/{id}/audio", h.ServeAudio)
	return r
}
