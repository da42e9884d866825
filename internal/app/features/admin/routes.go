package admin

import (
	"net/http"

	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /api/v1/admin. profiles serves GET /profiles.
func Routes(h *Handler, profiles http.HandlerFunc, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeHello)
	r.Post("/login", h.ServeLogin)
	r.With(mw.RequireSuperAdmin).Post("/register", h.ServeCreateAdmin)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAdmin)
		r.Get("/getclients", h.ServeListClients)
		r.Get("/getclientbyid/{id}", h.ServeGetClient)
		r.Delete("/deleteclient/{id}", h.ServeDeleteClient)
		r.Get("/get-client-token/{clientId}", h.ServeClientToken)
		r.Post("/approve-client/{clientId}", h.ServeApproveClient)
		r.Get("/profiles", profiles)
	})

	return r
}

// SuperRoutes mounts at /api/v1/superadmin.
func SuperRoutes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.ServeSuperLogin)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSuperAdmin)
		r.Get("/admins", h.ServeListAdmins)
		r.Post("/admins", h.ServeCreateAdmin)
		r.Delete("/admins/{id}", h.ServeDeleteAdmin)
		r.Get("/clients", h.ServeListClients)
		r.Post("/approve-client/{clientId}", h.ServeApproveClient)
		r.Get("/audit", h.ServeAudit)
	})

	return r
}
