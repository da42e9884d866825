// internal/app/features/clients/routes.go
package clients

import (
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the client account router, mounted at /api/v1/client.
// Sign-in and registration are public; the rest require a token.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.ServeLogin)
	r.Post("/google-login", h.ServeGoogleLogin)
	r.With(mw.Optional).Post("/register", h.ServeRegister)
	r.Get("/upload-url", h.ServeUploadURL)

	r.Post("/human-agent/login", h.ServeHumanAgentLogin)
	r.Post("/human-agent/google-login", h.ServeHumanAgentGoogleLogin)

	r.With(mw.RequireAny).Get("/profile", h.ServeProfile)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireClient)
		pr.Get("/", h.ServeGet)
		pr.Put("/", h.ServeUpdate)
	})

	return r
}
