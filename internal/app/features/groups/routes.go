// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes mounts at /api/v1/client/groups behind RequireClient.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)

	r.Get("/{id}", h.ServeGet)
	r.Put("/{id}", h.ServeUpdate)
	r.Delete("/{id}", h.ServeDelete)

	// CONTACTS
	r.Post("/{id}/contacts", h.ServeAddContact)
	r.Post("/{id}/contacts/upload", h.ServeUploadContacts)
	r.Delete("/{groupId}/contacts/{contactId}", h.ServeDeleteContact)

	return r
}
