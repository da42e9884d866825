// internal/app/features/groups/contacts.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/csvutil"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/inputval"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type contactInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (h *Handler) ServeAddContact(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}

	var in contactInput
	if err := httpx.Decode(r, &in); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = normalize.Phone(in.Phone)
	in.Email = normalize.Email(in.Email)
	if in.Name == "" || in.Phone == "" {
		httpx.Fail(w, http.StatusBadRequest, "Name and phone are required")
		return
	}
	if in.Email != "" && !inputval.IsValidEmail(in.Email) {
		httpx.Fail(w, http.StatusBadRequest, "A valid email address is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ct, err := h.Groups.AddContact(ctx, clientID, id, models.Contact{Name: in.Name, Phone: in.Phone, Email: in.Email})
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to add contact", err)
		return
	}
	httpx.Created(w, "", ct)
}

func (h *Handler) ServeDeleteContact(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	groupID, ok := httpx.ObjectIDParam(r, "groupId")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}
	contactID, ok := httpx.ObjectIDParam(r, "contactId")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Contact not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Groups.DeleteContact(ctx, clientID, groupID, contactID); err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	} else if err != nil {
		httpx.ServerError(w, h.Log, "Failed to delete contact", err)
		return
	}
	httpx.Success(w, httpx.M{"message": "Contact deleted successfully"})
}

// ServeUploadContacts appends the contacts in a name,phone[,email] CSV sent
// as the multipart field "file". Any invalid row rejects the whole upload.
func (h *Handler) ServeUploadContacts(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)
	if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Upload must be a CSV file of at most 5 MB")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "CSV file is required")
		return
	}
	defer file.Close()

	res, err := csvutil.ParseContactsCSV(file, csvutil.DefaultParseOptions())
	switch {
	case errors.Is(err, csvutil.ErrTooManyRows):
		httpx.Fail(w, http.StatusBadRequest, "CSV has too many rows")
		return
	case err != nil:
		httpx.Fail(w, http.StatusBadRequest, "Could not read CSV file")
		return
	}
	if res.HasErrors() {
		httpx.JSON(w, http.StatusBadRequest, httpx.M{
			"success": false,
			"message": "Upload rejected: one or more rows are invalid",
			"errors":  res.Messages(),
		})
		return
	}
	if len(res.Rows) == 0 {
		httpx.Fail(w, http.StatusBadRequest, "CSV has no contacts")
		return
	}

	cts := make([]models.Contact, 0, len(res.Rows))
	for _, row := range res.Rows {
		cts = append(cts, models.Contact{Name: row.Name, Phone: row.Phone, Email: row.Email})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	added, err := h.Groups.AddContacts(ctx, clientID, id, cts)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to add contacts", err)
		return
	}
	h.Log.Info("contacts uploaded",
		zap.String("client_id", clientID.Hex()),
		zap.String("group_id", id.Hex()),
		zap.Int("count", len(added)))
	httpx.Created(w, "Contacts added successfully", added)
}
