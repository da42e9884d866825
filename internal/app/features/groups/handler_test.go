package groups_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/voicedesk/internal/app/features/groups"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*groups.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return groups.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func asClient(r *http.Request, id primitive.ObjectID) *http.Request {
	return testutil.WithUser(r, testutil.ClientClaims(id))
}

func withID(r *http.Request, id primitive.ObjectID) *http.Request {
	return testutil.WithChiURLParam(r, "id", id.Hex())
}

func TestServeCreate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")
	other := fx.CreateClient(ctx, "Other", "other@acme.com")
	mine := fx.CreateAgent(ctx, c.ID, "Riya")
	theirs := fx.CreateAgent(ctx, other.ID, "Zoe")

	tests := []struct {
		name   string
		body   any
		status int
		msg    string
	}{
		{"blank name", map[string]any{"name": "   "}, http.StatusBadRequest, "Group name is required"},
		{"foreign agent", map[string]any{"name": "Leads", "agentIds": []string{theirs.ID.Hex()}}, http.StatusBadRequest,
			"Some agents not found or don't belong to client"},
		{"bad agent id", map[string]any{"name": "Leads", "agentIds": []string{"nope"}}, http.StatusBadRequest, "Agent ids must be valid ids"},
		{"ok", map[string]any{"name": " Leads ", "description": "Diwali <i>walk-ins</i>", "agentIds": []string{mine.ID.Hex(), mine.ID.Hex()}},
			http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeCreate(rec, asClient(testutil.NewJSONRequest(t, http.MethodPost, "/", tt.body), c.ID))
			rec.AssertStatus(t, tt.status)
			if tt.msg != "" {
				if got := rec.Message(t); got != tt.msg {
					t.Errorf("message = %q, want %q", got, tt.msg)
				}
				return
			}
			data, _ := rec.JSON(t)["data"].(map[string]any)
			if data["name"] != "Leads" || data["description"] != "Diwali walk-ins" {
				t.Errorf("unexpected group %v", data)
			}
			if ids, _ := data["agentIds"].([]any); len(ids) != 1 {
				t.Errorf("agentIds = %v, want one deduped id", data["agentIds"])
			}
			if cts, _ := data["contacts"].([]any); cts == nil {
				t.Error("contacts should be an empty array")
			}
		})
	}
}

func TestServeGetUpdateDelete_ScopedToClient(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")
	other := fx.CreateClient(ctx, "Other", "other@acme.com")
	g := fx.CreateGroup(ctx, c.ID, "Leads")

	rec := testutil.NewRecorder()
	h.ServeGet(rec, asClient(withID(testutil.NewRequest(http.MethodGet, "/"), g.ID), other.ID))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Group not found")

	rec = testutil.NewRecorder()
	h.ServeUpdate(rec, asClient(withID(testutil.NewJSONRequest(t, http.MethodPut, "/", map[string]any{"name": "Hot"}), g.ID), other.ID))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.ServeUpdate(rec, asClient(withID(testutil.NewJSONRequest(t, http.MethodPut, "/", map[string]any{"name": ""}), g.ID), c.ID))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.ServeUpdate(rec, asClient(withID(testutil.NewJSONRequest(t, http.MethodPut, "/", map[string]any{"name": "Hot leads"}), g.ID), c.ID))
	rec.AssertStatus(t, http.StatusOK)
	if data, _ := rec.JSON(t)["data"].(map[string]any); data["name"] != "Hot leads" || data["description"] != "" {
		t.Errorf("unexpected group %v", data)
	}

	rec = testutil.NewRecorder()
	h.ServeDelete(rec, asClient(withID(testutil.NewRequest(http.MethodDelete, "/"), g.ID), other.ID))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.ServeDelete(rec, asClient(withID(testutil.NewRequest(http.MethodDelete, "/"), g.ID), c.ID))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Group deleted successfully")

	rec = testutil.NewRecorder()
	h.ServeList(rec, asClient(testutil.NewRequest(http.MethodGet, "/"), c.ID))
	if list, _ := rec.JSON(t)["data"].([]any); len(list) != 0 {
		t.Errorf("expected no groups, got %d", len(list))
	}
}

func TestContacts(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")
	g := fx.CreateGroup(ctx, c.ID, "Leads", models.Contact{Name: "Asha", Phone: "9876543210"})

	rec := testutil.NewRecorder()
	h.ServeAddContact(rec, asClient(withID(testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{"name": "Vikram"}), g.ID), c.ID))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Name and phone are required")

	rec = testutil.NewRecorder()
	h.ServeAddContact(rec, asClient(withID(testutil.NewJSONRequest(t, http.MethodPost, "/",
		map[string]any{"name": "Vikram", "phone": "98765 00000", "email": "Vik@Acme.com"}), g.ID), c.ID))
	rec.AssertStatus(t, http.StatusCreated)
	ct, _ := rec.JSON(t)["data"].(map[string]any)
	if ct["email"] != "vik@acme.com" || ct["phone"] != "9876500000" {
		t.Errorf("contact not normalized: %v", ct)
	}

	contactID, _ := ct["_id"].(string)
	req := testutil.WithChiURLParam(testutil.WithChiURLParam(testutil.NewRequest(http.MethodDelete, "/"), "groupId", g.ID.Hex()), "contactId", contactID)
	rec = testutil.NewRecorder()
	h.ServeDeleteContact(rec, asClient(req, c.ID))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Contact deleted successfully")

	rec = testutil.NewRecorder()
	h.ServeGet(rec, asClient(withID(testutil.NewRequest(http.MethodGet, "/"), g.ID), c.ID))
	data, _ := rec.JSON(t)["data"].(map[string]any)
	if cts, _ := data["contacts"].([]any); len(cts) != 1 {
		t.Errorf("expected 1 contact left, got %v", data["contacts"])
	}
}

func csvUpload(t *testing.T, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "contacts.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte(content))
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServeUploadContacts(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")
	g := fx.CreateGroup(ctx, c.ID, "Leads")

	rec := testutil.NewRecorder()
	h.ServeUploadContacts(rec, asClient(withID(csvUpload(t, "name,phone\nAsha,\nVikram,9876500000"), g.ID), c.ID))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "line 2: missing phone")

	rec = testutil.NewRecorder()
	h.ServeUploadContacts(rec, asClient(withID(csvUpload(t, "name,phone,email\nAsha,9876543210,asha@acme.com\nVikram,9876500000,"), g.ID), c.ID))
	rec.AssertStatus(t, http.StatusCreated)
	if added, _ := rec.JSON(t)["data"].([]any); len(added) != 2 {
		t.Errorf("expected 2 contacts added, got %v", rec.JSON(t)["data"])
	}

	rec = testutil.NewRecorder()
	h.ServeUploadContacts(rec, asClient(withID(csvUpload(t, "Asha,9876543210"), g.ID), primitive.NewObjectID()))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.ServeUploadContacts(rec, asClient(withID(testutil.NewRequest(http.MethodPost, "/upload"), g.ID), c.ID))
	rec.AssertStatus(t, http.StatusBadRequest)
}
