package humanagents_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/voicedesk/internal/app/features/humanagents"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*humanagents.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return humanagents.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func asClient(r *http.Request, id primitive.ObjectID) *http.Request {
	return testutil.WithUser(r, testutil.ClientClaims(id))
}

func TestServeCreate(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")
	other := fx.CreateClient(ctx, "Other", "other@acme.com")
	fx.CreateHumanAgent(ctx, other.ID, "Zoe", "zoe@other.com")

	valid := map[string]string{"humanAgentName": " Riya ", "email": "Riya@Acme.com", "mobileNumber": "9000000001", "did": "0801"}

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantMsg    string
	}{
		{"missing did", map[string]string{"humanAgentName": "Riya", "email": "r@acme.com", "mobileNumber": "9"}, http.StatusBadRequest, "Human agent name, email, mobile number, and DID are required"},
		{"ok", valid, http.StatusCreated, "Human agent created successfully"},
		{"duplicate name", map[string]string{"humanAgentName": "Riya", "email": "riya2@acme.com", "mobileNumber": "9", "did": "1"}, http.StatusBadRequest, "already exists for this client"},
		{"email used by another client", map[string]string{"humanAgentName": "Zed", "email": "zoe@other.com", "mobileNumber": "9", "did": "1"}, http.StatusBadRequest, "Email already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeCreate(rec, asClient(testutil.NewJSONRequest(t, "POST", "/", tt.body), c.ID))
			rec.AssertStatus(t, tt.wantStatus)
			rec.AssertContains(t, tt.wantMsg)
		})
	}

	got, err := h.HumanAgents.GetByEmail(ctx, "riya@acme.com")
	if err != nil {
		t.Fatalf("created agent: %v", err)
	}
	if got.HumanAgentName != "Riya" || !got.IsApproved || !got.IsProfileCompleted || got.AgentIDs == nil {
		t.Errorf("stored: %+v", got)
	}
}

func TestServeUpdate_AgentIDs(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")
	other := fx.CreateClient(ctx, "Other", "other@acme.com")
	ha := fx.CreateHumanAgent(ctx, c.ID, "Riya", "riya@acme.com")
	own := fx.CreateAgent(ctx, c.ID, "Sales")
	foreign := fx.CreateAgent(ctx, other.ID, "Theirs")

	req := func(body any) *http.Request {
		r := testutil.NewJSONRequest(t, "PUT", "/", body)
		return asClient(testutil.WithChiURLParam(r, "agentId", ha.ID.Hex()), c.ID)
	}

	rec := testutil.NewRecorder()
	h.ServeUpdate(rec, req(map[string]any{"agentIds": []string{foreign.ID.Hex()}}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.ServeUpdate(rec, req(map[string]any{"agentIds": []string{"nope"}}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.ServeUpdate(rec, req(map[string]any{"email": " RIYA.K@acme.com ", "agentIds": []string{own.ID.Hex(), own.ID.Hex()}}))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.ServeGet(rec, asClient(testutil.WithChiURLParam(testutil.NewRequest("GET", "/"), "agentId", ha.ID.Hex()), c.ID))
	rec.AssertStatus(t, http.StatusOK)
	data, _ := rec.JSON(t)["data"].(map[string]any)
	if data["email"] != "riya.k@acme.com" {
		t.Errorf("email: %v", data["email"])
	}
	agents, _ := data["agentIds"].([]any)
	if len(agents) != 1 {
		t.Fatalf("agentIds: %v", data["agentIds"])
	}
	if ref, _ := agents[0].(map[string]any); ref["agentName"] != "Sales" {
		t.Errorf("populated agent: %v", ref)
	}
}

func TestScopedToClient(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")
	other := fx.CreateClient(ctx, "Other", "other@acme.com")
	ha := fx.CreateHumanAgent(ctx, c.ID, "Riya", "riya@acme.com")

	param := func(r *http.Request) *http.Request { return testutil.WithChiURLParam(r, "agentId", ha.ID.Hex()) }

	rec := testutil.NewRecorder()
	h.ServeGet(rec, asClient(param(testutil.NewRequest("GET", "/")), other.ID))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Human agent not found")

	rec = testutil.NewRecorder()
	h.ServeDelete(rec, asClient(param(testutil.NewRequest("DELETE", "/")), other.ID))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.ServeList(rec, asClient(testutil.NewRequest("GET", "/"), other.ID))
	rec.AssertStatus(t, http.StatusOK)
	if list, _ := rec.JSON(t)["data"].([]any); len(list) != 0 {
		t.Errorf("other client sees %d human agents", len(list))
	}

	rec = testutil.NewRecorder()
	h.ServeDelete(rec, asClient(param(testutil.NewRequest("DELETE", "/")), c.ID))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Human agent deleted successfully")
}
