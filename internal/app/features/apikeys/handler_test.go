package apikeys_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/voicedesk/internal/app/features/apikeys"
	"github.com/dalemusser/voicedesk/internal/app/system/sealbox"
	"github.com/dalemusser/voicedesk/internal/app/system/tts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const openAIKey = "sk-test-0123456789abcdefWXYZ"

// keyedTTS accepts only the key "sarvam-good-key-123".
type keyedTTS struct{ key string }

func (k keyedTTS) Synthesize(context.Context, string, string, string) (tts.Result, error) {
	if k.key != "sarvam-good-key-123" {
		return tts.Result{}, tts.ErrNoAudio
	}
	return tts.Result{Audio: []byte("ID3")}, nil
}

func setup(t *testing.T) (*apikeys.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := apikeys.NewHandler(db, sealbox.Derive(testutil.TestSecret),
		func(key string) tts.Synthesizer { return keyedTTS{key} }, zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func req(t *testing.T, method, provider string, body any, clientID primitive.ObjectID) *http.Request {
	r := testutil.NewJSONRequest(t, method, "/"+provider, body)
	r = testutil.WithChiURLParam(r, "provider", provider)
	return testutil.WithUser(r, testutil.ClientClaims(clientID))
}

func TestServeProviders(t *testing.T) {
	rec := testutil.NewRecorder()
	apikeys.ServeProviders(rec, testutil.NewRequest(http.MethodGet, "/providers"))
	rec.AssertStatus(t, http.StatusOK)
	if list, _ := rec.JSON(t)["data"].([]any); len(list) != len(models.Providers) {
		t.Errorf("expected %d providers, got %d", len(models.Providers), len(list))
	}
	if strings.Contains(rec.Body.String(), "KeyPrefix") {
		t.Error("internal provider fields should not be serialized")
	}
}

func TestServeSet(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")

	tests := []struct {
		name     string
		provider string
		key      string
		msg      string
	}{
		{"unknown provider", "skynet", openAIKey, "Unsupported provider"},
		{"missing key", "openai", "", "API key is required"},
		{"wrong prefix", "openai", "pk-0123456789abcdefghijkl", "OpenAI keys start with sk-"},
		{"too short", "openai", "sk-short", "OpenAI key is too short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeSet(rec, req(t, http.MethodPost, tt.provider, map[string]any{"key": tt.key}, c.ID))
			rec.AssertStatus(t, http.StatusBadRequest)
			if got := rec.Message(t); got != tt.msg {
				t.Errorf("message = %q, want %q", got, tt.msg)
			}
		})
	}

	rec := testutil.NewRecorder()
	h.ServeSet(rec, req(t, http.MethodPost, "OpenAI", map[string]any{"key": openAIKey, "configuration": map[string]any{"model": "gpt-4o"}}, c.ID))
	rec.AssertStatus(t, http.StatusOK)
	if strings.Contains(rec.Body.String(), openAIKey) {
		t.Error("plaintext key leaked in response")
	}
	data, _ := rec.JSON(t)["data"].(map[string]any)
	if data["keyHint"] != "WXYZ" || data["provider"] != "openai" {
		t.Errorf("unexpected key %v", data)
	}

	var raw bson.M
	if err := fx.DB().Collection("client_api_keys").FindOne(ctx, bson.M{"client_id": c.ID}).Decode(&raw); err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	sealed, _ := raw["sealed_key"].(primitive.Binary)
	if strings.Contains(string(sealed.Data), openAIKey) {
		t.Error("key stored in plaintext")
	}
	plain, err := h.Box.Open(sealed.Data)
	if err != nil || string(plain) != openAIKey {
		t.Errorf("Open = %q, %v", plain, err)
	}

	rec = testutil.NewRecorder()
	h.ServeList(rec, req(t, http.MethodGet, "", nil, c.ID))
	if list, _ := rec.JSON(t)["data"].([]any); len(list) != 1 {
		t.Errorf("expected 1 key, got %v", rec.JSON(t)["data"])
	}
}

func TestServeTest(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")

	tests := []struct {
		name     string
		provider string
		key      string
		want     bool
	}{
		{"format only", "openai", openAIKey, true},
		{"bad format", "openai", "nope", false},
		{"live sarvam ok", "sarvam", "sarvam-good-key-123", true},
		{"live sarvam rejected", "sarvam", "sarvam-bad-key-456", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeTest(rec, req(t, http.MethodPost, tt.provider, map[string]any{"key": tt.key}, c.ID))
			rec.AssertStatus(t, http.StatusOK)
			if got := rec.JSON(t)["success"]; got != tt.want {
				t.Errorf("success = %v, want %v (%s)", got, tt.want, rec.Message(t))
			}
		})
	}

	// no key in the body and none stored
	rec := testutil.NewRecorder()
	h.ServeTest(rec, req(t, http.MethodPost, "sarvam", nil, c.ID))
	rec.AssertStatus(t, http.StatusNotFound)

	// stored key is opened, tested and the outcome recorded
	rec = testutil.NewRecorder()
	h.ServeSet(rec, req(t, http.MethodPost, "sarvam", map[string]any{"key": "sarvam-good-key-123"}, c.ID))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.ServeTest(rec, req(t, http.MethodPost, "sarvam", nil, c.ID))
	rec.AssertStatus(t, http.StatusOK)
	if rec.JSON(t)["success"] != true {
		t.Errorf("stored key test failed: %s", rec.Body.String())
	}
	k, err := h.Keys.Get(ctx, c.ID, "sarvam")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if k.LastTestOK == nil || !*k.LastTestOK || k.LastTestedAt == nil {
		t.Errorf("test outcome not recorded: %+v", k)
	}
}

func TestServeDelete(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClient(ctx, "Acme", "owner@acme.com")

	rec := testutil.NewRecorder()
	h.ServeDelete(rec, req(t, http.MethodDelete, "openai", nil, c.ID))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "API key not found")

	rec = testutil.NewRecorder()
	h.ServeSet(rec, req(t, http.MethodPost, "openai", map[string]any{"key": openAIKey}, c.ID))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.ServeDelete(rec, req(t, http.MethodDelete, "openai", nil, c.ID))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "API key deleted successfully")
}
