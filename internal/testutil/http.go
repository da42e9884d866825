package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestSecret signs tokens in handler tests.
const TestSecret = "voicedesk-test-secret-at-least-32-bytes"

// ClientClaims returns claims for a client acting as itself.
func ClientClaims(clientID primitive.ObjectID) *auth.Claims {
	return &auth.Claims{ID: clientID.Hex(), UserType: auth.UserTypeClient, ClientID: clientID.Hex()}
}

// AdminClaims returns claims for an admin (or superadmin when super is true).
func AdminClaims(super bool) *auth.Claims {
	ut := auth.UserTypeAdmin
	if super {
		ut = auth.UserTypeSuperAdmin
	}
	return &auth.Claims{ID: primitive.NewObjectID().Hex(), UserType: ut}
}

// WithUser attaches claims to r, bypassing token verification.
func WithUser(r *http.Request, c *auth.Claims) *http.Request {
	return auth.WithTestUser(r, c)
}

// NewRequest creates a request with no body.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest encodes body as JSON. A string body is sent verbatim.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// BearerRequest is NewJSONRequest with an Authorization header.
func BearerRequest(t *testing.T, method, target, token string, body any) *http.Request {
	t.Helper()
	r := NewJSONRequest(t, method, target, body)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks that the body contains expected.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q: %s", expected, r.Body.String())
	}
}

// JSON decodes the body into a generic map.
func (r *ResponseRecorder) JSON(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(r.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
	return m
}

// Message returns the "message" field of a JSON body.
func (r *ResponseRecorder) Message(t *testing.T) string {
	t.Helper()
	s, _ := r.JSON(t)["message"].(string)
	return s
}
