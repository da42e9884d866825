package home_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/voicedesk/internal/app/features/home"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.uber.org/zap"
)

func TestServeRoot(t *testing.T) {
	rec := testutil.NewRecorder()
	home.Routes(home.NewHandler(zap.NewNop())).ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))

	rec.AssertStatus(t, http.StatusOK)
	if rec.Body.String() != "hello world" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}
