package voice_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/voicedesk/internal/app/features/voice"
	"github.com/dalemusser/voicedesk/internal/app/system/tts"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.uber.org/zap"
)

type fakeTTS struct {
	err      error
	language string
}

func (f *fakeTTS) Synthesize(_ context.Context, text, language, _ string) (tts.Result, error) {
	f.language = language
	if f.err != nil {
		return tts.Result{}, f.err
	}
	audio := []byte("ID3" + text)
	return tts.Result{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Audio:       audio,
		Format:      tts.Format,
		SampleRate:  22050,
		Channels:    tts.Channels,
	}, nil
}

func TestServeSynthesize(t *testing.T) {
	f := &fakeTTS{}
	h := voice.NewHandler(f, nil, zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeSynthesize(rec, testutil.NewJSONRequest(t, http.MethodPost, "/synthesize", map[string]any{"text": "Hello"}))
	rec.AssertStatus(t, http.StatusOK)

	body := rec.JSON(t)
	if body["format"] != "mp3" || body["size"] != float64(len("ID3Hello")) {
		t.Errorf("unexpected body %v", body)
	}
	if body["audioBase64"] != body["audioBuffer"] {
		t.Error("audioBuffer should mirror audioBase64")
	}
	if f.language != "en" {
		t.Errorf("language defaulted to %q, want en", f.language)
	}
}

func TestServeSynthesize_Errors(t *testing.T) {
	tests := []struct {
		name   string
		tts    *fakeTTS
		body   any
		status int
		msg    string
	}{
		{"blank text", &fakeTTS{}, map[string]any{"text": "  "}, http.StatusBadRequest, "Text is required"},
		{"no body", &fakeTTS{}, nil, http.StatusBadRequest, "Text is required"},
		{"provider failure", &fakeTTS{err: errors.New("quota exceeded")}, map[string]any{"text": "Hi"},
			http.StatusInternalServerError, "Voice synthesis failed: quota exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := voice.NewHandler(tt.tts, nil, zap.NewNop())
			rec := testutil.NewRecorder()
			h.ServeSynthesize(rec, testutil.NewJSONRequest(t, http.MethodPost, "/synthesize", tt.body))
			rec.AssertStatus(t, tt.status)
			if got := rec.Message(t); got != tt.msg {
				t.Errorf("message = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestServeTest(t *testing.T) {
	rec := testutil.NewRecorder()
	voice.NewHandler(&fakeTTS{}, nil, zap.NewNop()).ServeTest(rec, testutil.NewRequest(http.MethodGet, "/test"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Voice service connection successful")

	rec = testutil.NewRecorder()
	voice.NewHandler(&fakeTTS{err: tts.ErrNotConfigured}, nil, zap.NewNop()).ServeTest(rec, testutil.NewRequest(http.MethodGet, "/test"))
	rec.AssertStatus(t, http.StatusServiceUnavailable)
	rec.AssertContains(t, "sarvam api key not configured")
}
