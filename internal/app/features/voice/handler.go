// internal/app/features/voice/handler.go
package voice

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/metrics"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/app/system/tts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes text-to-speech to the dashboard for previewing
// starting messages.
type Handler struct {
	TTS     tts.Synthesizer
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewHandler(s tts.Synthesizer, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{TTS: s, Metrics: m, Log: logger}
}

// Routes mounts at /api/v1/client/voice behind RequireClient.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/synthesize", h.ServeSynthesize)
	r.Get("/test", h.ServeTest)
	return r
}

type synthesizeInput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Speaker  string `json:"speaker"`
}

func (h *Handler) ServeSynthesize(w http.ResponseWriter, r *http.Request) {
	var in synthesizeInput
	if err := httpx.Decode(r, &in); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		httpx.Fail(w, http.StatusBadRequest, "Text is required")
		return
	}
	if in.Language == "" {
		in.Language = "en"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.External())
	defer cancel()

	start := time.Now()
	res, err := h.TTS.Synthesize(ctx, in.Text, in.Language, in.Speaker)
	h.Metrics.TTS(start, err)
	if err != nil {
		h.Log.Warn("voice synthesis failed", zap.Error(err), zap.String("language", in.Language))
		httpx.Fail(w, http.StatusInternalServerError, "Voice synthesis failed: "+err.Error())
		return
	}

	httpx.Success(w, httpx.M{
		"audioBase64": res.AudioBase64,
		"audioBuffer": res.AudioBase64,
		"format":      res.Format,
		"size":        res.Size(),
		"sampleRate":  res.SampleRate,
		"channels":    res.Channels,
	})
}

func (h *Handler) ServeTest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.External())
	defer cancel()

	start := time.Now()
	p := tts.TestConnection(ctx, h.TTS)
	if !p.Success {
		h.Metrics.TTS(start, errors.New(p.Message))
		httpx.JSON(w, http.StatusServiceUnavailable, p)
		return
	}
	h.Metrics.TTS(start, nil)
	httpx.JSON(w, http.StatusOK, p)
}
