// internal/app/features/apikeys/handler.go
package apikeys

import (
	"context"
	"strings"

	apikeystore "github.com/dalemusser/voicedesk/internal/app/store/apikeys"
	"github.com/dalemusser/voicedesk/internal/app/system/sealbox"
	"github.com/dalemusser/voicedesk/internal/app/system/tts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler manages the third-party provider keys a client brings.
type Handler struct {
	Keys *apikeystore.Store
	Box  *sealbox.Box
	Log  *zap.Logger

	// NewTTS builds a synthesizer for a candidate Sarvam key so the test
	// endpoint can make a live call. Nil limits testing to format checks.
	NewTTS func(key string) tts.Synthesizer
}

func NewHandler(db *mongo.Database, box *sealbox.Box, newTTS func(string) tts.Synthesizer, logger *zap.Logger) *Handler {
	return &Handler{Keys: apikeystore.New(db), Box: box, NewTTS: newTTS, Log: logger}
}

// Routes mounts at /api/v1/client/api-keys behind RequireClient.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/{provider}", h.ServeSet)
	r.Post("/{provider}/test", h.ServeTest)
	r.Delete("/{provider}", h.ServeDelete)
	return r
}

// checkKey reports why key is unusable for p, or "" when it looks valid.
func checkKey(p models.Provider, key string) string {
	if key == "" {
		return "API key is required"
	}
	if strings.ContainsAny(key, " \t\r\n") {
		return "API key must not contain whitespace"
	}
	if p.KeyPrefix != "" && !strings.HasPrefix(key, p.KeyPrefix) {
		return p.Name + " keys start with " + p.KeyPrefix
	}
	if len(key) < p.MinKeyLen {
		return p.Name + " key is too short"
	}
	return ""
}

// probe checks key for p, making a live call where a tester exists.
func (h *Handler) probe(ctx context.Context, p models.Provider, key string) (bool, string) {
	if msg := checkKey(p, key); msg != "" {
		return false, msg
	}
	if p.ID == "sarvam" && h.NewTTS != nil {
		res := tts.TestConnection(ctx, h.NewTTS(key))
		return res.Success, res.Message
	}
	return true, "API key format is valid"
}
