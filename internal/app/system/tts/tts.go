// Package tts synthesises speech through the Sarvam text-to-speech API.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/limits"
)

const (
	DefaultBaseURL = "https://api.sarvam.ai"
	SampleRate     = 22050
	Channels       = 1
	Format         = "mp3"
	model          = "bulbul:v2"
)

var (
	ErrNotConfigured = errors.New("sarvam api key not configured")
	ErrEmptyText     = errors.New("text is required")
	ErrNoAudio       = errors.New("no audio data received from sarvam")
)

// Result is one synthesised clip.
type Result struct {
	AudioBase64 string
	Audio       []byte
	Format      string
	SampleRate  int
	Channels    int
}

// Size is the decoded byte length.
func (r Result) Size() int { return len(r.Audio) }

// Synthesizer converts text to speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language, speaker string) (Result, error)
}

// Client calls the Sarvam API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New creates a client. An empty baseURL uses DefaultBaseURL.
func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type request struct {
	Inputs              []string `json:"inputs"`
	TargetLanguageCode  string   `json:"target_language_code"`
	Speaker             string   `json:"speaker"`
	Pitch               float64  `json:"pitch"`
	Pace                float64  `json:"pace"`
	Loudness            float64  `json:"loudness"`
	SpeechSampleRate    int      `json:"speech_sample_rate"`
	EnablePreprocessing bool     `json:"enable_preprocessing"`
	Model               string   `json:"model"`
}

// LanguageCode maps the short language to Sarvam's locale. Only Hindi and
// English are offered.
func LanguageCode(language string) string {
	if language == "hi" {
		return "hi-IN"
	}
	return "en-IN"
}

// DefaultSpeaker is the voice used when the caller names none.
func DefaultSpeaker(language string) string {
	if language == "hi" {
		return "anushka"
	}
	return "abhilash"
}

func (c *Client) Synthesize(ctx context.Context, text, language, speaker string) (Result, error) {
	if c.apiKey == "" {
		return Result{}, ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyText
	}
	if speaker == "" {
		speaker = DefaultSpeaker(language)
	}
	body, err := json.Marshal(request{
		Inputs:              []string{text},
		TargetLanguageCode:  LanguageCode(language),
		Speaker:             speaker,
		Pace:                1.0,
		Loudness:            1.0,
		SpeechSampleRate:    SampleRate,
		EnablePreprocessing: true,
		Model:               model,
	})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Subscription-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("sarvam request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limits.MaxTTSResponse))
	if err != nil {
		return Result{}, fmt.Errorf("read sarvam response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error any `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != nil {
			msg = fmt.Sprint(e.Error)
		}
		if msg == "" {
			msg = "Unknown error"
		}
		return Result{}, fmt.Errorf("sarvam api error: %d - %s", resp.StatusCode, msg)
	}

	var out struct {
		Audios []string `json:"audios"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("decode sarvam response: %w", err)
	}
	if len(out.Audios) == 0 || out.Audios[0] == "" {
		return Result{}, ErrNoAudio
	}
	audio, err := base64.StdEncoding.DecodeString(out.Audios[0])
	if err != nil {
		return Result{}, fmt.Errorf("decode audio: %w", err)
	}
	return Result{
		AudioBase64: out.Audios[0],
		Audio:       audio,
		Format:      Format,
		SampleRate:  SampleRate,
		Channels:    Channels,
	}, nil
}

// Probe is the outcome of TestConnection.
type Probe struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	AudioSize int    `json:"audioSize,omitempty"`
}

// TestConnection synthesises a short phrase and reports the outcome.
func TestConnection(ctx context.Context, s Synthesizer) Probe {
	res, err := s.Synthesize(ctx, "Hello, this is a test message.", "en", "")
	if err != nil {
		return Probe{Message: "Voice service connection failed: " + err.Error()}
	}
	return Probe{Success: true, Message: "Voice service connection successful", AudioSize: res.Size()}
}
