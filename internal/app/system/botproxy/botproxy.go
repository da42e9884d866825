// Package botproxy forwards client messages to the downstream bot API.
package botproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/limits"
)

var (
	ErrNotConfigured = errors.New("bot api not configured")
	// ErrBadPayload is returned when the body is not a JSON object.
	ErrBadPayload = errors.New("payload must be a JSON object")
)

// Response is the downstream reply, relayed verbatim.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Proxy posts to one fixed URL.
type Proxy struct {
	url  string
	key  string
	http *http.Client
}

// New returns a Proxy for url. key is sent as X-API-KEY when set.
func New(url, key string, timeout time.Duration) *Proxy {
	return &Proxy{
		url:  strings.TrimSpace(url),
		key:  key,
		http: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a downstream URL is set.
func (p *Proxy) Configured() bool { return p != nil && p.url != "" }

// Forward sends payload with clientId set to the caller's tenant, replacing
// any clientId the caller supplied.
func (p *Proxy) Forward(ctx context.Context, clientID string, payload []byte) (Response, error) {
	if !p.Configured() {
		return Response{}, ErrNotConfigured
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil || obj == nil {
		return Response{}, ErrBadPayload
	}
	id, _ := json.Marshal(clientID)
	obj["clientId"] = id
	body, err := json.Marshal(obj)
	if err != nil {
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.key != "" {
		req.Header.Set("X-API-KEY", p.key)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("bot api request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limits.MaxBotResponse))
	if err != nil {
		return Response{}, fmt.Errorf("read bot api response: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	return Response{Status: resp.StatusCode, ContentType: ct, Body: raw}, nil
}
