// Package googleid verifies Google ID tokens and runs the redirect-based
// Google sign-in flow.
package googleid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid google token")

// Identity is the subset of ID-token claims the app uses.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Verifier checks an ID token and returns the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// validateFunc matches idtoken.Validate.
type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// IDTokenVerifier accepts tokens minted for any of its audiences (the web and
// Android OAuth client ids).
type IDTokenVerifier struct {
	audiences []string
	validate  validateFunc
}

// NewVerifier drops empty audiences.
func NewVerifier(audiences ...string) *IDTokenVerifier {
	var aud []string
	for _, a := range audiences {
		if a = strings.TrimSpace(a); a != "" {
			aud = append(aud, a)
		}
	}
	return &IDTokenVerifier{audiences: aud, validate: idtoken.Validate}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" || len(v.audiences) == 0 {
		return Identity{}, ErrInvalidToken
	}
	var lastErr error
	for _, aud := range v.audiences {
		p, err := v.validate(ctx, token, aud)
		if err != nil {
			lastErr = err
			continue
		}
		return identityFrom(p)
	}
	return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, lastErr)
}

func identityFrom(p *idtoken.Payload) (Identity, error) {
	str := func(k string) string {
		s, _ := p.Claims[k].(string)
		return s
	}
	id := Identity{
		Subject: p.Subject,
		Email:   strings.ToLower(strings.TrimSpace(str("email"))),
		Name:    str("name"),
		Picture: str("picture"),
	}
	switch v := p.Claims["email_verified"].(type) {
	case bool:
		id.EmailVerified = v
	case string:
		id.EmailVerified = v == "true"
	}
	if id.Email == "" {
		return Identity{}, fmt.Errorf("%w: token has no email", ErrInvalidToken)
	}
	return id, nil
}

// Flow is the authorization-code flow used by the redirect sign-in.
type Flow struct {
	cfg *oauth2.Config
}

// NewFlow returns nil when the client id or secret is missing.
func NewFlow(clientID, clientSecret, redirectURL string) *Flow {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &Flow{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

// AuthCodeURL is the consent-screen URL carrying state.
func (f *Flow) AuthCodeURL(state string) string {
	return f.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades code for tokens and returns the id_token.
func (f *Flow) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := f.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return "", errors.New("token response has no id_token")
	}
	return raw, nil
}
