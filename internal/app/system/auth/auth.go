// Package auth issues and verifies bearer tokens and provides the role
// middlewares mounted on each route group.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| User types & claims                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	UserTypeClient     = "client"
	UserTypeHumanAgent = "humanAgent"
	UserTypeAdmin      = "admin"
	UserTypeSuperAdmin = "superadmin"
)

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrMissingToken = errors.New("authorization header is required")
	ErrInvalidToken = errors.New("token expired or invalid")
)

// Claims is the token payload. ID is the subject's ObjectID hex; ClientID is
// set for human agents (their owning client) and for clients (themselves).
type Claims struct {
	ID       string `json:"id"`
	UserType string `json:"userType"`
	ClientID string `json:"clientId,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ObjectID parses ID.
func (c *Claims) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.ID)
}

// TenantID returns the client the caller acts for.
func (c *Claims) TenantID() (primitive.ObjectID, bool) {
	hex := c.ClientID
	if hex == "" && c.UserType == UserTypeClient {
		hex = c.ID
	}
	id, err := primitive.ObjectIDFromHex(hex)
	return id, err == nil
}

func (c *Claims) IsAdmin() bool {
	return c.UserType == UserTypeAdmin || c.UserType == UserTypeSuperAdmin
}

/*─────────────────────────────────────────────────────────────────────────────*
| Issuer                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Issuer signs and verifies HS256 tokens with one shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. A non-positive ttl uses DefaultTTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the subject.
func (i *Issuer) Issue(id, userType, clientID, email string) (string, error) {
	now := i.now()
	claims := Claims{
		ID:       id,
		UserType: userType,
		ClientID: clientID,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// IssueClient is Issue for a client account.
func (i *Issuer) IssueClient(id primitive.ObjectID, email string) (string, error) {
	return i.Issue(id.Hex(), UserTypeClient, id.Hex(), email)
}

// Verify parses a token and checks its signature and expiry.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || claims.UserType == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractToken pulls the token out of an "Authorization: Bearer <t>" value.
// A bare token without the scheme is accepted.
func ExtractToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		header = strings.TrimSpace(header[7:])
	}
	if header == "" {
		return "", ErrMissingToken
	}
	return header, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Context                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey struct{}

// WithClaims stores claims on ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// CurrentUser returns the verified claims for the request, if any.
func CurrentUser(r *http.Request) (*Claims, bool) {
	c, ok := r.Context().Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// WithTestUser attaches claims to a request. Tests only.
func WithTestUser(r *http.Request, c *Claims) *http.Request {
	return r.WithContext(WithClaims(r.Context(), c))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// Middleware binds an Issuer to the role checks.
type Middleware struct {
	Issuer *Issuer
	Log    *zap.Logger
}

func NewMiddleware(issuer *Issuer, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{Issuer: issuer, Log: logger}
}

// require verifies the bearer token and, when allowed is non-empty, the
// user type. denyMsg is the 403 message for a type mismatch.
func (m *Middleware) require(denyMsg string, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := ExtractToken(r.Header.Get("Authorization"))
			if err != nil {
				httpx.Fail(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}
			claims, err := m.Issuer.Verify(raw)
			if err != nil {
				httpx.Fail(w, http.StatusUnauthorized, "Token expired or invalid")
				return
			}
			if len(allowed) > 0 && !contains(allowed, claims.UserType) {
				m.Log.Debug("token user type rejected",
					zap.String("user_type", claims.UserType),
					zap.String("path", r.URL.Path))
				httpx.Fail(w, http.StatusForbidden, denyMsg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireClient admits client tokens only.
func (m *Middleware) RequireClient(next http.Handler) http.Handler {
	return m.require("Invalid token: userType must be client", UserTypeClient)(next)
}

// RequireHumanAgent admits human agent tokens only.
func (m *Middleware) RequireHumanAgent(next http.Handler) http.Handler {
	return m.require("Invalid token: userType must be humanAgent", UserTypeHumanAgent)(next)
}

// RequireAdmin admits admins and superadmins.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.require("Admin access required", UserTypeAdmin, UserTypeSuperAdmin)(next)
}

// RequireSuperAdmin admits superadmins only.
func (m *Middleware) RequireSuperAdmin(next http.Handler) http.Handler {
	return m.require("Superadmin access required", UserTypeSuperAdmin)(next)
}

// RequireAny admits any valid token.
func (m *Middleware) RequireAny(next http.Handler) http.Handler {
	return m.require("")(next)
}

// Optional attaches claims when a valid token is present and otherwise
// continues anonymously.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, err := ExtractToken(r.Header.Get("Authorization")); err == nil {
			if claims, err := m.Issuer.Verify(raw); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
