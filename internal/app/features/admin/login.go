package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/voicedesk/internal/app/store/audit"
	"github.com/dalemusser/voicedesk/internal/app/system/authutil"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ServeLogin handles POST /api/v1/admin/login for any operator role.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

// ServeSuperLogin handles POST /api/v1/superadmin/login.
func (h *Handler) ServeSuperLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, superOnly bool) {
	var in loginInput
	if err := httpx.Decode(r, &in); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := normalize.Email(in.Email)
	if email == "" || in.Password == "" {
		httpx.Fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if ok, msg := h.Limiter.Check(r, email); !ok {
		h.Metrics.Login(models.RoleAdmin, "limited")
		h.Audit.LoginFailed(r.Context(), r, audit.EventLoginFailedRateLimit, models.RoleAdmin, nil, email, "rate limit exceeded")
		httpx.Fail(w, http.StatusTooManyRequests, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Admins.GetByEmail(ctx, email)
	if err != nil && err != mongo.ErrNoDocuments {
		httpx.ServerError(w, h.Log, "An error occurred during login", err)
		return
	}
	if err == mongo.ErrNoDocuments {
		h.Metrics.Login(models.RoleAdmin, "denied")
		h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedUserNotFound, models.RoleAdmin, nil, email, "user not found")
		httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !authutil.CheckPassword(in.Password, a.Password) {
		h.Metrics.Login(models.RoleAdmin, "denied")
		h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, a.Role, &a.ID, email, "wrong password")
		h.Log.Info("admin login rejected", zap.String("email", email))
		httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if superOnly && a.Role != models.RoleSuperAdmin {
		h.Metrics.Login(a.Role, "denied")
		httpx.Fail(w, http.StatusForbidden, "Superadmin access required")
		return
	}

	token, err := h.Issuer.Issue(a.ID.Hex(), a.Role, "", a.Email)
	if err != nil {
		httpx.ServerError(w, h.Log, "An error occurred during login", err)
		return
	}
	h.Limiter.Succeeded(email)
	h.Metrics.Login(a.Role, "ok")
	h.Audit.LoginSuccess(ctx, r, a.Role, a.ID, nil, "password")
	h.Log.Info("admin signed in", zap.String("admin_id", a.ID.Hex()), zap.String("role", a.Role))

	httpx.Success(w, httpx.M{
		"token": token,
		"admin": adminSummary{ID: a.ID.Hex(), Name: a.Name, Email: a.Email, Role: a.Role},
	})
}
