package admin

import (
	"context"
	"errors"
	"net/http"

	adminstore "github.com/dalemusser/voicedesk/internal/app/store/admins"
	"github.com/dalemusser/voicedesk/internal/app/system/authutil"
	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/inputval"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Admin accounts (superadmin only)                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type createAdminInput struct {
	Name     string `json:"name" validate:"notblank,max=200" label:"Name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
	Role     string `json:"role" validate:"omitempty,oneof=admin superadmin" label:"Role"`
}

// ServeCreateAdmin handles POST /api/v1/admin/register and
// POST /api/v1/superadmin/admins.
func (h *Handler) ServeCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var in createAdminInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Name = htmlsanitize.Clean(in.Name)
	in.Email = normalize.Email(in.Email)
	in.Role = normalize.Enum(in.Role)
	if res := inputval.Validate(in); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		httpx.Fail(w, http.StatusBadRequest, authutil.PasswordRules())
		return
	}
	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to create admin", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Admins.Create(ctx, models.Admin{Name: in.Name, Email: in.Email, Password: hash, Role: in.Role})
	if errors.Is(err, adminstore.ErrDuplicateEmail) {
		httpx.Fail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to create admin", err)
		return
	}
	h.Log.Info("admin created", zap.String("admin_id", a.ID.Hex()), zap.String("role", a.Role))
	h.Audit.AdminCreated(ctx, r, operator(r), a.ID, a.Role)
	httpx.Created(w, "Admin registered successfully", adminSummary{ID: a.ID.Hex(), Name: a.Name, Email: a.Email, Role: a.Role})
}

// ServeListAdmins handles GET /api/v1/superadmin/admins.
func (h *Handler) ServeListAdmins(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Admins.List(ctx)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch admins", err)
		return
	}
	httpx.OK(w, list)
}

// ServeDeleteAdmin handles DELETE /api/v1/superadmin/admins/{id}. The
// caller cannot delete their own account.
func (h *Handler) ServeDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Invalid admin ID")
		return
	}
	if _, self, _ := authz.UserCtx(r); self == id {
		httpx.Fail(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Admins.Delete(ctx, id)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to delete admin", err)
		return
	}
	if n == 0 {
		httpx.Fail(w, http.StatusNotFound, "Admin not found")
		return
	}
	h.Log.Info("admin deleted", zap.String("admin_id", id.Hex()))
	h.Audit.AdminDeleted(ctx, r, operator(r), id)
	httpx.Success(w, httpx.M{"message": "Admin deleted successfully"})
}
