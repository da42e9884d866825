package clients

import (
	"context"
	"errors"
	"net/http"
	"time"

	clientstore "github.com/dalemusser/voicedesk/internal/app/store/clients"
	"github.com/dalemusser/voicedesk/internal/app/system/authutil"
	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/inputval"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/objectstore"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/v1/client/register                                                 |
| Public, with an optional admin token: admin-created clients are approved    |
| immediately.                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type registerInput struct {
	Name            string `json:"name" validate:"notblank,max=200" label:"Name"`
	Email           string `json:"email" validate:"required,email" label:"Email"`
	Password        string `json:"password" validate:"required" label:"Password"`
	BusinessName    string `json:"businessName" validate:"max=200" label:"Business name"`
	BusinessLogoKey string `json:"businessLogoKey"`
	GSTNo           string `json:"gstNo"`
	PANNo           string `json:"panNo"`
	MobileNo        string `json:"mobileNo"`
	Address         string `json:"address" validate:"max=500" label:"Address"`
	City            string `json:"city"`
	Pincode         string `json:"pincode"`
	WebsiteURL      string `json:"websiteUrl" validate:"omitempty,httpurl" label:"Website URL"`
}

func (in *registerInput) normalize() {
	in.Name = htmlsanitize.Clean(in.Name)
	in.Email = normalize.Email(in.Email)
	in.BusinessName = htmlsanitize.Clean(in.BusinessName)
	in.GSTNo = normalize.Code(in.GSTNo)
	in.PANNo = normalize.Code(in.PANNo)
	in.MobileNo = normalize.Phone(in.MobileNo)
	in.Address = htmlsanitize.Clean(in.Address)
	in.City = normalize.Name(in.City)
	in.Pincode = normalize.Name(in.Pincode)
	in.WebsiteURL = normalize.Name(in.WebsiteURL)
}

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.normalize()
	if res := inputval.Validate(in); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		httpx.Fail(w, http.StatusBadRequest, authutil.PasswordRules())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	exists, err := h.Clients.EmailExists(ctx, in.Email)
	if err != nil {
		httpx.ServerError(w, h.Log, "Registration failed", err)
		return
	}
	if exists {
		httpx.Fail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	taken, err := h.Clients.RegistrationTaken(ctx, in.GSTNo, in.PANNo, in.MobileNo)
	if err != nil {
		httpx.ServerError(w, h.Log, "Registration failed", err)
		return
	}
	if taken {
		httpx.Fail(w, http.StatusBadRequest, "Client already exists with the same GST, PAN, or Mobile number")
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		httpx.ServerError(w, h.Log, "Registration failed", err)
		return
	}

	logoURL := ""
	if in.BusinessLogoKey != "" {
		logoURL, err = h.Storage.PresignGet(ctx, in.BusinessLogoKey)
		if err != nil {
			h.Log.Warn("presign business logo failed", zap.String("key", in.BusinessLogoKey), zap.Error(err))
			logoURL = ""
		}
	}

	approved := authz.IsAdmin(r)
	c, err := h.Clients.Create(ctx, models.Client{
		Name:               in.Name,
		Email:              in.Email,
		Password:           hash,
		BusinessName:       in.BusinessName,
		BusinessLogoKey:    in.BusinessLogoKey,
		BusinessLogoURL:    logoURL,
		GSTNo:              in.GSTNo,
		PANNo:              in.PANNo,
		MobileNo:           in.MobileNo,
		Address:            in.Address,
		City:               in.City,
		Pincode:            in.Pincode,
		WebsiteURL:         in.WebsiteURL,
		IsProfileCompleted: true,
		IsApproved:         approved,
	})
	if errors.Is(err, clientstore.ErrDuplicateEmail) {
		httpx.Fail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Registration failed", err)
		return
	}

	token, err := h.Issuer.IssueClient(c.ID, c.Email)
	if err != nil {
		httpx.ServerError(w, h.Log, "Registration failed", err)
		return
	}
	h.Log.Info("client registered",
		zap.String("client_id", c.ID.Hex()),
		zap.Bool("approved", approved))

	s := summarize(c)
	s.Code = 0
	httpx.JSON(w, http.StatusCreated, httpx.M{"success": true, "token": token, "client": s})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/v1/client/upload-url?fileName=&fileType=                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUploadURL(w http.ResponseWriter, r *http.Request) {
	fileName := query.Get(r, "fileName")
	fileType := query.Get(r, "fileType")
	if fileName == "" || fileType == "" {
		httpx.Fail(w, http.StatusBadRequest, "fileName and fileType are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.External())
	defer cancel()

	key := objectstore.LogoKey(time.Now(), fileName)
	url, err := h.Storage.PresignPut(ctx, key, fileType)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to create upload URL", err, zap.String("key", key))
		return
	}
	httpx.Success(w, httpx.M{"url": url, "key": key})
}
