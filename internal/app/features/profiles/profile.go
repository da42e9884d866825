package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	profilestore "github.com/dalemusser/voicedesk/internal/app/store/profiles"
	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/inputval"
	"github.com/dalemusser/voicedesk/internal/app/system/paging"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Every body on these routes repeats the status code.

func fail(w http.ResponseWriter, status int, msg string) {
	httpx.JSON(w, status, httpx.M{"success": false, "message": msg, "statusCode": status})
}

func reply(w http.ResponseWriter, status int, fields httpx.M) {
	body := httpx.M{"success": true, "statusCode": status}
	for k, v := range fields {
		body[k] = v
	}
	httpx.JSON(w, status, body)
}

func serverError(w http.ResponseWriter, log *zap.Logger, err error, fields ...zap.Field) {
	log.Error("profile request failed", append(fields, zap.Error(err))...)
	fail(w, http.StatusInternalServerError, "Internal server error")
}

type profileInput struct {
	BusinessName  string `json:"businessName" validate:"notblank" label:"Business name"`
	BusinessType  string `json:"businessType" validate:"notblank" label:"Business type"`
	ContactNumber string `json:"contactNumber" validate:"notblank" label:"Contact number"`
	ContactName   string `json:"contactName" validate:"notblank" label:"Contact name"`
	Pincode       string `json:"pincode" validate:"notblank" label:"Pincode"`
	City          string `json:"city" validate:"notblank" label:"City"`
	State         string `json:"state" validate:"notblank" label:"State"`

	Website        *string `json:"website"`
	Pancard        *string `json:"pancard"`
	GST            *string `json:"gst"`
	AnnualTurnover *string `json:"annualTurnover"`
	Address        *string `json:"address"`

	HumanAgentID string `json:"humanAgentId" validate:"omitempty,objectid" label:"Human agent ID"`
}

// decodeInput rejects a missing or empty object before validating.
func decodeInput(w http.ResponseWriter, r *http.Request) (profileInput, bool) {
	var raw map[string]json.RawMessage
	if err := httpx.Decode(r, &raw); err != nil || len(raw) == 0 {
		fail(w, http.StatusBadRequest, "Request body is required")
		return profileInput{}, false
	}
	b, _ := json.Marshal(raw)
	var in profileInput
	if err := json.Unmarshal(b, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return profileInput{}, false
	}
	if res := inputval.Validate(in); res.HasErrors() {
		httpx.JSON(w, http.StatusBadRequest, httpx.M{
			"success":    false,
			"message":    "Validation failed",
			"errors":     res.Messages(),
			"statusCode": http.StatusBadRequest,
		})
		return profileInput{}, false
	}
	return in, true
}

// apply copies the input onto p. Optional fields absent from the body are
// left alone.
func (in profileInput) apply(p *models.Profile) {
	p.BusinessName = htmlsanitize.Clean(in.BusinessName)
	p.BusinessType = htmlsanitize.Clean(in.BusinessType)
	p.ContactNumber = in.ContactNumber
	p.ContactName = htmlsanitize.Clean(in.ContactName)
	p.Pincode = in.Pincode
	p.City = htmlsanitize.Clean(in.City)
	p.State = htmlsanitize.Clean(in.State)
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = htmlsanitize.Clean(*v)
		}
	}
	set(&p.Website, in.Website)
	set(&p.Pancard, in.Pancard)
	set(&p.GST, in.GST)
	set(&p.AnnualTurnover, in.AnnualTurnover)
	set(&p.Address, in.Address)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/v1/auth/client/profile                                             |
| A body with humanAgentId creates that human agent's profile instead.        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var p models.Profile
	in.apply(&p)

	if in.HumanAgentID != "" {
		haID, _ := primitive.ObjectIDFromHex(in.HumanAgentID)
		if _, err := h.HumanAgents.GetForClient(ctx, clientID, haID); err == mongo.ErrNoDocuments {
			fail(w, http.StatusNotFound, "Human agent not found")
			return
		} else if err != nil {
			serverError(w, h.Log, err)
			return
		}
		p.HumanAgentID = &haID
		created, err := h.Profiles.Create(ctx, p)
		if errors.Is(err, profilestore.ErrExists) {
			fail(w, http.StatusConflict, "Profile already exists for this human agent. Use update endpoint to modify existing profile.")
			return
		}
		if err != nil {
			serverError(w, h.Log, err)
			return
		}
		reply(w, http.StatusCreated, httpx.M{"message": "Profile created successfully", "profile": created})
		return
	}

	p.ClientID = &clientID
	var created models.Profile
	err := h.withSync(ctx, clientID, func(ctx context.Context) (bool, error) {
		var err error
		created, err = h.Profiles.Create(ctx, p)
		return created.IsProfileCompleted, err
	})
	if errors.Is(err, profilestore.ErrExists) {
		fail(w, http.StatusConflict, "Profile already exists for this client. Use update endpoint to modify existing profile.")
		return
	}
	if err != nil {
		serverError(w, h.Log, err, zap.String("client_id", clientID.Hex()))
		return
	}
	h.Log.Info("profile created",
		zap.String("client_id", clientID.Hex()),
		zap.Bool("completed", created.IsProfileCompleted))
	reply(w, http.StatusCreated, httpx.M{"message": "Profile created successfully", "profile": created})
}

// pathClient parses {clientId} and checks the caller may use it.
func pathClient(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "clientId"))
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid client ID format")
		return primitive.NilObjectID, false
	}
	if !authz.CanAccessClient(r, id) {
		fail(w, http.StatusForbidden, "Access denied")
		return primitive.NilObjectID, false
	}
	return id, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/v1/auth/client/profile/{clientId}                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathClient(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByClient(ctx, clientID)
	if err == mongo.ErrNoDocuments {
		fail(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		serverError(w, h.Log, err)
		return
	}
	c, err := h.Clients.GetByID(ctx, clientID)
	if err != nil && err != mongo.ErrNoDocuments {
		serverError(w, h.Log, err)
		return
	}
	// Reads repair a flag left stale by an interrupted write.
	if err == nil && c.IsProfileCompleted != p.IsProfileCompleted {
		if err := h.Clients.SetProfileCompleted(ctx, clientID, p.IsProfileCompleted); err != nil {
			serverError(w, h.Log, err)
			return
		}
	}
	reply(w, http.StatusOK, httpx.M{
		"message": "Profile retrieved successfully",
		"email":   c.Email,
		"profile": p,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /api/v1/auth/client/profile/{clientId}                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathClient(w, r)
	if !ok {
		return
	}
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Profiles.GetByClient(ctx, clientID)
	if err == mongo.ErrNoDocuments {
		fail(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		serverError(w, h.Log, err)
		return
	}
	in.apply(&p)

	var saved models.Profile
	err = h.withSync(ctx, clientID, func(ctx context.Context) (bool, error) {
		var err error
		saved, err = h.Profiles.Save(ctx, p)
		return saved.IsProfileCompleted, err
	})
	if err != nil {
		serverError(w, h.Log, err, zap.String("client_id", clientID.Hex()))
		return
	}
	reply(w, http.StatusOK, httpx.M{"message": "Profile updated successfully", "profile": saved})
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /api/v1/auth/client/profile/{clientId}                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathClient(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.withSync(ctx, clientID, func(ctx context.Context) (bool, error) {
		n, err := h.Profiles.DeleteByClient(ctx, clientID)
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, mongo.ErrNoDocuments
		}
		return false, nil
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		fail(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		serverError(w, h.Log, err, zap.String("client_id", clientID.Hex()))
		return
	}
	h.Log.Info("profile deleted", zap.String("client_id", clientID.Hex()))
	reply(w, http.StatusOK, httpx.M{"message": "Profile deleted successfully"})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/v1/auth/client/profile?page=&limit=&search=   (admin)               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r)
	search := query.Get(r, "search")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := h.Profiles.List(ctx, search, pg)
	if err != nil {
		serverError(w, h.Log, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(list))
	for _, p := range list {
		if p.ClientID != nil {
			ids = append(ids, *p.ClientID)
		}
	}
	owners, err := h.Clients.ByIDs(ctx, ids)
	if err != nil {
		serverError(w, h.Log, err)
		return
	}

	views := make([]profileView, len(list))
	for i, p := range list {
		views[i] = profileView{Profile: p}
		if p.ClientID == nil {
			continue
		}
		if c, ok := owners[*p.ClientID]; ok {
			views[i].Client = &clientRef{ID: c.ID, Email: c.Email, Name: c.Name}
		}
	}

	reply(w, http.StatusOK, httpx.M{
		"message":     "Profiles retrieved successfully",
		"profiles":    views,
		"totalPages":  pg.TotalPages(total),
		"currentPage": pg.Page,
		"total":       total,
	})
}
