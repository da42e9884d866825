package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/authutil"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FixturePassword is the plain password of every fixture account.
const FixturePassword = "Sunrise#2024"

// WithChiURLParam adds a chi URL parameter to the request context.
// Repeated calls accumulate parameters.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

func (f *Fixtures) hash() string {
	f.t.Helper()
	h, err := authutil.HashPassword(FixturePassword)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	return h
}

// CreateClient creates an approved client with a completed profile flag.
func (f *Fixtures) CreateClient(ctx context.Context, name, email string) models.Client {
	f.t.Helper()
	return f.CreateClientWith(ctx, models.Client{Name: name, Email: email, IsApproved: true, IsProfileCompleted: true})
}

// CreateClientWith inserts c after filling ID, password and timestamps.
func (f *Fixtures) CreateClientWith(ctx context.Context, c models.Client) models.Client {
	f.t.Helper()
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	if c.Password == "" && !c.IsGoogleUser {
		c.Password = f.hash()
	}
	c.CreatedAt, c.UpdatedAt = now, now
	f.insert(ctx, "clients", c)
	return c
}

// CreateAdmin creates an admin with the given role.
func (f *Fixtures) CreateAdmin(ctx context.Context, email, role string) models.Admin {
	f.t.Helper()
	now := time.Now().UTC()
	a := models.Admin{
		ID:        primitive.NewObjectID(),
		Name:      "Test Admin",
		Email:     email,
		Password:  f.hash(),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "admins", a)
	return a
}

// CreateHumanAgent creates an approved human agent under clientID.
func (f *Fixtures) CreateHumanAgent(ctx context.Context, clientID primitive.ObjectID, name, email string) models.HumanAgent {
	f.t.Helper()
	now := time.Now().UTC()
	h := models.HumanAgent{
		ID:                 primitive.NewObjectID(),
		ClientID:           clientID,
		HumanAgentName:     name,
		Email:              email,
		MobileNumber:       "9000000000",
		DID:                "080000000",
		AgentIDs:           []primitive.ObjectID{},
		IsProfileCompleted: true,
		IsApproved:         true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.insert(ctx, "human_agents", h)
	return h
}

// CreateAgent creates an agent with one starting message.
func (f *Fixtures) CreateAgent(ctx context.Context, clientID primitive.ObjectID, name string) models.Agent {
	f.t.Helper()
	now := time.Now().UTC()
	a := models.Agent{
		ID:               primitive.NewObjectID(),
		ClientID:         clientID,
		AgentName:        name,
		Description:      name + " handles inbound enquiries",
		FirstMessage:     "Hello!",
		SystemPrompt:     "You are helpful.",
		StartingMessages: []models.StartingMessage{{Text: "Hello!"}},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	a.ApplyDefaults()
	f.insert(ctx, "agents", a)
	return a
}

// CreateGroup creates a group with the given contacts.
func (f *Fixtures) CreateGroup(ctx context.Context, clientID primitive.ObjectID, name string, contacts ...models.Contact) models.Group {
	f.t.Helper()
	now := time.Now().UTC()
	for i := range contacts {
		if contacts[i].ID.IsZero() {
			contacts[i].ID = primitive.NewObjectID()
		}
		if contacts[i].CreatedAt.IsZero() {
			contacts[i].CreatedAt = now
		}
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	g := models.Group{
		ID:          primitive.NewObjectID(),
		ClientID:    clientID,
		Name:        name,
		Description: "",
		Contacts:    contacts,
		AgentIDs:    []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "groups", g)
	return g
}

// CreateCampaign creates a campaign over [start, end] with a stored status
// that may be deliberately stale.
func (f *Fixtures) CreateCampaign(ctx context.Context, clientID primitive.ObjectID, name string, start, end time.Time, status string, groupIDs ...primitive.ObjectID) models.Campaign {
	f.t.Helper()
	now := time.Now().UTC()
	if groupIDs == nil {
		groupIDs = []primitive.ObjectID{}
	}
	c := models.Campaign{
		ID:        primitive.NewObjectID(),
		ClientID:  clientID,
		Name:      name,
		GroupIDs:  groupIDs,
		StartDate: start.UTC(),
		EndDate:   end.UTC(),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "campaigns", c)
	return c
}

// CreateCallLog records a call at the given time.
func (f *Fixtures) CreateCallLog(ctx context.Context, clientID primitive.ObjectID, at time.Time, duration float64, leadStatus string) models.CallLog {
	f.t.Helper()
	now := time.Now().UTC()
	l := models.CallLog{
		ID:         primitive.NewObjectID(),
		ClientID:   clientID,
		Mobile:     "9876543210",
		Time:       at.UTC(),
		Duration:   duration,
		LeadStatus: leadStatus,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "call_logs", l)
	return l
}

// CompleteProfile returns a client profile with every required field set.
func CompleteProfile(clientID primitive.ObjectID) models.Profile {
	return models.Profile{
		ClientID:      &clientID,
		BusinessName:  "Acme Realty",
		BusinessType:  "Real estate",
		ContactNumber: "9876543210",
		ContactName:   "Asha Rao",
		Pincode:       "560001",
		City:          "Bengaluru",
		State:         "Karnataka",
		Pancard:       "ABCDE1234F",
		GST:           "29ABCDE1234F1Z5",
	}
}

// CreateProfile inserts p after filling ID, completion flag and timestamps.
func (f *Fixtures) CreateProfile(ctx context.Context, p models.Profile) models.Profile {
	f.t.Helper()
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.IsProfileCompleted = p.IsComplete()
	p.CreatedAt, p.UpdatedAt = now, now
	f.insert(ctx, "profiles", p)
	return p
}
