package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/voicedesk/internal/app/store/audit"
	"github.com/dalemusser/voicedesk/internal/app/system/auditlog"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	// All no-ops.
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, "client", primitive.NewObjectID(), nil, "password")
	logger.LoginFailed(ctx, req, audit.EventLoginFailedUserNotFound, "client", nil, "x@y.z", "user not found")
	logger.ClientApproved(ctx, req, primitive.NewObjectID(), primitive.NewObjectID())
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
		wantLog int
	}{
		{"all", 1, 1},
		{"db", 1, 0},
		{"log", 0, 1},
		{"off", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			core, logs := observer.New(zap.InfoLevel)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: tt.setting, Admin: "all"})
			req := httptest.NewRequest("POST", "/api/v1/client/login", nil)
			logger.LoginSuccess(ctx, req, "client", primitive.NewObjectID(), nil, "password")

			n, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
			if err != nil {
				t.Fatalf("CountByFilter: %v", err)
			}
			if int(n) != tt.wantDB {
				t.Errorf("db events = %d, want %d", n, tt.wantDB)
			}
			if got := logs.FilterMessage("audit event").Len(); got != tt.wantLog {
				t.Errorf("log entries = %d, want %d", got, tt.wantLog)
			}
		})
	}
}

func TestLogger_LoginEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"})
	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "VoiceDeskApp/2.1")

	userID := primitive.NewObjectID()
	clientID := primitive.NewObjectID()
	logger.LoginSuccess(ctx, req, "human_agent", userID, &clientID, "google")
	logger.LoginFailed(ctx, req, audit.EventLoginFailedWrongPassword, "client", &userID, "a@acme.com", "wrong password")

	events, err := store.Query(ctx, audit.QueryFilter{UserID: &userID})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	byType := map[string]audit.Event{}
	for _, e := range events {
		byType[e.EventType] = e
	}
	ok := byType[audit.EventLoginSuccess]
	if !ok.Success || ok.IP != "203.0.113.9" || ok.UserAgent != "VoiceDeskApp/2.1" {
		t.Errorf("success event = %+v", ok)
	}
	if ok.ClientID == nil || *ok.ClientID != clientID || ok.Details["auth_method"] != "google" {
		t.Errorf("success event tenant/details = %+v", ok)
	}
	bad := byType[audit.EventLoginFailedWrongPassword]
	if bad.Success || bad.FailureReason != "wrong password" || bad.Details["attempted_email"] != "a@acme.com" {
		t.Errorf("failed event = %+v", bad)
	}
}

func TestLogger_AdminEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "off", Admin: "db"})
	req := httptest.NewRequest("POST", "/", nil)
	actor := primitive.NewObjectID()
	clientID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()

	logger.ClientApproved(ctx, req, actor, clientID)
	logger.ClientDeleted(ctx, req, actor, clientID)
	logger.ClientTokenIssued(ctx, req, actor, clientID)
	logger.AdminCreated(ctx, req, actor, adminID, "admin")
	logger.AdminDeleted(ctx, req, actor, adminID)
	logger.LoginSuccess(ctx, req, "admin", actor, nil, "password")

	forClient, err := store.Query(ctx, audit.QueryFilter{ClientID: &clientID})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(forClient) != 3 {
		t.Errorf("client events = %d, want 3", len(forClient))
	}
	for _, e := range forClient {
		if e.ActorID == nil || *e.ActorID != actor {
			t.Errorf("event %s missing actor", e.EventType)
		}
	}

	created, _ := store.Query(ctx, audit.QueryFilter{EventType: audit.EventAdminCreated})
	if len(created) != 1 || created[0].Details["role"] != "admin" {
		t.Errorf("admin_created = %+v", created)
	}

	// Auth is off.
	n, _ := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if n != 0 {
		t.Errorf("auth events = %d, want 0", n)
	}
}
