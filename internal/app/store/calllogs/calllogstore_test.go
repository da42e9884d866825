package calllogstore_test

import (
	"testing"
	"time"

	calllogstore "github.com/dalemusser/voicedesk/internal/app/store/calllogs"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := calllogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	l, err := store.Create(ctx, models.CallLog{ClientID: primitive.NewObjectID(), Mobile: "9876543210", Duration: 42})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.LeadStatus != models.LeadMaybe {
		t.Errorf("LeadStatus = %q, want maybe", l.LeadStatus)
	}
	if l.Time.IsZero() {
		t.Error("Time should default to now")
	}
}

func TestStore_FindWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := calllogstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clientID := primitive.NewObjectID()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fixtures.CreateCallLog(ctx, clientID, base.Add(-48*time.Hour), 10, models.LeadVVI)
	fixtures.CreateCallLog(ctx, clientID, base, 20, models.LeadMaybe)
	fixtures.CreateCallLog(ctx, clientID, base.Add(48*time.Hour), 30, models.LeadNotConnected)
	fixtures.CreateCallLog(ctx, primitive.NewObjectID(), base, 99, models.LeadVVI)

	start := base.Add(-time.Hour)
	end := base.Add(time.Hour)

	tests := []struct {
		name       string
		start, end *time.Time
		want       int
	}{
		{"all", nil, nil, 3},
		{"closed window", &start, &end, 1},
		{"from start", &start, nil, 2},
		{"until end", nil, &end, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Find(ctx, clientID, tt.start, tt.end)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d logs, want %d", len(got), tt.want)
			}
		})
	}

	all, _ := store.Find(ctx, clientID, nil, nil)
	if all[0].Duration != 30 {
		t.Error("expected newest call first")
	}
}
