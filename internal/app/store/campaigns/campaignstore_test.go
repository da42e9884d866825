package campaignstore_test

import (
	"testing"
	"time"

	campaignstore "github.com/dalemusser/voicedesk/internal/app/store/campaigns"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateDerivesStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := campaignstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clientID := primitive.NewObjectID()
	now := time.Now()

	tests := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{"running", now.Add(-time.Hour), now.Add(time.Hour), models.CampaignActive},
		{"finished", now.Add(-48 * time.Hour), now.Add(-24 * time.Hour), models.CampaignExpired},
		{"not started", now.Add(24 * time.Hour), now.Add(48 * time.Hour), models.CampaignExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := store.Create(ctx, models.Campaign{ClientID: clientID, Name: tt.name, StartDate: tt.start, EndDate: tt.end})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if c.Status != tt.want {
				t.Errorf("Status = %q, want %q", c.Status, tt.want)
			}
			if c.GroupIDs == nil {
				t.Error("GroupIDs should default to an empty slice")
			}
		})
	}
}

func TestStore_SaveRecomputesStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := campaignstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	c, err := store.Create(ctx, models.Campaign{
		ClientID: primitive.NewObjectID(), Name: "Diwali",
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	c.EndDate = now.Add(-time.Minute)
	saved, err := store.Save(ctx, c)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Status != models.CampaignExpired {
		t.Errorf("Status = %q, want expired", saved.Status)
	}

	c.ClientID = primitive.NewObjectID()
	if _, err := store.Save(ctx, c); err != mongo.ErrNoDocuments {
		t.Errorf("save for other client: got %v", err)
	}
}

func TestStore_SetGroupsReplaces(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := campaignstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clientID := primitive.NewObjectID()
	g1 := fixtures.CreateGroup(ctx, clientID, "One")
	g2 := fixtures.CreateGroup(ctx, clientID, "Two")
	now := time.Now()
	c := fixtures.CreateCampaign(ctx, clientID, "Diwali", now, now.Add(time.Hour), models.CampaignActive, g1.ID)

	updated, err := store.SetGroups(ctx, clientID, c.ID, []primitive.ObjectID{g2.ID})
	if err != nil {
		t.Fatalf("SetGroups: %v", err)
	}
	if len(updated.GroupIDs) != 1 || updated.GroupIDs[0] != g2.ID {
		t.Errorf("GroupIDs = %v, want only %v", updated.GroupIDs, g2.ID)
	}
	if _, err := store.SetGroups(ctx, primitive.NewObjectID(), c.ID, []primitive.ObjectID{g1.ID}); err != mongo.ErrNoDocuments {
		t.Errorf("other client: got %v", err)
	}
}

func TestStore_SweepStatuses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := campaignstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clientID := primitive.NewObjectID()
	now := time.Now()
	staleActive := fixtures.CreateCampaign(ctx, clientID, "Old", now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.CampaignActive)
	staleExpired := fixtures.CreateCampaign(ctx, clientID, "Live", now.Add(-time.Hour), now.Add(time.Hour), models.CampaignExpired)
	fixtures.CreateCampaign(ctx, clientID, "Fine", now.Add(-time.Hour), now.Add(time.Hour), models.CampaignActive)

	n, err := store.SweepStatuses(ctx, now)
	if err != nil {
		t.Fatalf("SweepStatuses: %v", err)
	}
	if n != 2 {
		t.Errorf("changed = %d, want 2", n)
	}

	got, _ := store.GetForClient(ctx, clientID, staleActive.ID)
	if got.Status != models.CampaignExpired {
		t.Errorf("stale active: %q", got.Status)
	}
	got, _ = store.GetForClient(ctx, clientID, staleExpired.ID)
	if got.Status != models.CampaignActive {
		t.Errorf("stale expired: %q", got.Status)
	}

	if n, _ := store.SweepStatuses(ctx, now); n != 0 {
		t.Errorf("second sweep changed %d", n)
	}
}
