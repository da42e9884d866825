package humanagentstore_test

import (
	"testing"

	humanagentstore "github.com/dalemusser/voicedesk/internal/app/store/humanagents"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := humanagentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c1 := fixtures.CreateClient(ctx, "One", "one@acme.com")
	c2 := fixtures.CreateClient(ctx, "Two", "two@acme.com")

	h, err := store.Create(ctx, models.HumanAgent{
		ClientID: c1.ID, HumanAgentName: " Ravi ", Email: "Ravi@Acme.com", MobileNumber: "9000000001", DID: "0801",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if h.HumanAgentName != "Ravi" || h.Email != "ravi@acme.com" {
		t.Errorf("normalisation: name=%q email=%q", h.HumanAgentName, h.Email)
	}
	if h.AgentIDs == nil {
		t.Error("AgentIDs should default to an empty slice")
	}

	_, err = store.Create(ctx, models.HumanAgent{ClientID: c1.ID, HumanAgentName: "Ravi", Email: "other@acme.com"})
	if err != humanagentstore.ErrDuplicateName {
		t.Errorf("same name same client: got %v", err)
	}

	_, err = store.Create(ctx, models.HumanAgent{ClientID: c2.ID, HumanAgentName: "Ravi", Email: "ravi@acme.com"})
	if err != humanagentstore.ErrDuplicateEmail {
		t.Errorf("same email other client: got %v", err)
	}

	if _, err := store.Create(ctx, models.HumanAgent{ClientID: c2.ID, HumanAgentName: "Ravi", Email: "ravi2@acme.com"}); err != nil {
		t.Errorf("same name other client should succeed: %v", err)
	}
}

func TestStore_ListByClientPopulatesAgents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := humanagentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateClient(ctx, "Acme", "owner@acme.com")
	agent := fixtures.CreateAgent(ctx, c.ID, "Riya")
	h := fixtures.CreateHumanAgent(ctx, c.ID, "Ravi", "ravi@acme.com")

	if _, err := store.Update(ctx, c.ID, h.ID, humanagentstore.Update{AgentIDs: []primitive.ObjectID{agent.ID}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	fixtures.CreateHumanAgent(ctx, c.ID, "Meena", "meena@acme.com")

	list, err := store.ListByClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d human agents, want 2", len(list))
	}
	if list[0].HumanAgentName != "Meena" {
		t.Errorf("expected newest first, got %q", list[0].HumanAgentName)
	}
	ravi := list[1]
	if len(ravi.Agents) != 1 || ravi.Agents[0].AgentName != "Riya" || ravi.Agents[0].Description == "" {
		t.Errorf("populated agents: %+v", ravi.Agents)
	}
	if list[0].Agents == nil {
		t.Error("Agents should be an empty slice, not nil")
	}
}

func TestStore_ScopedToClient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := humanagentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateClient(ctx, "Owner", "owner@acme.com")
	other := fixtures.CreateClient(ctx, "Other", "other@acme.com")
	h := fixtures.CreateHumanAgent(ctx, owner.ID, "Ravi", "ravi@acme.com")

	if _, err := store.GetForClient(ctx, other.ID, h.ID); err != mongo.ErrNoDocuments {
		t.Errorf("cross-client read: got %v", err)
	}
	name := "Ravi K"
	if _, err := store.Update(ctx, other.ID, h.ID, humanagentstore.Update{HumanAgentName: &name}); err != mongo.ErrNoDocuments {
		t.Errorf("cross-client update: got %v", err)
	}
	if n, _ := store.Delete(ctx, other.ID, h.ID); n != 0 {
		t.Error("cross-client delete should not remove anything")
	}

	email := " RAVI.K@acme.com "
	updated, err := store.Update(ctx, owner.ID, h.ID, humanagentstore.Update{HumanAgentName: &name, Email: &email})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Email != "ravi.k@acme.com" || updated.HumanAgentName != "Ravi K" {
		t.Errorf("updated: %+v", updated)
	}

	if _, err := store.GetByEmailAndClient(ctx, "ravi.k@acme.com", owner.ID); err != nil {
		t.Errorf("GetByEmailAndClient: %v", err)
	}
	if _, err := store.GetByEmailAndClient(ctx, "ravi.k@acme.com", other.ID); err != mongo.ErrNoDocuments {
		t.Errorf("GetByEmailAndClient wrong client: %v", err)
	}
	if n, err := store.Delete(ctx, owner.ID, h.ID); err != nil || n != 1 {
		t.Errorf("Delete: n=%d err=%v", n, err)
	}
}
