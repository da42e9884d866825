package agentstore_test

import (
	"strings"
	"testing"

	agentstore "github.com/dalemusser/voicedesk/internal/app/store/agents"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newAgent(clientID primitive.ObjectID, name string) models.Agent {
	return models.Agent{
		ClientID:         clientID,
		AgentName:        name,
		Description:      "Sales desk",
		FirstMessage:     "Namaste!",
		SystemPrompt:     "Be brief.",
		StartingMessages: []models.StartingMessage{{Text: "Namaste!"}},
	}
}

func TestStore_CreateAppliesDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := agentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clientID := primitive.NewObjectID()
	a := newAgent(clientID, "Riya")
	a.AudioBytes = strings.Repeat("A", 8)

	created, err := store.Create(ctx, a)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Personality != models.DefaultPersonality || created.VoiceSelection != models.DefaultVoice {
		t.Errorf("defaults not applied: %+v", created)
	}
	if created.AudioMetadata == nil || created.AudioMetadata.Size != 6 || created.AudioMetadata.Format != "mp3" {
		t.Errorf("audio metadata: %+v", created.AudioMetadata)
	}

	if _, err := store.Create(ctx, newAgent(clientID, "Riya")); err != agentstore.ErrDuplicateName {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := store.Create(ctx, newAgent(primitive.NewObjectID(), "Riya")); err != nil {
		t.Errorf("same name for another client should succeed: %v", err)
	}
}

func TestStore_ReadsExcludeAudio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := agentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clientID := primitive.NewObjectID()
	a := newAgent(clientID, "Riya")
	a.AudioBytes = "SUQzBAAAAAAA"
	created, err := store.Create(ctx, a)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, newAgent(clientID, "Kabir")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := store.ListByClient(ctx, clientID)
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(list) != 2 || list[0].AgentName != "Kabir" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	for _, ag := range list {
		if ag.AudioBytes != "" {
			t.Error("list should not include audio bytes")
		}
	}

	got, err := store.GetForClient(ctx, clientID, created.ID)
	if err != nil || got.AudioBytes != "" {
		t.Errorf("GetForClient: err=%v audio=%q", err, got.AudioBytes)
	}
	audio, err := store.GetAudio(ctx, clientID, created.ID)
	if err != nil || audio != "SUQzBAAAAAAA" {
		t.Errorf("GetAudio: err=%v audio=%q", err, audio)
	}
	if _, err := store.GetAudio(ctx, primitive.NewObjectID(), created.ID); err != mongo.ErrNoDocuments {
		t.Errorf("GetAudio other client: %v", err)
	}
}

func TestStore_SaveAndAppend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := agentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clientID := primitive.NewObjectID()
	created, _ := store.Create(ctx, newAgent(clientID, "Riya"))
	store.Create(ctx, newAgent(clientID, "Kabir"))

	created.Description = "Support desk"
	saved, err := store.Save(ctx, created)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Description != "Support desk" || saved.CreatedAt != created.CreatedAt {
		t.Errorf("saved: %+v", saved)
	}

	clash := created
	clash.AgentName = "Kabir"
	if _, err := store.Save(ctx, clash); err != agentstore.ErrDuplicateName {
		t.Errorf("rename onto existing: got %v", err)
	}

	foreign := created
	foreign.ClientID = primitive.NewObjectID()
	if _, err := store.Save(ctx, foreign); err != mongo.ErrNoDocuments {
		t.Errorf("save for other client: got %v", err)
	}

	voice := "anushka"
	updated, err := store.AppendMessages(ctx, clientID, created.ID, agentstore.MessageUpdate{
		VoiceSelection: &voice,
		Append:         []models.StartingMessage{{Text: "Hello again"}},
	})
	if err != nil {
		t.Fatalf("AppendMessages: %v", err)
	}
	if updated.VoiceSelection != "anushka" || len(updated.StartingMessages) != 2 {
		t.Errorf("after append: voice=%q messages=%d", updated.VoiceSelection, len(updated.StartingMessages))
	}
	if updated.StartingMessages[1].AudioBase64 != nil {
		t.Error("appended message should have null audio")
	}
}

func TestStore_DeleteAndCountOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := agentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clientID := primitive.NewObjectID()
	a, _ := store.Create(ctx, newAgent(clientID, "Riya"))
	b, _ := store.Create(ctx, newAgent(primitive.NewObjectID(), "Kabir"))

	n, err := store.CountOwned(ctx, clientID, []primitive.ObjectID{a.ID, b.ID})
	if err != nil || n != 1 {
		t.Errorf("CountOwned: n=%d err=%v", n, err)
	}
	if n, err := store.Delete(ctx, clientID, a.ID); err != nil || n != 1 {
		t.Errorf("Delete: n=%d err=%v", n, err)
	}
	if n, _ := store.Delete(ctx, clientID, b.ID); n != 0 {
		t.Error("should not delete another client's agent")
	}
}
