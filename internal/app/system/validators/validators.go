// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/voicedesk/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates every collection the service uses and attaches a
// JSON-Schema validator where one is defined. Deployments without collMod
// support are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Accounts
	ensure("clients", clientsSchema())
	ensure("admins", adminsSchema())
	ensure("human_agents", humanAgentsSchema())
	ensure("profiles", profilesSchema())

	// Agents and dialing
	ensure("agents", agentsSchema())
	ensure("groups", groupsSchema())
	ensure("campaigns", campaignsSchema())
	ensure("call_logs", callLogsSchema())

	// Free-form documents
	ensure("business_info", businessInfoSchema())
	ensure("agent_settings", nil)
	ensure("client_api_keys", nil)
	ensure("oauth_states", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func enum(values []string) bson.A {
	out := make(bson.A, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func object(required bson.A, props bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

func clientsSchema() bson.M {
	return object(bson.A{"email", "is_approved", "is_profile_completed"}, bson.M{
		"email":                nonBlank,
		"name":                 bson.M{"bsonType": "string"},
		"is_approved":          bson.M{"bsonType": "bool"},
		"is_profile_completed": bson.M{"bsonType": "bool"},
		"is_google_user":       bson.M{"bsonType": "bool"},
	})
}

func adminsSchema() bson.M {
	return object(bson.A{"email", "password", "role"}, bson.M{
		"email":    nonBlank,
		"password": nonBlank,
		"role":     bson.M{"enum": bson.A{models.RoleAdmin, models.RoleSuperAdmin}},
	})
}

func humanAgentsSchema() bson.M {
	return object(bson.A{"client_id", "human_agent_name", "email"}, bson.M{
		"client_id":        bson.M{"bsonType": "objectId"},
		"human_agent_name": nonBlank,
		"email":            nonBlank,
		"agent_ids":        bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
	})
}

func profilesSchema() bson.M {
	return object(bson.A{"is_profile_completed"}, bson.M{
		"client_id":            bson.M{"bsonType": "objectId"},
		"human_agent_id":       bson.M{"bsonType": "objectId"},
		"is_profile_completed": bson.M{"bsonType": "bool"},
	})
}

func agentsSchema() bson.M {
	return object(bson.A{"client_id", "agent_name", "starting_messages"}, bson.M{
		"client_id":         bson.M{"bsonType": "objectId"},
		"agent_name":        nonBlank,
		"personality":       bson.M{"enum": enum(models.Personalities)},
		"stt_selection":     bson.M{"enum": enum(models.STTProviders)},
		"tts_selection":     bson.M{"enum": enum(models.TTSProviders)},
		"llm_selection":     bson.M{"enum": enum(models.LLMProviders)},
		"voice_selection":   bson.M{"enum": enum(models.Voices)},
		"service_provider":  bson.M{"enum": enum(models.ServiceProviders)},
		"starting_messages": bson.M{"bsonType": "array", "minItems": 1},
	})
}

func groupsSchema() bson.M {
	return object(bson.A{"client_id", "name"}, bson.M{
		"client_id": bson.M{"bsonType": "objectId"},
		"name":      nonBlank,
		"contacts":  bson.M{"bsonType": "array"},
	})
}

func campaignsSchema() bson.M {
	return object(bson.A{"client_id", "name", "start_date", "end_date", "status"}, bson.M{
		"client_id":  bson.M{"bsonType": "objectId"},
		"name":       nonBlank,
		"start_date": bson.M{"bsonType": "date"},
		"end_date":   bson.M{"bsonType": "date"},
		"status":     bson.M{"enum": bson.A{models.CampaignActive, models.CampaignExpired}},
	})
}

func callLogsSchema() bson.M {
	statuses := append(enum(models.LeadStatuses), models.LeadVeryInterested, models.LeadMedium)
	return object(bson.A{"client_id", "lead_status"}, bson.M{
		"client_id":   bson.M{"bsonType": "objectId"},
		"duration":    bson.M{"bsonType": bson.A{"double", "int", "long"}},
		"lead_status": bson.M{"enum": statuses},
	})
}

func businessInfoSchema() bson.M {
	return object(bson.A{"client_id", "text"}, bson.M{
		"client_id": bson.M{"bsonType": "objectId"},
		"text":      nonBlank,
	})
}
