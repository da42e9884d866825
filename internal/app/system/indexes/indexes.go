// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type collectionIndexes struct {
	coll   string
	models []mongo.IndexModel
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func uniq(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

// uniqWhenSet is a unique index over documents where field exists.
func uniqWhenSet(name, field string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{
		Keys: keys,
		Options: options.Index().SetName(name).SetUnique(true).
			SetPartialFilterExpression(bson.M{field: bson.M{"$exists": true}}),
	}
}

func desired() []collectionIndexes {
	return []collectionIndexes{
		{"clients", []mongo.IndexModel{
			uniq("uniq_clients_email", bson.D{{Key: "email", Value: 1}}),
			idx("idx_clients_gst", bson.D{{Key: "gst_no", Value: 1}}),
			idx("idx_clients_pan", bson.D{{Key: "pan_no", Value: 1}}),
			idx("idx_clients_mobile", bson.D{{Key: "mobile_no", Value: 1}}),
			idx("idx_clients_google_id", bson.D{{Key: "google_id", Value: 1}}),
			idx("idx_clients_created", bson.D{{Key: "created_at", Value: -1}}),
		}},
		{"admins", []mongo.IndexModel{
			uniq("uniq_admins_email", bson.D{{Key: "email", Value: 1}}),
		}},
		{"human_agents", []mongo.IndexModel{
			uniq("uniq_human_agents_email", bson.D{{Key: "email", Value: 1}}),
			uniq("uniq_human_agents_client_name", bson.D{{Key: "client_id", Value: 1}, {Key: "human_agent_name", Value: 1}}),
			idx("idx_human_agents_client_created", bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{"agents", []mongo.IndexModel{
			uniq("uniq_agents_client_name", bson.D{{Key: "client_id", Value: 1}, {Key: "agent_name", Value: 1}}),
			idx("idx_agents_client_created", bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{"groups", []mongo.IndexModel{
			idx("idx_groups_client_created", bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{"campaigns", []mongo.IndexModel{
			idx("idx_campaigns_client_created", bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_campaigns_status_window", bson.D{{Key: "status", Value: 1}, {Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}}),
		}},
		{"call_logs", []mongo.IndexModel{
			idx("idx_call_logs_client_campaign_agent_time", bson.D{
				{Key: "client_id", Value: 1}, {Key: "campaign_id", Value: 1},
				{Key: "agent_id", Value: 1}, {Key: "time", Value: -1},
			}),
			idx("idx_call_logs_client_lead", bson.D{{Key: "client_id", Value: 1}, {Key: "lead_status", Value: 1}}),
			idx("idx_call_logs_client_time", bson.D{{Key: "client_id", Value: 1}, {Key: "time", Value: -1}}),
		}},
		{"profiles", []mongo.IndexModel{
			uniqWhenSet("uniq_profiles_client", "client_id", bson.D{{Key: "client_id", Value: 1}}),
			uniqWhenSet("uniq_profiles_human_agent", "human_agent_id", bson.D{{Key: "human_agent_id", Value: 1}}),
			idx("idx_profiles_created", bson.D{{Key: "created_at", Value: -1}}),
		}},
		{"business_info", []mongo.IndexModel{
			idx("idx_business_info_client", bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{"agent_settings", []mongo.IndexModel{
			uniq("uniq_agent_settings_client", bson.D{{Key: "client_id", Value: 1}}),
		}},
		{"client_api_keys", []mongo.IndexModel{
			uniq("uniq_client_api_keys_client_provider", bson.D{{Key: "client_id", Value: 1}, {Key: "provider", Value: 1}}),
		}},
		{"audit_events", []mongo.IndexModel{
			idx("idx_audit_time", bson.D{{Key: "timestamp", Value: -1}}),
			idx("idx_audit_client_time", bson.D{{Key: "client_id", Value: 1}, {Key: "timestamp", Value: -1}}),
			idx("idx_audit_user_time", bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}),
			idx("idx_audit_category_type_time", bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}}),
		}},
		{"oauth_states", []mongo.IndexModel{
			uniq("uniq_oauth_states_state", bson.D{{Key: "state", Value: 1}}),
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("ttl_oauth_states_expires").SetExpireAfterSeconds(0),
			},
		}},
	}
}

/*
EnsureAll is called from EnsureSchema at startup. It is idempotent and
collects every failure so a single run reports all problems.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, ci := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(ci.coll), ci.models); err != nil {
			problems = append(problems, ci.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile one collection                                                   */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Some servers report IndexOptionsConflict when the same keys already
// exist under another name or with other options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listBySig(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var ix existingIndex
		if err := cur.Decode(&ix); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(ix.Key)] = ix
	}
	return out
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		if err := ensureOne(ctx, coll, m); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ensureOne makes sure an index with m's keys, name and uniqueness exists.
// An index with the same keys but another name or uniqueness is dropped and
// recreated.
func ensureOne(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel) error {
	name := ""
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	sig := keySig(m.Keys.(bson.D))
	start := time.Now()
	log := zap.L().With(
		zap.String("collection", coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
		zap.Bool("unique", unique != nil && *unique),
	)

	ex, found := listBySig(ctx, coll)[sig]
	if found && sameBoolPtr(unique, ex.Unique) && (name == "" || ex.Name == name) {
		log.Debug("reusing existing index", zap.Duration("took", time.Since(start)))
		return nil
	}
	if found {
		log.Info("replacing index", zap.String("existing", ex.Name))
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("%s(%s): drop %s failed: %w", coll.Name(), name, ex.Name, err)
		}
	}

	_, err := coll.Indexes().CreateOne(ctx, m)
	if isOptionsConflictErr(err) && !found {
		// Keys matched under a form keySig did not catch; retry once after
		// dropping whatever now matches.
		if ex, ok := listBySig(ctx, coll)[sig]; ok {
			if sameBoolPtr(unique, ex.Unique) {
				log.Info("reusing existing index (post-conflict)", zap.String("existing", ex.Name))
				return nil
			}
			if _, dropErr := coll.Indexes().DropOne(ctx, ex.Name); dropErr != nil {
				log.Warn("failed to drop conflicting index", zap.Error(dropErr))
			}
			_, err = coll.Indexes().CreateOne(ctx, m)
		}
	}
	if err != nil {
		log.Warn("index ensure failed", zap.Error(err))
		if isDuplicateKeyErr(err) && unique != nil && *unique {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig)
		}
		return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
	}
	log.Info("index created", zap.Duration("took", time.Since(start)))
	return nil
}
