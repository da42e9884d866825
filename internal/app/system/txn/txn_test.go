package txn_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/voicedesk/internal/app/system/txn"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("connection reset by peer"), false},
		{"code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"}, true},
		{"code 51", mongo.CommandError{Code: 51}, true},
		{"code 263", mongo.CommandError{Code: 263}, true},
		{"other code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"wrapped code", fmt.Errorf("delete client: %w", mongo.CommandError{Code: 20}), true},
		{"two hints", errors.New("Transaction failed: this server is not a REPLICA SET member"), true},
		{"session hints", errors.New("sessions are not supported by this deployment"), true},
		{"one hint only", errors.New("transaction aborted"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := txn.IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_NilClient(t *testing.T) {
	calls := 0
	err := txn.Run(context.Background(), nil, nil, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("Run: err=%v calls=%d", err, calls)
	}

	boom := errors.New("boom")
	if err := txn.Run(context.Background(), nil, nil, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want %v", err, boom)
	}
}

// Against a real server Run commits both writes, with or without
// transaction support.
func TestRun_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clients := db.Collection("clients")
	profiles := db.Collection("profiles")
	err := txn.Run(ctx, db.Client(), zap.NewNop(), func(ctx context.Context) error {
		if _, err := clients.InsertOne(ctx, bson.M{"name": "Acme"}); err != nil {
			return err
		}
		_, err := profiles.InsertOne(ctx, bson.M{"business_name": "Acme"})
		return err
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, c := range []*mongo.Collection{clients, profiles} {
		n, err := c.CountDocuments(ctx, bson.M{})
		if err != nil || n != 1 {
			t.Errorf("%s: count=%d err=%v", c.Name(), n, err)
		}
	}
}
