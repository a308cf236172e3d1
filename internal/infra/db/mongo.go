package db

import (
	"context"
	"fmt"
	"time"

	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/config"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Connect opens the Mongo client and returns the configured database.
func Connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.Mongo.ConnURI()).
		SetAppName(cfg.App.Name).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.Info("connected to mongo", zap.String("database", cfg.Mongo.Database))
	return client.Database(cfg.Mongo.Database), nil
}

// EnsureIndexes creates the lookup and full-text indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	tests := db.Collection(model.Test{}.CollectionName())
	_, err := tests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "campaign_id", Value: 1}}},
		{Keys: bson.D{{Key: "sample_id", Value: 1}}},
		{Keys: bson.D{{Key: "environment_id", Value: 1}}},
		{Keys: bson.D{{Key: "operator", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "_id", Value: "text"},
				{Key: "campaign_id", Value: "text"},
				{Key: "sample_id", Value: "text"},
				{Key: "environment_id", Value: "text"},
				{Key: "operator", Value: "text"},
				{Key: "description", Value: "text"},
			},
			Options: options.Index().SetName("tests_text"),
		},
	})
	if err != nil {
		return fmt.Errorf("create tests indexes: %w", err)
	}

	logbook := db.Collection(model.LogbookEntry{}.CollectionName())
	if _, err := logbook.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "test_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create logbook indexes: %w", err)
	}
	return nil
}

func Disconnect(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}
