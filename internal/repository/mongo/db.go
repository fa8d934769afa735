package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// ConnectDB connects to MongoDB and pings the primary before returning.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates every index the repositories rely on. Plan creation
// depends on the unique userId index on therapy_plans.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := EnsureTherapyPlanIndexes(ctx, db.Collection(therapyPlanCollectionName)); err != nil {
		return fmt.Errorf("therapy plan indexes: %w", err)
	}
	if err := EnsureMoodIndexes(ctx, db.Collection(moodCollectionName)); err != nil {
		return fmt.Errorf("mood indexes: %w", err)
	}
	if err := EnsureProfileIndexes(ctx, db); err != nil {
		return fmt.Errorf("profile indexes: %w", err)
	}
	if err := EnsureUserIndexes(ctx, db.Collection(userCollectionName)); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}
