package mongo

import (
	"context"
	"errors"
	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const moodCollectionName = "moods"

// mongoMoodRepository implements repository.MoodRepository
type mongoMoodRepository struct {
	collection *mongo.Collection
}

// NewMongoMoodRepository creates a new mood log repository backed by MongoDB.
func NewMongoMoodRepository(db *mongo.Database) repository.MoodRepository {
	return &mongoMoodRepository{
		collection: db.Collection(moodCollectionName),
	}
}

// Create inserts a mood observation.
func (r *mongoMoodRepository) Create(ctx context.Context, mood *domain.MoodObservation) (primitive.ObjectID, error) {
	if mood.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("mood requires userId")
	}
	if mood.Score < domain.MinMoodScore || mood.Score > domain.MaxMoodScore {
		return primitive.NilObjectID, &domain.ValidationError{Fields: []string{"mood"}}
	}

	mood.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if mood.Date.IsZero() {
		mood.Date = now
	}
	mood.CreatedAt = now

	result, err := r.collection.InsertOne(ctx, mood)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// Recent returns the newest observations for a user, newest first.
func (r *mongoMoodRepository) Recent(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.MoodObservation, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	moods := []domain.MoodObservation{}
	if err = cursor.All(ctx, &moods); err != nil {
		return nil, err
	}
	return moods, nil
}

// EnsureMoodIndexes creates the index backing Recent.
func EnsureMoodIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
