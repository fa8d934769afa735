package mongo

import (
	"context"
	"errors"
	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	profileCollectionName    = "profiles"
	onboardingCollectionName = "onboardings"
)

type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a read-only profile repository.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{collection: db.Collection(profileCollectionName)}
}

func (r *mongoProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	var profile domain.Profile
	if err := findByUserID(ctx, r.collection, userID, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

type mongoOnboardingRepository struct {
	collection *mongo.Collection
}

// NewMongoOnboardingRepository creates a read-only onboarding repository.
func NewMongoOnboardingRepository(db *mongo.Database) repository.OnboardingRepository {
	return &mongoOnboardingRepository{collection: db.Collection(onboardingCollectionName)}
}

func (r *mongoOnboardingRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Onboarding, error) {
	var onboarding domain.Onboarding
	if err := findByUserID(ctx, r.collection, userID, &onboarding); err != nil {
		return nil, err
	}
	return &onboarding, nil
}

func findByUserID(ctx context.Context, collection *mongo.Collection, userID primitive.ObjectID, out interface{}) error {
	err := collection.FindOne(ctx, bson.M{"userId": userID}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

// EnsureProfileIndexes creates the one-per-user indexes for profiles and onboardings.
func EnsureProfileIndexes(ctx context.Context, db *mongo.Database) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(profileCollectionName).Indexes().CreateOne(ctx, unique); err != nil {
		return err
	}
	_, err := db.Collection(onboardingCollectionName).Indexes().CreateOne(ctx, unique)
	return err
}
