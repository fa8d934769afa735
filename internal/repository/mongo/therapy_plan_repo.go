// internal/repository/mongo/therapy_plan_repo.go
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

const therapyPlanCollectionName = "therapy_plans"

// mongoTherapyPlanRepository implements repository.TherapyPlanRepository
type mongoTherapyPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTherapyPlanRepository creates a new TherapyPlan repository.
func NewMongoTherapyPlanRepository(db *mongo.Database) repository.TherapyPlanRepository {
	return &mongoTherapyPlanRepository{
		collection: db.Collection(therapyPlanCollectionName),
	}
}

// Create inserts a new therapy plan. The unique index on userId is what
// rejects a second plan when two creations race past the service check.
func (r *mongoTherapyPlanRepository) Create(ctx context.Context, plan *domain.TherapyPlan) (primitive.ObjectID, error) {
	if plan.History == nil {
		plan.History = []domain.HistorySnapshot{}
	}
	if err := plan.Validate(); err != nil {
		return primitive.NilObjectID, err
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrAlreadyExists
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByUserID retrieves the plan owned by a user.
func (r *mongoTherapyPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error) {
	var plan domain.TherapyPlan
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetHistory returns only the archived snapshots, most recent first.
func (r *mongoTherapyPlanRepository) GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.HistorySnapshot, error) {
	var plan struct {
		History []domain.HistorySnapshot `bson:"history"`
	}
	opts := options.FindOne().SetProjection(bson.M{"history": 1})
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if plan.History == nil {
		return []domain.HistorySnapshot{}, nil
	}
	return plan.History, nil
}

// SetWeekCompletion updates one week's completed flag via the positional operator.
func (r *mongoTherapyPlanRepository) SetWeekCompletion(ctx context.Context, userID primitive.ObjectID, weekNumber int, completed bool) (*domain.TherapyPlan, error) {
	filter := bson.M{
		"userId":                userID,
		"weeklyPlan.weekNumber": weekNumber,
	}
	update := bson.M{
		"$set": bson.M{
			"weeklyPlan.$.completed": completed,
			"updatedAt":              time.Now().UTC(),
		},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// Reconcile applies an adaptation atomically: new content plus one history
// snapshot pushed at position 0 and sliced to the bound.
func (r *mongoTherapyPlanRepository) Reconcile(ctx context.Context, userID primitive.ObjectID, content domain.PlanContent, snap domain.HistorySnapshot) (*domain.TherapyPlan, error) {
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"userId": userID}, reconcileUpdate(content, snap, time.Now().UTC()))
}

// reconcileUpdate builds the single update document used by Reconcile.
func reconcileUpdate(content domain.PlanContent, snap domain.HistorySnapshot, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"recommendedApproach": content.RecommendedApproach,
			"summary":             content.Summary,
			"weeklyPlan":          content.WeeklyPlan,
			"updatedAt":           now,
		},
		"$push": bson.M{
			"history": bson.M{
				"$each":     []domain.HistorySnapshot{snap},
				"$position": 0,
				"$slice":    domain.MaxHistory,
			},
		},
	}
}

func (r *mongoTherapyPlanRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.TherapyPlan, error) {
	// Upsert stays off: a plan deleted mid-flight must not be recreated.
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(false)

	var plan domain.TherapyPlan
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// EnsureTherapyPlanIndexes creates necessary indexes. Call during startup.
func EnsureTherapyPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One plan per user
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
