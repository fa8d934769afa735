package repository

import (
	"context"
	"mindpath/therapy-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrAlreadyExists = RepositoryError("already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository links plans onto user records.
type UserRepository interface {
	SetTherapyPlan(ctx context.Context, userID, planID primitive.ObjectID) error
}

// ProfileRepository is a read-only view of user profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)
}

// OnboardingRepository is a read-only view of clinical onboarding records.
type OnboardingRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Onboarding, error)
}

// MoodRepository stores mood observations.
type MoodRepository interface {
	Create(ctx context.Context, mood *domain.MoodObservation) (primitive.ObjectID, error)
	// Recent returns at most limit observations, newest first.
	Recent(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.MoodObservation, error)
}

// TherapyPlanRepository persists the one-per-user plan document.
type TherapyPlanRepository interface {
	// Create inserts a new plan. Fails with ErrAlreadyExists when the user
	// already has one; uniqueness is enforced at write time.
	Create(ctx context.Context, plan *domain.TherapyPlan) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error)
	GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.HistorySnapshot, error)
	// SetWeekCompletion flips one week's completed flag and returns the
	// updated plan. ErrNotFound if the plan or the week does not exist.
	SetWeekCompletion(ctx context.Context, userID primitive.ObjectID, weekNumber int, completed bool) (*domain.TherapyPlan, error)
	// Reconcile replaces the plan content and prepends snap to history in a
	// single conditional write, keeping at most domain.MaxHistory entries.
	// ErrNotFound if no plan exists; it never inserts.
	Reconcile(ctx context.Context, userID primitive.ObjectID, content domain.PlanContent, snap domain.HistorySnapshot) (*domain.TherapyPlan, error)
}
