package service

import (
	"context"
	"errors"
	"fmt"
	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrMissingPrerequisite is a PreconditionFailed for absent or incomplete
	// profile or onboarding data.
	ErrMissingPrerequisite = fmt.Errorf("%w: missing prerequisite", ErrPreconditionFailed)
)

// PrerequisiteError names the missing prerequisite.
type PrerequisiteError struct {
	Missing string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingPrerequisite, e.Missing)
}

func (e *PrerequisiteError) Is(target error) bool {
	return target == ErrMissingPrerequisite || target == ErrPreconditionFailed
}

// PlanContext is everything an adaptation request is built from.
type PlanContext struct {
	Plan           *domain.TherapyPlan
	Profile        *domain.Profile
	Onboarding     *domain.Onboarding
	Moods          []domain.MoodObservation // Newest first
	CompletedWeeks []int
}

// ContextAggregator is a read-only composition over the stores.
type ContextAggregator interface {
	// Prerequisites returns the profile and completed onboarding of a user.
	Prerequisites(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, *domain.Onboarding, error)
	// Gather loads the active plan, the prerequisites and the mood window.
	Gather(ctx context.Context, userID primitive.ObjectID) (*PlanContext, error)
}

type contextAggregator struct {
	planRepo       repository.TherapyPlanRepository
	profileRepo    repository.ProfileRepository
	onboardingRepo repository.OnboardingRepository
	moodRepo       repository.MoodRepository
	moodWindow     int
}

// NewContextAggregator creates a ContextAggregator reading at most
// moodWindow recent moods.
func NewContextAggregator(
	planRepo repository.TherapyPlanRepository,
	profileRepo repository.ProfileRepository,
	onboardingRepo repository.OnboardingRepository,
	moodRepo repository.MoodRepository,
	moodWindow int,
) ContextAggregator {
	if moodWindow <= 0 {
		moodWindow = domain.MoodWindowLen
	}
	return &contextAggregator{
		planRepo:       planRepo,
		profileRepo:    profileRepo,
		onboardingRepo: onboardingRepo,
		moodRepo:       moodRepo,
		moodWindow:     moodWindow,
	}
}

func (a *contextAggregator) Prerequisites(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, *domain.Onboarding, error) {
	profile, err := a.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, &PrerequisiteError{Missing: "profile"}
		}
		return nil, nil, fmt.Errorf("loading profile: %w", err)
	}
	if !profile.IsComplete() {
		return nil, nil, &PrerequisiteError{Missing: "complete profile (age and country)"}
	}

	onboarding, err := a.onboardingRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, &PrerequisiteError{Missing: "onboarding"}
		}
		return nil, nil, fmt.Errorf("loading onboarding: %w", err)
	}
	if !onboarding.IsComplete() {
		return nil, nil, &PrerequisiteError{Missing: "completed onboarding"}
	}
	return profile, onboarding, nil
}

func (a *contextAggregator) Gather(ctx context.Context, userID primitive.ObjectID) (*PlanContext, error) {
	plan, err := a.planRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("loading plan: %w", err)
	}

	profile, onboarding, err := a.Prerequisites(ctx, userID)
	if err != nil {
		return nil, err
	}

	moods, err := a.moodRepo.Recent(ctx, userID, a.moodWindow)
	if err != nil {
		return nil, fmt.Errorf("loading mood window: %w", err)
	}

	return &PlanContext{
		Plan:           plan,
		Profile:        profile,
		Onboarding:     onboarding,
		Moods:          moods,
		CompletedWeeks: plan.CompletedWeeks(),
	}, nil
}
