package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mindpath/therapy-app/internal/ai"
	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/quota"
	"mindpath/therapy-app/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanAlreadyExists = errors.New("therapy plan already exists")
	ErrPlanNotFound      = errors.New("therapy plan not found")
	ErrWeekNotFound      = errors.New("week not found in therapy plan")
	ErrGenerationFailed  = errors.New("AI generation failed")
	ErrQuotaExceeded     = errors.New("AI generation quota exceeded")
)

// DefaultAdaptationReason is recorded on snapshots when none is configured.
const DefaultAdaptationReason = "Periodic adaptation based on progress and general state"

// GenerationError is an adapter failure surfaced through the service. It
// matches ErrGenerationFailed and still unwraps to the ai sentinel.
type GenerationError struct {
	Kind string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrGenerationFailed, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// PlanGenerator obtains validated plan payloads. Satisfied by *ai.Adapter.
type PlanGenerator interface {
	RequestInitialPlan(ctx context.Context, profile *domain.Profile, onboarding *domain.Onboarding) (*ai.PlanPayload, error)
	RequestAdaptedPlan(ctx context.Context, plan *domain.TherapyPlan, profile *domain.Profile, onboarding *domain.Onboarding, moods []domain.MoodObservation) (*ai.PlanPayload, error)
}

// PlanOptions tunes adaptation.
type PlanOptions struct {
	// PreserveCompletion carries completed flags onto weeks of the adapted
	// plan with the same weekNumber.
	PreserveCompletion bool
	AdaptationReason   string
}

type TherapyPlanService interface {
	CreateInitialPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error)
	GetCurrentPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error)
	GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.HistorySnapshot, error)
	SetWeekCompletion(ctx context.Context, userID primitive.ObjectID, weekNumber int, completed bool) (*domain.TherapyPlan, error)
	AdaptPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error)
}

// therapyPlanService drives the NoPlan -> Active -> Active lifecycle.
type therapyPlanService struct {
	planRepo   repository.TherapyPlanRepository
	userRepo   repository.UserRepository
	aggregator ContextAggregator
	generator  PlanGenerator
	limiter    quota.Limiter
	opts       PlanOptions
	now        func() time.Time
}

// NewTherapyPlanService creates a new instance of therapyPlanService.
func NewTherapyPlanService(
	planRepo repository.TherapyPlanRepository,
	userRepo repository.UserRepository,
	aggregator ContextAggregator,
	generator PlanGenerator,
	limiter quota.Limiter,
	opts PlanOptions,
) TherapyPlanService {
	if limiter == nil {
		limiter = quota.Unlimited{}
	}
	if opts.AdaptationReason == "" {
		opts.AdaptationReason = DefaultAdaptationReason
	}
	return &therapyPlanService{
		planRepo:   planRepo,
		userRepo:   userRepo,
		aggregator: aggregator,
		generator:  generator,
		limiter:    limiter,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateInitialPlan generates and stores the user's first plan. It is never
// retried internally; uniqueness is re-checked by the store on insert.
func (s *therapyPlanService) CreateInitialPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error) {
	if userID == primitive.NilObjectID {
		return nil, &domain.ValidationError{Fields: []string{"userId"}}
	}

	_, err := s.planRepo.GetByUserID(ctx, userID)
	if err == nil {
		return nil, ErrPlanAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking existing plan: %w", err)
	}

	profile, onboarding, err := s.aggregator.Prerequisites(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.consumeQuota(ctx, userID); err != nil {
		return nil, err
	}

	payload, err := s.generator.RequestInitialPlan(ctx, profile, onboarding)
	if err != nil {
		return nil, generationFailed(userID, "initial plan", err)
	}

	plan := &domain.TherapyPlan{
		UserID:      userID,
		PlanContent: payload.Content(),
		History:     []domain.HistorySnapshot{},
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			log.Printf("WARN: Concurrent plan creation for user %s lost the race; generated plan discarded", userID.Hex())
			return nil, ErrPlanAlreadyExists
		}
		return nil, fmt.Errorf("saving plan: %w", err)
	}

	if err := s.userRepo.SetTherapyPlan(ctx, userID, planID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("ERROR: Plan %s saved but linking it to user %s failed: %v", planID.Hex(), userID.Hex(), err)
			return nil, fmt.Errorf("linking plan to user: %w", err)
		}
		log.Printf("WARN: Plan %s created for user %s with no user record to link", planID.Hex(), userID.Hex())
	}

	log.Printf("INFO: Created %d-week therapy plan for user %s (%s)", len(plan.WeeklyPlan), userID.Hex(), plan.RecommendedApproach)
	return plan, nil
}

func (s *therapyPlanService) GetCurrentPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error) {
	plan, err := s.planRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// GetHistory returns archived versions, most recent first.
func (s *therapyPlanService) GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.HistorySnapshot, error) {
	history, err := s.planRepo.GetHistory(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return history, nil
}

// SetWeekCompletion flips exactly one week's completed flag.
func (s *therapyPlanService) SetWeekCompletion(ctx context.Context, userID primitive.ObjectID, weekNumber int, completed bool) (*domain.TherapyPlan, error) {
	if weekNumber <= 0 {
		return nil, &domain.ValidationError{Fields: []string{"weekNumber"}}
	}

	plan, err := s.planRepo.SetWeekCompletion(ctx, userID, weekNumber, completed)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// The conditional update cannot tell a missing plan from a missing week.
	if _, getErr := s.planRepo.GetByUserID(ctx, userID); getErr != nil {
		if errors.Is(getErr, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, getErr
	}
	return nil, ErrWeekNotFound
}

// AdaptPlan regenerates the plan from current context and archives the
// superseded version in the same write. No lock is held across the AI call.
func (s *therapyPlanService) AdaptPlan(ctx context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error) {
	pc, err := s.aggregator.Gather(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.consumeQuota(ctx, userID); err != nil {
		return nil, err
	}

	payload, err := s.generator.RequestAdaptedPlan(ctx, pc.Plan, pc.Profile, pc.Onboarding, pc.Moods)
	if err != nil {
		return nil, generationFailed(userID, "adaptation", err)
	}
	if payload.EchoedHistory() {
		log.Printf("WARN: AI echoed a history field for user %s; discarding it", userID.Hex())
	}

	content := payload.Content()
	if s.opts.PreserveCompletion {
		content.CarryCompletion(pc.Plan.WeeklyPlan)
	}
	snap := pc.Plan.Snapshot(s.opts.AdaptationReason, s.now())

	updated, err := s.planRepo.Reconcile(ctx, userID, content, snap)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("reconciling plan: %w", err)
	}

	log.Printf("INFO: Adapted therapy plan for user %s (%d weeks, %d snapshots)", userID.Hex(), len(updated.WeeklyPlan), len(updated.History))
	return updated, nil
}

func (s *therapyPlanService) consumeQuota(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.limiter.Consume(ctx, userID.Hex()); err != nil {
		if errors.Is(err, quota.ErrExceeded) {
			return ErrQuotaExceeded
		}
		return fmt.Errorf("checking generation quota: %w", err)
	}
	return nil
}

func generationFailed(userID primitive.ObjectID, what string, err error) error {
	kind := ai.Kind(err)
	log.Printf("ERROR: AI %s failed for user %s: kind=%s err=%v", what, userID.Hex(), kind, err)
	return &GenerationError{Kind: kind, Err: err}
}
