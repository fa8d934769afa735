package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"mindpath/therapy-app/internal/ai"
	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/quota"
	"mindpath/therapy-app/internal/repository"
	"mindpath/therapy-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memPlanRepo mirrors the mongo repository: uniqueness on insert and
// single-step conditional updates that never upsert.
type memPlanRepo struct {
	mu           sync.Mutex
	plans        map[primitive.ObjectID]*domain.TherapyPlan
	beforeCreate func()
	createCalls  int
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: map[primitive.ObjectID]*domain.TherapyPlan{}}
}

func copyPlan(p *domain.TherapyPlan) *domain.TherapyPlan {
	out := *p
	out.PlanContent = p.PlanContent.Clone()
	out.History = make([]domain.HistorySnapshot, len(p.History))
	for i, h := range p.History {
		h.Plan = h.Plan.Clone()
		out.History[i] = h
	}
	return &out
}

func (r *memPlanRepo) put(p *domain.TherapyPlan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == primitive.NilObjectID {
		p.ID = primitive.NewObjectID()
	}
	r.plans[p.UserID] = copyPlan(p)
}

func (r *memPlanRepo) get(userID primitive.ObjectID) *domain.TherapyPlan {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[userID]
	if !ok {
		return nil
	}
	return copyPlan(p)
}

func (r *memPlanRepo) remove(userID primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plans, userID)
}

func (r *memPlanRepo) Create(_ context.Context, plan *domain.TherapyPlan) (primitive.ObjectID, error) {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if err := plan.Validate(); err != nil {
		return primitive.NilObjectID, err
	}
	if _, ok := r.plans[plan.UserID]; ok {
		return primitive.NilObjectID, repository.ErrAlreadyExists
	}
	plan.ID = primitive.NewObjectID()
	r.plans[plan.UserID] = copyPlan(plan)
	return plan.ID, nil
}

func (r *memPlanRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error) {
	if p := r.get(userID); p != nil {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memPlanRepo) GetHistory(_ context.Context, userID primitive.ObjectID) ([]domain.HistorySnapshot, error) {
	p := r.get(userID)
	if p == nil {
		return nil, repository.ErrNotFound
	}
	return p.History, nil
}

func (r *memPlanRepo) SetWeekCompletion(_ context.Context, userID primitive.ObjectID, weekNumber int, completed bool) (*domain.TherapyPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w := p.Week(weekNumber)
	if w == nil {
		return nil, repository.ErrNotFound
	}
	w.Completed = completed
	return copyPlan(p), nil
}

func (r *memPlanRepo) Reconcile(_ context.Context, userID primitive.ObjectID, content domain.PlanContent, snap domain.HistorySnapshot) (*domain.TherapyPlan, error) {
	if err := content.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.PlanContent = content.Clone()
	p.History = prependHistory(p.History, snap)
	return copyPlan(p), nil
}

// prependHistory mirrors the store's $push with $position 0 and $slice.
func prependHistory(history []domain.HistorySnapshot, snap domain.HistorySnapshot) []domain.HistorySnapshot {
	out := make([]domain.HistorySnapshot, 0, domain.MaxHistory)
	out = append(out, snap)
	for _, h := range history {
		if len(out) == domain.MaxHistory {
			break
		}
		out = append(out, h)
	}
	return out
}

type memUserRepo struct {
	users     map[primitive.ObjectID]*domain.User
	linkErr   error
	linkCalls int
}

func (r *memUserRepo) SetTherapyPlan(_ context.Context, userID, planID primitive.ObjectID) error {
	r.linkCalls++
	if r.linkErr != nil {
		return r.linkErr
	}
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TherapyPlanID = &planID
	return nil
}

type memProfileRepo map[primitive.ObjectID]*domain.Profile

func (r memProfileRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	if p, ok := r[userID]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

type memOnboardingRepo map[primitive.ObjectID]*domain.Onboarding

func (r memOnboardingRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Onboarding, error) {
	if o, ok := r[userID]; ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

type memMoodRepo struct {
	moods []domain.MoodObservation
}

func (r *memMoodRepo) Create(_ context.Context, mood *domain.MoodObservation) (primitive.ObjectID, error) {
	if mood.Score < domain.MinMoodScore || mood.Score > domain.MaxMoodScore {
		return primitive.NilObjectID, &domain.ValidationError{Fields: []string{"mood"}}
	}
	mood.ID = primitive.NewObjectID()
	r.moods = append(r.moods, *mood)
	return mood.ID, nil
}

func (r *memMoodRepo) Recent(_ context.Context, userID primitive.ObjectID, limit int) ([]domain.MoodObservation, error) {
	out := []domain.MoodObservation{}
	for _, m := range r.moods {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// scriptedGenerator is an ai.Generator returning canned replies in order.
type scriptedGenerator struct {
	replies []string
	err     error
	prompts []string
	onCall  func()
}

func (g *scriptedGenerator) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	g.prompts = append(g.prompts, req.Prompt)
	if g.onCall != nil {
		g.onCall()
	}
	if g.err != nil {
		return nil, g.err
	}
	if len(g.replies) == 0 {
		return nil, fmt.Errorf("%w: no scripted reply", ai.ErrUnavailable)
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return &ai.GenerateResponse{Text: reply, Model: "scripted"}, nil
}

type countingLimiter struct {
	allow int
	calls int
}

func (l *countingLimiter) Consume(context.Context, string) error {
	l.calls++
	if l.calls > l.allow {
		return quota.ErrExceeded
	}
	return nil
}

type memStorage struct {
	objects    map[string]*storage.Object
	presignErr error
	presigned  []string
}

func (s *memStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	s.presigned = append(s.presigned, objectKey)
	return "https://storage.test/" + objectKey + "?signature=x", nil
}

func (s *memStorage) GetObject(_ context.Context, objectKey string, maxBytes int64) (*storage.Object, error) {
	obj, ok := s.objects[objectKey]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	if maxBytes > 0 && int64(len(obj.Data)) > maxBytes {
		return nil, storage.ErrObjectTooLarge
	}
	return obj, nil
}

// planReply renders a fenced plan payload with weeks numbered 1..n.
func planReply(approach string, weeks int) string {
	payload := ai.PlanPayload{RecommendedApproach: approach, Summary: approach + " summary"}
	for i := 1; i <= weeks; i++ {
		payload.WeeklyPlan = append(payload.WeeklyPlan, domain.WeekEntry{
			WeekNumber: i,
			Theme:      fmt.Sprintf("%s theme %d", approach, i),
			Goal:       fmt.Sprintf("goal %d", i),
			Articles:   []string{"article"},
			Exercises:  []domain.Exercise{{Title: "exercise", Steps: []string{"step one"}}},
			Videos:     []string{"video"},
		})
	}
	body, _ := json.MarshalIndent(payload, "", "  ")
	return "Here is the plan.\n```json\n" + string(body) + "\n```\n"
}

func activePlan(userID primitive.ObjectID, approach string, weeks int) *domain.TherapyPlan {
	p := &domain.TherapyPlan{UserID: userID, History: []domain.HistorySnapshot{}}
	p.RecommendedApproach = approach
	p.Summary = approach + " summary"
	for i := 1; i <= weeks; i++ {
		p.WeeklyPlan = append(p.WeeklyPlan, domain.WeekEntry{
			WeekNumber: i,
			Theme:      fmt.Sprintf("%s theme %d", approach, i),
			Goal:       fmt.Sprintf("goal %d", i),
			Articles:   []string{},
			Exercises:  []domain.Exercise{{Title: "exercise", Steps: []string{"step"}}},
			Videos:     []string{},
		})
	}
	return p
}
