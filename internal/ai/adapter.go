package ai

import (
	"context"
	"fmt"
	"mindpath/therapy-app/internal/domain"
)

// Adapter turns domain requests into prompts and validated payloads. It owns
// no connection of its own; the Generator is injected at construction.
type Adapter struct {
	generator Generator
}

// NewAdapter creates an Adapter over the given Generator.
func NewAdapter(generator Generator) *Adapter {
	return &Adapter{generator: generator}
}

// RequestInitialPlan asks the model for a first plan.
// Rationale only describes adaptation changes, so it is cleared here.
func (a *Adapter) RequestInitialPlan(ctx context.Context, profile *domain.Profile, onboarding *domain.Onboarding) (*PlanPayload, error) {
	payload, err := a.requestPlan(ctx, TaskInitialPlan, BuildInitialPlanPrompt(profile, onboarding))
	if err != nil {
		return nil, err
	}
	for i := range payload.WeeklyPlan {
		payload.WeeklyPlan[i].Rationale = ""
	}
	return payload, nil
}

// RequestAdaptedPlan asks the model to revise plan in light of progress and
// the mood window (newest first).
func (a *Adapter) RequestAdaptedPlan(ctx context.Context, plan *domain.TherapyPlan, profile *domain.Profile, onboarding *domain.Onboarding, moods []domain.MoodObservation) (*PlanPayload, error) {
	return a.requestPlan(ctx, TaskAdaptPlan, BuildAdaptationPrompt(plan, profile, onboarding, moods))
}

// AnalyzeVoiceSignal scores the mood audible in a voice clip.
func (a *Adapter) AnalyzeVoiceSignal(ctx context.Context, clip Attachment) (*MoodAnalysis, error) {
	return a.analyze(ctx, TaskVoiceMood, voicePrompt, clip)
}

// AnalyzeFaceSignal scores the mood visible in a face photo.
func (a *Adapter) AnalyzeFaceSignal(ctx context.Context, photo Attachment) (*MoodAnalysis, error) {
	return a.analyze(ctx, TaskFaceMood, facePrompt, photo)
}

func (a *Adapter) requestPlan(ctx context.Context, task Task, prompt string) (*PlanPayload, error) {
	resp, err := a.generator.Generate(ctx, GenerateRequest{Task: task, Prompt: prompt})
	if err != nil {
		return nil, err
	}
	return ExtractFenced(resp.Text, validatePlanPayload)
}

func (a *Adapter) analyze(ctx context.Context, task Task, prompt string, att Attachment) (*MoodAnalysis, error) {
	if len(att.Data) == 0 {
		return nil, fmt.Errorf("%s: empty attachment", task)
	}
	resp, err := a.generator.Generate(ctx, GenerateRequest{Task: task, Prompt: prompt, Attachment: &att})
	if err != nil {
		return nil, err
	}
	return ExtractFenced(resp.Text, validateMoodAnalysis)
}
