package ai

import (
	"strings"
	"testing"
	"time"

	"mindpath/therapy-app/internal/domain"

	"github.com/stretchr/testify/assert"
)

func moodsNewestFirst(scores ...int) []domain.MoodObservation {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]domain.MoodObservation, len(scores))
	for i, s := range scores {
		// scores are given oldest first; store order is newest first
		out[len(scores)-1-i] = domain.MoodObservation{Score: s, Date: base.AddDate(0, 0, i)}
	}
	return out
}

func TestProgressSummary(t *testing.T) {
	assert.Equal(t, "Current progress: no weeks completed yet.", ProgressSummary(nil))
	assert.Equal(t, "Current progress: Week 1 completed, Week 3 completed.", ProgressSummary([]int{1, 3}))
}

func TestMoodWindowSummary_Empty(t *testing.T) {
	assert.Contains(t, MoodWindowSummary(nil), "No recent mood history")
}

func TestMoodWindowSummary_ChronologicalWithTrend(t *testing.T) {
	moods := moodsNewestFirst(5, 5, 4, 5)
	moods[0].Note = "Great day"
	moods[1].VoiceAnalysis = "Energetic tone"

	out := MoodWindowSummary(moods)

	assert.Contains(t, out, "overall trend: positive")
	assert.Contains(t, out, `User note: "Great day"`)
	assert.Contains(t, out, `Voice analysis: "Energetic tone"`)
	first := strings.Index(out, "2026-03-01")
	last := strings.Index(out, "2026-03-04")
	assert.True(t, first >= 0 && last > first, "entries should be oldest first")
}

func TestBuildAdaptationPrompt_PositiveProgress(t *testing.T) {
	plan := &domain.TherapyPlan{PlanContent: domain.PlanContent{
		RecommendedApproach: "Mindfulness-Based Therapy",
		Summary:             "Start small.",
		WeeklyPlan: []domain.WeekEntry{
			{WeekNumber: 1, Theme: "Breath", Goal: "Notice", Completed: true},
			{WeekNumber: 2, Theme: "Body", Goal: "Scan"},
			{WeekNumber: 3, Theme: "Mind", Goal: "Observe"},
		},
	}}

	prompt := BuildAdaptationPrompt(plan, testProfile(), testOnboarding(), moodsNewestFirst(5, 5, 4, 5))

	assert.Contains(t, prompt, "Week 1 completed")
	assert.NotContains(t, prompt, "Week 2 completed")
	assert.Contains(t, prompt, "positive")
	assert.Contains(t, prompt, "Mindfulness-Based Therapy")
	assert.Contains(t, prompt, `"rationale"`)
	assert.Contains(t, prompt, "```json")
}

func TestBuildAdaptationPrompt_OmitsHistory(t *testing.T) {
	plan := &domain.TherapyPlan{
		PlanContent: domain.PlanContent{RecommendedApproach: "ACT", Summary: "now", WeeklyPlan: []domain.WeekEntry{{WeekNumber: 1}}},
		History: []domain.HistorySnapshot{{
			Plan:            domain.PlanContent{Summary: "archived-summary-marker"},
			ReasonForUpdate: "old",
		}},
	}

	prompt := BuildAdaptationPrompt(plan, testProfile(), testOnboarding(), nil)

	assert.NotContains(t, prompt, "archived-summary-marker")
	assert.Contains(t, prompt, "no weeks completed yet")
}

func TestBuildInitialPlanPrompt(t *testing.T) {
	onboarding := testOnboarding()
	onboarding.ContentPreferences = []string{"Short videos"}

	prompt := BuildInitialPlanPrompt(testProfile(), onboarding)

	assert.Contains(t, prompt, "Age: 25")
	assert.Contains(t, prompt, "Country: Spain")
	assert.Contains(t, prompt, "Anxiety")
	assert.Contains(t, prompt, "Short videos")
	assert.Contains(t, prompt, "between 3 and 5 weeks")
	for _, approach := range candidateApproaches {
		assert.Contains(t, prompt, approach)
	}
}

func TestAnalysisPromptsForbidDiagnosis(t *testing.T) {
	for _, p := range []string{voicePrompt, facePrompt} {
		assert.Contains(t, p, "Do NOT make any clinical diagnosis")
		assert.Contains(t, p, `"moodScore"`)
	}
}
