package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"mindpath/therapy-app/internal/domain"
	"sort"
	"strings"
)

// PlanPayload is the structured plan the AI must embed in its reply.
type PlanPayload struct {
	RecommendedApproach string             `json:"recommendedApproach"`
	Summary             string             `json:"summary"`
	WeeklyPlan          []domain.WeekEntry `json:"weeklyPlan"`

	// History is captured only so callers can tell the model echoed one
	// back. It is never persisted.
	History json.RawMessage `json:"history,omitempty"`
}

// EchoedHistory reports whether the model returned a history field.
func (p *PlanPayload) EchoedHistory() bool {
	return len(p.History) > 0 && string(p.History) != "null"
}

// Content returns the plan content without any echoed history.
func (p *PlanPayload) Content() domain.PlanContent {
	return domain.PlanContent{
		RecommendedApproach: p.RecommendedApproach,
		Summary:             p.Summary,
		WeeklyPlan:          p.WeeklyPlan,
	}
}

// normalizePlanPayload sorts weeks, fills nil slices and clears completed
// flags: completion is owned by the week-status toggle, not by the model.
func normalizePlanPayload(p *PlanPayload) {
	p.RecommendedApproach = strings.TrimSpace(p.RecommendedApproach)
	p.Summary = strings.TrimSpace(p.Summary)
	sort.SliceStable(p.WeeklyPlan, func(i, j int) bool {
		return p.WeeklyPlan[i].WeekNumber < p.WeeklyPlan[j].WeekNumber
	})
	for i := range p.WeeklyPlan {
		w := &p.WeeklyPlan[i]
		w.Completed = false
		if w.Articles == nil {
			w.Articles = []string{}
		}
		if w.Exercises == nil {
			w.Exercises = []domain.Exercise{}
		}
		if w.Videos == nil {
			w.Videos = []string{}
		}
	}
}

// validatePlanPayload is the SchemaValidator for plan replies.
func validatePlanPayload(p *PlanPayload) error {
	normalizePlanPayload(p)

	if err := p.Content().Validate(); err != nil {
		return err
	}
	n := len(p.WeeklyPlan)
	if n < domain.MinPlanWeeks || n > domain.MaxPlanWeeks {
		return fmt.Errorf("weeklyPlan must have %d-%d weeks, got %d", domain.MinPlanWeeks, domain.MaxPlanWeeks, n)
	}
	for i, w := range p.WeeklyPlan {
		if w.WeekNumber != i+1 {
			return fmt.Errorf("weekNumbers must run 1..%d, found %d at position %d", n, w.WeekNumber, i)
		}
		if strings.TrimSpace(w.Theme) == "" || strings.TrimSpace(w.Goal) == "" {
			return fmt.Errorf("week %d requires theme and goal", w.WeekNumber)
		}
	}
	return nil
}

// MoodAnalysis is the structured reply to a voice or face analysis.
type MoodAnalysis struct {
	MoodScore   int    `json:"-"`
	Description string `json:"description"`

	RawScore float64 `json:"moodScore"`
}

func validateMoodAnalysis(m *MoodAnalysis) error {
	if m.RawScore != math.Trunc(m.RawScore) {
		return fmt.Errorf("moodScore must be an integer, got %v", m.RawScore)
	}
	score := int(m.RawScore)
	if score < domain.MinMoodScore || score > domain.MaxMoodScore {
		return fmt.Errorf("moodScore must be %d-%d, got %d", domain.MinMoodScore, domain.MaxMoodScore, score)
	}
	m.Description = strings.TrimSpace(m.Description)
	if m.Description == "" {
		return fmt.Errorf("description is required")
	}
	m.MoodScore = score
	return nil
}
