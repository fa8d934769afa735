// internal/domain/therapy_plan.go
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bounds on the shape of a therapy plan.
const (
	MinPlanWeeks = 3
	MaxPlanWeeks = 5
	MaxHistory   = 10
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError names the fields that failed a shape check.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Exercise is a practical activity with ordered steps.
type Exercise struct {
	Title string   `bson:"title" json:"title"`
	Steps []string `bson:"steps" json:"steps"`
}

// WeekEntry is one week of a therapy plan.
type WeekEntry struct {
	WeekNumber int        `bson:"weekNumber" json:"weekNumber"`
	Theme      string     `bson:"theme" json:"theme"`
	Goal       string     `bson:"goal" json:"goal"`
	Articles   []string   `bson:"articles" json:"articles"`
	Exercises  []Exercise `bson:"exercises" json:"exercises"`
	Videos     []string   `bson:"videos" json:"videos"`
	Rationale  string     `bson:"rationale,omitempty" json:"rationale,omitempty"` // Only set on weeks changed by an adaptation
	Completed  bool       `bson:"completed" json:"completed"`
}

// PlanContent is the AI-authored part of a plan. It is what gets archived
// into history and what an adaptation replaces.
type PlanContent struct {
	RecommendedApproach string      `bson:"recommendedApproach" json:"recommendedApproach"`
	Summary             string      `bson:"summary" json:"summary"`
	WeeklyPlan          []WeekEntry `bson:"weeklyPlan" json:"weeklyPlan"`
}

// HistorySnapshot is an immutable copy of a superseded plan.
type HistorySnapshot struct {
	Plan            PlanContent `bson:"plan" json:"plan"`
	ArchivedAt      time.Time   `bson:"archivedAt" json:"archivedAt"`
	ReasonForUpdate string      `bson:"reasonForUpdate" json:"reasonForUpdate"`
}

// TherapyPlan is the single active plan of a user, with its bounded history.
type TherapyPlan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"` // Unique; immutable after creation
	PlanContent `bson:",inline"`
	History     []HistorySnapshot `bson:"history" json:"history"` // Most recent first
	CreatedAt   time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// Week returns the week with the given number, or nil.
func (p *TherapyPlan) Week(weekNumber int) *WeekEntry {
	for i := range p.WeeklyPlan {
		if p.WeeklyPlan[i].WeekNumber == weekNumber {
			return &p.WeeklyPlan[i]
		}
	}
	return nil
}

// CompletedWeeks lists the week numbers marked completed, ascending.
func (p *TherapyPlan) CompletedWeeks() []int {
	weeks := []int{}
	for _, w := range p.WeeklyPlan {
		if w.Completed {
			weeks = append(weeks, w.WeekNumber)
		}
	}
	sort.Ints(weeks)
	return weeks
}

// Snapshot archives the current content of the plan.
func (p *TherapyPlan) Snapshot(reason string, at time.Time) HistorySnapshot {
	return HistorySnapshot{
		Plan:            p.PlanContent.Clone(),
		ArchivedAt:      at,
		ReasonForUpdate: reason,
	}
}

// Validate checks the persisted shape of the plan.
func (p *TherapyPlan) Validate() error {
	var fields []string
	if p.UserID == primitive.NilObjectID {
		fields = append(fields, "userId")
	}
	if err := p.PlanContent.Validate(); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			fields = append(fields, vErr.Fields...)
		}
	}
	if len(p.History) > MaxHistory {
		fields = append(fields, "history")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Validate checks approach, summary and the weekly structure.
func (c PlanContent) Validate() error {
	var fields []string
	if strings.TrimSpace(c.RecommendedApproach) == "" {
		fields = append(fields, "recommendedApproach")
	}
	if strings.TrimSpace(c.Summary) == "" {
		fields = append(fields, "summary")
	}
	if len(c.WeeklyPlan) == 0 || len(c.WeeklyPlan) > MaxPlanWeeks {
		fields = append(fields, "weeklyPlan")
	}
	seen := make(map[int]bool, len(c.WeeklyPlan))
	prev := 0
	for i, w := range c.WeeklyPlan {
		prefix := fmt.Sprintf("weeklyPlan[%d]", i)
		if w.WeekNumber <= 0 {
			fields = append(fields, prefix+".weekNumber")
		} else if seen[w.WeekNumber] || w.WeekNumber < prev {
			fields = append(fields, prefix+".weekNumber")
		}
		seen[w.WeekNumber] = true
		prev = w.WeekNumber
		for j, ex := range w.Exercises {
			if strings.TrimSpace(ex.Title) == "" {
				fields = append(fields, fmt.Sprintf("%s.exercises[%d].title", prefix, j))
			}
			if len(ex.Steps) == 0 {
				fields = append(fields, fmt.Sprintf("%s.exercises[%d].steps", prefix, j))
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Clone deep-copies the content so archived snapshots share no slices with
// the live plan.
func (c PlanContent) Clone() PlanContent {
	out := PlanContent{
		RecommendedApproach: c.RecommendedApproach,
		Summary:             c.Summary,
		WeeklyPlan:          make([]WeekEntry, len(c.WeeklyPlan)),
	}
	for i, w := range c.WeeklyPlan {
		cw := w
		cw.Articles = append([]string{}, w.Articles...)
		cw.Videos = append([]string{}, w.Videos...)
		cw.Exercises = make([]Exercise, len(w.Exercises))
		for j, ex := range w.Exercises {
			cw.Exercises[j] = Exercise{Title: ex.Title, Steps: append([]string{}, ex.Steps...)}
		}
		out.WeeklyPlan[i] = cw
	}
	return out
}

// CarryCompletion copies completed flags from prev onto weeks with a matching
// weekNumber. Weeks absent from prev keep their own value.
func (c *PlanContent) CarryCompletion(prev []WeekEntry) {
	done := make(map[int]bool, len(prev))
	for _, w := range prev {
		if w.Completed {
			done[w.WeekNumber] = true
		}
	}
	for i := range c.WeeklyPlan {
		if done[c.WeeklyPlan[i].WeekNumber] {
			c.WeeklyPlan[i].Completed = true
		}
	}
}
