// internal/domain/onboarding.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Concern is a primary reason for using the app.
type Concern string

const (
	ConcernAnxiety    Concern = "Anxiety"
	ConcernDepression Concern = "Sadness or depression"
	ConcernInsomnia   Concern = "Insomnia"
	ConcernGrief      Concern = "Grief or loss"
	ConcernBreakup    Concern = "Breakup"
	ConcernStress     Concern = "Work or academic stress"
	ConcernSelfGrowth Concern = "Self-knowledge or emotional growth"
	ConcernOther      Concern = "Other"
)

// Frequency is how often the user wants to engage.
type Frequency string

const (
	FrequencyDaily      Frequency = "Daily"
	FrequencyEveryOther Frequency = "Every other day"
	FrequencyAsNeeded   Frequency = "Only when needed"
)

// WellbeingBaseline holds the two 0-3 intake sub-scores.
type WellbeingBaseline struct {
	Anxious  int       `bson:"anxious" json:"anxious"`   // Nervous, anxious or on edge
	Hopeless int       `bson:"hopeless" json:"hopeless"` // Sad or hopeless
	TakenAt  time.Time `bson:"takenAt" json:"takenAt"`
}

// Consent records the informed-consent answers.
type Consent struct {
	TermsAccepted          bool `bson:"termsAccepted" json:"termsAccepted"`
	AINotReplacement       bool `bson:"aiNotReplacement" json:"aiNotReplacement"`
	DataProcessingAccepted bool `bson:"dataProcessingAccepted" json:"dataProcessingAccepted"`
	AnonymousMode          bool `bson:"anonymousMode" json:"anonymousMode"`
}

// Onboarding is the clinical intake of a user.
type Onboarding struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	PrimaryConcerns    []Concern          `bson:"primaryConcerns" json:"primaryConcerns"`
	Wellbeing          WellbeingBaseline  `bson:"wellbeing" json:"wellbeing"`
	DesiredFrequency   Frequency          `bson:"desiredFrequency" json:"desiredFrequency"`
	ContentPreferences []string           `bson:"contentPreferences" json:"contentPreferences"`
	Consent            Consent            `bson:"consent" json:"consent"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsComplete is derived on read: at least one concern, a desired frequency,
// and all three required consents given.
func (o *Onboarding) IsComplete() bool {
	if o == nil {
		return false
	}
	c := o.Consent
	return len(o.PrimaryConcerns) > 0 &&
		o.DesiredFrequency != "" &&
		c.TermsAccepted && c.AINotReplacement && c.DataProcessingAccepted
}
