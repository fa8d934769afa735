// internal/domain/profile.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinimumAge is the youngest age allowed to use the app.
const MinimumAge = 13

// Gender values a user may state on their profile.
type Gender string

const (
	GenderMale         Gender = "Male"
	GenderFemale       Gender = "Female"
	GenderNonBinary    Gender = "Non-binary"
	GenderOther        Gender = "Other"
	GenderPreferNotSay Gender = "Prefer not to say"
)

// Profile holds the demographic data needed before a plan can be created.
// It is owned by the profile surface; this service only reads it.
type Profile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Pseudonym string             `bson:"pseudonym,omitempty" json:"pseudonym,omitempty"`
	Age       int                `bson:"age" json:"age"`
	Gender    Gender             `bson:"gender,omitempty" json:"gender,omitempty"`
	Country   string             `bson:"country" json:"country"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsComplete reports whether the required demographic fields are present.
func (p *Profile) IsComplete() bool {
	return p != nil && p.Age >= MinimumAge && p.Country != ""
}
