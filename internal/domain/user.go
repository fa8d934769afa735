package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account record. Registration and credentials live elsewhere;
// this service only links the therapy plan onto it.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Set once the initial plan is created.
	TherapyPlanID *primitive.ObjectID `bson:"therapyPlanId,omitempty" json:"therapyPlanId,omitempty"`
}
