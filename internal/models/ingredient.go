package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ingredient defines a tracked ingredient and the quantity the cafe
// considers fully stocked. Actual stock lives in the batches that
// reference it.
type Ingredient struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	RequiredAmount float64            `bson:"required_amount" json:"required_amount"`
	Unit           string             `bson:"unit" json:"unit"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	ModifiedAt     time.Time          `bson:"modified_at" json:"modified_at"`
}
