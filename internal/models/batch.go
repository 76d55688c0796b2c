package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Batch is one recorded delivery or purchase of an ingredient, with its
// own quantity, cost, and expiration. A batch belongs to exactly one
// ingredient and is removed with it.
type Batch struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IngredientID   primitive.ObjectID `bson:"ingredient_id" json:"ingredient_id"`
	InitialAmount  float64            `bson:"initial_amount" json:"initial_amount"`
	CurrentAmount  float64            `bson:"current_amount" json:"current_amount"`
	ExpirationDate time.Time          `bson:"expiration_date" json:"expiration_date"`
	TotalCost      float64            `bson:"total_cost" json:"total_cost"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	ModifiedAt     time.Time          `bson:"modified_at" json:"modified_at"`
	// FinishedAt is set exactly once, when a usage event empties the batch.
	FinishedAt *time.Time `bson:"finished_at" json:"finished_at"`
}

// Depleted reports whether the batch has nothing left to use.
func (b *Batch) Depleted() bool {
	return b.CurrentAmount <= 0
}

// BatchWithIngredient is a batch joined to its resolved ingredient, as
// returned by the inventory list. Batches whose ingredient no longer
// exists never appear in this form.
type BatchWithIngredient struct {
	Batch      `bson:",inline"`
	Ingredient Ingredient `bson:"ingredient" json:"ingredient"`
}
