package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"cortado/internal/database"
	"cortado/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IngredientRepository manages ingredient definitions. Deleting an
// ingredient cascades to the batches that reference it, so no orphan
// batches survive a delete.
type IngredientRepository struct {
	db  database.Gateway
	log *slog.Logger
}

func NewIngredientRepository(db database.Gateway, log *slog.Logger) *IngredientRepository {
	return &IngredientRepository{db: db, log: log}
}

// CreateIngredientInput carries the fields for a new ingredient. Numeric
// fields are pointers so a missing value can be told apart from zero.
type CreateIngredientInput struct {
	Name           string   `json:"name"`
	RequiredAmount *float64 `json:"required_amount"`
	Unit           string   `json:"unit"`
}

// UpdateIngredientInput carries a partial update; nil fields are left
// untouched.
type UpdateIngredientInput struct {
	Name           *string  `json:"name"`
	RequiredAmount *float64 `json:"required_amount"`
	Unit           *string  `json:"unit"`
}

// List returns all ingredients ordered by name.
func (r *IngredientRepository) List(ctx context.Context) ([]models.Ingredient, error) {
	var out []models.Ingredient
	sort := bson.D{{Key: "name", Value: 1}}
	if err := r.db.FindMany(ctx, database.ColIngredients, nil, sort, &out); err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	return out, nil
}

// Create validates and persists a new ingredient. Names must be unique
// among ingredients, compared case-insensitively.
func (r *IngredientRepository) Create(ctx context.Context, in CreateIngredientInput) (*models.Ingredient, error) {
	name := strings.TrimSpace(in.Name)
	unit := strings.TrimSpace(in.Unit)
	if name == "" || in.RequiredAmount == nil || unit == "" {
		return nil, models.Validationf("name, required_amount, and unit are required")
	}
	if *in.RequiredAmount < 0 {
		return nil, models.Validationf("required_amount must be non-negative")
	}

	var existing models.Ingredient
	err := r.db.FindOne(ctx, database.ColIngredients, nameFilter(name), &existing)
	switch {
	case err == nil:
		r.log.Warn("duplicate ingredient name rejected", "name", name)
		return nil, models.Conflictf("an ingredient with this name already exists")
	case !errors.Is(err, database.ErrNoDocument):
		return nil, fmt.Errorf("checking ingredient name: %w", err)
	}

	now := time.Now().UTC()
	ingredient := models.Ingredient{
		Name:           name,
		RequiredAmount: *in.RequiredAmount,
		Unit:           unit,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
	id, err := r.db.InsertOne(ctx, database.ColIngredients, ingredient)
	if err != nil {
		return nil, fmt.Errorf("creating ingredient: %w", err)
	}
	ingredient.ID = id

	r.log.Info("ingredient created", "name", name, "id", id.Hex())
	return &ingredient, nil
}

// Update merges the provided fields into the ingredient and refreshes
// modified_at.
func (r *IngredientRepository) Update(ctx context.Context, id string, in UpdateIngredientInput) (*models.Ingredient, error) {
	oid, err := parseID(id, "ingredient")
	if err != nil {
		return nil, err
	}

	set := bson.M{"modified_at": time.Now().UTC()}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.RequiredAmount != nil {
		set["required_amount"] = *in.RequiredAmount
	}
	if in.Unit != nil {
		set["unit"] = strings.TrimSpace(*in.Unit)
	}

	var updated models.Ingredient
	err = r.db.UpdateOne(ctx, database.ColIngredients, bson.M{"_id": oid}, bson.M{"$set": set}, &updated)
	if errors.Is(err, database.ErrNoDocument) {
		return nil, models.NotFoundf("ingredient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("updating ingredient: %w", err)
	}

	r.log.Info("ingredient updated", "id", id, "name", updated.Name)
	return &updated, nil
}

// Delete removes the ingredient and then all batches referencing it,
// returning how many batches were removed. The two deletes are not
// transactional: a failure after the first leaves orphan batches, which
// the joined batch list hides and the reconcile sweep cleans up.
func (r *IngredientRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := parseID(id, "ingredient")
	if err != nil {
		return 0, err
	}

	deleted, err := r.db.DeleteOne(ctx, database.ColIngredients, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("deleting ingredient: %w", err)
	}
	if !deleted {
		return 0, models.NotFoundf("ingredient not found")
	}

	removed, err := r.db.DeleteMany(ctx, database.ColBatches, bson.M{"ingredient_id": oid})
	if err != nil {
		return 0, fmt.Errorf("cascading batch delete for ingredient %s: %w", id, err)
	}

	r.log.Info("ingredient deleted", "id", id, "batches_removed", removed)
	return removed, nil
}

// nameFilter matches a name exactly, ignoring case.
func nameFilter(name string) bson.M {
	return bson.M{"name": bson.M{
		"$regex":   "^" + regexp.QuoteMeta(name) + "$",
		"$options": "i",
	}}
}

// parseID converts a hex string to an object id. A malformed id denotes
// a record that cannot exist, so it maps to not-found rather than a
// validation failure.
func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, models.NotFoundf("%s not found", what)
	}
	return oid, nil
}
