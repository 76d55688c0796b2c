package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cortado/internal/database"
	"cortado/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BatchRepository manages inventory batches and their usage lifecycle.
type BatchRepository struct {
	db  database.Gateway
	log *slog.Logger
}

func NewBatchRepository(db database.Gateway, log *slog.Logger) *BatchRepository {
	return &BatchRepository{db: db, log: log}
}

// CreateBatchInput carries the fields for a new batch. The expiration
// date is a YYYY-MM-DD string as submitted by the admin UI.
type CreateBatchInput struct {
	IngredientID   string   `json:"ingredient_id"`
	InitialAmount  *float64 `json:"initial_amount"`
	ExpirationDate string   `json:"expiration_date"`
	TotalCost      *float64 `json:"total_cost"`
}

// UpdateBatchInput carries a partial batch update. The initial/current
// ordering is deliberately not re-validated here: manual corrections
// from the edit form may set any combination.
type UpdateBatchInput struct {
	InitialAmount  *float64 `json:"initial_amount"`
	CurrentAmount  *float64 `json:"current_amount"`
	ExpirationDate *string  `json:"expiration_date"`
	TotalCost      *float64 `json:"total_cost"`
}

// List returns every batch joined to its ingredient, newest first.
// Batches whose ingredient no longer resolves are excluded by the join.
func (r *BatchRepository) List(ctx context.Context) ([]models.BatchWithIngredient, error) {
	var out []models.BatchWithIngredient
	join := database.JoinSpec{
		From:         database.ColIngredients,
		LocalField:   "ingredient_id",
		ForeignField: "_id",
		As:           "ingredient",
		Sort:         bson.D{{Key: "created_at", Value: -1}},
	}
	if err := r.db.AggregateJoin(ctx, database.ColBatches, join, &out); err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	return out, nil
}

// ListPlain returns every batch without resolving ingredients. Used for
// stock-status computation, where depleted and orphaned batches must
// still be visible to the sum.
func (r *BatchRepository) ListPlain(ctx context.Context) ([]models.Batch, error) {
	var out []models.Batch
	if err := r.db.FindMany(ctx, database.ColBatches, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	return out, nil
}

// Create persists a new batch for an existing ingredient. The current
// amount starts equal to the initial amount.
func (r *BatchRepository) Create(ctx context.Context, in CreateBatchInput) (*models.BatchWithIngredient, error) {
	if in.IngredientID == "" || in.InitialAmount == nil || in.ExpirationDate == "" || in.TotalCost == nil {
		return nil, models.Validationf("ingredient_id, initial_amount, expiration_date, and total_cost are required")
	}
	if *in.InitialAmount < 0 || *in.TotalCost < 0 {
		return nil, models.Validationf("initial_amount and total_cost must be non-negative")
	}
	oid, err := primitive.ObjectIDFromHex(in.IngredientID)
	if err != nil {
		return nil, models.Validationf("invalid ingredient_id")
	}
	expiration, err := parseDate(in.ExpirationDate)
	if err != nil {
		return nil, err
	}

	var ingredient models.Ingredient
	err = r.db.FindOne(ctx, database.ColIngredients, bson.M{"_id": oid}, &ingredient)
	if errors.Is(err, database.ErrNoDocument) {
		return nil, models.NotFoundf("ingredient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("resolving ingredient: %w", err)
	}

	now := time.Now().UTC()
	batch := models.Batch{
		IngredientID:   oid,
		InitialAmount:  *in.InitialAmount,
		CurrentAmount:  *in.InitialAmount,
		ExpirationDate: expiration,
		TotalCost:      *in.TotalCost,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
	id, err := r.db.InsertOne(ctx, database.ColBatches, batch)
	if err != nil {
		return nil, fmt.Errorf("creating batch: %w", err)
	}
	batch.ID = id

	r.log.Info("inventory batch added",
		"ingredient", ingredient.Name,
		"amount", batch.InitialAmount,
		"unit", ingredient.Unit,
		"id", id.Hex())
	return &models.BatchWithIngredient{Batch: batch, Ingredient: ingredient}, nil
}

// Update merges the provided fields into the batch and refreshes
// modified_at.
func (r *BatchRepository) Update(ctx context.Context, id string, in UpdateBatchInput) (*models.Batch, error) {
	oid, err := parseID(id, "inventory batch")
	if err != nil {
		return nil, err
	}

	set := bson.M{"modified_at": time.Now().UTC()}
	if in.InitialAmount != nil {
		set["initial_amount"] = *in.InitialAmount
	}
	if in.CurrentAmount != nil {
		set["current_amount"] = *in.CurrentAmount
	}
	if in.TotalCost != nil {
		set["total_cost"] = *in.TotalCost
	}
	if in.ExpirationDate != nil {
		expiration, err := parseDate(*in.ExpirationDate)
		if err != nil {
			return nil, err
		}
		set["expiration_date"] = expiration
	}

	var updated models.Batch
	err = r.db.UpdateOne(ctx, database.ColBatches, bson.M{"_id": oid}, bson.M{"$set": set}, &updated)
	if errors.Is(err, database.ErrNoDocument) {
		return nil, models.NotFoundf("inventory batch not found")
	}
	if err != nil {
		return nil, fmt.Errorf("updating batch: %w", err)
	}

	r.log.Info("inventory batch updated", "id", id)
	return &updated, nil
}

// Use deducts amount from the batch in a single conditional update:
// the new amount is clamped at zero, finished_at is stamped exactly when
// the batch empties, and the current_amount > 0 guard in the filter
// keeps two concurrent deductions from double-counting.
func (r *BatchRepository) Use(ctx context.Context, id string, amount float64) (*models.Batch, error) {
	if amount <= 0 {
		return nil, models.Validationf("a positive amount is required")
	}
	oid, err := parseID(id, "inventory batch")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	filter := bson.M{"_id": oid, "current_amount": bson.M{"$gt": 0}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"current_amount": bson.M{"$max": bson.A{0.0, bson.M{"$subtract": bson.A{"$current_amount", amount}}}},
			"modified_at":    now,
		}}},
		// Runs after the first stage, so it sees the clamped amount.
		{{Key: "$set", Value: bson.M{
			"finished_at": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$current_amount", 0.0}},
				now,
				"$finished_at",
			}},
		}}},
	}

	var updated models.Batch
	err = r.db.UpdateOne(ctx, database.ColBatches, filter, update, &updated)
	if errors.Is(err, database.ErrNoDocument) {
		// Either the batch does not exist or the guard rejected it.
		var existing models.Batch
		lookupErr := r.db.FindOne(ctx, database.ColBatches, bson.M{"_id": oid}, &existing)
		if errors.Is(lookupErr, database.ErrNoDocument) {
			return nil, models.NotFoundf("inventory batch not found")
		}
		if lookupErr != nil {
			return nil, fmt.Errorf("looking up batch: %w", lookupErr)
		}
		return nil, models.Depletedf("this batch is already depleted")
	}
	if err != nil {
		return nil, fmt.Errorf("recording usage: %w", err)
	}

	r.log.Info("inventory used",
		"id", id,
		"amount", amount,
		"remaining", updated.CurrentAmount)
	return &updated, nil
}

// Delete removes a single batch.
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "inventory batch")
	if err != nil {
		return err
	}
	deleted, err := r.db.DeleteOne(ctx, database.ColBatches, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting batch: %w", err)
	}
	if !deleted {
		return models.NotFoundf("inventory batch not found")
	}
	r.log.Info("inventory batch deleted", "id", id)
	return nil
}

// DeleteOrphans removes batches whose ingredient no longer exists.
// Orphans can appear if a cascade delete fails halfway; they are
// invisible to the joined list, so this sweep is the way to purge them.
func (r *BatchRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	ingredients, err := r.listIngredientIDs(ctx)
	if err != nil {
		return 0, err
	}
	batches, err := r.ListPlain(ctx)
	if err != nil {
		return 0, err
	}

	var orphans bson.A
	for _, b := range batches {
		if _, ok := ingredients[b.IngredientID]; !ok {
			orphans = append(orphans, b.ID)
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	removed, err := r.db.DeleteMany(ctx, database.ColBatches, bson.M{"_id": bson.M{"$in": orphans}})
	if err != nil {
		return 0, fmt.Errorf("deleting orphan batches: %w", err)
	}
	r.log.Warn("orphan batches removed", "count", removed)
	return removed, nil
}

func (r *BatchRepository) listIngredientIDs(ctx context.Context) (map[primitive.ObjectID]struct{}, error) {
	var ingredients []models.Ingredient
	if err := r.db.FindMany(ctx, database.ColIngredients, nil, nil, &ingredients); err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	ids := make(map[primitive.ObjectID]struct{}, len(ingredients))
	for _, ing := range ingredients {
		ids[ing.ID] = struct{}{}
	}
	return ids, nil
}

// parseDate accepts the date-only form the admin UI submits, with a
// full timestamp fallback.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, models.Validationf("expiration_date must be a YYYY-MM-DD date")
}
