// Package menu holds the menu item subsystem: plain pass-through CRUD
// with soft archiving, no derived state.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cortado/internal/database"
	"cortado/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository manages menu items.
type Repository struct {
	db  database.Gateway
	log *slog.Logger
}

func NewRepository(db database.Gateway, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// CreateInput carries the fields for a new menu item.
type CreateInput struct {
	Name         string   `json:"name"`
	Price        *float64 `json:"price"`
	Category     string   `json:"category"`
	Instructions string   `json:"instructions"`
}

// UpdateInput carries a partial menu item update.
type UpdateInput struct {
	Name         *string  `json:"name"`
	Price        *float64 `json:"price"`
	Category     *string  `json:"category"`
	Instructions *string  `json:"instructions"`
	InStock      *bool    `json:"in_stock"`
}

// List returns items filtered by active state, ordered by name.
func (r *Repository) List(ctx context.Context, active bool) ([]models.MenuItem, error) {
	var out []models.MenuItem
	filter := bson.M{"is_active": active}
	sort := bson.D{{Key: "name", Value: 1}}
	if err := r.db.FindMany(ctx, database.ColMenuItems, filter, sort, &out); err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return out, nil
}

// Get returns a single item by id.
func (r *Repository) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var item models.MenuItem
	err = r.db.FindOne(ctx, database.ColMenuItems, bson.M{"_id": oid}, &item)
	if errors.Is(err, database.ErrNoDocument) {
		return nil, models.NotFoundf("menu item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("fetching menu item: %w", err)
	}
	return &item, nil
}

// Create persists a new active menu item.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*models.MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || in.Price == nil || category == "" {
		return nil, models.Validationf("name, price, and category are required")
	}

	now := time.Now().UTC()
	item := models.MenuItem{
		Name:         name,
		Price:        *in.Price,
		Category:     category,
		Instructions: in.Instructions,
		IsActive:     true,
		InStock:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := r.db.InsertOne(ctx, database.ColMenuItems, item)
	if err != nil {
		return nil, fmt.Errorf("creating menu item: %w", err)
	}
	item.ID = id

	r.log.Info("menu item created", "name", name, "id", id.Hex())
	return &item, nil
}

// Update merges the provided fields and refreshes updated_at.
func (r *Repository) Update(ctx context.Context, id string, in UpdateInput) (*models.MenuItem, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.Category != nil {
		set["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Instructions != nil {
		set["instructions"] = *in.Instructions
	}
	if in.InStock != nil {
		set["in_stock"] = *in.InStock
	}

	return r.apply(ctx, oid, set)
}

// SetActive archives (false) or restores (true) an item. Archiving also
// marks it out of stock so it never renders as orderable.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) (*models.MenuItem, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{
		"is_active":  active,
		"in_stock":   active,
		"updated_at": time.Now().UTC(),
	}
	return r.apply(ctx, oid, set)
}

// Delete permanently removes an item.
func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := r.db.DeleteOne(ctx, database.ColMenuItems, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting menu item: %w", err)
	}
	if !deleted {
		return models.NotFoundf("menu item not found")
	}
	r.log.Info("menu item deleted", "id", id)
	return nil
}

func (r *Repository) apply(ctx context.Context, oid primitive.ObjectID, set bson.M) (*models.MenuItem, error) {
	var updated models.MenuItem
	err := r.db.UpdateOne(ctx, database.ColMenuItems, bson.M{"_id": oid}, bson.M{"$set": set}, &updated)
	if errors.Is(err, database.ErrNoDocument) {
		return nil, models.NotFoundf("menu item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("updating menu item: %w", err)
	}
	return &updated, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, models.NotFoundf("menu item not found")
	}
	return oid, nil
}
