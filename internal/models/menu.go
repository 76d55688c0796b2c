package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MenuItem represents a drink or dish on the cafe menu. Archived items
// keep their record (is_active=false) and can be restored.
type MenuItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Category     string             `bson:"category" json:"category"`
	Instructions string             `bson:"instructions" json:"instructions"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	InStock      bool               `bson:"in_stock" json:"in_stock"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// MenuCategory represents the category of a menu item.
type MenuCategory string

const (
	MenuCategoryCoffee   MenuCategory = "coffee"
	MenuCategoryTea      MenuCategory = "tea"
	MenuCategoryPastry   MenuCategory = "pastry"
	MenuCategoryFood     MenuCategory = "food"
	MenuCategorySeasonal MenuCategory = "seasonal"
)
