// Command seed wipes and repopulates the database with sample cafe data:
// a starter menu, a set of ingredients, and batches in a mix of
// freshness states.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"cortado/internal/config"
	"cortado/internal/database"
	"cortado/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var configFile = flag.String("config", config.DefaultPath, "Path to configuration file")

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close(ctx)

	if err := seed(ctx, db, logger); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, db database.Gateway, logger *slog.Logger) error {
	now := time.Now().UTC()

	for _, col := range []string{database.ColMenuItems, database.ColIngredients, database.ColBatches} {
		if _, err := db.DeleteMany(ctx, col, bson.M{}); err != nil {
			return err
		}
	}

	menuItems := []models.MenuItem{
		{Name: "Cortado", Price: 3.80, Category: "coffee", Instructions: "Double shot, equal part steamed milk.", IsActive: true, InStock: true},
		{Name: "Flat White", Price: 4.20, Category: "coffee", Instructions: "Double ristretto, microfoam to the rim.", IsActive: true, InStock: true},
		{Name: "Cold Brew", Price: 4.50, Category: "coffee", Instructions: "16h steep, serve over ice.", IsActive: true, InStock: true},
		{Name: "Earl Grey", Price: 3.20, Category: "tea", Instructions: "4 min at 95C.", IsActive: true, InStock: true},
		{Name: "Butter Croissant", Price: 3.50, Category: "pastry", IsActive: true, InStock: true},
		{Name: "Pumpkin Spice Latte", Price: 5.20, Category: "seasonal", IsActive: false, InStock: false},
	}
	for i := range menuItems {
		menuItems[i].CreatedAt = now
		menuItems[i].UpdatedAt = now
		if _, err := db.InsertOne(ctx, database.ColMenuItems, menuItems[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded menu items", "count", len(menuItems))

	ingredients := []models.Ingredient{
		{Name: "Whole Milk", RequiredAmount: 20, Unit: "liters"},
		{Name: "Oat Milk", RequiredAmount: 10, Unit: "liters"},
		{Name: "Espresso Beans", RequiredAmount: 8, Unit: "kg"},
		{Name: "Earl Grey Loose Leaf", RequiredAmount: 1.5, Unit: "kg"},
		{Name: "Croissant Dough", RequiredAmount: 40, Unit: "pieces"},
	}
	ids := make([]primitive.ObjectID, len(ingredients))
	for i := range ingredients {
		ingredients[i].CreatedAt = now
		ingredients[i].ModifiedAt = now
		id, err := db.InsertOne(ctx, database.ColIngredients, ingredients[i])
		if err != nil {
			return err
		}
		ids[i] = id
	}
	logger.Info("seeded ingredients", "count", len(ingredients))

	day := 24 * time.Hour
	batches := []models.Batch{
		{IngredientID: ids[0], InitialAmount: 12, CurrentAmount: 12, ExpirationDate: now.Add(6 * day), TotalCost: 14.40},
		{IngredientID: ids[0], InitialAmount: 12, CurrentAmount: 3.5, ExpirationDate: now.Add(2 * day), TotalCost: 14.40},
		{IngredientID: ids[1], InitialAmount: 6, CurrentAmount: 1.5, ExpirationDate: now.Add(9 * day), TotalCost: 11.10},
		{IngredientID: ids[2], InitialAmount: 5, CurrentAmount: 5, ExpirationDate: now.Add(120 * day), TotalCost: 92.50},
		{IngredientID: ids[3], InitialAmount: 1, CurrentAmount: 0.8, ExpirationDate: now.Add(200 * day), TotalCost: 24.00},
		{IngredientID: ids[4], InitialAmount: 40, CurrentAmount: 12, ExpirationDate: now.Add(-1 * day), TotalCost: 36.00},
	}
	for i := range batches {
		batches[i].CreatedAt = now.Add(-time.Duration(i) * time.Hour)
		batches[i].ModifiedAt = batches[i].CreatedAt
		if _, err := db.InsertOne(ctx, database.ColBatches, batches[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded inventory batches", "count", len(batches))

	return nil
}
