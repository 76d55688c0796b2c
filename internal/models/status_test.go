package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func batchFor(id primitive.ObjectID, current float64) Batch {
	return Batch{IngredientID: id, CurrentAmount: current}
}

func TestStockStatusFor(t *testing.T) {
	id := primitive.NewObjectID()
	other := primitive.NewObjectID()
	milk := &Ingredient{ID: id, Name: "Milk", RequiredAmount: 20, Unit: "liters"}

	tests := []struct {
		name    string
		batches []Batch
		want    StockStatus
	}{
		{"no batches", nil, StockOutOfStock},
		{"only depleted batches", []Batch{batchFor(id, 0)}, StockOutOfStock},
		{"at quarter of required", []Batch{batchFor(id, 5)}, StockInStock},
		{"just under threshold", []Batch{batchFor(id, 3.9)}, StockLowStock},
		{"exactly at threshold", []Batch{batchFor(id, 4)}, StockInStock},
		{"summed across batches", []Batch{batchFor(id, 1), batchFor(id, 1.5)}, StockLowStock},
		{"other ingredients ignored", []Batch{batchFor(other, 100), batchFor(id, 1)}, StockLowStock},
		{"depleted excluded from sum", []Batch{batchFor(id, 0), batchFor(id, 6)}, StockInStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StockStatusFor(milk, tt.batches); got != tt.want {
				t.Errorf("StockStatusFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStockStatusForUnknownIngredient(t *testing.T) {
	if got := StockStatusFor(nil, nil); got != StockUnknown {
		t.Errorf("StockStatusFor(nil) = %q, want %q", got, StockUnknown)
	}
}

func TestStockStatusMilkScenario(t *testing.T) {
	id := primitive.NewObjectID()
	milk := &Ingredient{ID: id, RequiredAmount: 20}

	// A fresh 5-liter batch: 5 >= 20*0.2, so in stock.
	if got := StockStatusFor(milk, []Batch{batchFor(id, 5)}); got != StockInStock {
		t.Errorf("after delivery: StockStatusFor() = %q, want %q", got, StockInStock)
	}
	// After using 4 liters: 1 < 4, so low.
	if got := StockStatusFor(milk, []Batch{batchFor(id, 1)}); got != StockLowStock {
		t.Errorf("after usage: StockStatusFor() = %q, want %q", got, StockLowStock)
	}
}

func TestBatchFreshness(t *testing.T) {
	now := time.Date(2026, time.March, 10, 8, 30, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name       string
		expiration time.Time
		want       Freshness
	}{
		{"expired yesterday", now.Add(-1 * day), FreshnessExpired},
		{"expired late last night", time.Date(2026, time.March, 9, 23, 59, 0, 0, time.UTC), FreshnessExpired},
		{"expires later today", time.Date(2026, time.March, 10, 23, 0, 0, 0, time.UTC), FreshnessExpiringSoon},
		{"expires in three days", now.Add(3 * day), FreshnessExpiringSoon},
		{"expires on day five", now.Add(5 * day), FreshnessExpiringSoon},
		{"expires on day six", now.Add(6 * day), FreshnessFresh},
		{"expires in ten days", now.Add(10 * day), FreshnessFresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Batch{ExpirationDate: tt.expiration}
			if got := BatchFreshness(b, now); got != tt.want {
				t.Errorf("BatchFreshness(%v) = %q, want %q", tt.expiration, got, tt.want)
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, time.March, 10, 18, 45, 0, 0, time.UTC)

	tests := []struct {
		target time.Time
		want   int
	}{
		{time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC), 0},
		{time.Date(2026, time.March, 11, 1, 0, 0, 0, time.UTC), 1},
		{time.Date(2026, time.March, 9, 23, 0, 0, 0, time.UTC), -1},
		{time.Date(2026, time.March, 20, 6, 0, 0, 0, time.UTC), 10},
	}
	for _, tt := range tests {
		if got := DaysUntil(tt.target, now); got != tt.want {
			t.Errorf("DaysUntil(%v) = %d, want %d", tt.target, got, tt.want)
		}
	}
}
