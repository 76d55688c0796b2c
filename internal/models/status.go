package models

import (
	"math"
	"time"
)

// StockStatus classifies an ingredient by its summed live batch quantity
// against its required amount.
type StockStatus string

const (
	StockInStock    StockStatus = "in-stock"
	StockLowStock   StockStatus = "low-stock"
	StockOutOfStock StockStatus = "out-of-stock"
	StockUnknown    StockStatus = "unknown"
)

// Freshness classifies a single batch by its expiration date alone,
// independent of how much of it is left.
type Freshness string

const (
	FreshnessFresh        Freshness = "fresh"
	FreshnessExpiringSoon Freshness = "expiring-soon"
	FreshnessExpired      Freshness = "expired"
)

const (
	// LowStockThreshold: an ingredient is low once its live total drops
	// under this fraction of required_amount.
	LowStockThreshold = 0.2
	// ExpiringSoonDays: batches expiring within this many days (today
	// included) count as expiring-soon.
	ExpiringSoonDays = 5
)

// StockStatusFor computes the stock status of an ingredient from the
// batches passed in. Only batches that belong to the ingredient and still
// hold a positive amount contribute. A nil ingredient is unknown.
func StockStatusFor(ingredient *Ingredient, batches []Batch) StockStatus {
	if ingredient == nil {
		return StockUnknown
	}

	var total float64
	for _, b := range batches {
		if b.IngredientID == ingredient.ID && b.CurrentAmount > 0 {
			total += b.CurrentAmount
		}
	}

	switch {
	case total == 0:
		return StockOutOfStock
	case total < ingredient.RequiredAmount*LowStockThreshold:
		return StockLowStock
	default:
		return StockInStock
	}
}

// BatchFreshness classifies a batch's expiration date relative to now.
// Both sides are compared date-only: a batch expiring later today is
// expiring-soon, not expired.
func BatchFreshness(b *Batch, now time.Time) Freshness {
	days := DaysUntil(b.ExpirationDate, now)
	switch {
	case days < 0:
		return FreshnessExpired
	case days <= ExpiringSoonDays:
		return FreshnessExpiringSoon
	default:
		return FreshnessFresh
	}
}

// DaysUntil returns the number of whole days from now until target, with
// the time-of-day component of both zeroed out first. Negative when the
// target date has passed.
func DaysUntil(target, now time.Time) int {
	t := truncateToDay(target)
	n := truncateToDay(now)
	return int(math.Ceil(t.Sub(n).Hours() / 24))
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
