package inventory

import (
	"strings"
	"time"

	"cortado/internal/models"
)

// PageSize is the fixed number of batches per page.
const PageSize = 10

// FilterAll is the query value that disables a classification filter.
const FilterAll = "All"

// BatchQuery selects and pages the joined batch list. All filtering is
// done in memory over the full listed set; derived classifications are
// recomputed on every call rather than cached.
type BatchQuery struct {
	Search       string
	IngredientID string
	Freshness    string
	Page         int
}

// BatchView is a joined batch with its freshness computed for display.
type BatchView struct {
	models.BatchWithIngredient
	Freshness models.Freshness `json:"freshness"`
}

// BatchPage is one page of the filtered batch list.
type BatchPage struct {
	Items      []BatchView `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// BuildBatchPage filters the joined batches, then pages the result.
// The input is expected newest-first, as the repository lists it; order
// is preserved. A page outside the valid range clamps to the nearest
// valid page.
func BuildBatchPage(batches []models.BatchWithIngredient, q BatchQuery, now time.Time) BatchPage {
	filtered := make([]BatchView, 0, len(batches))
	for _, b := range batches {
		freshness := models.BatchFreshness(&b.Batch, now)
		if q.Search != "" && !containsFold(b.Ingredient.Name, q.Search) {
			continue
		}
		if q.IngredientID != "" && b.IngredientID.Hex() != q.IngredientID {
			continue
		}
		if filterActive(q.Freshness) && string(freshness) != q.Freshness {
			continue
		}
		filtered = append(filtered, BatchView{BatchWithIngredient: b, Freshness: freshness})
	}

	total := len(filtered)
	totalPages := (total + PageSize - 1) / PageSize
	page := q.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return BatchPage{
		Items:      filtered[start:end],
		Total:      total,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages,
	}
}

// IngredientQuery filters the ingredient list by name and computed
// stock status.
type IngredientQuery struct {
	Search string
	Status string
}

// IngredientView is an ingredient with its stock status computed for
// display.
type IngredientView struct {
	models.Ingredient
	StockStatus models.StockStatus `json:"stock_status"`
}

// BuildIngredientList computes each ingredient's stock status from the
// full batch set and applies the query filters. Input order (name
// ascending from the repository) is preserved.
func BuildIngredientList(ingredients []models.Ingredient, batches []models.Batch, q IngredientQuery) []IngredientView {
	out := make([]IngredientView, 0, len(ingredients))
	for i := range ingredients {
		ing := ingredients[i]
		status := models.StockStatusFor(&ing, batches)
		if q.Search != "" && !containsFold(ing.Name, q.Search) {
			continue
		}
		if filterActive(q.Status) && string(status) != q.Status {
			continue
		}
		out = append(out, IngredientView{Ingredient: ing, StockStatus: status})
	}
	return out
}

func filterActive(v string) bool {
	return v != "" && v != FilterAll
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
