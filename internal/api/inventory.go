package api

import (
	"net/http"
	"strconv"
	"time"

	"cortado/internal/inventory"
	"cortado/internal/models"

	"github.com/gin-gonic/gin"
)

// ── ingredients ──

func (s *Server) listIngredients(c *gin.Context) {
	ingredients, err := s.ingredients.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	batches, err := s.batches.ListPlain(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	q := inventory.IngredientQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
	}
	c.JSON(http.StatusOK, inventory.BuildIngredientList(ingredients, batches, q))
}

func (s *Server) createIngredient(c *gin.Context) {
	var in inventory.CreateIngredientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respondError(c, models.Validationf("invalid request body"))
		return
	}
	ingredient, err := s.ingredients.Create(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (s *Server) updateIngredient(c *gin.Context) {
	var in inventory.UpdateIngredientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respondError(c, models.Validationf("invalid request body"))
		return
	}
	ingredient, err := s.ingredients.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (s *Server) deleteIngredient(c *gin.Context) {
	removed, err := s.ingredients.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Ingredient and its inventory records deleted.",
		"batches_removed": removed,
	})
}

// ── inventory batches ──

func (s *Server) listBatches(c *gin.Context) {
	batches, err := s.batches.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	q := inventory.BatchQuery{
		Search:       c.Query("search"),
		IngredientID: c.Query("ingredient_id"),
		Freshness:    c.Query("freshness"),
		Page:         page,
	}
	c.JSON(http.StatusOK, inventory.BuildBatchPage(batches, q, time.Now()))
}

func (s *Server) createBatch(c *gin.Context) {
	var in inventory.CreateBatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respondError(c, models.Validationf("invalid request body"))
		return
	}
	batch, err := s.batches.Create(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

func (s *Server) updateBatch(c *gin.Context) {
	var in inventory.UpdateBatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respondError(c, models.Validationf("invalid request body"))
		return
	}
	batch, err := s.batches.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) useBatch(c *gin.Context) {
	var in struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respondError(c, models.Validationf("invalid request body"))
		return
	}
	batch, err := s.batches.Use(c.Request.Context(), c.Param("id"), in.Amount)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) deleteBatch(c *gin.Context) {
	if err := s.batches.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory batch deleted."})
}

func (s *Server) reconcileBatches(c *gin.Context) {
	removed, err := s.batches.DeleteOrphans(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orphans_removed": removed})
}
