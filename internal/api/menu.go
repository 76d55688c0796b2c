package api

import (
	"net/http"

	"cortado/internal/menu"
	"cortado/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) listMenu(c *gin.Context) {
	items, err := s.menu.List(c.Request.Context(), true)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) listMenuArchive(c *gin.Context) {
	items, err := s.menu.List(c.Request.Context(), false)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) getMenuItem(c *gin.Context) {
	item, err := s.menu.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) createMenuItem(c *gin.Context) {
	var in menu.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respondError(c, models.Validationf("invalid request body"))
		return
	}
	item, err := s.menu.Create(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) updateMenuItem(c *gin.Context) {
	var in menu.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respondError(c, models.Validationf("invalid request body"))
		return
	}
	item, err := s.menu.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) archiveMenuItem(c *gin.Context) {
	item, err := s.menu.SetActive(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) restoreMenuItem(c *gin.Context) {
	item, err := s.menu.SetActive(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) deleteMenuItem(c *gin.Context) {
	if err := s.menu.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item permanently deleted."})
}
