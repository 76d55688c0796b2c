// Package api wires the repositories to the HTTP surface: routing,
// request middleware, and the error-to-status mapping.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"cortado/internal/database"
	"cortado/internal/inventory"
	"cortado/internal/menu"
	"cortado/internal/models"
	"cortado/internal/monitoring"

	"github.com/gin-gonic/gin"
)

// Server is the admin API for the cafe: menu CRUD, ingredient and batch
// management, and the static admin frontend.
type Server struct {
	router      *gin.Engine
	log         *slog.Logger
	ingredients *inventory.IngredientRepository
	batches     *inventory.BatchRepository
	menu        *menu.Repository
}

// NewServer builds the router with all routes registered. metrics may be
// nil, in which case no request metrics are recorded. publicDir, when
// non-empty, is served for any route the API does not claim.
func NewServer(db database.Gateway, log *slog.Logger, metrics *monitoring.Metrics, publicDir string) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))
	if metrics != nil {
		router.Use(RequestMetrics(metrics))
	}

	s := &Server{
		router:      router,
		log:         log,
		ingredients: inventory.NewIngredientRepository(db, log),
		batches:     inventory.NewBatchRepository(db, log),
		menu:        menu.NewRepository(db, log),
	}
	s.setupRoutes(publicDir)
	return s
}

// Router returns the underlying gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes(publicDir string) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		m := api.Group("/menu")
		{
			m.GET("", s.listMenu)
			m.GET("/archive", s.listMenuArchive)
			m.GET("/:id", s.getMenuItem)
			m.POST("", s.createMenuItem)
			m.PUT("/:id", s.updateMenuItem)
			m.PUT("/:id/archive", s.archiveMenuItem)
			m.PUT("/:id/restore", s.restoreMenuItem)
			m.DELETE("/:id", s.deleteMenuItem)
		}

		inv := api.Group("/inventory")
		{
			inv.GET("/ingredients", s.listIngredients)
			inv.POST("/ingredients", s.createIngredient)
			inv.PUT("/ingredients/:id", s.updateIngredient)
			inv.DELETE("/ingredients/:id", s.deleteIngredient)

			inv.GET("", s.listBatches)
			inv.POST("", s.createBatch)
			inv.POST("/reconcile", s.reconcileBatches)
			inv.PUT("/:id", s.updateBatch)
			inv.PATCH("/:id/use", s.useBatch)
			inv.DELETE("/:id", s.deleteBatch)
		}
	}

	if publicDir != "" {
		files := http.FileServer(http.Dir(publicDir))
		s.router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	}
}

// respondError maps the domain error taxonomy onto the status codes the
// admin frontend expects; anything untagged is a 500.
func (s *Server) respondError(c *gin.Context, err error) {
	kind, ok := models.KindOf(err)
	if !ok {
		s.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case models.KindValidation, models.KindDepleted:
		status = http.StatusBadRequest
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindConflict:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
