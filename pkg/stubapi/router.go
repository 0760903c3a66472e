package stubapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harveywai/jokeadmin/pkg/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRouter wires the nine bot API routes onto a fresh gin engine.
func NewRouter(db *gorm.DB, logger *zap.Logger) *gin.Engine {
	h := NewHandlers(db)

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestLogger(logger))

	id := middleware.IDParam("id", rejectID)

	api := r.Group("/api")
	{
		api.GET("/triggers", h.ListTriggers)
		api.POST("/triggers", h.CreateTrigger)
		api.DELETE("/triggers/:id", id, h.DeleteTrigger)
		api.GET("/triggers/:id/jokes", id, h.ListJokes)
		api.POST("/triggers/:id/jokes", id, h.CreateJoke)
		api.DELETE("/jokes/:id", id, h.DeleteJoke)

		api.GET("/jokes-x", h.ListStandaloneJokes)
		api.POST("/jokes-x", h.CreateStandaloneJoke)
		api.DELETE("/jokes-x/:id", id, h.DeleteStandaloneJoke)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func rejectID(c *gin.Context, raw string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id " + raw})
}
