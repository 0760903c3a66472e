package stubapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harveywai/jokeadmin/pkg/middleware"
	"github.com/harveywai/jokeadmin/pkg/models"
	"gorm.io/gorm"
)

// Handlers serves the bot's REST API from a gorm database.
type Handlers struct {
	DB *gorm.DB
}

// NewHandlers creates handlers backed by db.
func NewHandlers(db *gorm.DB) *Handlers {
	return &Handlers{DB: db}
}

// ListTriggers handles GET /api/triggers.
func (h *Handlers) ListTriggers(c *gin.Context) {
	triggers := []models.Trigger{}
	if err := h.DB.Preload("Jokes").Order("id").Find(&triggers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, triggers)
}

// CreateTrigger handles POST /api/triggers.
func (h *Handlers) CreateTrigger(c *gin.Context) {
	var body models.CreateTriggerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trigger := models.Trigger{Value: body.Value}
	if err := h.DB.Create(&trigger).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "trigger already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, trigger)
}

// DeleteTrigger handles DELETE /api/triggers/:id. The trigger's jokes are
// removed in the same transaction.
func (h *Handlers) DeleteTrigger(c *gin.Context) {
	id := middleware.PathID(c, "id")
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trigger_id = ?", id).Delete(&models.Joke{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Trigger{}, id).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListJokes handles GET /api/triggers/:id/jokes. An unknown trigger has no
// jokes.
func (h *Handlers) ListJokes(c *gin.Context) {
	jokes := []models.Joke{}
	if err := h.DB.Where("trigger_id = ?", middleware.PathID(c, "id")).Order("id").Find(&jokes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, jokes)
}

// CreateJoke handles POST /api/triggers/:id/jokes.
func (h *Handlers) CreateJoke(c *gin.Context) {
	var body models.CreateJokeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := middleware.PathID(c, "id")
	var trigger models.Trigger
	if err := h.DB.First(&trigger, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trigger not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	joke := models.Joke{TriggerID: trigger.ID, Text: body.Text}
	if err := h.DB.Create(&joke).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, joke)
}

// DeleteJoke handles DELETE /api/jokes/:id.
func (h *Handlers) DeleteJoke(c *gin.Context) {
	if err := h.DB.Delete(&models.Joke{}, middleware.PathID(c, "id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListStandaloneJokes handles GET /api/jokes-x.
func (h *Handlers) ListStandaloneJokes(c *gin.Context) {
	jokes := []models.StandaloneJoke{}
	if err := h.DB.Order("id").Find(&jokes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, jokes)
}

// CreateStandaloneJoke handles POST /api/jokes-x.
func (h *Handlers) CreateStandaloneJoke(c *gin.Context) {
	var body models.CreateJokeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	joke := models.StandaloneJoke{Text: body.Text}
	if err := h.DB.Create(&joke).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, joke)
}

// DeleteStandaloneJoke handles DELETE /api/jokes-x/:id.
func (h *Handlers) DeleteStandaloneJoke(c *gin.Context) {
	if err := h.DB.Delete(&models.StandaloneJoke{}, middleware.PathID(c, "id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
