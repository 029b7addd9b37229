package projects

import (
	"errors"
	"net/http"

	"agency-platform/database"
	"agency-platform/internal/app/http/middleware"
	"agency-platform/internal/apperr"
	"agency-platform/internal/billing"
	"agency-platform/internal/domain/messages"
	"agency-platform/internal/domain/orders"
	domainprojects "agency-platform/internal/domain/projects"
	"agency-platform/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	Reconciler *billing.Reconciler
}

// List returns the caller's projects, first backfilling any paid order
// that is missing one. The backfill covers payments applied before
// project creation existed, and webhook deliveries that died between
// marking the order and creating the project.
func (h *Handler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	h.backfill(user.ID)

	var list []domainprojects.Project
	if err := database.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (h *Handler) backfill(userID uint) {
	var paidWithout []orders.Order
	err := database.DB.
		Where("user_id = ? AND status IN ? AND id NOT IN (?)",
			userID,
			[]string{orders.StatusPaid, orders.StatusInProgress, orders.StatusComplete},
			database.DB.Model(&domainprojects.Project{}).Select("order_id"),
		).
		Find(&paidWithout).Error
	if err != nil {
		logging.L().Warn("project backfill query failed", zap.Error(err))
		return
	}

	for i := range paidWithout {
		if _, err := h.Reconciler.EnsureProjectForOrder(&paidWithout[i]); err != nil {
			logging.L().Warn("project backfill failed",
				zap.Uint("order_id", paidWithout[i].ID), zap.Error(err))
		}
	}
}

func (h *Handler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)

	project, err := h.loadOwned(c.Param("id"), user.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *Handler) ListMessages(c *gin.Context) {
	user := middleware.CurrentUser(c)

	project, err := h.loadOwned(c.Param("id"), user.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var list []messages.Message
	if err := database.DB.Where("project_id = ?", project.ID).Order("created_at ASC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

func (h *Handler) PostMessage(c *gin.Context) {
	user := middleware.CurrentUser(c)

	project, err := h.loadOwned(c.Param("id"), user.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var input struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Message body is required"))
		return
	}

	msg := messages.Message{
		ProjectID: project.ID,
		SenderID:  user.ID,
		Body:      input.Body,
	}
	if err := database.DB.Create(&msg).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) loadOwned(id string, userID uint) (*domainprojects.Project, error) {
	var project domainprojects.Project
	err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Project not found")
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}
