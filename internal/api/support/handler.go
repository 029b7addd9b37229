package support

import (
	"net/http"

	"agency-platform/database"
	"agency-platform/internal/app/http/middleware"
	"agency-platform/internal/apperr"
	"agency-platform/internal/domain/messages"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func (h *Handler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input struct {
		Subject string `json:"subject" binding:"required"`
		Body    string `json:"body"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Subject is required"))
		return
	}

	req := messages.SupportRequest{
		UserID:  user.ID,
		Subject: input.Subject,
		Body:    input.Body,
		Status:  messages.SupportOpen,
	}
	if err := database.DB.Create(&req).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"supportRequest": req})
}

func (h *Handler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var list []messages.SupportRequest
	if err := database.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supportRequests": list})
}
