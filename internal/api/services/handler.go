package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"agency-platform/database"
	"agency-platform/internal/apperr"
	"agency-platform/internal/cache"
	domainservices "agency-platform/internal/domain/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const catalogTTL = 5 * time.Minute

type Handler struct {
	Cache cache.Cache
}

func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, ok := h.Cache.Get(ctx, "services:list"); ok {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	var list []domainservices.Service
	if err := database.DB.Where("active = ?", true).Order("price ASC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	body, err := json.Marshal(gin.H{"services": list})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.Cache.Set(ctx, "services:list", string(body), catalogTTL)
	c.Data(http.StatusOK, "application/json", body)
}

func (h *Handler) Get(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()
	key := "services:slug:" + slug

	if cached, ok := h.Cache.Get(ctx, key); ok {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	var svc domainservices.Service
	err := database.DB.Where("slug = ? AND active = ?", slug, true).First(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.NotFound("Service not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	body, err := json.Marshal(gin.H{"service": svc})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.Cache.Set(ctx, key, string(body), catalogTTL)
	c.Data(http.StatusOK, "application/json", body)
}
