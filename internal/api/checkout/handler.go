package checkout

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"agency-platform/database"
	"agency-platform/internal/app/http/middleware"
	"agency-platform/internal/apperr"
	"agency-platform/internal/cache"
	domaincheckout "agency-platform/internal/domain/checkout"
	"agency-platform/internal/domain/services"
	"agency-platform/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	Cache cache.Cache
}

func newCheckoutToken() string {
	b := make([]byte, 24)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func cacheKey(token string) string {
	return "checkout:" + token
}

// Create starts a pre-authentication cart. The service row is snapshotted
// so catalog edits don't shift the visitor's total mid-checkout.
func (h *Handler) Create(c *gin.Context) {
	var input struct {
		ServiceID      uint            `json:"serviceId" binding:"required"`
		ContactData    json.RawMessage `json:"contactData"`
		SelectedAddOns json.RawMessage `json:"selectedAddOns"`
		TotalAmount    float64         `json:"totalAmount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid checkout payload"))
		return
	}

	var svc services.Service
	if err := database.DB.Where("id = ? AND active = ?", input.ServiceID, true).First(&svc).Error; err != nil {
		apperr.Respond(c, apperr.Validation("Unknown service"))
		return
	}
	snapshot, _ := json.Marshal(svc)

	total := input.TotalAmount
	if total <= 0 {
		total = svc.Price
	}

	addOns := string(input.SelectedAddOns)
	if addOns == "" {
		addOns = "[]"
	}
	contact := string(input.ContactData)
	if contact == "" {
		contact = "{}"
	}

	session := domaincheckout.CheckoutSession{
		Token:          newCheckoutToken(),
		ServiceID:      svc.ID,
		ServiceData:    string(snapshot),
		ContactData:    contact,
		SelectedAddOns: addOns,
		TotalAmount:    total,
		ExpiresAt:      time.Now().Add(domaincheckout.SessionTTL),
	}
	if user := middleware.CurrentUser(c); user != nil {
		session.UserID = &user.ID
	}

	if err := database.DB.Create(&session).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	if body, err := json.Marshal(session); err == nil {
		h.Cache.Set(c.Request.Context(), cacheKey(session.Token), string(body), domaincheckout.SessionTTL)
	}
	c.JSON(http.StatusCreated, gin.H{"checkoutSession": session})
}

// Get answers the cart for a token. Expired carts are indistinguishable
// from missing ones.
func (h *Handler) Get(c *gin.Context) {
	token := c.Param("token")

	if cached, ok := h.Cache.Get(c.Request.Context(), cacheKey(token)); ok {
		var session domaincheckout.CheckoutSession
		if err := json.Unmarshal([]byte(cached), &session); err == nil && !session.Expired(time.Now()) {
			c.JSON(http.StatusOK, gin.H{"checkoutSession": session})
			return
		}
	}

	session, err := h.load(token)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkoutSession": session})
}

// Update mutates contact data and add-ons, and attaches the cart to the
// caller once they are authenticated.
func (h *Handler) Update(c *gin.Context) {
	session, err := h.load(c.Param("token"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var input struct {
		ContactData    json.RawMessage `json:"contactData"`
		SelectedAddOns json.RawMessage `json:"selectedAddOns"`
		TotalAmount    *float64        `json:"totalAmount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid checkout payload"))
		return
	}

	updates := map[string]interface{}{}
	if len(input.ContactData) > 0 {
		updates["contact_data"] = string(input.ContactData)
	}
	if len(input.SelectedAddOns) > 0 {
		updates["selected_add_ons"] = string(input.SelectedAddOns)
	}
	if input.TotalAmount != nil && *input.TotalAmount > 0 {
		updates["total_amount"] = *input.TotalAmount
	}
	if user := middleware.CurrentUser(c); user != nil && session.UserID == nil {
		updates["user_id"] = user.ID
	}

	if len(updates) > 0 {
		if err := database.DB.Model(session).Updates(updates).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
	}

	h.Cache.Delete(c.Request.Context(), cacheKey(session.Token))
	c.JSON(http.StatusOK, gin.H{"checkoutSession": session})
}

func (h *Handler) load(token string) (*domaincheckout.CheckoutSession, error) {
	var session domaincheckout.CheckoutSession
	err := database.DB.Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Checkout session not found")
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		database.DB.Delete(&session)
		return nil, apperr.NotFound("Checkout session not found")
	}
	return &session, nil
}

// SweepLoop deletes expired carts periodically until stop is closed.
func SweepLoop(db *gorm.DB, interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			res := db.Where("expires_at < ?", time.Now()).Delete(&domaincheckout.CheckoutSession{})
			if res.Error != nil {
				logging.L().Warn("checkout sweep failed", zap.Error(res.Error))
			} else if res.RowsAffected > 0 {
				logging.L().Info("checkout sweep", zap.Int64("deleted", res.RowsAffected))
			}
		case <-stop:
			return
		}
	}
}
