package orders

import (
	"encoding/json"
	"errors"
	"net/http"

	"agency-platform/config"
	"agency-platform/database"
	"agency-platform/internal/app/http/middleware"
	"agency-platform/internal/apperr"
	"agency-platform/internal/audit"
	"agency-platform/internal/billing"
	domainorders "agency-platform/internal/domain/orders"
	"agency-platform/internal/domain/projects"
	"agency-platform/internal/domain/services"
	"agency-platform/internal/infra/paystack"
	"agency-platform/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	Gateway *paystack.Client // nil when payments are disabled
}

type createInput struct {
	ServiceID      *uint           `json:"serviceId"`
	ContactInfo    json.RawMessage `json:"contactInfo"`
	ProjectDetails json.RawMessage `json:"projectDetails"`
	SelectedAddOns json.RawMessage `json:"selectedAddOns"`
	TotalAmount    float64         `json:"totalAmount"`
	Currency       string          `json:"currency"`
}

// Create places an order and starts payment. A gateway outage does not
// abort the order: the response then carries
// paymentStatus=failed_to_initialize and no paymentUrl, and the client
// retries through reactivate-payment.
func (h *Handler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input createInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid order payload"))
		return
	}
	if input.TotalAmount <= 0 {
		apperr.Respond(c, apperr.Validation("Total amount must be positive"))
		return
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	// Structured timeline is fixed at creation from the service's
	// duration so reconciliation never has to parse free text.
	var timelineWeeks *int
	if input.ServiceID != nil {
		var svc services.Service
		if err := database.DB.Where("id = ? AND active = ?", *input.ServiceID, true).First(&svc).Error; err != nil {
			apperr.Respond(c, apperr.Validation("Unknown service"))
			return
		}
		weeks := projects.ParseTimelineWeeks(svc.Duration)
		timelineWeeks = &weeks
	}

	customRequest, _ := json.Marshal(gin.H{
		"contactInfo":    input.ContactInfo,
		"projectDetails": input.ProjectDetails,
		"selectedAddOns": input.SelectedAddOns,
	})

	order := domainorders.Order{
		UserID:        user.ID,
		ServiceID:     input.ServiceID,
		CustomRequest: string(customRequest),
		TotalAmount:   input.TotalAmount,
		Currency:      currency,
		Status:        domainorders.StatusPending,
		TimelineWeeks: timelineWeeks,
		PaymentStatus: domainorders.PaymentInitialized,
	}
	if err := database.DB.Create(&order).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	paymentURL, err := billing.InitializePayment(c.Request.Context(), database.DB, h.Gateway, &order, user.Email, config.PAYMENT_CALLBACK_BASE)
	if err != nil {
		logging.L().Warn("payment initialization failed",
			zap.Uint("order_id", order.ID), zap.Error(err))
		database.DB.Model(&order).Update("payment_status", domainorders.PaymentInitFailed)
		c.JSON(http.StatusOK, gin.H{
			"order":         order,
			"paymentStatus": domainorders.PaymentInitFailed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":         order,
		"paymentStatus": domainorders.PaymentInitialized,
		"paymentUrl":    paymentURL,
	})
}

func (h *Handler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var list []domainorders.Order
	if err := database.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// Cancel is owner-only and guarded: only pending orders cancel.
func (h *Handler) Cancel(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var order domainorders.Order
	err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.NotFound("Order not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if !order.Cancellable() {
		apperr.Respond(c, apperr.Validation(domainorders.ErrNotCancellable.Error()))
		return
	}

	// Same conditional-update discipline as payment application: a
	// webhook marking the order paid concurrently must win or lose
	// cleanly, never interleave.
	res := database.DB.Model(&domainorders.Order{}).
		Where("id = ? AND status = ?", order.ID, domainorders.StatusPending).
		Update("status", domainorders.StatusCancelled)
	if res.Error != nil {
		apperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.Validation(domainorders.ErrNotCancellable.Error()))
		return
	}

	order.Status = domainorders.StatusCancelled
	audit.Record(audit.ActionOrderCancelled, audit.RedactEmail(user.Email), zap.Uint("order_id", order.ID))
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ReactivatePayment re-runs gateway initialization for a pending order
// whose earlier attempt failed or whose hosted page expired.
func (h *Handler) ReactivatePayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var order domainorders.Order
	err := database.DB.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.NotFound("Order not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if order.Status != domainorders.StatusPending {
		apperr.Respond(c, apperr.Validation(domainorders.ErrNotReactivatable.Error()))
		return
	}

	paymentURL, err := billing.InitializePayment(c.Request.Context(), database.DB, h.Gateway, &order, user.Email, config.PAYMENT_CALLBACK_BASE)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	database.DB.Model(&order).Update("payment_status", domainorders.PaymentInitialized)
	c.JSON(http.StatusOK, gin.H{"paymentUrl": paymentURL})
}
