package billing

import (
	"context"
	"fmt"
	"math"

	"agency-platform/internal/apperr"
	domainbilling "agency-platform/internal/domain/billing"
	"agency-platform/internal/domain/orders"
	"agency-platform/internal/infra/paystack"

	"gorm.io/gorm"
)

// InitializePayment starts a hosted-payment transaction for an order and
// records the pending payment row keyed by the generated reference.
// Returns the provider's hosted-payment URL.
func InitializePayment(ctx context.Context, db *gorm.DB, gateway *paystack.Client, order *orders.Order, email, callbackBase string) (string, error) {
	if gateway == nil || gateway.SecretKey == "" {
		return "", apperr.Configuration("payment gateway not configured")
	}
	if order.TotalAmount <= 0 {
		return "", apperr.Validation("order amount must be positive")
	}
	if order.ID == 0 || order.UserID == 0 || email == "" {
		return "", apperr.Validation("order, user and email are required")
	}

	reference := paystack.NewReference()
	result, err := gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       email,
		AmountCents: int64(math.Round(order.TotalAmount * 100)),
		Reference:   reference,
		CallbackURL: callbackBase + "/api/payments/callback",
		Metadata: paystack.Metadata{
			OrderID: fmt.Sprint(order.ID),
			UserID:  fmt.Sprint(order.UserID),
		},
	})
	if err != nil {
		return "", apperr.Gateway("payment initialization failed", err)
	}

	payment := domainbilling.Payment{
		UserID:    order.UserID,
		OrderID:   order.ID,
		Amount:    order.TotalAmount,
		Currency:  order.Currency,
		Provider:  "paystack",
		Reference: reference,
		Status:    domainbilling.StatusPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		return "", err
	}

	return result.AuthorizationURL, nil
}
