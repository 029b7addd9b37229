package billing

import (
	"time"

	"agency-platform/internal/domain/orders"
	"agency-platform/internal/domain/users"
)

const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

// Payment is one attempt to collect money for an order. Reference is the
// idempotency key correlating webhook and callback delivery of the same
// provider transaction.
type Payment struct {
	ID      uint `gorm:"primaryKey"`
	UserID  uint `gorm:"index"`
	User    users.User
	OrderID uint `gorm:"index"`
	Order   orders.Order

	Amount    float64
	Currency  string `gorm:"size:3;not null;default:'USD'"`
	Provider  string `gorm:"size:50;not null"`
	Reference string `gorm:"size:255;uniqueIndex"`
	Status    string `gorm:"type:varchar(20);not null;default:'pending';index"`

	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
