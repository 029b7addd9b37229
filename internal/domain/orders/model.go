package orders

import (
	"errors"
	"time"

	"agency-platform/internal/domain/users"
)

const (
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
	StatusCancelled  = "cancelled"
)

// Payment initialization outcome reported back to the client alongside the
// order. "failed_to_initialize" is an explicit signal, never inferred from a
// missing paymentUrl.
const (
	PaymentInitialized = "initialized"
	PaymentInitFailed  = "failed_to_initialize"
	PaymentPaid        = "paid"
)

var ErrNotCancellable = errors.New("only pending orders can be cancelled")
var ErrNotReactivatable = errors.New("only pending orders can have payment reactivated")

type Order struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index;not null"`
	User      users.User
	ServiceID *uint

	// JSON-encoded contact/project/add-on details captured at checkout.
	CustomRequest string `gorm:"type:jsonb;default:'{}'"`

	TotalAmount float64 `gorm:"not null"`
	Currency    string  `gorm:"size:3;not null;default:'USD'"`
	Status      string  `gorm:"type:varchar(20);not null;default:'pending';index"`

	// Structured timeline copied from the service at creation time; the
	// free-text duration parser is only a fallback for rows without it.
	TimelineWeeks *int

	PaymentStatus string `gorm:"type:varchar(30);not null;default:'initialized'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *Order) Cancellable() bool {
	return UserTransitionAllowed(o.Status, StatusCancelled)
}

// UserTransitionAllowed guards user-initiated status changes. Admin overrides
// bypass this and may set any status.
func UserTransitionAllowed(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusPaid || to == StatusCancelled
	case StatusPaid:
		return to == StatusInProgress || to == StatusComplete
	default:
		return false
	}
}
