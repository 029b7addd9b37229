package referrals

import (
	"time"

	"agency-platform/internal/domain/users"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// Referral records a commission earned by a referrer when a user they
// referred pays for an order.
type Referral struct {
	ID             uint `gorm:"primaryKey"`
	ReferrerID     uint `gorm:"index;not null"`
	Referrer       users.User
	ReferredUserID uint `gorm:"index;not null"`
	OrderID        uint `gorm:"uniqueIndex;not null"`

	CommissionAmount float64
	Status           string `gorm:"type:varchar(20);not null;default:'pending'"`

	CreatedAt time.Time
}
