package checkout

import "time"

// TTL for a pre-authentication cart. A session past its expiry is treated
// as missing regardless of stored state.
const SessionTTL = 2 * time.Hour

type CheckoutSession struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"uniqueIndex;size:64"`
	ServiceID uint   `gorm:"index"`

	// Snapshots taken at checkout start so later catalog edits don't shift
	// the visitor's cart.
	ServiceData    string `gorm:"type:jsonb;default:'{}'"`
	ContactData    string `gorm:"type:jsonb;default:'{}'"`
	SelectedAddOns string `gorm:"type:jsonb;default:'[]'"`

	TotalAmount float64
	UserID      *uint `gorm:"index"`

	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *CheckoutSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
