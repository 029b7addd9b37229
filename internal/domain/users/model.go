package users

import "time"

const (
	RoleClient         = "client"
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
)

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	PasswordHash *string `gorm:""`
	Provider     string  `gorm:"type:varchar(20);not null;default:'local'"`
	ProviderID   *string `gorm:"uniqueIndex:idx_users_provider_id"`
	Role         string  `gorm:"type:varchar(20);not null;default:'client'"`

	FirstName   string
	LastName    string
	CompanyName string
	Phone       string

	ReferralCode     *string `gorm:"uniqueIndex:idx_users_referral_code"`
	ReferredByID     *uint   `gorm:"column:referred_by_id"`
	ReferredBy       *User   `gorm:"foreignKey:ReferredByID"`
	ReferralEarnings float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sanitized strips credential material before the record leaves the API.
type Sanitized struct {
	ID           uint    `json:"id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	CompanyName  string  `json:"companyName,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Role         string  `json:"role"`
	Provider     string  `json:"provider"`
	ReferralCode *string `json:"referralCode,omitempty"`
}

func (u *User) Sanitize() Sanitized {
	return Sanitized{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		CompanyName:  u.CompanyName,
		Phone:        u.Phone,
		Role:         u.Role,
		Provider:     u.Provider,
		ReferralCode: u.ReferralCode,
	}
}

// IsLocal reports whether the account authenticates with a password.
func (u *User) IsLocal() bool {
	return u.Provider == "local" && u.PasswordHash != nil && *u.PasswordHash != ""
}
