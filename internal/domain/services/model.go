package services

import "time"

// Service is a package of work the agency sells.
type Service struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	Price       float64

	// Human-readable delivery estimate, e.g. "2-4 weeks". The structured
	// timeline on orders is derived from this at order creation.
	Duration string `gorm:"size:50"`

	AddOns string `gorm:"type:jsonb;default:'[]'"`
	Active bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
