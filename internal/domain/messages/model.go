package messages

import (
	"time"

	"agency-platform/internal/domain/users"
)

type Message struct {
	ID        uint `gorm:"primaryKey"`
	ProjectID uint `gorm:"index;not null"`
	SenderID  uint `gorm:"index;not null"`
	Sender    users.User
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

const (
	SupportOpen   = "open"
	SupportClosed = "closed"
)

type SupportRequest struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index;not null"`
	User      users.User
	Subject   string `gorm:"not null"`
	Body      string `gorm:"type:text"`
	Status    string `gorm:"type:varchar(20);not null;default:'open'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
