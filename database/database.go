package database

import (
	"log"

	"agency-platform/config"
	"agency-platform/internal/domain/billing"
	"agency-platform/internal/domain/checkout"
	"agency-platform/internal/domain/messages"
	"agency-platform/internal/domain/orders"
	"agency-platform/internal/domain/projects"
	"agency-platform/internal/domain/referrals"
	"agency-platform/internal/domain/services"
	"agency-platform/internal/domain/sessions"
	"agency-platform/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	db, err := gorm.Open(postgres.Open(config.DATABASE_URL), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		&users.User{},
		&users.PasswordResetToken{},
		&sessions.Session{},

		&services.Service{},
		&orders.Order{},
		&billing.Payment{},
		&projects.Project{},
		&referrals.Referral{},
		&checkout.CheckoutSession{},

		&messages.Message{},
		&messages.SupportRequest{},
	); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}
}
