package auth

import (
	"errors"
	"time"

	"agency-platform/internal/domain/users"

	"gorm.io/gorm"
)

// ResetStore persists password-reset state. Split from the handler so the
// reset flow can be exercised without a database.
type ResetStore interface {
	FindUserByEmail(email string) (*users.User, error)
	CreateToken(t *users.PasswordResetToken) error
	FindToken(token string) (*users.PasswordResetToken, error)
	UpdatePassword(userID uint, hash string) error
	MarkUsed(t *users.PasswordResetToken, at time.Time) error
	PurgeStale(userID uint, now time.Time) error
}

type GormResetStore struct {
	DB *gorm.DB
}

func (s *GormResetStore) FindUserByEmail(email string) (*users.User, error) {
	var u users.User
	err := s.DB.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormResetStore) CreateToken(t *users.PasswordResetToken) error {
	return s.DB.Create(t).Error
}

func (s *GormResetStore) FindToken(token string) (*users.PasswordResetToken, error) {
	var t users.PasswordResetToken
	err := s.DB.Where("token = ?", token).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormResetStore) UpdatePassword(userID uint, hash string) error {
	return s.DB.Model(&users.User{}).Where("id = ?", userID).Update("password_hash", hash).Error
}

func (s *GormResetStore) MarkUsed(t *users.PasswordResetToken, at time.Time) error {
	return s.DB.Model(t).Update("used_at", at).Error
}

// PurgeStale drops tokens that can no longer be used: expired ones, and
// the user's other outstanding unused tokens.
func (s *GormResetStore) PurgeStale(userID uint, now time.Time) error {
	return s.DB.Where("expires_at < ? OR (user_id = ? AND used_at IS NULL)", now, userID).
		Delete(&users.PasswordResetToken{}).Error
}
