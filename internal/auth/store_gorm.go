package auth

import (
	"errors"
	"time"

	"agency-platform/internal/domain/sessions"
	"agency-platform/internal/domain/users"

	"gorm.io/gorm"
)

// GormSessionStore backs the session manager with the sessions table.
type GormSessionStore struct {
	DB *gorm.DB
}

func (s *GormSessionStore) Create(sess *sessions.Session) error {
	return s.DB.Create(sess).Error
}

func (s *GormSessionStore) FindByToken(token string) (*sessions.Session, error) {
	var sess sessions.Session
	err := s.DB.Where("token = ?", token).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *GormSessionStore) Touch(token string, at time.Time) error {
	return s.DB.Model(&sessions.Session{}).
		Where("token = ?", token).
		Update("last_activity_at", at).Error
}

func (s *GormSessionStore) DeleteByToken(token string) error {
	return s.DB.Where("token = ?", token).Delete(&sessions.Session{}).Error
}

func (s *GormSessionStore) DeleteExpired(now time.Time) (int64, error) {
	res := s.DB.
		Where("last_activity_at < ? OR login_at < ?",
			now.Add(-sessions.InactivityTimeout),
			now.Add(-sessions.MaxLifetime)).
		Delete(&sessions.Session{})
	return res.RowsAffected, res.Error
}

type GormUserStore struct {
	DB *gorm.DB
}

func (s *GormUserStore) FindUserByID(id uint) (*users.User, error) {
	var u users.User
	err := s.DB.Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
