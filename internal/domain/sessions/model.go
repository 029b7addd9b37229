package sessions

import "time"

// Validity windows for a session. A session is live while both hold:
// the browser was active recently, and the login itself is not too old.
const (
	InactivityTimeout = 30 * time.Minute
	MaxLifetime       = 12 * time.Hour
)

type Session struct {
	ID             uint   `gorm:"primaryKey"`
	Token          string `gorm:"uniqueIndex;size:64"`
	UserID         uint   `gorm:"index"`
	AuthMethod     string `gorm:"type:varchar(20)"`
	LoginAt        time.Time
	LastActivityAt time.Time
	CreatedAt      time.Time
}

func (s *Session) Expired(now time.Time) bool {
	if now.Sub(s.LastActivityAt) >= InactivityTimeout {
		return true
	}
	return now.Sub(s.LoginAt) >= MaxLifetime
}
