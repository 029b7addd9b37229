package users

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPasswordResetTokenUsable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	used := now.Add(-10 * time.Minute)

	cases := []struct {
		name  string
		token PasswordResetToken
		want  bool
	}{
		{"fresh", PasswordResetToken{ExpiresAt: now.Add(time.Hour)}, true},
		{"already used", PasswordResetToken{ExpiresAt: now.Add(time.Hour), UsedAt: &used}, false},
		{"expired", PasswordResetToken{ExpiresAt: now.Add(-time.Minute)}, false},
		{"used and expired", PasswordResetToken{ExpiresAt: now.Add(-time.Minute), UsedAt: &used}, false},
		{"expires exactly now", PasswordResetToken{ExpiresAt: now}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.token.Usable(now))
		})
	}
}
