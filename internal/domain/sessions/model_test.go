package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpired(t *testing.T) {
	now := time.Now()

	fresh := Session{LoginAt: now, LastActivityAt: now}
	assert.False(t, fresh.Expired(now))

	inactive := Session{
		LoginAt:        now.Add(-time.Hour),
		LastActivityAt: now.Add(-InactivityTimeout - time.Second),
	}
	assert.True(t, inactive.Expired(now))

	tooOld := Session{
		LoginAt:        now.Add(-MaxLifetime - time.Second),
		LastActivityAt: now.Add(-time.Minute),
	}
	assert.True(t, tooOld.Expired(now))

	nearLimit := Session{
		LoginAt:        now.Add(-MaxLifetime + time.Minute),
		LastActivityAt: now.Add(-InactivityTimeout + time.Minute),
	}
	assert.False(t, nearLimit.Expired(now))
}
