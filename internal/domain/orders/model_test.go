package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancellable(t *testing.T) {
	assert.True(t, (&Order{Status: StatusPending}).Cancellable())

	for _, status := range []string{StatusPaid, StatusInProgress, StatusComplete, StatusCancelled} {
		assert.False(t, (&Order{Status: status}).Cancellable(), "status %s must not be cancellable", status)
	}
}

func TestUserTransitionAllowed(t *testing.T) {
	assert.True(t, UserTransitionAllowed(StatusPending, StatusPaid))
	assert.True(t, UserTransitionAllowed(StatusPending, StatusCancelled))
	assert.True(t, UserTransitionAllowed(StatusPaid, StatusInProgress))
	assert.True(t, UserTransitionAllowed(StatusPaid, StatusComplete))

	// cancelled and complete are terminal for user-initiated changes
	assert.False(t, UserTransitionAllowed(StatusCancelled, StatusPending))
	assert.False(t, UserTransitionAllowed(StatusCancelled, StatusPaid))
	assert.False(t, UserTransitionAllowed(StatusComplete, StatusInProgress))
	assert.False(t, UserTransitionAllowed(StatusPending, StatusInProgress))
	assert.False(t, UserTransitionAllowed(StatusInProgress, StatusPending))
}
