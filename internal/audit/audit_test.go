package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	cases := map[string]string{
		"alexandra@example.com": "ale***@example.com",
		"bob@example.com":       "bob***@example.com",
		"ab@example.com":        "ab***@example.com",
		"@example.com":          "***",
		"not-an-email":          "***",
		"":                      "***",
	}
	for in, want := range cases {
		assert.Equal(t, want, RedactEmail(in), "input %q", in)
	}
}
