package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Trivial patterns rejected regardless of character-class coverage.
var commonPatterns = []string{
	"password",
	"passw0rd",
	"12345678",
	"qwerty",
	"letmein",
	"abc123",
	"iloveyou",
	"admin123",
	"welcome1",
}

// CheckPasswordStrength enforces the account password policy: at least 8
// characters with lowercase, uppercase, digit and symbol, and not built
// around a trivial pattern. Returns a human-readable reason or "" when the
// password passes.
func CheckPasswordStrength(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters long"
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsDigit(c):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return "Password must contain lowercase, uppercase, a digit and a symbol"
	}

	lowered := strings.ToLower(password)
	for _, p := range commonPatterns {
		if strings.Contains(lowered, p) {
			return "Password is too predictable"
		}
	}
	return ""
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
