package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"regexp"
	"strings"
	"time"

	"agency-platform/database"
	"agency-platform/internal/app/http/middleware"
	"agency-platform/internal/apperr"
	"agency-platform/internal/audit"
	authcore "agency-platform/internal/auth"
	"agency-platform/internal/domain/users"
	"agency-platform/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isEmailValid(email string) bool {
	return emailPattern.MatchString(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newResetToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func newReferralCode() string {
	b := make([]byte, 4)
	rand.Read(b)
	return "ref-" + hex.EncodeToString(b)
}

type Handler struct {
	Sessions *authcore.SessionManager
	Emailer  Emailer
	Resets   ResetStore
}

// Register creates a local-credential account. The user row is durable
// even when session establishment fails afterwards; the response then
// carries sessionEstablished=false and the client logs in manually.
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Email        string `json:"email" binding:"required"`
		Password     string `json:"password" binding:"required"`
		FirstName    string `json:"firstName" binding:"required"`
		LastName     string `json:"lastName"`
		CompanyName  string `json:"companyName"`
		Phone        string `json:"phone"`
		ReferralCode string `json:"referralCode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Missing required fields"))
		return
	}

	email := normalizeEmail(input.Email)
	if !isEmailValid(email) {
		apperr.Respond(c, apperr.Validation("Invalid email format"))
		return
	}
	if reason := authcore.CheckPasswordStrength(input.Password); reason != "" {
		apperr.Respond(c, apperr.Validation(reason))
		return
	}

	var existing users.User
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		apperr.Respond(c, apperr.Validation("Email already registered"))
		return
	}

	hashed, err := authcore.HashPassword(input.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	// A bad referral code is non-fatal; registration proceeds without a
	// referrer.
	var referredBy *uint
	if input.ReferralCode != "" {
		var referrer users.User
		if err := database.DB.Where("referral_code = ?", input.ReferralCode).First(&referrer).Error; err == nil {
			referredBy = &referrer.ID
		}
	}

	code := newReferralCode()
	user := users.User{
		Email:        email,
		PasswordHash: &hashed,
		Provider:     "local",
		Role:         users.RoleClient,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CompanyName:  input.CompanyName,
		Phone:        input.Phone,
		ReferralCode: &code,
		ReferredByID: referredBy,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		apperr.Respond(c, apperr.Validation("Email already registered"))
		return
	}

	audit.Record(audit.ActionRegister, audit.RedactEmail(email))

	sessionEstablished := true
	session, err := h.Sessions.Establish(user.ID, "local", middleware.SessionToken(c))
	if err != nil {
		logging.L().Warn("session establishment after registration failed",
			zap.Uint("user_id", user.ID), zap.Error(err))
		sessionEstablished = false
	} else {
		middleware.SetSessionCookie(c, session.Token)
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":               user.Sanitize(),
		"sessionEstablished": sessionEstablished,
	})
}

// Login verifies local credentials. All failure modes answer with the
// same opaque message; the session identifier is regenerated on success.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Missing email or password"))
		return
	}

	email := normalizeEmail(input.Email)
	invalid := apperr.Authentication("Invalid email or password")

	var user users.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		audit.Record(audit.ActionLoginFailure, audit.RedactEmail(email), zap.String("reason", "unknown_email"))
		apperr.Respond(c, invalid)
		return
	}
	if user.PasswordHash == nil || *user.PasswordHash == "" {
		audit.Record(audit.ActionLoginFailure, audit.RedactEmail(email), zap.String("reason", "oauth_only"))
		apperr.Respond(c, invalid)
		return
	}
	if !authcore.VerifyPassword(*user.PasswordHash, input.Password) {
		audit.Record(audit.ActionLoginFailure, audit.RedactEmail(email), zap.String("reason", "bad_password"))
		apperr.Respond(c, invalid)
		return
	}

	session, err := h.Sessions.Establish(user.ID, "local", middleware.SessionToken(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	middleware.SetSessionCookie(c, session.Token)

	audit.Record(audit.ActionLoginSuccess, audit.RedactEmail(email), zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"user": user.Sanitize()})
}

// CurrentUser answers the resolved caller, or null for anonymous — never
// an error.
func (h *Handler) CurrentUser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Sanitize()})
}

// Logout destroys the session. Idempotent for anonymous callers.
func (h *Handler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c)
	if token != "" {
		if err := h.Sessions.Destroy(token); err != nil {
			apperr.Respond(c, err)
			return
		}
	}
	middleware.ClearSessionCookie(c)

	actor := audit.Anonymous
	if u := middleware.CurrentUser(c); u != nil {
		actor = audit.RedactEmail(u.Email)
	}
	audit.Record(audit.ActionLogout, actor)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

const resetResponseMessage = "If your email exists, you'll receive a reset link."

// RequestPasswordReset always answers the same shape regardless of
// whether the email exists.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid email"))
		return
	}

	email := normalizeEmail(input.Email)
	audit.Record(audit.ActionResetRequested, audit.RedactEmail(email))

	user, err := h.Resets.FindUserByEmail(email)
	if err != nil || user == nil {
		c.JSON(http.StatusOK, gin.H{"message": resetResponseMessage})
		return
	}
	if !user.IsLocal() {
		// OAuth accounts never get a reset token, but the answer stays
		// identical.
		c.JSON(http.StatusOK, gin.H{"message": resetResponseMessage})
		return
	}

	token := newResetToken()
	reset := users.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	if err := h.Resets.CreateToken(&reset); err != nil {
		logging.L().Error("failed to persist reset token", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"message": resetResponseMessage})
		return
	}

	if err := h.Emailer.SendPasswordReset(user.Email, token); err != nil {
		logging.L().Error("failed to send reset email", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": resetResponseMessage})
}

// CompletePasswordReset consumes a single-use token.
func (h *Handler) CompletePasswordReset(c *gin.Context) {
	var input struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Missing token or password"))
		return
	}

	if reason := authcore.CheckPasswordStrength(input.Password); reason != "" {
		apperr.Respond(c, apperr.Validation(reason))
		return
	}

	reset, err := h.Resets.FindToken(input.Token)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if reset == nil || !reset.Usable(time.Now()) {
		apperr.Respond(c, apperr.Validation("Invalid or expired token"))
		return
	}

	hashed, err := authcore.HashPassword(input.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := h.Resets.UpdatePassword(reset.UserID, hashed); err != nil {
		apperr.Respond(c, err)
		return
	}

	now := time.Now()
	if err := h.Resets.MarkUsed(reset, now); err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := h.Resets.PurgeStale(reset.UserID, now); err != nil {
		logging.L().Warn("reset token cleanup failed", zap.Error(err))
	}

	audit.Record(audit.ActionResetCompleted, audit.Anonymous, zap.Uint("user_id", reset.UserID))
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// ChangePassword lets a logged-in local account rotate its password.
func (h *Handler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		apperr.Respond(c, apperr.Authentication("Authentication required"))
		return
	}

	var input struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Missing old or new password"))
		return
	}

	if user.PasswordHash == nil || *user.PasswordHash == "" {
		apperr.Respond(c, apperr.Validation("This account has no password. Sign in with your provider."))
		return
	}
	if !authcore.VerifyPassword(*user.PasswordHash, input.OldPassword) {
		apperr.Respond(c, apperr.Authentication("Old password is incorrect"))
		return
	}
	if reason := authcore.CheckPasswordStrength(input.NewPassword); reason != "" {
		apperr.Respond(c, apperr.Validation(reason))
		return
	}

	hashed, err := authcore.HashPassword(input.NewPassword)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := database.DB.Model(user).Update("password_hash", hashed).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	audit.Record(audit.ActionPasswordChanged, audit.RedactEmail(user.Email))
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
