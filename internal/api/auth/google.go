package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"agency-platform/config"
	"agency-platform/database"
	"agency-platform/internal/app/http/middleware"
	"agency-platform/internal/apperr"
	"agency-platform/internal/audit"
	"agency-platform/internal/domain/users"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.GOOGLE_CLIENT_ID,
		ClientSecret: config.GOOGLE_CLIENT_SECRET,
		RedirectURL:  config.GOOGLE_REDIRECT_URL,
		Scopes: []string{
			"openid",
			"email",
			"profile",
		},
		Endpoint: google.Endpoint,
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /api/auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.SetCookie("oauth_state", state, 300, "/", "", config.IsProduction(), true)
	c.Redirect(http.StatusFound, googleOAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GET /api/auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		apperr.Respond(c, apperr.Validation("missing code/state"))
		return
	}

	cookieState, err := c.Cookie("oauth_state")
	if err != nil || cookieState != state {
		apperr.Respond(c, apperr.Validation("invalid oauth state"))
		return
	}

	tok, err := googleOAuthConfig().Exchange(c.Request.Context(), code)
	if err != nil {
		apperr.Respond(c, apperr.Authentication("failed to exchange code"))
		return
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		apperr.Respond(c, apperr.Authentication("missing id_token"))
		return
	}

	claims, err := verifyGoogleIDToken(c, rawIDToken)
	if err != nil {
		apperr.Respond(c, apperr.Authentication(err.Error()))
		return
	}
	if claims.Email == "" {
		apperr.Respond(c, apperr.Authentication("google account has no email"))
		return
	}

	user, err := findOrCreateGoogleUser(claims)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	session, err := h.Sessions.Establish(user.ID, "google", middleware.SessionToken(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	middleware.SetSessionCookie(c, session.Token)

	audit.Record(audit.ActionOAuthLogin, audit.RedactEmail(user.Email),
		zap.String("provider", "google"), zap.Uint("user_id", user.ID))
	c.Redirect(http.StatusFound, config.APP_URL+"/dashboard")
}

type googleIDClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

func verifyGoogleIDToken(c *gin.Context, rawIDToken string) (*googleIDClaims, error) {
	ctx := c.Request.Context()

	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, errors.New("failed to init google oidc provider")
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: config.GOOGLE_CLIENT_ID,
	})

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.New("invalid id_token")
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to decode token claims")
	}
	if claims.Email == "" || claims.Sub == "" {
		return nil, errors.New("token missing required claims")
	}
	return &claims, nil
}

func findOrCreateGoogleUser(gc *googleIDClaims) (*users.User, error) {
	var user users.User

	if err := database.DB.Where("provider_id = ?", gc.Sub).First(&user).Error; err == nil {
		return &user, nil
	}

	// Link by email when a local account already exists for the address.
	email := normalizeEmail(gc.Email)
	if err := database.DB.Where("email = ?", email).First(&user).Error; err == nil {
		if user.ProviderID == nil {
			sub := gc.Sub
			user.ProviderID = &sub
			user.Provider = "google"
			if err := database.DB.Save(&user).Error; err != nil {
				return nil, err
			}
		}
		return &user, nil
	}

	sub := gc.Sub
	code := newReferralCode()
	user = users.User{
		Email:        email,
		Provider:     "google",
		ProviderID:   &sub,
		Role:         users.RoleClient,
		FirstName:    firstNonEmpty(gc.GivenName, gc.Name),
		LastName:     gc.FamilyName,
		ReferralCode: &code,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
