package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	c := NewClient("sk_test_secret")
	body := []byte(`{"event":"charge.success"}`)

	assert.True(t, c.VerifyWebhookSignature(body, sign("sk_test_secret", body)))
	assert.False(t, c.VerifyWebhookSignature(body, sign("wrong_secret", body)))
	assert.False(t, c.VerifyWebhookSignature(body, ""))
	assert.False(t, c.VerifyWebhookSignature(body, "not-hex-garbage"))
	assert.False(t, c.VerifyWebhookSignature([]byte(`tampered`), sign("sk_test_secret", body)))

	empty := NewClient("")
	assert.False(t, empty.VerifyWebhookSignature(body, sign("", body)))
}

func TestNewReferenceUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := NewReference()
		require.True(t, strings.HasPrefix(ref, "agp_"))
		require.False(t, seen[ref], "references must not repeat")
		seen[ref] = true
	}
}

func TestInitializeTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var req InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@x.com", req.Email)
		assert.Equal(t, int64(500000), req.AmountCents)
		assert.Equal(t, "42", req.Metadata.OrderID)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]interface{}{
				"authorization_url": "https://checkout.example/abc",
				"access_code":       "abc",
				"reference":         req.Reference,
			},
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test_secret")
	c.BaseURL = srv.URL

	result, err := c.InitializeTransaction(context.Background(), InitializeRequest{
		Email:       "a@x.com",
		AmountCents: 500000,
		Reference:   "agp_test_ref",
		CallbackURL: "http://localhost/api/payments/callback",
		Metadata:    Metadata{OrderID: "42", UserID: "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/abc", result.AuthorizationURL)
	assert.Equal(t, "agp_test_ref", result.Reference)
}

func TestInitializeTransaction_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid amount",
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test_secret")
	c.BaseURL = srv.URL

	_, err := c.InitializeTransaction(context.Background(), InitializeRequest{
		Email: "a@x.com", AmountCents: -1, Reference: "r",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid amount")
}

func TestInitializeTransaction_MissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{"access_code": "abc"},
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test_secret")
	c.BaseURL = srv.URL

	_, err := c.InitializeTransaction(context.Background(), InitializeRequest{
		Email: "a@x.com", AmountCents: 100, Reference: "r",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authorization url")
}

func TestVerifyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/agp_test_ref", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"status":    "success",
				"reference": "agp_test_ref",
				"amount":    500000,
				"currency":  "USD",
				"paid_at":   "2026-01-02T15:04:05Z",
				"metadata":  map[string]string{"order_id": "42", "user_id": "7"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test_secret")
	c.BaseURL = srv.URL

	result, err := c.VerifyTransaction(context.Background(), "agp_test_ref")
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "42", result.Metadata.OrderID)
	assert.Equal(t, int64(500000), result.AmountCents)
}

func TestVerifyTransaction_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"status":    "failed",
				"reference": "agp_test_ref",
			},
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test_secret")
	c.BaseURL = srv.URL

	result, err := c.VerifyTransaction(context.Background(), "agp_test_ref")
	require.NoError(t, err)
	assert.False(t, result.Succeeded())
}
