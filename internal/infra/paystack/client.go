// Package paystack wraps the hosted-payment provider API: transaction
// initialization, server-to-server verification and webhook signature
// checks. Amounts cross the wire in subunits.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.paystack.co"

// SignatureHeader carries the raw-body HMAC on inbound webhooks.
const SignatureHeader = "X-Paystack-Signature"

type Client struct {
	SecretKey string
	BaseURL   string
	HTTP      *http.Client
}

func NewClient(secretKey string) *Client {
	return &Client{
		SecretKey: secretKey,
		BaseURL:   DefaultBaseURL,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

// NewReference builds a transaction reference unique enough for the
// system's lifetime: nanosecond timestamp plus a random suffix.
func NewReference() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("agp_%d_%s", time.Now().UnixNano(), hex.EncodeToString(b))
}

type Metadata struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

type InitializeRequest struct {
	Email       string   `json:"email"`
	AmountCents int64    `json:"amount"`
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url"`
	Metadata    Metadata `json:"metadata"`
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the provider's view of one transaction.
type VerifyResult struct {
	Status      string   `json:"status"`
	Reference   string   `json:"reference"`
	AmountCents int64    `json:"amount"`
	Currency    string   `json:"currency"`
	PaidAt      string   `json:"paid_at"`
	Metadata    Metadata `json:"metadata"`
}

func (r *VerifyResult) Succeeded() bool {
	return r.Status == "success"
}

func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	env, err := c.post(ctx, "/transaction/initialize", req)
	if err != nil {
		return nil, err
	}

	var data initializeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode initialize response: %w", err)
	}
	if data.AuthorizationURL == "" {
		return nil, fmt.Errorf("provider returned no authorization url: %s", env.Message)
	}
	return &InitializeResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// VerifyTransaction asks the provider for the authoritative outcome of a
// reference. The browser redirect alone is never trusted.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("verify request: %w", err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	var result VerifyResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return &result, nil
}

// VerifyWebhookSignature checks the raw-body HMAC-SHA512 against the
// header value. Returns false on any mismatch or missing secret, never an
// error.
func (c *Client) VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool {
	if c.SecretKey == "" || signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.SecretKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*apiEnvelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

func decodeEnvelope(resp *http.Response) (*apiEnvelope, error) {
	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode provider response (http %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Status {
		return nil, fmt.Errorf("provider error (http %d): %s", resp.StatusCode, env.Message)
	}
	return &env, nil
}
