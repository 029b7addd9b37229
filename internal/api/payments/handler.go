package payments

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"agency-platform/config"
	"agency-platform/internal/apperr"
	"agency-platform/internal/audit"
	"agency-platform/internal/billing"
	"agency-platform/internal/infra/paystack"
	"agency-platform/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	Gateway    *paystack.Client
	Reconciler *billing.Reconciler
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string            `json:"reference"`
		PaidAt    string            `json:"paid_at"`
		Metadata  paystack.Metadata `json:"metadata"`
	} `json:"data"`
}

// Webhook handles server-to-server notifications. The signature is checked
// over the raw body before anything is parsed; no session is involved.
func (h *Handler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 65536)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apperr.Respond(c, apperr.Validation("Error reading request body"))
		return
	}

	if !h.Gateway.VerifyWebhookSignature(payload, c.GetHeader(paystack.SignatureHeader)) {
		audit.Record(audit.ActionWebhookBadSignature, audit.Anonymous, zap.String("addr", c.ClientIP()))
		apperr.Respond(c, apperr.Validation("Signature verification failed"))
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		// Signed but unparseable: permanently malformed, acknowledge so
		// the provider stops retrying.
		audit.Record(audit.ActionWebhookIgnored, audit.Anonymous, zap.String("reason", "unparseable"))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if event.Event != "charge.success" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	outcome, err := h.Reconciler.ApplySuccessfulPayment(billing.SuccessPayload{
		Reference: event.Data.Reference,
		OrderID:   event.Data.Metadata.OrderID,
		PaidAt:    parsePaidAt(event.Data.PaidAt),
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Kind == apperr.KindReconciliation && ae.Permanent {
			audit.Record(audit.ActionWebhookIgnored, audit.Anonymous,
				zap.String("reference", event.Data.Reference),
				zap.String("reason", ae.Message),
			)
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		// Transient failure: non-success answer so the provider retries.
		apperr.Respond(c, err)
		return
	}

	if outcome.Replayed {
		c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

// Callback handles the browser redirect back from the hosted payment
// page. The redirect is untrusted: the outcome is re-verified against the
// provider before any state moves, and the response is always a redirect
// to a browser view, never JSON.
func (h *Handler) Callback(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		c.Redirect(http.StatusFound, config.APP_URL+"/payment/failed")
		return
	}

	result, err := h.Gateway.VerifyTransaction(c.Request.Context(), reference)
	if err != nil || !result.Succeeded() {
		if err != nil {
			logging.L().Warn("callback verification failed",
				zap.String("reference", reference), zap.Error(err))
		}
		c.Redirect(http.StatusFound, config.APP_URL+"/payment/failed")
		return
	}

	_, err = h.Reconciler.ApplySuccessfulPayment(billing.SuccessPayload{
		Reference: result.Reference,
		OrderID:   result.Metadata.OrderID,
		PaidAt:    parsePaidAt(result.PaidAt),
	})
	if err != nil {
		logging.L().Error("callback reconciliation failed",
			zap.String("reference", reference), zap.Error(err))
		c.Redirect(http.StatusFound, config.APP_URL+"/payment/failed")
		return
	}

	c.Redirect(http.StatusFound, config.APP_URL+"/payment/success?reference="+reference)
}

func parsePaidAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
