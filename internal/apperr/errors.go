// Package apperr defines the error taxonomy shared by handlers and
// services. Handlers translate these into HTTP responses through Respond;
// anything outside the taxonomy is treated as an internal error, logged
// with full detail and answered with a generic message.
package apperr

import (
	"errors"
	"net/http"

	"agency-platform/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindRateLimit
	KindConfiguration
	KindGateway
	KindReconciliation
)

type Error struct {
	Kind    Kind
	Message string // safe for clients
	Err     error  // internal detail, logged only

	// Permanent marks a reconciliation payload that will never become
	// valid; the provider should be acknowledged so it stops retrying.
	Permanent bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error     { return &Error{Kind: KindValidation, Message: msg} }
func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func Authorization(msg string) *Error  { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func RateLimit(msg string) *Error      { return &Error{Kind: KindRateLimit, Message: msg} }
func Configuration(msg string) *Error  { return &Error{Kind: KindConfiguration, Message: msg} }

func Gateway(msg string, err error) *Error {
	return &Error{Kind: KindGateway, Message: msg, Err: err}
}

func Reconciliation(msg string, permanent bool) *Error {
	return &Error{Kind: KindReconciliation, Message: msg, Permanent: permanent}
}

func httpStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON response. Taxonomy errors carry their own
// client-safe message; everything else becomes a generic 500.
func Respond(c *gin.Context, err error) {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Err != nil {
			logging.L().Warn("request failed",
				zap.String("path", c.FullPath()),
				zap.String("message", ae.Message),
				zap.Error(ae.Err),
			)
		}
		c.JSON(httpStatus(ae.Kind), gin.H{"message": ae.Message})
		return
	}

	logging.L().Error("internal error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}
