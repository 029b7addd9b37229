// Package audit records security-relevant events: login attempts,
// registrations, password resets, rate-limit trips, webhook signature
// failures, payment application. Entries are structured log lines keyed
// by action name with the actor and redacted context.
package audit

import (
	"strings"

	"agency-platform/internal/logging"

	"go.uber.org/zap"
)

const (
	ActionLoginSuccess        = "auth.login.success"
	ActionLoginFailure        = "auth.login.failure"
	ActionRegister            = "auth.register"
	ActionLogout              = "auth.logout"
	ActionOAuthLogin          = "auth.oauth.login"
	ActionResetRequested      = "auth.reset.requested"
	ActionResetCompleted      = "auth.reset.completed"
	ActionPasswordChanged     = "auth.password.changed"
	ActionRateLimited         = "ratelimit.tripped"
	ActionWebhookBadSignature = "payment.webhook.bad_signature"
	ActionWebhookIgnored      = "payment.webhook.ignored"
	ActionPaymentApplied      = "payment.applied"
	ActionPaymentReplayed     = "payment.replayed"
	ActionPaymentOnCancelled  = "payment.applied_to_cancelled"
	ActionOrderCancelled      = "order.cancelled"
	ActionAdminOverride       = "admin.override"
)

// Anonymous is the actor recorded for unauthenticated callers.
const Anonymous = "anonymous"

// RedactEmail keeps enough of an address to correlate events without
// storing the full identity in the trail.
func RedactEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	local := email[:at]
	if len(local) > 3 {
		local = local[:3]
	}
	return local + "***" + email[at:]
}

func Record(action, actor string, fields ...zap.Field) {
	all := make([]zap.Field, 0, len(fields)+2)
	all = append(all, zap.String("audit_action", action), zap.String("actor", actor))
	all = append(all, fields...)
	logging.L().Info("audit", all...)
}
