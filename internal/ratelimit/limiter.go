// Package ratelimit bounds the rate of sensitive actions per
// (action, client address) pair with in-process sliding windows. Counters
// reset on restart; the guard is defense-in-depth, not a security boundary.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Action names gated by the limiter.
const (
	ActionLogin          = "login"
	ActionRegister       = "register"
	ActionForgotPassword = "forgot_password"
	ActionResetPassword  = "reset_password"
	ActionOrderCreate    = "order_create"
	ActionWebhook        = "payment_webhook"
)

type Rule struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultRules is the static policy table. A multiplier scales MaxAttempts
// uniformly at construction time.
var DefaultRules = map[string]Rule{
	ActionLogin:          {MaxAttempts: 5, Window: 15 * time.Minute},
	ActionRegister:       {MaxAttempts: 3, Window: time.Hour},
	ActionForgotPassword: {MaxAttempts: 3, Window: time.Hour},
	ActionResetPassword:  {MaxAttempts: 5, Window: time.Hour},
	ActionOrderCreate:    {MaxAttempts: 10, Window: time.Hour},
	ActionWebhook:        {MaxAttempts: 120, Window: time.Minute},
}

type window struct {
	start    time.Time
	attempts int
}

type Limiter struct {
	mu      sync.Mutex
	rules   map[string]Rule
	windows map[string]*window
	now     func() time.Time
}

func New(rules map[string]Rule, multiplier float64) *Limiter {
	if multiplier <= 0 {
		multiplier = 1.0
	}
	scaled := make(map[string]Rule, len(rules))
	for k, r := range rules {
		max := int(float64(r.MaxAttempts) * multiplier)
		if max < 1 {
			max = 1
		}
		scaled[k] = Rule{MaxAttempts: max, Window: r.Window}
	}
	return &Limiter{
		rules:   scaled,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func key(action, addr string) string {
	return action + "|" + addr
}

// CheckAndConsume records one attempt and reports whether it is allowed.
// The window is measured from the first attempt in the current window;
// once it elapses the counter resets. Unknown actions are always allowed.
func (l *Limiter) CheckAndConsume(action, addr string) (allowed bool, retryAfter time.Duration) {
	rule, ok := l.rules[action]
	if !ok {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := key(action, addr)
	w := l.windows[k]
	if w == nil || now.Sub(w.start) >= rule.Window {
		l.windows[k] = &window{start: now, attempts: 1}
		return true, 0
	}

	w.attempts++
	if w.attempts > rule.MaxAttempts {
		return false, rule.Window - now.Sub(w.start)
	}
	return true, 0
}

// Delay returns the progressive-delay penalty for the current attempt
// count in the window: free for the first two attempts, then 1s, 5s and a
// 15s plateau. It does not consume an attempt.
func (l *Limiter) Delay(action, addr string) time.Duration {
	rule, ok := l.rules[action]
	if !ok {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[key(action, addr)]
	if w == nil || l.now().Sub(w.start) >= rule.Window {
		return 0
	}
	switch {
	case w.attempts <= 2:
		return 0
	case w.attempts == 3:
		return time.Second
	case w.attempts == 4:
		return 5 * time.Second
	default:
		return 15 * time.Second
	}
}

// CooldownHint renders retryAfter for a 429 body.
func CooldownHint(retryAfter time.Duration) string {
	secs := int(retryAfter.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	if secs < 60 {
		return fmt.Sprintf("Too many attempts. Try again in %d seconds.", secs)
	}
	return fmt.Sprintf("Too many attempts. Try again in %d minutes.", (secs+59)/60)
}
