// Package ratelimit keeps an invoice from being emailed twice in a row by
// mistake.
package ratelimit

import "time"

// ResendWindow is the minimum delay between two emails of the same invoice
const ResendWindow = 5 * time.Minute

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	ShouldBlock   bool
	RemainingTime time.Duration
	Reason        string
}

// CheckResend checks if emailing an invoice last sent at lastSent should be blocked
func CheckResend(lastSent *time.Time, isForced bool, now time.Time) RateLimitResult {
	// Never block forced sends
	if isForced {
		return RateLimitResult{
			ShouldBlock: false,
			Reason:      "forced_send",
		}
	}

	if lastSent == nil {
		return RateLimitResult{
			ShouldBlock: false,
			Reason:      "no_previous_send",
		}
	}

	elapsed := now.Sub(*lastSent)
	if elapsed < ResendWindow {
		return RateLimitResult{
			ShouldBlock:   true,
			RemainingTime: ResendWindow - elapsed,
			Reason:        "rate_limit_active",
		}
	}

	return RateLimitResult{
		ShouldBlock: false,
		Reason:      "rate_limit_passed",
	}
}
