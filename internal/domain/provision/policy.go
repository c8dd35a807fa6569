package provision

import "time"

// RetryPolicy bounds how often a mutation is attempted and how long to wait between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
	Multiplier  float64
}

// DefaultRetryPolicy returns the policy used when neither config nor step provides one.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     5 * time.Second,
		MaxBackoff:  time.Minute,
		Multiplier:  2.0,
	}
}

// Normalize clamps nonsensical values.
func (p RetryPolicy) Normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.MaxBackoff < p.Backoff {
		p.MaxBackoff = p.Backoff
	}
	return p
}

// Delay returns the wait after the given failed attempt (1-based).
// It is never shorter than Backoff and never longer than MaxBackoff.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	p = p.Normalize()
	delay := p.Backoff
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return delay
}
