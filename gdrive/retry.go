package gdrive

import (
	"fmt"
	"math/rand"
	"time"
)

// Attempt ceilings, per operation. Permission creation gets one more attempt
// than the read operations because a failed grant costs a whole re-run.
const (
	SearchAttempts = 5
	GrantAttempts  = 6
)

// Retrier drives exponential backoff for rate-limited operations: attempt n
// waits min(MaxWait, 2^n seconds) plus 0-500ms of jitter before retrying.
type Retrier struct {
	MaxWait time.Duration
	sleep   func(time.Duration)
	jitter  func() time.Duration
}

func NewRetrier() *Retrier {
	return &Retrier{
		MaxWait: 60 * time.Second,
		sleep:   time.Sleep,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
		},
	}
}

// Do invokes fn up to attempts times, backing off between attempts while the
// error classifies as rate-limited. Terminal errors and exhausted retries are
// returned as *APIError carrying the operation name; callers fill in any
// request context (file ID, email, role) before propagating.
func (r *Retrier) Do(op string, attempts int, fn func() error) *APIError {
	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if !IsRateLimited(err) {
			return NewAPIError(op, err)
		}

		if attempt < attempts {
			r.sleep(r.backoff(attempt))
		}
	}

	e := NewAPIError(op, err)
	e.Message = fmt.Sprintf("retries exhausted after %d attempts: %s", attempts, e.Message)

	return e
}

func (r *Retrier) backoff(attempt int) time.Duration {
	wait := (time.Duration(1) << uint(attempt)) * time.Second
	if wait > r.MaxWait {
		wait = r.MaxWait
	}

	return wait + r.jitter()
}
