package gdrive

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

const DefaultThrottle = 2500 * time.Millisecond

// Governor serializes outbound API calls, enforcing a minimum interval plus
// 0-400ms of jitter between successive acquisitions. The interval state is
// owned by the instance so that independent governors (and tests) don't
// interfere with each other.
type Governor struct {
	limiter *rate.Limiter
	jitter  time.Duration
	sleep   func(time.Duration)
}

func NewGovernor(interval time.Duration) *Governor {
	if interval <= 0 {
		interval = DefaultThrottle
	}

	return &Governor{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		jitter:  400 * time.Millisecond,
		sleep:   time.Sleep,
	}
}

// Acquire blocks until the interval since the previous acquisition has
// elapsed. Callers waiting on the limiter are served in FIFO order.
func (g *Governor) Acquire(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	if g.jitter > 0 {
		g.sleep(time.Duration(rand.Int63n(int64(g.jitter))))
	}

	return nil
}
