package portal

import (
	"context"
	"time"
)

const DefaultSignDelay = 200 * time.Millisecond

// Throttle paces consecutive check-ins in a batch. Wait is called after
// every attempt.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Delay waits a fixed duration per call.
type Delay time.Duration

func (d Delay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoThrottle never waits.
var NoThrottle Throttle = Delay(0)
