package githubapi

import (
	"context"
	"time"
)

// Sleeper pauses between attempts. Tests inject a recording implementation.
type Sleeper interface {
	Sleep(sleepContext context.Context, duration time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(sleepContext context.Context, duration time.Duration) error

// Sleep invokes the wrapped function.
func (sleeperFunc SleeperFunc) Sleep(sleepContext context.Context, duration time.Duration) error {
	return sleeperFunc(sleepContext, duration)
}

// NewTimerSleeper returns a Sleeper backed by time.Timer that returns early
// with the context error when the context is done.
func NewTimerSleeper() Sleeper {
	return timerSleeper{}
}

type timerSleeper struct{}

func (timerSleeper) Sleep(sleepContext context.Context, duration time.Duration) error {
	if duration <= 0 {
		return sleepContext.Err()
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-sleepContext.Done():
		return sleepContext.Err()
	}
}
