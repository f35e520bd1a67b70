package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a cache backend cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. Transient(nil) is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

// IsTransient reports whether err was marked with [Transient].
func IsTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// Backoff is a retry schedule with a doubling delay.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// connectBackoff governs backend connection checks.
var connectBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, returns a non-transient error, or the
// attempts run out. The last error is returned.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsTransient(err) || attempt >= b.Attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
