package clock

import (
	"context"
	"time"
)

type SystemClock struct{}

func (SystemClock) Now(context.Context) time.Time {
	return time.Now().UTC()
}

// FixedClock always reports the same instant. Used to pin observation time
// for reproducible training runs and in tests.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now(context.Context) time.Time {
	return c.At.UTC()
}
