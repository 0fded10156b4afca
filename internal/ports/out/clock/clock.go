package clock

import "time"

// Clock is the source of "now" for ticket and token timestamps.
// Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}
