package clock

import (
	"time"

	clockport "github.com/vaultbank/vaultbank-web/internal/ports/out/clock"
)

// SystemClock reads the wall clock, normalized to UTC.
type SystemClock struct{}

var _ clockport.Clock = SystemClock{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
