package sender

import (
	"math/rand"
	"time"
)

// Delay is the wait after failed dial attempt n (1-based). It starts at
// InitialDelay, grows by Multiplier per attempt and stops at MaxDelay. With
// Jitter and a non-nil rng the result is scaled into [0.5, 1.5).
func (b BackoffConfig) Delay(n int, rng *rand.Rand) time.Duration {
	d := b.InitialDelay
	if d <= 0 {
		return 0
	}
	growth := max(b.Multiplier, 1.0)
	for i := 1; i < n; i++ {
		d = time.Duration(float64(d) * growth)
		if b.MaxDelay > 0 && d >= b.MaxDelay {
			d = b.MaxDelay
			break
		}
	}
	if b.Jitter && rng != nil {
		d = time.Duration(float64(d) * (0.5 + rng.Float64()))
	}
	return d
}
