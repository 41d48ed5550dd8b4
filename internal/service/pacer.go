package service

import "time"

// Pacer throttles the stream of writes bulk issuance sends to the blob
// store. Keeping it behind an interface makes the pacing policy
// independently testable and swappable (a token bucket would drop in here)
// without touching the orchestration logic.
type Pacer interface {
	// Wait blocks for the policy's delay. It is called between successive
	// items, including after ones that failed.
	Wait()
}

type fixedDelayPacer struct {
	d time.Duration
}

// NewFixedDelayPacer returns a Pacer that sleeps a fixed duration on every
// Wait call. The delay is not configurable per call.
func NewFixedDelayPacer(d time.Duration) Pacer {
	if d < 0 {
		d = 0
	}
	return fixedDelayPacer{d: d}
}

func (p fixedDelayPacer) Wait() {
	time.Sleep(p.d)
}
