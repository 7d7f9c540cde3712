package gesture

import "time"

// Clock supplies the millisecond timestamps fed to Recognizer.Poll.
// Values must be monotonically non-decreasing and may wrap around.
type Clock interface {
	NowMs() uint32
}

// SystemClock is a Clock backed by the monotonic time source. It counts
// milliseconds since it was created and wraps after about 49.7 days.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock that starts counting at zero now
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowMs returns the milliseconds elapsed since the clock was created
func (c *SystemClock) NowMs() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// elapsed is wraparound safe as long as at most one wrap happened between
// ref and now.
func elapsed(now, ref uint32) uint32 {
	return now - ref
}
