package main

import "time"

// frameLimiter paces the render loop to a frame cap. It sleeps most of the
// interval and spins the last stretch.
type frameLimiter struct {
	next time.Time
	spin time.Duration
}

func newFrameLimiter() *frameLimiter {
	return &frameLimiter{spin: 200 * time.Microsecond}
}

// Wait blocks until the next frame is due. A limit <= 0 disables pacing.
func (f *frameLimiter) Wait(limit int) {
	if limit <= 0 {
		f.next = time.Time{}
		return
	}
	target := time.Second / time.Duration(limit)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > f.spin {
			time.Sleep(remaining - f.spin)
		}
	}

	// Resync after a hitch instead of bursting to catch up.
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
