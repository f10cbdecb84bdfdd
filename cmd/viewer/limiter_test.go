package main

import (
	"testing"
	"time"
)

func TestFrameLimiterPaces(t *testing.T) {
	f := newFrameLimiter()
	start := time.Now()
	for i := 0; i < 5; i++ {
		f.Wait(100)
	}
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
		t.Errorf("5 frames at 100 fps took %v", elapsed)
	}
}

func TestFrameLimiterDisabled(t *testing.T) {
	f := newFrameLimiter()
	f.Wait(1000)
	f.Wait(0)
	if !f.next.IsZero() {
		t.Error("disabled limiter kept a deadline")
	}
}

func TestFrameLimiterResyncsAfterHitch(t *testing.T) {
	f := newFrameLimiter()
	f.Wait(1000)
	time.Sleep(20 * time.Millisecond)
	f.Wait(1000)
	if ahead := time.Until(f.next); ahead < 0 {
		t.Errorf("deadline %v in the past after hitch", ahead)
	}
}
