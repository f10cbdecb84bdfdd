package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAndReset(t *testing.T) {
	ResetTick()
	stop := Track("test.stage")
	time.Sleep(time.Millisecond)
	stop()
	Count("test.events", 2)
	Count("test.events", 3)

	if d := Snapshot()["test.stage"]; d <= 0 {
		t.Errorf("expected positive duration, got %v", d)
	}
	if c := Counters()["test.events"]; c != 5 {
		t.Errorf("counter = %d, want 5", c)
	}
	if s := TopN(3); !strings.HasPrefix(s, "test.stage:") {
		t.Errorf("TopN = %q", s)
	}

	ResetTick()
	if len(Snapshot()) != 0 || len(Counters()) != 0 {
		t.Error("ResetTick left data behind")
	}
}
