package timex

import (
	"testing"
	"time"
)

func TestPeriodFromHz(t *testing.T) {
	if got := PeriodFromHz(1000); got != 1_000_000 {
		t.Fatalf("PeriodFromHz(1000) = %d", got)
	}
	if got := PeriodFromHz(0); got != 1_000_000_000 {
		t.Fatalf("PeriodFromHz(0) = %d", got)
	}
}

func TestFrameTime(t *testing.T) {
	// 8N1 is ten bits.
	if got := FrameTime(9600, 10); got != 1041667*time.Nanosecond {
		t.Fatalf("FrameTime(9600, 10) = %v", got)
	}
	if got := FrameTime(115200, 10); got != 86806*time.Nanosecond {
		t.Fatalf("FrameTime(115200, 10) = %v", got)
	}
}

func TestResetTimerAfterFire(t *testing.T) {
	tm := time.NewTimer(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	ResetTimer(tm, time.Hour)
	select {
	case <-tm.C:
		t.Fatal("stale fire survived reset")
	default:
	}
	tm.Stop()
}
