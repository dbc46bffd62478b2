package timectrl

import (
	"context"
	"testing"
	"time"
)

func TestTimeControllerSetTime(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, RealTime)

	newNow := start.Add(42 * time.Second)
	tc.SetTime(newNow)

	if got := tc.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
	if got := tc.ElapsedSince(start); got != 42 {
		t.Fatalf("ElapsedSince = %v, want 42", got)
	}
}

func TestTimeControllerStartUpdatesNow(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 5*time.Millisecond, Accelerated)

	done := tc.Start(15 * time.Millisecond)
	<-done

	expected := start.Add(15 * time.Millisecond)
	if got := tc.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
}

func TestAcceleratedModeDoesNotWaitForWallClock(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Minute, Accelerated)

	var ticks []time.Time
	tc.AddListener(func(now time.Time) { ticks = append(ticks, now) })

	select {
	case <-tc.Start(90 * time.Minute):
	case <-time.After(5 * time.Second):
		t.Fatalf("accelerated run did not finish")
	}
	if len(ticks) != 90 {
		t.Fatalf("listener called %d times, want 90", len(ticks))
	}
	if !ticks[0].Equal(start.Add(time.Minute)) || !ticks[89].Equal(start.Add(90*time.Minute)) {
		t.Fatalf("unexpected tick times %v .. %v", ticks[0], ticks[89])
	}
}

func TestStartContextCancels(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Millisecond, RealTime)

	ctx, cancel := context.WithCancel(context.Background())
	done := tc.StartContext(ctx, 0)
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("controller did not stop after cancel")
	}
}

func TestAfterFiresOnSimulationTime(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 10*time.Second, Accelerated)

	late := tc.After(25 * time.Second)
	early := tc.After(10 * time.Second)
	now := tc.After(0)

	select {
	case got := <-now:
		if !got.Equal(start) {
			t.Fatalf("After(0) fired with %v, want %v", got, start)
		}
	default:
		t.Fatalf("After(0) should fire immediately")
	}

	tc.Step()
	select {
	case got := <-early:
		if !got.Equal(start.Add(10 * time.Second)) {
			t.Fatalf("early timer fired with %v", got)
		}
	default:
		t.Fatalf("early timer did not fire after one tick")
	}
	select {
	case <-late:
		t.Fatalf("late timer fired too soon")
	default:
	}

	tc.SetTime(start.Add(time.Minute))
	select {
	case got := <-late:
		if !got.Equal(start.Add(time.Minute)) {
			t.Fatalf("late timer fired with %v", got)
		}
	default:
		t.Fatalf("late timer did not fire after SetTime")
	}
}
