package game

import (
	"testing"
	"time"
)

func TestRoundTimerFiresOnce(t *testing.T) {
	var tm roundTimer
	fired := 0
	tm.Schedule(100*time.Millisecond, func() { fired++ })

	for i := 0; i < 5; i++ {
		tm.Advance(0.02)
	}
	if fired != 1 || tm.Pending() {
		t.Fatalf("expected one firing after 100ms, got %d (pending %v)", fired, tm.Pending())
	}
	tm.Advance(1)
	if fired != 1 {
		t.Error("timer should not fire twice")
	}
}

func TestRoundTimerRescheduleReplaces(t *testing.T) {
	var tm roundTimer
	var got []string
	tm.Schedule(time.Second, func() { got = append(got, "first") })
	tm.Schedule(time.Second, func() { got = append(got, "second") })
	tm.Advance(1)
	if len(got) != 1 || got[0] != "second" {
		t.Errorf("expected only the replacement to run, got %v", got)
	}
}

func TestRoundTimerCancel(t *testing.T) {
	var tm roundTimer
	tm.Schedule(time.Millisecond, func() { t.Error("cancelled task ran") })
	tm.Cancel()
	tm.Advance(1)
}

func TestRoundTimerChainedTask(t *testing.T) {
	var tm roundTimer
	steps := 0
	tm.Schedule(time.Second, func() {
		steps++
		tm.Schedule(time.Second, func() { steps++ })
	})
	tm.Advance(1)
	if steps != 1 || !tm.Pending() {
		t.Fatalf("follow-up should be pending, steps %d", steps)
	}
	tm.Advance(1)
	if steps != 2 {
		t.Errorf("expected follow-up to run, steps %d", steps)
	}
}
