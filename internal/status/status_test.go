package status

import (
	"fmt"
	"testing"
	"time"
)

func trackerAt(start time.Time) (*Tracker, *time.Time) {
	now := start
	tr := NewTracker()
	tr.now = func() time.Time { return now }
	tr.startedAt = start
	return tr, &now
}

func TestAppend_RingCapsAtLogCap(t *testing.T) {
	tr, _ := trackerAt(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))

	for i := 0; i < LogCap+50; i++ {
		tr.Infof("entry %d", i)
	}

	logs := tr.Recent(0)
	if len(logs) != LogCap {
		t.Fatalf("ring holds %d entries, want %d", len(logs), LogCap)
	}
	if logs[0].Message != fmt.Sprintf("entry %d", LogCap+49) {
		t.Errorf("newest entry = %q", logs[0].Message)
	}
	if logs[LogCap-1].Message != "entry 50" {
		t.Errorf("oldest surviving entry = %q", logs[LogCap-1].Message)
	}

	// Counts survive eviction.
	if got := tr.Counts()[LevelInfo]; got != LogCap+50 {
		t.Errorf("info count = %d, want %d", got, LogCap+50)
	}
}

func TestRecent_LimitsAndCopies(t *testing.T) {
	tr, _ := trackerAt(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	tr.Infof("one")
	tr.Warnf("two")
	tr.Errorf("three")

	got := tr.Recent(2)
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(got))
	}
	if got[0].Message != "three" || got[1].Message != "two" {
		t.Errorf("Recent(2) = [%s %s], want newest first", got[0].Message, got[1].Message)
	}

	got[0].Message = "mutated"
	if tr.Recent(1)[0].Message != "three" {
		t.Error("mutating the returned slice leaked into the ring")
	}
}

func TestOverall_StateTransitions(t *testing.T) {
	tr, _ := trackerAt(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))

	if got := tr.Overall(); got != "stopped" {
		t.Fatalf("initial state = %s, want stopped", got)
	}

	tr.SetAutoTrading(true)
	if got := tr.Overall(); got != "running" {
		t.Fatalf("after enable = %s, want running", got)
	}

	tr.Errorf("order rejected")
	if got := tr.Overall(); got != "error" {
		t.Fatalf("after error entry = %s, want error", got)
	}

	// A newer healthy entry clears the error state.
	tr.Successf("order filled")
	if got := tr.Overall(); got != "running" {
		t.Fatalf("after recovery entry = %s, want running", got)
	}

	tr.SetAutoTrading(false)
	if got := tr.Overall(); got != "stopped" {
		t.Fatalf("after disable = %s, want stopped", got)
	}
}

func TestLevelEmoji(t *testing.T) {
	cases := map[Level]string{
		LevelInfo:    "ℹ️",
		LevelSuccess: "✅",
		LevelWarn:    "⚠️",
		LevelError:   "🚨",
	}
	for level, want := range cases {
		if got := level.Emoji(); got != want {
			t.Errorf("%s emoji = %s, want %s", level, got, want)
		}
	}
}

func TestSnapshot_AggregatesCountsAndUptime(t *testing.T) {
	start := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	tr, now := trackerAt(start)

	tr.Infof("boot")
	tr.Warnf("slow quote")
	tr.Warnf("slow quote again")
	*now = start.Add(90 * time.Second)

	snap := tr.Snapshot()
	if snap.UptimeSeconds != 90 {
		t.Errorf("uptime = %d, want 90", snap.UptimeSeconds)
	}
	if snap.Counts[LevelInfo] != 1 || snap.Counts[LevelWarn] != 2 {
		t.Errorf("counts = %v", snap.Counts)
	}
	if snap.LogSize != 3 {
		t.Errorf("logSize = %d, want 3", snap.LogSize)
	}
	if snap.LastEntry == nil || snap.LastEntry.Message != "slow quote again" {
		t.Errorf("lastEntry = %+v", snap.LastEntry)
	}
	if snap.State != "stopped" {
		t.Errorf("state = %s, want stopped", snap.State)
	}
}

func TestOnEntry_HookReceivesEntry(t *testing.T) {
	tr, _ := trackerAt(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))

	var got []Entry
	tr.OnEntry = func(e Entry) { got = append(got, e) }

	tr.Errorf("quote fetch failed for %s", "RELIANCE")

	if len(got) != 1 {
		t.Fatalf("hook fired %d times, want 1", len(got))
	}
	if got[0].Level != LevelError || got[0].Emoji != "🚨" {
		t.Errorf("hook entry = %+v", got[0])
	}
	if got[0].Message != "quote fetch failed for RELIANCE" {
		t.Errorf("hook message = %q", got[0].Message)
	}
}
