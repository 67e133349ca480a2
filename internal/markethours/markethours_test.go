package markethours

import (
	"strings"
	"testing"
	"time"
)

func ist(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, IST)
}

// ────────────────────────────────────────────────────────────
// open/closed windows
// ────────────────────────────────────────────────────────────

func TestIsMarketOpen_WeekdayWindow(t *testing.T) {
	// Wednesday, regular trading day.
	cases := []struct {
		label string
		at    time.Time
		want  bool
	}{
		{"before open", ist(2026, time.January, 7, 8, 0), false},
		{"one minute before open", ist(2026, time.January, 7, 9, 14), false},
		{"open boundary", ist(2026, time.January, 7, 9, 15), true},
		{"mid session", ist(2026, time.January, 7, 12, 30), true},
		{"last minute", ist(2026, time.January, 7, 15, 29), true},
		{"close boundary", ist(2026, time.January, 7, 15, 30), false},
		{"after close", ist(2026, time.January, 7, 16, 0), false},
	}
	for _, tc := range cases {
		if got := IsMarketOpen(tc.at); got != tc.want {
			t.Errorf("%s: IsMarketOpen(%v) = %v, want %v", tc.label, tc.at, got, tc.want)
		}
	}
}

func TestIsMarketOpen_WeekendClosed(t *testing.T) {
	sat := ist(2026, time.January, 10, 11, 0)
	sun := ist(2026, time.January, 11, 11, 0)
	if IsMarketOpen(sat) {
		t.Error("Saturday mid-morning reported open")
	}
	if IsMarketOpen(sun) {
		t.Error("Sunday mid-morning reported open")
	}
}

func TestIsMarketOpen_HolidayClosed(t *testing.T) {
	// Republic Day 2026 falls on a Monday.
	rd := ist(2026, time.January, 26, 11, 0)
	if IsMarketOpen(rd) {
		t.Error("Republic Day reported open")
	}
	if !IsHoliday(rd) {
		t.Error("Republic Day not flagged as holiday")
	}
}

func TestHolidaysInYear(t *testing.T) {
	days := HolidaysInYear(2026)
	if len(days) == 0 {
		t.Fatal("no holidays listed for 2026")
	}
	for _, d := range days {
		if d.Year() != 2026 {
			t.Errorf("holiday %v outside 2026", d)
		}
		if !IsHoliday(d) {
			t.Errorf("listed holiday %v not flagged by IsHoliday", d)
		}
	}
	if got := HolidaysInYear(1999); got != nil {
		t.Errorf("unknown year returned %v, want nil", got)
	}
}

func TestIsHoliday_ConvertsToIST(t *testing.T) {
	// 20:00 UTC on Jan 25 is already Jan 26 in IST.
	utcEve := time.Date(2026, time.January, 25, 20, 0, 0, 0, time.UTC)
	if !IsHoliday(utcEve) {
		t.Error("UTC instant inside IST holiday not flagged")
	}
}

// ────────────────────────────────────────────────────────────
// next open / countdowns
// ────────────────────────────────────────────────────────────

func TestNextOpen_SameDayBeforeOpen(t *testing.T) {
	at := ist(2026, time.January, 7, 8, 0)
	want := ist(2026, time.January, 7, 9, 15)
	if got := NextOpen(at); !got.Equal(want) {
		t.Fatalf("NextOpen = %v, want %v", got, want)
	}
}

func TestNextOpen_AfterCloseRollsToNextDay(t *testing.T) {
	at := ist(2026, time.January, 7, 16, 0)
	want := ist(2026, time.January, 8, 9, 15)
	if got := NextOpen(at); !got.Equal(want) {
		t.Fatalf("NextOpen = %v, want %v", got, want)
	}
}

func TestNextOpen_FridayEveningSkipsWeekend(t *testing.T) {
	at := ist(2026, time.January, 9, 16, 0)
	want := ist(2026, time.January, 12, 9, 15)
	if got := NextOpen(at); !got.Equal(want) {
		t.Fatalf("NextOpen = %v, want %v", got, want)
	}
}

func TestNextOpen_SkipsHoliday(t *testing.T) {
	// Sunday before Republic Day Monday: next open is Tuesday.
	at := ist(2026, time.January, 25, 12, 0)
	want := ist(2026, time.January, 27, 9, 15)
	if got := NextOpen(at); !got.Equal(want) {
		t.Fatalf("NextOpen = %v, want %v", got, want)
	}
}

func TestTimeUntilClose(t *testing.T) {
	at := ist(2026, time.January, 7, 15, 0)
	if got := TimeUntilClose(at); got != 30*time.Minute {
		t.Fatalf("TimeUntilClose = %v, want 30m", got)
	}
	after := ist(2026, time.January, 7, 17, 0)
	if got := TimeUntilClose(after); got != 0 {
		t.Fatalf("TimeUntilClose after close = %v, want 0", got)
	}
}

func TestStatusString(t *testing.T) {
	open := StatusString(ist(2026, time.January, 7, 12, 0))
	if !strings.Contains(open, "Market Open") {
		t.Errorf("open status = %q", open)
	}
	closed := StatusString(ist(2026, time.January, 10, 12, 0))
	if !strings.Contains(closed, "Market Closed") {
		t.Errorf("closed status = %q", closed)
	}
}
