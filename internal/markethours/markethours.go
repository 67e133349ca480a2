// Package markethours answers "is the exchange trading right now" for
// the NSE equity session: 9:15 AM to 3:30 PM IST, Monday through
// Friday, minus the exchange holiday calendar.
package markethours

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

const (
	OpenHour    = 9
	OpenMinute  = 15
	CloseHour   = 15
	CloseMinute = 30
)

// sessionBounds returns the open and close instants for the calendar
// day containing t, regardless of whether that day trades.
func sessionBounds(t time.Time) (open, close time.Time) {
	ist := t.In(IST)
	y, mo, d := ist.Date()
	open = time.Date(y, mo, d, OpenHour, OpenMinute, 0, 0, IST)
	close = time.Date(y, mo, d, CloseHour, CloseMinute, 0, 0, IST)
	return open, close
}

// IsMarketOpen reports whether t falls inside a live trading session.
// The close boundary is exclusive: 15:30:00 is already closed.
func IsMarketOpen(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	open, close := sessionBounds(t)
	ist := t.In(IST)
	return !ist.Before(open) && ist.Before(close)
}

// IsWeekday reports whether t is Mon-Fri in IST.
func IsWeekday(t time.Time) bool {
	switch t.In(IST).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// IsTradingDay reports whether the exchange trades at all on t's date.
func IsTradingDay(t time.Time) bool {
	return IsWeekday(t) && !IsHoliday(t)
}

// NextOpen returns the next session open at or after t. On a trading
// day before 9:15 that is the same day's open.
func NextOpen(t time.Time) time.Time {
	ist := t.In(IST)
	if open, _ := sessionBounds(ist); ist.Before(open) && IsTradingDay(ist) {
		return open
	}
	d := ist.AddDate(0, 0, 1)
	// A holiday cluster plus a weekend never spans ten days.
	for i := 0; i < 10; i++ {
		if IsTradingDay(d) {
			open, _ := sessionBounds(d)
			return open
		}
		d = d.AddDate(0, 0, 1)
	}
	open, _ := sessionBounds(ist.AddDate(0, 0, 1))
	return open
}

// TodayClose returns the session close instant on t's date.
func TodayClose(t time.Time) time.Time {
	_, close := sessionBounds(t)
	return close
}

// TimeUntilClose returns how long until today's close, zero once the
// session is over.
func TimeUntilClose(t time.Time) time.Duration {
	d := TodayClose(t).Sub(t.In(IST))
	if d < 0 {
		return 0
	}
	return d
}

// TimeUntilOpen returns how long until the next session open.
func TimeUntilOpen(t time.Time) time.Duration {
	return NextOpen(t).Sub(t.In(IST))
}

// StatusString renders the session state for dashboards and logs.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		return fmt.Sprintf("Market Open — closes in %s", fmtDur(TimeUntilClose(t)))
	}
	next := NextOpen(t)
	ist := next.In(IST)
	return fmt.Sprintf("Market Closed — opens %s %s (%s)",
		ist.Weekday().String()[:3], ist.Format("15:04"), fmtDur(next.Sub(t)))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
