package markethours

import "time"

// NSE trading holidays by year, ISO dates in IST. Exchange circulars
// mark some observances tentative until confirmed; revise when the
// official list for the next year is published.
var exchangeHolidays = map[int][]string{
	2026: {
		"2026-01-26", // Republic Day
		"2026-02-17", // Mahashivratri (tentative)
		"2026-03-14", // Holi
		"2026-03-31", // Id-ul-Fitr (tentative)
		"2026-04-02", // Ram Navami (tentative)
		"2026-04-06", // Mahavir Jayanti
		"2026-04-10", // Good Friday
		"2026-04-14", // Dr. Ambedkar Jayanti
		"2026-05-01", // Maharashtra Day
		"2026-06-07", // Bakrid (tentative)
		"2026-07-06", // Muharram (tentative)
		"2026-08-15", // Independence Day
		"2026-08-16", // Janmashtami (tentative)
		"2026-09-05", // Milad-un-Nabi (tentative)
		"2026-10-02", // Gandhi Jayanti
		"2026-10-20", // Dussehra
		"2026-10-21", // Dussehra (tentative)
		"2026-11-05", // Diwali Lakshmi Puja (tentative)
		"2026-11-06", // Diwali Balipratipada (tentative)
		"2026-11-07", // Bhai Dooj (tentative)
		"2026-11-19", // Guru Nanak Jayanti
		"2026-12-25", // Christmas
	},
}

var holidaySet = buildHolidaySet()

func buildHolidaySet() map[string]bool {
	set := make(map[string]bool)
	for _, dates := range exchangeHolidays {
		for _, d := range dates {
			set[d] = true
		}
	}
	return set
}

// IsHoliday reports whether the date (in IST) is an exchange holiday.
// Years missing from the table are treated as holiday-free, so
// weekday/hour checks still apply.
func IsHoliday(t time.Time) bool {
	return holidaySet[t.In(IST).Format("2006-01-02")]
}

// HolidaysInYear returns the known holiday dates for a year in IST,
// nil when the table has no entries for it.
func HolidaysInYear(year int) []time.Time {
	dates := exchangeHolidays[year]
	if len(dates) == 0 {
		return nil
	}
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day, err := time.ParseInLocation("2006-01-02", d, IST)
		if err != nil {
			continue
		}
		out = append(out, day)
	}
	return out
}
