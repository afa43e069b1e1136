package common

import "time"

const dateLayout = "2006-01-02"

// TodayDateString returns today's ISO date (YYYY-MM-DD) in UTC, the
// granularity used for daily check-ins.
func TodayDateString() string {
	return time.Now().UTC().Format(dateLayout)
}

// CheckedInToday reports whether lastCheckin (ISO date, possibly empty)
// is today's date.
func CheckedInToday(lastCheckin string) bool {
	return lastCheckin != "" && lastCheckin == TodayDateString()
}

// IsYesterdayOf reports whether prev is the ISO date immediately before
// day. Malformed inputs count as "not yesterday", which resets a streak.
func IsYesterdayOf(prev, day string) bool {
	p, err := time.Parse(dateLayout, prev)
	if err != nil {
		return false
	}
	d, err := time.Parse(dateLayout, day)
	if err != nil {
		return false
	}
	return p.AddDate(0, 0, 1).Equal(d)
}
