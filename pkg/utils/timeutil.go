// Package utils provides common utility functions for EcoScope.
package utils

import (
	"fmt"
	"time"
)

// WIB is the Western Indonesia Time location (UTC+7), the timezone of
// Wonosobo and of all BMKG local timestamps handled here.
var WIB *time.Location

func init() {
	var err error
	WIB, err = time.LoadLocation("Asia/Jakarta")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		WIB = time.FixedZone("WIB", 7*60*60)
	}
}

// NowWIB returns the current time in WIB.
func NowWIB() time.Time {
	return time.Now().In(WIB)
}

// ToWIB converts a time.Time to WIB.
func ToWIB(t time.Time) time.Time {
	return t.In(WIB)
}

// ParseDateWIB parses a date string in "2006-01-02" format and returns it in WIB.
func ParseDateWIB(dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, WIB)
}

// FormatDateWIB formats a time.Time to "2006-01-02" in WIB.
func FormatDateWIB(t time.Time) string {
	return t.In(WIB).Format("2006-01-02")
}

// FormatDateTimeWIB formats a time.Time to "2006-01-02 15:04:05 WIB".
func FormatDateTimeWIB(t time.Time) string {
	return t.In(WIB).Format("2006-01-02 15:04:05 WIB")
}

// DayKey returns the canonical YYYY-MM-DD grouping key for a timestamp.
// Grouping always uses this key, never the display label, so observations
// from different years can never collide.
func DayKey(t time.Time) string {
	return t.In(WIB).Format("2006-01-02")
}

var indonesianWeekdays = map[time.Weekday]string{
	time.Sunday:    "Min",
	time.Monday:    "Sen",
	time.Tuesday:   "Sel",
	time.Wednesday: "Rab",
	time.Thursday:  "Kam",
	time.Friday:    "Jum",
	time.Saturday:  "Sab",
}

var indonesianMonths = [...]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

// DayLabel returns the short Indonesian weekday label for display,
// e.g. "Sen, 5 Jan". Display only; DayKey is the grouping key.
func DayLabel(t time.Time) string {
	t = t.In(WIB)
	return fmt.Sprintf("%s, %d %s",
		indonesianWeekdays[t.Weekday()], t.Day(), indonesianMonths[t.Month()-1])
}

// ParseFlexibleTime parses the timestamp formats the upstream APIs emit:
// RFC3339, "2006-01-02 15:04:05", and bare dates.
func ParseFlexibleTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"20060102150405", // legacy BMKG timerange datetime
		"200601021504",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, WIB); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
