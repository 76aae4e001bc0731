package models

import (
	"strconv"
	"time"
)

// Medication 用药信息
type Medication struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Frequency string `json:"frequency"`
	Time      string `json:"time"`
	Reminder  bool   `json:"reminder"`
}

// Days of the week, Sunday first, as used by the medication calendar.
var Weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// IsWeekday reports whether day is one of Weekdays.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Schedule maps a weekday to the ordered medication names for that day.
type Schedule map[string][]string

// TakenKey builds the key under which a dose is recorded as taken:
// YYYY-MM-DD_<medication>_<index>.
func TakenKey(date time.Time, medication string, index int) string {
	return date.Format("2006-01-02") + "_" + medication + "_" + strconv.Itoa(index)
}
