package utils

import (
	"strings"
	"time"

	app_error "github.com/telecare/consult-session/internal/errors"
)

const clockLayout = "3:04 PM"

// ParseClockTime parses a 12-hour "hh:mm AM/PM" time-of-day string. Malformed
// input is a data-integrity fault and fails loudly instead of producing a
// wrong consultation window.
func ParseClockTime(s string) (hour, minute int, appErr *app_error.AppError) {
	t, err := time.Parse(clockLayout, strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return 0, 0, app_error.Validation("invalid scheduled time: "+s, "scheduled_time")
	}
	return t.Hour(), t.Minute(), nil
}

// CombineDateAndTime anchors a time-of-day string on the scheduled date.
func CombineDateAndTime(date time.Time, clock string) (time.Time, *app_error.AppError) {
	hour, minute, appErr := ParseClockTime(clock)
	if appErr != nil {
		return time.Time{}, appErr
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
