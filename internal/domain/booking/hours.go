package booking

import "time"

// WeeklyLimit is the maximum number of appointments a dentist may hold in a
// single Sunday-to-Saturday week.
const WeeklyLimit = 5

// Opening hours. Saturdays run a shorter day and Sundays are closed.
const (
	weekdayOpen   = 8
	weekdayClose  = 18
	saturdayOpen  = 9
	saturdayClose = 15
)

// WeekWindow returns the inclusive bounds of the capacity week containing t:
// the previous-or-same Sunday at midnight through the following Saturday at
// the last nanosecond of the day, in t's location.
func WeekWindow(t time.Time) (time.Time, time.Time) {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start := midnight.AddDate(0, 0, -int(t.Weekday()))
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

// ValidateBusinessHours checks that t is a bookable slot: set, in the
// future relative to now, and within opening hours for its day of week.
func ValidateBusinessHours(t, now time.Time) error {
	if t.IsZero() {
		return &ValidationError{Msg: "appointment date and time are required"}
	}
	if !t.After(now) {
		return &ValidationError{Msg: "appointment must be in the future"}
	}
	switch t.Weekday() {
	case time.Sunday:
		return &ValidationError{Msg: "the clinic is closed on Sundays"}
	case time.Saturday:
		if h := t.Hour(); h < saturdayOpen || h >= saturdayClose {
			return &ValidationError{Msg: "Saturday appointments must be between 09:00 and 15:00"}
		}
	default:
		if h := t.Hour(); h < weekdayOpen || h >= weekdayClose {
			return &ValidationError{Msg: "appointments must be between 08:00 and 18:00"}
		}
	}
	return nil
}
