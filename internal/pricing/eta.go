package pricing

import "time"

// ETA returns the expected completion time of an order placed at now.
// Unknown urgencies complete immediately.
func ETA(urgency string, now time.Time) time.Time {
	switch urgency {
	case UrgencyOneDay:
		return addWorkDays(now, 1)
	case UrgencyStandard:
		return addWorkDays(now, 2)
	case UrgencyUrgent:
		return now.AddDate(0, 0, 1)
	case UrgencyExpress:
		return now.Add(3 * time.Hour)
	default:
		return now
	}
}

// addWorkDays moves forward by whole days, counting only Monday to Friday.
// Holidays are not known.
func addWorkDays(t time.Time, days int) time.Time {
	for days > 0 {
		t = t.AddDate(0, 0, 1)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days--
		}
	}
	return t
}
