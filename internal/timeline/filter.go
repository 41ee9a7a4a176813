package timeline

import "time"

// resolveCutoff converts a filter token into the absolute instant below
// which activity is excluded. ok is false when no cutoff applies ("all",
// empty or unrecognized tokens). The caller captures now once and threads
// it in so every branch works from the same instant.
//
// The hour and day tokens subtract fixed durations. The month and year
// tokens subtract on the calendar, so the cutoff lands on the same
// day-of-month and time-of-day where one exists; overflowing days
// normalize forward (six months before March 31 is October 1).
func resolveCutoff(filter FilterValue, now time.Time) (time.Time, bool) {
	switch filter {
	case FilterDay:
		return now.Add(-24 * time.Hour), true
	case FilterWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case FilterMonth:
		return now.Add(-30 * 24 * time.Hour), true
	case FilterHalfYear:
		return now.AddDate(0, -6, 0), true
	case FilterYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// ValidFilter reports whether s is a recognized filter token. The resolver
// itself quietly treats unknown tokens as "all"; this helper lets the CLI
// reject typos before any fetch happens.
func ValidFilter(s string) bool {
	switch FilterValue(s) {
	case FilterAll, FilterDay, FilterWeek, FilterMonth, FilterHalfYear, FilterYear:
		return true
	}
	return false
}

// FilterTokens lists the recognized tokens, broadest first. Used for flag
// help and validation messages.
func FilterTokens() []string {
	return []string{
		string(FilterAll),
		string(FilterDay),
		string(FilterWeek),
		string(FilterMonth),
		string(FilterHalfYear),
		string(FilterYear),
	}
}
