package shared

import "time"

// DateLayout is the wire format for business dates
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC. Business dates carry no time of day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current business date
func Today() time.Time {
	return Day(time.Now())
}

// ParseDate parses a YYYY-MM-DD business date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewDomainError("INVALID_DATE", "date must be formatted as YYYY-MM-DD: "+s)
	}
	return t, nil
}

// DaysBetween returns the whole days from a to b (negative when b is before a)
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// IsAfterToday reports whether the date lies in the future
func IsAfterToday(t time.Time) bool {
	return Day(t).After(Today())
}

// DateRangesOverlap reports whether [aFrom, aTo] and [bFrom, bTo] intersect.
// A nil end means the range is open.
func DateRangesOverlap(aFrom time.Time, aTo *time.Time, bFrom time.Time, bTo *time.Time) bool {
	if aTo != nil && Day(*aTo).Before(Day(bFrom)) {
		return false
	}
	if bTo != nil && Day(*bTo).Before(Day(aFrom)) {
		return false
	}
	return true
}

// ParseOptionalDate parses s when present
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseDateOr parses s, falling back to today when empty
func ParseDateOr(s string) (time.Time, error) {
	if s == "" {
		return Today(), nil
	}
	return ParseDate(s)
}
