package compliance

import "time"

// LocalOffset returns the difference between local and UTC wall clocks at now.
// It is computed once per process and reused for every feed entry.
func LocalOffset(now time.Time) time.Duration {
	_, seconds := now.Zone()
	return time.Duration(seconds) * time.Second
}

// AssumeUTC converts a feed timestamp to a local wall clock.
//
// Jenkins writes build times in UTC without saying so. The UTC wall clock is
// shifted by offset and re-read as a wall clock in loc, so the result is
// comparable with schedule firings computed in loc.
func AssumeUTC(t time.Time, offset time.Duration, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	w := t.UTC().Add(offset)
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), loc)
}
