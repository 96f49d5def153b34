package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrNeverFires is returned when an expression parses but has no firing
// time inside the search horizon (e.g. "0 0 30 2 *").
var ErrNeverFires = errors.New("expression never fires")

// ErrInterval is returned for "@every" schedules, which have no fixed firing times.
var ErrInterval = errors.New("interval schedules cannot be checked")

// Error represents a cron expression that cannot be used for checking
type Error struct {
	Expr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid cron expression %q: %v", e.Expr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Five or six fields plus @hourly style descriptors. robfig wants seconds
// first, so normalize moves a trailing seconds field to the front.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Backward search windows. The last one matches the horizon robfig/cron
// itself gives up at when looking forward.
var lookbacks = []time.Duration{
	time.Minute,
	time.Hour,
	24 * time.Hour,
	32 * 24 * time.Hour,
	367 * 24 * time.Hour,
	5 * 367 * 24 * time.Hour,
}

// Schedule is a parsed cron expression
type Schedule struct {
	expr  string
	sched cron.Schedule
}

// Parse validates a cron expression. A sixth field holds seconds and comes
// last, and 7 is accepted as Sunday in the day-of-week field.
func Parse(expr string) (*Schedule, error) {
	sched, err := parser.Parse(normalize(expr))
	if err != nil {
		return nil, &Error{Expr: expr, Err: err}
	}
	if _, ok := sched.(cron.ConstantDelaySchedule); ok {
		return nil, &Error{Expr: expr, Err: ErrInterval}
	}
	return &Schedule{expr: expr, sched: sched}, nil
}

// String returns the expression the schedule was parsed from
func (s *Schedule) String() string {
	return s.expr
}

// Next returns the first firing strictly after t
func (s *Schedule) Next(t time.Time) time.Time {
	return s.sched.Next(t)
}

// Prev returns the most recent firing strictly before t.
//
// robfig/cron only searches forward, so each window [t-span, t) is walked
// with Next and the last hit kept. Windows widen until one contains a firing.
func (s *Schedule) Prev(t time.Time) (time.Time, error) {
	for _, span := range lookbacks {
		var prev time.Time
		for n := s.sched.Next(t.Add(-span)); !n.IsZero() && n.Before(t); n = s.sched.Next(n) {
			prev = n
		}
		if !prev.IsZero() {
			return prev, nil
		}
	}
	return time.Time{}, &Error{Expr: s.expr, Err: ErrNeverFires}
}

func normalize(expr string) string {
	fields := strings.Fields(expr)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "@") {
		return expr
	}

	var prefix []string
	if strings.HasPrefix(fields[0], "CRON_TZ=") || strings.HasPrefix(fields[0], "TZ=") {
		prefix, fields = []string{fields[0]}, fields[1:]
		if len(fields) > 0 && strings.HasPrefix(fields[0], "@") {
			return expr
		}
	}

	switch len(fields) {
	case 5:
		fields[4] = sundayAsZero(fields[4])
	case 6:
		fields = append([]string{fields[5]}, fields[:5]...)
		fields[5] = sundayAsZero(fields[5])
	default:
		return expr
	}
	return strings.Join(append(prefix, fields...), " ")
}

// sundayAsZero rewrites day-of-week 7 into 0, the only Sunday robfig knows.
// A range ending at 7 is cut at 6 and 0 is added when the step reaches it.
func sundayAsZero(field string) string {
	items := strings.Split(field, ",")
	out := make([]string, 0, len(items)+1)
	for _, item := range items {
		base, step := item, ""
		if i := strings.IndexByte(item, '/'); i >= 0 {
			base, step = item[:i], item[i:]
		}

		if base == "7" {
			out = append(out, "0")
			continue
		}
		lo, hi, isRange := strings.Cut(base, "-")
		if !isRange || hi != "7" {
			out = append(out, item)
			continue
		}
		start, err := strconv.Atoi(lo)
		if err != nil || start > 7 {
			out = append(out, item)
			continue
		}

		every := 1
		if step != "" {
			if every, err = strconv.Atoi(step[1:]); err != nil || every <= 0 {
				out = append(out, item)
				continue
			}
		}
		if start <= 6 {
			out = append(out, lo+"-6"+step)
		}
		if (7-start)%every == 0 {
			out = append(out, "0")
		}
	}
	return strings.Join(out, ",")
}
