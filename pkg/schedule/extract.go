package schedule

import (
	"regexp"
	"strings"
)

var cronLine = regexp.MustCompile(`(?i)^\s*cron string:\s*(\S.*?)\s*$`)

// Extract returns the first "cron string: <expr>" line of a job description.
// A description without one is a valid, unmonitorable job.
func Extract(description string) (string, bool) {
	for _, line := range strings.Split(description, "\n") {
		if m := cronLine.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
			return m[1], true
		}
	}
	return "", false
}
