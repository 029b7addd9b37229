package projects

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultTimelineWeeks applies when no structured timeline exists and the
// duration text is unparseable.
const DefaultTimelineWeeks = 4

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:-\s*(\d+)\s*)?(week|day)s?`)

// ParseTimelineWeeks extracts a timeline length in whole weeks from duration
// text such as "2-4 weeks", "6 weeks" or "10-14 days". Ranges resolve to
// their midpoint; day counts round up to full weeks.
func ParseTimelineWeeks(text string) int {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultTimelineWeeks
	}

	low, err := strconv.Atoi(m[1])
	if err != nil || low <= 0 {
		return DefaultTimelineWeeks
	}
	value := low
	if m[2] != "" {
		high, err := strconv.Atoi(m[2])
		if err == nil && high >= low {
			value = (low + high) / 2
		}
	}

	if strings.EqualFold(m[3], "day") {
		weeks := (value + 6) / 7
		if weeks < 1 {
			weeks = 1
		}
		return weeks
	}
	return value
}
