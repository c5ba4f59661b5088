package cron

import (
	"fmt"
	"strings"
)

var weekdayNames = map[string]string{
	"0": "Sunday", "1": "Monday", "2": "Tuesday", "3": "Wednesday",
	"4": "Thursday", "5": "Friday", "6": "Saturday", "7": "Sunday",
}

// Describe turns a five-field cron expression into a human-readable
// summary for logs and status output. Expressions it cannot analyze
// are returned as-is.
func Describe(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "Not set"
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Sprintf("Original expression: %s", expr)
	}
	minute, hour, day, month, weekday := fields[0], fields[1], fields[2], fields[3], fields[4]

	// Simple interval, like */30 * * * *.
	if strings.HasPrefix(minute, "*/") && hour == "*" && day == "*" && month == "*" && weekday == "*" {
		return fmt.Sprintf("Runs every %s minutes", minute[2:])
	}

	// Fixed time of day, like 0 9 * * *.
	if minute != "*" && hour != "*" && day == "*" && month == "*" && weekday == "*" {
		return fmt.Sprintf("Runs daily at %s:%s", hour, padMinute(minute))
	}

	// Weekly, like 0 9 * * 1.
	if weekday != "*" && day == "*" {
		name, ok := weekdayNames[weekday]
		if !ok {
			name = weekday
		}
		return fmt.Sprintf("Runs on %s at %s:%s", name, hour, padMinute(minute))
	}

	var parts []string
	if month != "*" {
		parts = append(parts, fmt.Sprintf("in month %s", month))
	}
	if day != "*" {
		if strings.HasPrefix(day, "*/") {
			parts = append(parts, fmt.Sprintf("every %s days", day[2:]))
		} else {
			parts = append(parts, fmt.Sprintf("on day %s", day))
		}
	}
	if hour != "*" {
		if strings.HasPrefix(hour, "*/") {
			parts = append(parts, fmt.Sprintf("every %s hours", hour[2:]))
		} else {
			parts = append(parts, fmt.Sprintf("at hour %s", hour))
		}
	}
	if minute != "*" {
		if strings.HasPrefix(minute, "*/") {
			parts = append(parts, fmt.Sprintf("every %s minutes", minute[2:]))
		} else {
			parts = append(parts, fmt.Sprintf("at minute %s", minute))
		}
	}

	if len(parts) == 0 {
		return "Runs every minute"
	}
	return "Runs " + strings.Join(parts, " ")
}

func padMinute(m string) string {
	if len(m) == 1 {
		return "0" + m
	}
	return m
}
