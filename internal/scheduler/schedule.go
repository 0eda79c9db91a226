package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts standard five-field expressions and descriptors such as
// "@daily" or "@every 6h".
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks a cron schedule string.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunAfter returns the first activation of schedule after t.
func NextRunAfter(schedule string, t time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(t), nil
}

// Describe returns a human-readable description of a schedule.
func Describe(schedule string) string {
	switch schedule {
	case "@hourly", "0 * * * *":
		return "Every hour at :00"
	case "@daily", "@midnight", "0 0 * * *":
		return "Daily at midnight"
	case "@weekly", "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	default:
		return "Custom schedule: " + schedule
	}
}
