package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts 5-field expressions with an optional leading seconds field.
var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NextRun calculates the next fire time of a cron expression after from.
// An empty timezone means UTC. The result is in UTC.
func NextRun(cronExpr, timezone string, from time.Time) (time.Time, error) {
	loc, err := resolveTimezone(timezone)
	if err != nil {
		return time.Time{}, err
	}

	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression: %w", err)
	}

	return schedule.Next(from.In(loc)).UTC(), nil
}

// cronSpec prefixes expr with its timezone so the cron runner evaluates it
// there. Expressions that already carry CRON_TZ= or TZ= are left alone.
func cronSpec(expr, timezone string) string {
	if hasInlineTimezone(expr) {
		return expr
	}
	if timezone == "" {
		return "CRON_TZ=UTC " + expr
	}
	return "CRON_TZ=" + timezone + " " + expr
}

func hasInlineTimezone(expr string) bool {
	expr = strings.TrimSpace(expr)
	return strings.HasPrefix(expr, "CRON_TZ=") || strings.HasPrefix(expr, "TZ=")
}

func resolveTimezone(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", tz, err)
	}
	return loc, nil
}
