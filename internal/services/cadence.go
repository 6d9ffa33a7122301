package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"rental-ops-service/internal/domain"
)

// NextOccurrence computes the next instant strictly after ref that falls on
// one of the given weekdays at the given "HH:MM" time, in ref's location.
//
// An occurrence exactly equal to ref is skipped: callers invoke this to
// schedule a future run and must never be handed "now", so a same-day
// same-time collision advances to the next cycle.
func NextOccurrence(days []time.Weekday, hhmm string, ref time.Time) (time.Time, error) {
	if len(days) == 0 {
		return time.Time{}, domain.NewValidationError("daysOfWeek", "must be non-empty")
	}
	hour, minute, err := parseTimeOfDay(hhmm)
	if err != nil {
		return time.Time{}, err
	}

	inSet := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return time.Time{}, domain.NewValidationError("daysOfWeek", fmt.Sprintf("day index %d out of range", d))
		}
		inSet[d] = true
	}

	// Walk forward at most one full week. Day offset 7 covers the case
	// where today is the only eligible weekday and the time has already
	// passed (or equals ref exactly).
	for delta := 0; delta <= 7; delta++ {
		day := ref.AddDate(0, 0, delta)
		if !inSet[day.Weekday()] {
			continue
		}

		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, ref.Location())
		if candidate.After(ref) {
			return candidate, nil
		}
	}

	// Unreachable: a non-empty weekday set always matches within 8 days.
	return time.Time{}, fmt.Errorf("next occurrence: no eligible day within a week of %s", ref.Format(time.RFC3339))
}

// NextRun computes the next run date for a full cadence. Weekly cadences
// behave like daily ones over their (typically single-day) weekday set;
// biweekly skips one extra week; monthly advances one calendar month with
// the day-of-month clamped to the target month's length and ignores the
// weekday set.
func NextRun(freq domain.Frequency, days []time.Weekday, hhmm string, ref time.Time) (time.Time, error) {
	switch freq {
	case domain.FrequencyDaily, domain.FrequencyWeekly:
		return NextOccurrence(days, hhmm, ref)

	case domain.FrequencyBiweekly:
		next, err := NextOccurrence(days, hhmm, ref)
		if err != nil {
			return time.Time{}, err
		}
		return next.AddDate(0, 0, 7), nil

	case domain.FrequencyMonthly:
		hour, minute, err := parseTimeOfDay(hhmm)
		if err != nil {
			return time.Time{}, err
		}

		year, month, day := ref.Date()
		// Last day of the next month via the zeroth day of the month after it.
		lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, ref.Location()).Day()
		if day > lastDay {
			day = lastDay
		}
		return time.Date(year, month+1, day, hour, minute, 0, 0, ref.Location()), nil

	default:
		return time.Time{}, domain.NewValidationError("frequency", fmt.Sprintf("unknown frequency %q", freq))
	}
}

func parseTimeOfDay(hhmm string) (hour, minute int, err error) {
	if !domain.ValidTimeOfDay(hhmm) {
		return 0, 0, domain.NewValidationError("time", fmt.Sprintf("%q is not a valid HH:MM time", hhmm))
	}

	parts := strings.SplitN(hhmm, ":", 2)
	hour, _ = strconv.Atoi(parts[0])
	minute, _ = strconv.Atoi(parts[1])
	return hour, minute, nil
}
