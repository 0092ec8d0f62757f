package progression

import (
	"sort"
	"time"
)

// DayLayout is the calendar-day format stored in habit_checks.date_checked.
// Days are compared as whole calendar dates, never as sub-day durations.
const DayLayout = "2006-01-02"

// Day formats t as a UTC calendar day.
func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// CurrentStreak returns the number of consecutive days with a check, counting
// back from today.  A day without a check ends the walk, so a habit not yet
// checked today has a streak of 0.  Input order does not matter and duplicate
// days are harmless.
func CurrentStreak(days []string, today string) int {
	if len(days) == 0 {
		return 0
	}
	t, err := time.Parse(DayLayout, today)
	if err != nil {
		return 0
	}
	checked := make(map[string]struct{}, len(days))
	for _, d := range days {
		checked[d] = struct{}{}
	}
	streak := 0
	for {
		day := t.AddDate(0, 0, -streak).Format(DayLayout)
		if _, ok := checked[day]; !ok {
			return streak
		}
		streak++
	}
}

// LongestStreak returns the length of the longest run of consecutive calendar
// days in the given check dates.  The slice is de-duplicated and sorted
// internally, so callers may pass rows in any order.  Unparseable entries are
// skipped.
func LongestStreak(days []string) int {
	seen := make(map[string]struct{}, len(days))
	dates := make([]time.Time, 0, len(days))
	for _, d := range days {
		if _, dup := seen[d]; dup {
			continue
		}
		t, err := time.Parse(DayLayout, d)
		if err != nil {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, t)
	}
	if len(dates) == 0 {
		return 0
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}
