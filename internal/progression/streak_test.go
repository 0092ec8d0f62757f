package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// days builds check dates relative to a fixed "today" so the tests never
// depend on the wall clock.
var today = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func daysAgo(offsets ...int) []string {
	out := make([]string, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, today.AddDate(0, 0, -o).Format(DayLayout))
	}
	return out
}

func TestCurrentStreak(t *testing.T) {
	ref := Day(today)

	t.Run("empty history", func(t *testing.T) {
		assert.Equal(t, 0, CurrentStreak(nil, ref))
	})

	t.Run("three consecutive days ending today", func(t *testing.T) {
		// Checks on today, today-1, today-2; gap at today-3.
		assert.Equal(t, 3, CurrentStreak(daysAgo(0, 1, 2, 4), ref))
	})

	t.Run("today unchecked yields zero", func(t *testing.T) {
		assert.Equal(t, 0, CurrentStreak(daysAgo(1, 2, 3), ref))
	})

	t.Run("single check today", func(t *testing.T) {
		assert.Equal(t, 1, CurrentStreak(daysAgo(0), ref))
	})

	t.Run("gap before today breaks the run", func(t *testing.T) {
		assert.Equal(t, 1, CurrentStreak(daysAgo(0, 2, 3), ref))
	})

	t.Run("order independent", func(t *testing.T) {
		assert.Equal(t, 3, CurrentStreak(daysAgo(2, 0, 1), ref))
	})

	t.Run("duplicates are harmless", func(t *testing.T) {
		assert.Equal(t, 2, CurrentStreak(daysAgo(0, 0, 1, 1), ref))
	})

	t.Run("malformed today", func(t *testing.T) {
		assert.Equal(t, 0, CurrentStreak(daysAgo(0), "not-a-date"))
	})
}

func TestLongestStreak(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		assert.Equal(t, 0, LongestStreak(nil))
	})

	t.Run("single day", func(t *testing.T) {
		assert.Equal(t, 1, LongestStreak(daysAgo(7)))
	})

	t.Run("gap resets the run", func(t *testing.T) {
		// {today-5, today-4, today-2, today-1, today}: gap at today-3.
		assert.Equal(t, 3, LongestStreak(daysAgo(5, 4, 2, 1, 0)))
	})

	t.Run("longest run in the past", func(t *testing.T) {
		assert.Equal(t, 4, LongestStreak(daysAgo(10, 9, 8, 7, 2, 1)))
	})

	t.Run("order independent", func(t *testing.T) {
		asc := daysAgo(0, 1, 2, 4, 5)
		desc := daysAgo(5, 4, 2, 1, 0)
		assert.Equal(t, LongestStreak(asc), LongestStreak(desc))
	})

	t.Run("duplicates do not extend a run", func(t *testing.T) {
		assert.Equal(t, 2, LongestStreak(daysAgo(1, 1, 0)))
	})

	t.Run("unparseable entries skipped", func(t *testing.T) {
		in := append(daysAgo(0, 1), "garbage")
		assert.Equal(t, 2, LongestStreak(in))
	})
}

func TestCurrentAndLongestAgreeOnLeadingRun(t *testing.T) {
	// When the streak reaches today and is the longest run overall, the two
	// functions agree.
	in := daysAgo(5, 4, 2, 1, 0)
	assert.Equal(t, 3, CurrentStreak(in, Day(today)))
	assert.Equal(t, 3, LongestStreak(in))
}
