// Package progression holds the pure streak and leveling functions used by
// the habit-check flow.  Nothing in this package touches the database or the
// wall clock; callers pass the current calendar day in explicitly so results
// are deterministic and testable.
package progression

// XPPerCheck is the experience awarded for a single habit check.  The value
// is frozen into each habit_checks row at insert time; changing it later
// must never rewrite history.
const XPPerCheck = 10

// xpPerLevel is the fixed level step: every 100 XP is one level.
const xpPerLevel = 100

// LevelForXP maps accumulated experience to a level.  Level 1 starts at
// 0 XP and each level requires 100 more: floor(xp/100)+1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/xpPerLevel + 1
}

// XPForLevel returns the total experience needed to reach the next level
// from the given one.
func XPForLevel(level int) int {
	return level * xpPerLevel
}

// ApplyXP adds delta to the current experience, recomputes the level and
// reports whether the user crossed a level boundary.  It is a pure function;
// the caller persists the result.
func ApplyXP(xp, level, delta int) (newXP, newLevel int, leveledUp bool) {
	newXP = xp + delta
	if newXP < 0 {
		newXP = 0
	}
	newLevel = LevelForXP(newXP)
	return newXP, newLevel, newLevel > level
}
