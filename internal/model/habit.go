package model

import "time"

// Categories is the fixed set of habit categories accepted by the
// API.  The value stored in habits.category must be one of these.
var Categories = map[string]bool{
	"Health":       true,
	"Fitness":      true,
	"Learning":     true,
	"Productivity": true,
	"Mindfulness":  true,
	"Social":       true,
	"Creative":     true,
	"Finance":      true,
}

// Habit represents a row in the `habits` table.  A habit belongs to
// exactly one user; deleting the habit cascades to its checks.
//
// Fields:
//  ID          – UUID primary key.
//  UserID      – owning user, immutable once created.
//  Title       – short title (1–100 chars).
//  Description – optional longer description.
//  Category    – one of the Categories set.
//  Icon        – emoji or glyph shown by clients.
//  Color       – integer-packed ARGB color.
//  IsPublic    – whether friends may view this habit.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Habit struct {
	ID          string    // habits.id
	UserID      string    // habits.user_id
	Title       string    // habits.title
	Description *string   // habits.description (nullable)
	Category    string    // habits.category
	Icon        string    // habits.icon
	Color       int       // habits.color
	IsPublic    bool      // habits.is_public
	CreatedAt   time.Time // habits.created_at
	UpdatedAt   time.Time // habits.updated_at
}

// HabitCheck is one completion record in the `habit_checks` ledger:
// a (habit, calendar day) pair with the XP that was awarded at the
// time of the check.  Rows are append-only; the unique key on
// (habit_id, date_checked) is what prevents double awards.
//
// Fields:
//  ID          – UUID primary key.
//  HabitID     – habit this check belongs to.
//  DateChecked – calendar day in YYYY-MM-DD form, no time component.
//  XPEarned    – experience awarded, frozen at insert time.
//  CreatedAt   – creation timestamp.
type HabitCheck struct {
	ID          string    // habit_checks.id
	HabitID     string    // habit_checks.habit_id
	DateChecked string    // habit_checks.date_checked
	XPEarned    int       // habit_checks.xp_earned
	CreatedAt   time.Time // habit_checks.created_at
}
