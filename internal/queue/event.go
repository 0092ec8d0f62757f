// Package queue defines message payloads exchanged over the message broker.
package queue

// HabitCheckedEvent is published after a habit check commits.  It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type HabitCheckedEvent struct {
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	HabitID    string `json:"habit_id"`
	HabitTitle string `json:"habit_title"`
	Day        string `json:"day"`
	XPEarned   int    `json:"xp_earned"`
	TotalXP    int    `json:"total_xp"`
	Level      int    `json:"level"`
	LevelUp    bool   `json:"level_up"`
	Streak     int    `json:"streak"`
	CheckedAt  string `json:"checked_at"`
}
