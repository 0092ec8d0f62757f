package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/habitverse/habitverse-backend/internal/model"
	"github.com/habitverse/habitverse-backend/internal/progression"
)

// CheckRepo is the completion ledger: append-only habit_checks rows,
// one per (habit, calendar day), each carrying the XP awarded at the
// time of the check.
type CheckRepo struct{ DB *sql.DB }

func NewCheckRepo(db *sql.DB) *CheckRepo { return &CheckRepo{DB: db} }

// CheckResult reports the outcome of a successful RecordCompletion.
type CheckResult struct {
	XPEarned int
	TotalXP  int
	Level    int
	LevelUp  bool
}

// RecordCompletion marks a habit done for the given calendar day and
// applies the XP award to its owner, all inside one transaction: the
// check insert, the users update and any level-up badge rows commit or
// roll back together, so a failed XP update never leaves an orphaned
// check row.
//
// The duplicate pre-check is advisory; the unique key on
// (habit_id, date_checked) is what actually serializes concurrent
// duplicate attempts, and a 1062 from the insert maps to the same
// ErrCheckExists.
func (r *CheckRepo) RecordCompletion(ctx context.Context, habitID, ownerID, day string) (CheckResult, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return CheckResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// The habit must exist and belong to the caller.
	var habitOwner string
	err = tx.QueryRowContext(ctx,
		"SELECT user_id FROM habits WHERE id=? LIMIT 1", habitID).Scan(&habitOwner)
	if err == sql.ErrNoRows || (err == nil && habitOwner != ownerID) {
		return CheckResult{}, ErrNotFound
	}
	if err != nil {
		return CheckResult{}, err
	}

	var existing string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM habit_checks WHERE habit_id=? AND date_checked=? LIMIT 1",
		habitID, day).Scan(&existing)
	if err == nil {
		return CheckResult{}, ErrCheckExists
	}
	if err != sql.ErrNoRows {
		return CheckResult{}, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO habit_checks (id, habit_id, date_checked, xp_earned) VALUES (?,?,?,?)",
		uuid.NewString(), habitID, day, progression.XPPerCheck)
	if err != nil {
		if isDuplicateKey(err) {
			return CheckResult{}, ErrCheckExists
		}
		return CheckResult{}, err
	}

	var xp, level int
	err = tx.QueryRowContext(ctx,
		"SELECT xp, level FROM users WHERE id=? FOR UPDATE", ownerID).Scan(&xp, &level)
	if err != nil {
		return CheckResult{}, err
	}

	newXP, newLevel, leveledUp := progression.ApplyXP(xp, level, progression.XPPerCheck)
	_, err = tx.ExecContext(ctx,
		"UPDATE users SET xp=?, level=?, updated_at=NOW() WHERE id=?",
		newXP, newLevel, ownerID)
	if err != nil {
		return CheckResult{}, err
	}

	// One badge row per level gained, in the same transaction.
	for lvl := level + 1; lvl <= newLevel; lvl++ {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO badges (id, user_id, badge_type, title) VALUES (?,?,?,?)",
			uuid.NewString(), ownerID, fmt.Sprintf("level_%d", lvl), fmt.Sprintf("Reached level %d", lvl))
		if err != nil {
			return CheckResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return CheckResult{}, err
	}
	return CheckResult{
		XPEarned: progression.XPPerCheck,
		TotalXP:  newXP,
		Level:    newLevel,
		LevelUp:  leveledUp,
	}, nil
}

// ListByHabit returns all checks for a habit, newest day first.
func (r *CheckRepo) ListByHabit(ctx context.Context, habitID string) ([]model.HabitCheck, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,habit_id,date_checked,xp_earned,created_at FROM habit_checks WHERE habit_id=? ORDER BY date_checked DESC",
		habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	checks := make([]model.HabitCheck, 0, 32)
	for rows.Next() {
		var c model.HabitCheck
		if err := rows.Scan(&c.ID, &c.HabitID, &c.DateChecked, &c.XPEarned, &c.CreatedAt); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// ListDays returns just the check dates for a habit, for streak math.
func (r *CheckRepo) ListDays(ctx context.Context, habitID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT date_checked FROM habit_checks WHERE habit_id=?", habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	days := make([]string, 0, 32)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// OverallStats aggregates a user's checks across all of their habits.
type OverallStats struct {
	TotalHabits    int
	TotalChecks    int
	TotalXP        int
	CompletedToday int
	WeeklyTotal    int
}

// OverallForUser computes ledger-wide aggregates for one user.  today
// and weekStart are YYYY-MM-DD bounds supplied by the caller; string
// comparison is correct for that format.
func (r *CheckRepo) OverallForUser(ctx context.Context, userID, today, weekStart string) (OverallStats, error) {
	var s OverallStats
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM habits WHERE user_id=?", userID).Scan(&s.TotalHabits)
	if err != nil {
		return OverallStats{}, err
	}
	err = r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(c.xp_earned), 0),
		       COALESCE(SUM(c.date_checked = ?), 0),
		       COALESCE(SUM(c.date_checked >= ?), 0)
		FROM habit_checks c
		JOIN habits h ON h.id = c.habit_id
		WHERE h.user_id = ?`,
		today, weekStart, userID).
		Scan(&s.TotalChecks, &s.TotalXP, &s.CompletedToday, &s.WeeklyTotal)
	if err != nil {
		return OverallStats{}, err
	}
	return s, nil
}
