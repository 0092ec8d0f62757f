package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/habitverse/habitverse-backend/internal/model"
)

// HabitRepo provides CRUD operations for habits.  Every read and write
// is scoped to the owning user; a habit that exists but belongs to
// someone else behaves exactly like one that does not exist.
type HabitRepo struct{ DB *sql.DB }

func NewHabitRepo(db *sql.DB) *HabitRepo { return &HabitRepo{DB: db} }

const habitColumns = "id,user_id,title,description,category,icon,color,is_public,created_at,updated_at"

func scanHabit(sc interface{ Scan(...interface{}) error }) (model.Habit, error) {
	var (
		h    model.Habit
		desc sql.NullString
	)
	err := sc.Scan(&h.ID, &h.UserID, &h.Title, &desc, &h.Category, &h.Icon,
		&h.Color, &h.IsPublic, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return model.Habit{}, err
	}
	if desc.Valid {
		h.Description = &desc.String
	}
	return h, nil
}

// HabitInput carries the writable habit fields.  For updates, nil
// pointers mean "leave unchanged".
type HabitInput struct {
	Title       *string
	Description *string
	Category    *string
	Icon        *string
	Color       *int
	IsPublic    *bool
}

// Create inserts a habit for the given owner and returns the stored row.
func (r *HabitRepo) Create(ctx context.Context, userID string, in HabitInput) (model.Habit, error) {
	id := uuid.NewString()
	var desc sql.NullString
	if in.Description != nil && *in.Description != "" {
		desc = sql.NullString{String: *in.Description, Valid: true}
	}
	isPublic := false
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO habits (id, user_id, title, description, category, icon, color, is_public) VALUES (?,?,?,?,?,?,?,?)",
		id, userID, *in.Title, desc, *in.Category, *in.Icon, *in.Color, isPublic)
	if err != nil {
		return model.Habit{}, err
	}
	return r.GetByIDForUser(ctx, id, userID)
}

// GetByIDForUser returns the habit only if it is owned by userID.
func (r *HabitRepo) GetByIDForUser(ctx context.Context, id, userID string) (model.Habit, error) {
	h, err := scanHabit(r.DB.QueryRowContext(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE id=? AND user_id=? LIMIT 1", id, userID))
	if err == sql.ErrNoRows {
		return model.Habit{}, ErrNotFound
	}
	return h, err
}

// ListByUser returns all habits of a user, newest first.
func (r *HabitRepo) ListByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	return r.list(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE user_id=? ORDER BY created_at DESC", userID)
}

// ListPublicByUser returns only the public habits of a user, newest
// first.  Used for the friend-habits view.
func (r *HabitRepo) ListPublicByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	return r.list(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE user_id=? AND is_public=TRUE ORDER BY created_at DESC", userID)
}

func (r *HabitRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Habit, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	habits := make([]model.Habit, 0, 8)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// Update applies a partial update to a habit owned by userID and
// returns the updated row.  The owner and id columns are immutable.
func (r *HabitRepo) Update(ctx context.Context, id, userID string, in HabitInput) (model.Habit, error) {
	// Ownership check up front so a foreign habit yields ErrNotFound
	// instead of a silent zero-row update.
	if _, err := r.GetByIDForUser(ctx, id, userID); err != nil {
		return model.Habit{}, err
	}

	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	if in.Title != nil {
		sets = append(sets, "title=?")
		args = append(args, *in.Title)
	}
	if in.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, sql.NullString{String: *in.Description, Valid: *in.Description != ""})
	}
	if in.Category != nil {
		sets = append(sets, "category=?")
		args = append(args, *in.Category)
	}
	if in.Icon != nil {
		sets = append(sets, "icon=?")
		args = append(args, *in.Icon)
	}
	if in.Color != nil {
		sets = append(sets, "color=?")
		args = append(args, *in.Color)
	}
	if in.IsPublic != nil {
		sets = append(sets, "is_public=?")
		args = append(args, *in.IsPublic)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at=NOW()")
		args = append(args, id, userID)
		_, err := r.DB.ExecContext(ctx,
			"UPDATE habits SET "+strings.Join(sets, ", ")+" WHERE id=? AND user_id=?", args...)
		if err != nil {
			return model.Habit{}, err
		}
	}
	return r.GetByIDForUser(ctx, id, userID)
}

// Delete removes a habit owned by userID.  The foreign key on
// habit_checks cascades, wiping the completion ledger for the habit.
func (r *HabitRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM habits WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
