package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/habitverse/habitverse-backend/internal/model"
	"github.com/habitverse/habitverse-backend/internal/utils"
)

// UserRepo persists users and progression state.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,xp,level,avatar_url,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u      model.User
		avatar sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.XP, &u.Level,
		&avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	return u, nil
}

// Create inserts a new user with zero XP at level 1 and returns its ID.
// Passwords are hashed with bcrypt before they reach the database.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (string, error) {
	email = strings.TrimSpace(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, xp, level) VALUES (?,?,?,?,0,1)",
		id, name, email, hash)
	if err != nil {
		if isDuplicateKey(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a user by email.  Returns ErrNotFound when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.TrimSpace(email)
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.  Returns ErrNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdateProfile applies a partial profile update.  Nil fields are left
// untouched.  Returns the updated user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, name, avatarURL *string) (model.User, error) {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if name != nil {
		sets = append(sets, "name=?")
		args = append(args, *name)
	}
	if avatarURL != nil {
		sets = append(sets, "avatar_url=?")
		args = append(args, sql.NullString{String: *avatarURL, Valid: *avatarURL != ""})
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at=NOW()")
		args = append(args, id)
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
		if err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Leaderboard returns up to limit users ordered by total XP descending.
// Rank assignment is left to the caller; ties keep the database's scan
// order, which is the documented tie-break policy.  The period filter
// accepted by the API does not reach this query: ranking is always by
// all-time XP.
func (r *UserRepo) Leaderboard(ctx context.Context, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,xp,level,avatar_url FROM users ORDER BY xp DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUserSummaries(rows)
}

// Search finds users whose name or email contains q, excluding the
// calling user.
func (r *UserRepo) Search(ctx context.Context, q, excludeID string, limit int) ([]model.User, error) {
	like := "%" + q + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,xp,level,avatar_url FROM users WHERE (name LIKE ? OR email LIKE ?) AND id<>? LIMIT ?",
		like, like, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUserSummaries(rows)
}

// scanUserSummaries reads rows produced by the summary projection
// (id,name,email,xp,level,avatar_url).  PasswordHash stays empty.
func scanUserSummaries(rows *sql.Rows) ([]model.User, error) {
	users := make([]model.User, 0, 16)
	for rows.Next() {
		var (
			u      model.User
			avatar sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.XP, &u.Level, &avatar); err != nil {
			return nil, err
		}
		if avatar.Valid {
			u.AvatarURL = &avatar.String
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
