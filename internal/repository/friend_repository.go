package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/habitverse/habitverse-backend/internal/model"
)

// FriendRepo manages the friends edge table.  The add path writes a
// single directed edge with status 'accepted'; every read path treats
// an accepted edge in either direction as a friendship.  That keeps
// the observed wire behavior while making direction irrelevant to
// queries.
type FriendRepo struct{ DB *sql.DB }

func NewFriendRepo(db *sql.DB) *FriendRepo { return &FriendRepo{DB: db} }

// exists reports whether any edge connects the two users, regardless
// of direction or status.
func (r *FriendRepo) exists(ctx context.Context, a, b string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM friends WHERE (user_id=? AND friend_id=?) OR (user_id=? AND friend_id=?) LIMIT 1",
		a, b, b, a).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add creates a directed accepted edge from userID to friendID.  It
// fails with ErrFriendshipExists when an edge already connects the two
// users in either direction.
func (r *FriendRepo) Add(ctx context.Context, userID, friendID string) error {
	found, err := r.exists(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if found {
		return ErrFriendshipExists
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO friends (id, user_id, friend_id, status) VALUES (?,?,?,?)",
		uuid.NewString(), userID, friendID, model.FriendAccepted)
	if err != nil && isDuplicateKey(err) {
		return ErrFriendshipExists
	}
	return err
}

// IsFriend reports whether an accepted edge connects the two users in
// either direction.
func (r *FriendRepo) IsFriend(ctx context.Context, a, b string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM friends WHERE ((user_id=? AND friend_id=?) OR (user_id=? AND friend_id=?)) AND status=? LIMIT 1",
		a, b, b, a, model.FriendAccepted).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListFriends returns user summaries for everyone connected to userID
// by an accepted edge, whichever side of the edge they sit on.
func (r *FriendRepo) ListFriends(ctx context.Context, userID string) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.xp, u.level, u.avatar_url
		FROM friends f
		JOIN users u ON u.id = CASE WHEN f.user_id = ? THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = ? OR f.friend_id = ?) AND f.status = ?`,
		userID, userID, userID, model.FriendAccepted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUserSummaries(rows)
}

// Remove deletes the edge between the two users in whichever direction
// it exists.  Returns ErrNotFound when there was nothing to delete.
func (r *FriendRepo) Remove(ctx context.Context, userID, friendID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM friends WHERE (user_id=? AND friend_id=?) OR (user_id=? AND friend_id=?)",
		userID, friendID, friendID, userID)
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
