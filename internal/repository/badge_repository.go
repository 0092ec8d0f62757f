package repository

import (
	"context"
	"database/sql"

	"github.com/habitverse/habitverse-backend/internal/model"
)

// BadgeRepo reads earned badges.  Badges are written by the check
// transaction in CheckRepo when a level boundary is crossed, so this
// repository only lists.
type BadgeRepo struct{ DB *sql.DB }

func NewBadgeRepo(db *sql.DB) *BadgeRepo { return &BadgeRepo{DB: db} }

// ListByUser returns a user's badges, newest first.
func (r *BadgeRepo) ListByUser(ctx context.Context, userID string) ([]model.Badge, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,badge_type,title,description,created_at FROM badges WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	badges := make([]model.Badge, 0, 8)
	for rows.Next() {
		var (
			b    model.Badge
			desc sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.BadgeType, &b.Title, &desc, &b.CreatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			b.Description = &desc.String
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
