package model

import "time"

// Friendship statuses.  The live add-friend path only ever writes
// FriendAccepted; the other two exist in the schema for fixtures and
// future request/block flows.
const (
	FriendPending  = "pending"
	FriendAccepted = "accepted"
	FriendBlocked  = "blocked"
)

// Badge is an achievement row in the `badges` table, awarded when a
// user crosses a level boundary.
//
// Fields:
//  ID          – UUID primary key.
//  UserID      – badge owner.
//  BadgeType   – machine key, e.g. "level_3".
//  Title       – display title, e.g. "Reached level 3".
//  Description – optional flavor text.
//  CreatedAt   – when the badge was earned.
type Badge struct {
	ID          string    // badges.id
	UserID      string    // badges.user_id
	BadgeType   string    // badges.badge_type
	Title       string    // badges.title
	Description *string   // badges.description (nullable)
	CreatedAt   time.Time // badges.created_at
}
