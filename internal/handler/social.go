package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/habitverse/habitverse-backend/internal/middleware"
	"github.com/habitverse/habitverse-backend/internal/repository"
)

// SocialHandler serves the leaderboard, the friend graph, user search
// and earned badges.
type SocialHandler struct {
	Users     *repository.UserRepo
	Friends   *repository.FriendRepo
	Habits    *repository.HabitRepo
	BadgeRepo *repository.BadgeRepo
}

func NewSocialHandler(u *repository.UserRepo, f *repository.FriendRepo, h *repository.HabitRepo, b *repository.BadgeRepo) *SocialHandler {
	return &SocialHandler{Users: u, Friends: f, Habits: h, BadgeRepo: b}
}

type addFriendReq struct {
	FriendEmail string `json:"friend_email"`
}

type rankedUser struct {
	Rank int `json:"rank"`
	userPart
}

// Leaderboard ranks users by total XP descending; rank is the 1-based
// position and ties keep scan order.  The period parameter is validated
// and echoed back but does not change the metric: ranking is always by
// all-time XP.
func (h *SocialHandler) Leaderboard(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "weekly"
	}
	switch period {
	case "weekly", "monthly", "all":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "period must be weekly, monthly or all"})
	}
	limit := clampLimit(c.QueryParam("limit"), 10, 100)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.Leaderboard(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load leaderboard failed"})
	}

	board := make([]rankedUser, len(users))
	for i, u := range users {
		board[i] = rankedUser{Rank: i + 1, userPart: sanitizeUser(u)}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"leaderboard": board,
		"period":      period,
		"total_users": len(board),
	})
}

// AddFriend creates a friendship from the caller to the user with the
// given email.  Adding yourself is rejected, a missing user is 404 and
// an existing edge in either direction is 409.
func (h *SocialHandler) AddFriend(c echo.Context) error {
	var req addFriendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FriendEmail = strings.TrimSpace(req.FriendEmail)
	if !emailRe.MatchString(req.FriendEmail) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if req.FriendEmail == middleware.CallerEmail(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot add yourself as friend"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	friend, err := h.Users.GetByEmail(ctx, req.FriendEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// The token's email claim can lag a profile change; the id comparison
	// is the authoritative self-check.
	if friend.ID == middleware.CallerID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot add yourself as friend"})
	}

	if err := h.Friends.Add(ctx, middleware.CallerID(c), friend.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "friendship already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add friend failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"friend": sanitizeUser(friend)})
}

// ListFriends returns everyone connected to the caller by an accepted
// edge, whichever direction the edge points.
func (h *SocialHandler) ListFriends(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	friends, err := h.Friends.ListFriends(ctx, middleware.CallerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list friends failed"})
	}
	out := make([]userPart, len(friends))
	for i, f := range friends {
		out[i] = sanitizeUser(f)
	}
	return c.JSON(http.StatusOK, echo.Map{"friends": out})
}

// FriendHabits returns the public habits of a friend.  Non-friends get
// 403 without revealing whether the user exists.
func (h *SocialHandler) FriendHabits(c echo.Context) error {
	friendID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ok, err := h.Friends.IsFriend(ctx, middleware.CallerID(c), friendID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not friends with this user"})
	}

	habits, err := h.Habits.ListPublicByUser(ctx, friendID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list habits failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"habits": toHabitParts(habits)})
}

// RemoveFriend deletes the edge between the caller and the given user.
func (h *SocialHandler) RemoveFriend(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err := h.Friends.Remove(ctx, middleware.CallerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "friendship not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove friend failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "friend removed"})
}

// SearchUsers finds users by name or email fragment, excluding the
// caller.
func (h *SocialHandler) SearchUsers(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if len(q) < 2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q must be at least 2 characters"})
	}
	limit := clampLimit(c.QueryParam("limit"), 10, 20)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.Search(ctx, q, middleware.CallerID(c), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	out := make([]userPart, len(users))
	for i, u := range users {
		out[i] = sanitizeUser(u)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Badges returns the caller's earned badges, newest first.
func (h *SocialHandler) Badges(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	badges, err := h.BadgeRepo.ListByUser(ctx, middleware.CallerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list badges failed"})
	}
	type badgePart struct {
		ID          string    `json:"id"`
		BadgeType   string    `json:"badge_type"`
		Title       string    `json:"title"`
		Description *string   `json:"description,omitempty"`
		EarnedAt    time.Time `json:"earned_at"`
	}
	out := make([]badgePart, len(badges))
	for i, b := range badges {
		out[i] = badgePart{ID: b.ID, BadgeType: b.BadgeType, Title: b.Title, Description: b.Description, EarnedAt: b.CreatedAt}
	}
	return c.JSON(http.StatusOK, echo.Map{"badges": out})
}

// clampLimit parses a limit query parameter with a default and an upper
// bound.
func clampLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
