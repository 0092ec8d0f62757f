package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/habitverse/habitverse-backend/internal/middleware"
	"github.com/habitverse/habitverse-backend/internal/model"
	"github.com/habitverse/habitverse-backend/internal/progression"
	"github.com/habitverse/habitverse-backend/internal/queue"
	"github.com/habitverse/habitverse-backend/internal/repository"
	queue_publisher "github.com/habitverse/habitverse-backend/internal/service"
)

// HabitHandler serves habit CRUD, the daily check flow and statistics.
// Now is injectable so tests can pin "today".
type HabitHandler struct {
	Habits *repository.HabitRepo
	Checks *repository.CheckRepo
	Now    func() time.Time
}

func NewHabitHandler(habits *repository.HabitRepo, checks *repository.CheckRepo) *HabitHandler {
	return &HabitHandler{Habits: habits, Checks: checks, Now: time.Now}
}

// ----- DTOs -----

type habitReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Icon        *string `json:"icon"`
	Color       *int    `json:"color"`
	IsPublic    *bool   `json:"is_public"`
}

type habitPart struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	Icon        string    `json:"icon"`
	Color       int       `json:"color"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toHabitPart(h model.Habit) habitPart {
	return habitPart{
		ID: h.ID, UserID: h.UserID, Title: h.Title, Description: h.Description,
		Category: h.Category, Icon: h.Icon, Color: h.Color, IsPublic: h.IsPublic,
		CreatedAt: h.CreatedAt, UpdatedAt: h.UpdatedAt,
	}
}

func toHabitParts(hs []model.Habit) []habitPart {
	out := make([]habitPart, len(hs))
	for i, h := range hs {
		out[i] = toHabitPart(h)
	}
	return out
}

// validateHabitReq checks the writable habit fields.  When create is
// true, title/category/icon/color are required; on update all fields are
// optional but still validated when present.
func validateHabitReq(req habitReq, create bool) string {
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if len(t) < 1 || len(t) > 100 {
			return "title must be 1-100 characters"
		}
	} else if create {
		return "title is required"
	}
	if req.Description != nil && len(*req.Description) > 500 {
		return "description must be at most 500 characters"
	}
	if req.Category != nil {
		if !model.Categories[*req.Category] {
			return "unknown category"
		}
	} else if create {
		return "category is required"
	}
	if req.Icon != nil {
		if *req.Icon == "" || len(*req.Icon) > 10 {
			return "icon must be 1-10 characters"
		}
	} else if create {
		return "icon is required"
	}
	if req.Color == nil && create {
		return "color is required"
	}
	return ""
}

// List returns all of the caller's habits, newest first.
func (h *HabitHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	habits, err := h.Habits.ListByUser(ctx, middleware.CallerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list habits failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"habits": toHabitParts(habits)})
}

// Create adds a new habit owned by the caller.
func (h *HabitHandler) Create(c echo.Context) error {
	var req habitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateHabitReq(req, true); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	habit, err := h.Habits.Create(ctx, middleware.CallerID(c), repository.HabitInput(req))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create habit failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"habit": toHabitPart(habit)})
}

// Update applies a partial update to a habit owned by the caller.
func (h *HabitHandler) Update(c echo.Context) error {
	var req habitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateHabitReq(req, false); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	habit, err := h.Habits.Update(ctx, c.Param("id"), middleware.CallerID(c), repository.HabitInput(req))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update habit failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"habit": toHabitPart(habit)})
}

// Delete removes a habit; the schema cascade wipes its checks.
func (h *HabitHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Habits.Delete(ctx, c.Param("id"), middleware.CallerID(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete habit failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "habit deleted"})
}

// Check marks a habit done for today, awards XP and reports the streak.
func (h *HabitHandler) Check(c echo.Context) error {
	userID := middleware.CallerID(c)
	habitID := c.Param("id")
	today := progression.Day(h.Now())

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	res, err := h.Checks.RecordCompletion(ctx, habitID, userID, today)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "habit already checked today"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check habit failed"})
		}
	}

	days, err := h.Checks.ListDays(ctx, habitID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load checks failed"})
	}
	streak := progression.CurrentStreak(days, today)

	habitTitle := ""
	if habit, err := h.Habits.GetByIDForUser(ctx, habitID, userID); err == nil {
		habitTitle = habit.Title
	}

	// Best effort: a broker outage must not fail the check.
	callerName, _ := c.Get(middleware.CtxName).(string)
	if err := queue_publisher.PublishHabitChecked(ctx, queue.HabitCheckedEvent{
		UserID:     userID,
		UserName:   callerName,
		HabitID:    habitID,
		HabitTitle: habitTitle,
		Day:        today,
		XPEarned:   res.XPEarned,
		TotalXP:    res.TotalXP,
		Level:      res.Level,
		LevelUp:    res.LevelUp,
		Streak:     streak,
		CheckedAt:  h.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("habit check: publish event failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"xp_earned": res.XPEarned,
		"total_xp":  res.TotalXP,
		"level":     res.Level,
		"level_up":  res.LevelUp,
		"streak":    streak,
	})
}

// Stats reports per-habit statistics: counts, streaks, XP and check dates.
func (h *HabitHandler) Stats(c echo.Context) error {
	userID := middleware.CallerID(c)
	habitID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Habits.GetByIDForUser(ctx, habitID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "habit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load habit failed"})
	}

	checks, err := h.Checks.ListByHabit(ctx, habitID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load checks failed"})
	}

	today := progression.Day(h.Now())
	days := make([]string, len(checks))
	totalXP := 0
	checkedToday := false
	for i, ch := range checks {
		days[i] = ch.DateChecked
		totalXP += ch.XPEarned
		if ch.DateChecked == today {
			checkedToday = true
		}
	}
	var lastChecked *string
	if len(checks) > 0 {
		lastChecked = &checks[0].DateChecked // list is newest first
	}

	return c.JSON(http.StatusOK, echo.Map{"stats": echo.Map{
		"habit_id":         habitID,
		"total_checks":     len(checks),
		"current_streak":   progression.CurrentStreak(days, today),
		"longest_streak":   progression.LongestStreak(days),
		"total_xp":         totalXP,
		"last_checked":     lastChecked,
		"check_dates":      days,
		"is_checked_today": checkedToday,
	}})
}

// OverallStats aggregates the caller's ledger across all habits.
func (h *HabitHandler) OverallStats(c echo.Context) error {
	userID := middleware.CallerID(c)
	now := h.Now()
	today := progression.Day(now)
	weekStart := progression.Day(now.AddDate(0, 0, -7))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Checks.OverallForUser(ctx, userID, today, weekStart)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load stats failed"})
	}

	completionRate := 0.0
	if s.TotalHabits > 0 {
		completionRate = float64(s.CompletedToday) / float64(s.TotalHabits)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": echo.Map{
		"total_habits":    s.TotalHabits,
		"total_checks":    s.TotalChecks,
		"total_xp":        s.TotalXP,
		"completed_today": s.CompletedToday,
		"weekly_total":    s.WeeklyTotal,
		"completion_rate": completionRate,
	}})
}
