package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitverse/habitverse-backend/internal/middleware"
	"github.com/habitverse/habitverse-backend/internal/repository"
)

func newSocialHandler(t *testing.T) (*SocialHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSocialHandler(
		repository.NewUserRepo(db),
		repository.NewFriendRepo(db),
		repository.NewHabitRepo(db),
		repository.NewBadgeRepo(db),
	), mock
}

func socialCtx(t *testing.T, e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, "caller-id")
	c.Set(middleware.CtxEmail, "caller@example.com")
	c.Set(middleware.CtxName, "Caller")
	return c, rec
}

func fixedTime() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func summaryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "xp", "level", "avatar_url"})
}

func TestLeaderboardRanksByXPRegardlessOfPeriod(t *testing.T) {
	// Three users with xp 300, 100 and 200 and limit 2: the board is the
	// top two by all-time xp with 1-based ranks, whatever period says.
	for _, period := range []string{"weekly", "monthly", "all"} {
		t.Run(period, func(t *testing.T) {
			h, mock := newSocialHandler(t)
			mock.ExpectQuery("SELECT id,name,email,xp,level,avatar_url FROM users ORDER BY xp DESC").
				WithArgs(2).
				WillReturnRows(summaryRows().
					AddRow("u3", "Cara", "cara@example.com", 300, 4, nil).
					AddRow("u2", "Bob", "bob@example.com", 200, 3, nil))

			c, rec := socialCtx(t, echo.New(), http.MethodGet, "/v1/leaderboard?limit=2&period="+period, "")
			require.NoError(t, h.Leaderboard(c))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp struct {
				Leaderboard []struct {
					Rank int    `json:"rank"`
					ID   string `json:"id"`
					XP   int    `json:"xp"`
				} `json:"leaderboard"`
				Period     string `json:"period"`
				TotalUsers int    `json:"total_users"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Len(t, resp.Leaderboard, 2)
			assert.Equal(t, 1, resp.Leaderboard[0].Rank)
			assert.Equal(t, 300, resp.Leaderboard[0].XP)
			assert.Equal(t, 2, resp.Leaderboard[1].Rank)
			assert.Equal(t, 200, resp.Leaderboard[1].XP)
			assert.Equal(t, period, resp.Period)
			assert.Equal(t, 2, resp.TotalUsers)
		})
	}
}

func TestLeaderboardDefaultsToWeekly(t *testing.T) {
	h, mock := newSocialHandler(t)
	mock.ExpectQuery("SELECT id,name,email,xp,level,avatar_url FROM users ORDER BY xp DESC").
		WithArgs(10).
		WillReturnRows(summaryRows())

	c, rec := socialCtx(t, echo.New(), http.MethodGet, "/v1/leaderboard", "")
	require.NoError(t, h.Leaderboard(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"period":"weekly"`)
}

func TestLeaderboardRejectsUnknownPeriod(t *testing.T) {
	h, _ := newSocialHandler(t)
	c, rec := socialCtx(t, echo.New(), http.MethodGet, "/v1/leaderboard?period=daily", "")
	require.NoError(t, h.Leaderboard(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddFriendRejectsSelfByEmail(t *testing.T) {
	h, _ := newSocialHandler(t)
	c, rec := socialCtx(t, echo.New(), http.MethodPost, "/v1/friends",
		`{"friend_email":"caller@example.com"}`)
	require.NoError(t, h.AddFriend(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "yourself")
}

func TestAddFriendUnknownEmail(t *testing.T) {
	h, mock := newSocialHandler(t)
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := socialCtx(t, echo.New(), http.MethodPost, "/v1/friends",
		`{"friend_email":"ghost@example.com"}`)
	require.NoError(t, h.AddFriend(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddFriendExistingEdgeConflicts(t *testing.T) {
	h, mock := newSocialHandler(t)
	fullRows := sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "xp", "level", "avatar_url", "created_at", "updated_at",
	}).AddRow("friend-id", "Bob", "bob@example.com", "x", 0, 1, nil, fixedTime(), fixedTime())

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("bob@example.com").
		WillReturnRows(fullRows)
	mock.ExpectQuery("SELECT 1 FROM friends").
		WithArgs("caller-id", "friend-id", "friend-id", "caller-id").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	c, rec := socialCtx(t, echo.New(), http.MethodPost, "/v1/friends",
		`{"friend_email":"bob@example.com"}`)
	require.NoError(t, h.AddFriend(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFriendHabitsForbiddenForStrangers(t *testing.T) {
	h, mock := newSocialHandler(t)
	mock.ExpectQuery("SELECT 1 FROM friends").
		WithArgs("caller-id", "stranger", "stranger", "caller-id", "accepted").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	c, rec := socialCtx(t, echo.New(), http.MethodGet, "/v1/friends/stranger/habits", "")
	c.SetParamNames("id")
	c.SetParamValues("stranger")
	require.NoError(t, h.FriendHabits(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSearchUsersRequiresTwoChars(t *testing.T) {
	h, _ := newSocialHandler(t)
	c, rec := socialCtx(t, echo.New(), http.MethodGet, "/v1/users/search?q=a", "")
	require.NoError(t, h.SearchUsers(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
