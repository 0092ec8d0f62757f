package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitverse/habitverse-backend/internal/repository"
)

func newHabitHandler(t *testing.T) (*HabitHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := NewHabitHandler(repository.NewHabitRepo(db), repository.NewCheckRepo(db))
	h.Now = fixedTime // pins "today" to 2026-03-15
	return h, mock
}

func habitRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "description", "category", "icon", "color", "is_public", "created_at", "updated_at",
	})
}

func TestCreateHabitValidation(t *testing.T) {
	longTitle := strings.Repeat("x", 101)
	longDesc := strings.Repeat("x", 501)
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"category":"Health","icon":"x","color":1}`, "title is required"},
		{"title too long", `{"title":"` + longTitle + `","category":"Health","icon":"x","color":1}`, "title must be 1-100 characters"},
		{"blank title", `{"title":"   ","category":"Health","icon":"x","color":1}`, "title must be 1-100 characters"},
		{"description too long", `{"title":"Run","description":"` + longDesc + `","category":"Health","icon":"x","color":1}`, "description must be at most 500 characters"},
		{"unknown category", `{"title":"Run","category":"Sports","icon":"x","color":1}`, "unknown category"},
		{"missing category", `{"title":"Run","icon":"x","color":1}`, "category is required"},
		{"empty icon", `{"title":"Run","category":"Health","icon":"","color":1}`, "icon must be 1-10 characters"},
		{"missing icon", `{"title":"Run","category":"Health","color":1}`, "icon is required"},
		{"missing color", `{"title":"Run","category":"Health","icon":"x"}`, "color is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newHabitHandler(t)
			c, rec := socialCtx(t, echo.New(), http.MethodPost, "/v1/habits", tc.body)
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestCreateHabitSuccess(t *testing.T) {
	h, mock := newHabitHandler(t)
	mock.ExpectExec("INSERT INTO habits").
		WithArgs(sqlmock.AnyArg(), "caller-id", "Run", sqlmock.AnyArg(), "Health", "🏃", 1, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .+ FROM habits WHERE id=\\? AND user_id=\\?").
		WithArgs(sqlmock.AnyArg(), "caller-id").
		WillReturnRows(habitRows().
			AddRow("h1", "caller-id", "Run", nil, "Health", "🏃", 1, false, fixedTime(), fixedTime()))

	c, rec := socialCtx(t, echo.New(), http.MethodPost, "/v1/habits",
		`{"title":"Run","category":"Health","icon":"🏃","color":1}`)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Run"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Validation on update is the same rule set with everything optional: a
// present-but-invalid field still rejects.
func TestUpdateHabitRejectsInvalidCategory(t *testing.T) {
	h, _ := newHabitHandler(t)
	c, rec := socialCtx(t, echo.New(), http.MethodPut, "/v1/habits/h1", `{"category":"Sports"}`)
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateHabitNotOwnedIs404(t *testing.T) {
	h, mock := newHabitHandler(t)
	mock.ExpectQuery("SELECT .+ FROM habits WHERE id=\\? AND user_id=\\?").
		WithArgs("h1", "caller-id").
		WillReturnRows(habitRows())

	c, rec := socialCtx(t, echo.New(), http.MethodPut, "/v1/habits/h1", `{"title":"New"}`)
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckHabitSuccess(t *testing.T) {
	h, mock := newHabitHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM habits WHERE id=\\? LIMIT 1").
		WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("caller-id"))
	mock.ExpectQuery("SELECT id FROM habit_checks WHERE habit_id=\\? AND date_checked=\\?").
		WithArgs("h1", "2026-03-15").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO habit_checks").
		WithArgs(sqlmock.AnyArg(), "h1", "2026-03-15", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT xp, level FROM users WHERE id=\\? FOR UPDATE").
		WithArgs("caller-id").
		WillReturnRows(sqlmock.NewRows([]string{"xp", "level"}).AddRow(40, 1))
	mock.ExpectExec("UPDATE users SET xp=\\?, level=\\?").
		WithArgs(50, 1, "caller-id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Streak math and the activity event read back after the commit.
	mock.ExpectQuery("SELECT date_checked FROM habit_checks WHERE habit_id=\\?").
		WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"date_checked"}).
			AddRow("2026-03-15").AddRow("2026-03-14").AddRow("2026-03-13"))
	mock.ExpectQuery("SELECT .+ FROM habits WHERE id=\\? AND user_id=\\?").
		WithArgs("h1", "caller-id").
		WillReturnRows(habitRows().
			AddRow("h1", "caller-id", "Run", nil, "Health", "🏃", 1, false, fixedTime(), fixedTime()))

	c, rec := socialCtx(t, echo.New(), http.MethodPost, "/v1/habits/h1/check", "")
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.Check(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		XPEarned int  `json:"xp_earned"`
		TotalXP  int  `json:"total_xp"`
		Level    int  `json:"level"`
		LevelUp  bool `json:"level_up"`
		Streak   int  `json:"streak"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.XPEarned)
	assert.Equal(t, 50, resp.TotalXP)
	assert.Equal(t, 1, resp.Level)
	assert.False(t, resp.LevelUp)
	assert.Equal(t, 3, resp.Streak)
}

func TestCheckHabitAlreadyCheckedIs409(t *testing.T) {
	h, mock := newHabitHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM habits WHERE id=\\? LIMIT 1").
		WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("caller-id"))
	mock.ExpectQuery("SELECT id FROM habit_checks WHERE habit_id=\\? AND date_checked=\\?").
		WithArgs("h1", "2026-03-15").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing"))
	mock.ExpectRollback()

	c, rec := socialCtx(t, echo.New(), http.MethodPost, "/v1/habits/h1/check", "")
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.Check(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already checked")
}

func TestCheckHabitNotOwnedIs404(t *testing.T) {
	h, mock := newHabitHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM habits WHERE id=\\? LIMIT 1").
		WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("someone-else"))
	mock.ExpectRollback()

	c, rec := socialCtx(t, echo.New(), http.MethodPost, "/v1/habits/h1/check", "")
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.Check(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteHabitNotFoundIs404(t *testing.T) {
	h, mock := newHabitHandler(t)
	mock.ExpectExec("DELETE FROM habits WHERE id=\\? AND user_id=\\?").
		WithArgs("h1", "caller-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := socialCtx(t, echo.New(), http.MethodDelete, "/v1/habits/h1", "")
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteHabitSuccess(t *testing.T) {
	h, mock := newHabitHandler(t)
	mock.ExpectExec("DELETE FROM habits WHERE id=\\? AND user_id=\\?").
		WithArgs("h1", "caller-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := socialCtx(t, echo.New(), http.MethodDelete, "/v1/habits/h1", "")
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
