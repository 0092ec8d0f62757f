package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitverse/habitverse-backend/internal/utils"
)

func callProtected(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth("s3cret")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken("s3cret",
		utils.Claims{UserID: "u-1", Email: "jane@example.com", Name: "Jane"}, 7)
	require.NoError(t, err)

	rec, c := callProtected(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", CallerID(c))
	assert.Equal(t, "jane@example.com", CallerEmail(c))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, c := callProtected(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, CallerID(c))
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other", utils.Claims{UserID: "u-1"}, 7)
	require.NoError(t, err)

	rec, _ := callProtected(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
