package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/habitverse/habitverse-backend/internal/handler"
	"github.com/habitverse/habitverse-backend/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Register, login, refresh
// and logout live under /v1/auth and need no existing session; logout also
// accepts a bearer token to terminate all sessions at once.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterAPI registers everything behind JWT authentication under /v1.
// cacheMW wraps only the leaderboard, the one read-heavy endpoint whose
// content tolerates short staleness.
func RegisterAPI(e *echo.Echo, a *handler.AuthHandler, h *handler.HabitHandler, s *handler.SocialHandler, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	// Profile
	auth.GET("/me", a.Me)
	auth.PUT("/me", a.UpdateMe)

	// Habits.  The static /habits/stats route is registered before the
	// parameterized stats route so "stats" is never taken as a habit id.
	auth.GET("/habits", h.List)
	auth.POST("/habits", h.Create)
	auth.GET("/habits/stats", h.OverallStats)
	auth.PUT("/habits/:id", h.Update)
	auth.DELETE("/habits/:id", h.Delete)
	auth.POST("/habits/:id/check", h.Check)
	auth.GET("/habits/:id/stats", h.Stats)

	// Social
	auth.GET("/leaderboard", s.Leaderboard, cacheMW)
	auth.POST("/friends", s.AddFriend)
	auth.GET("/friends", s.ListFriends)
	auth.GET("/friends/:id/habits", s.FriendHabits)
	auth.DELETE("/friends/:id", s.RemoveFriend)
	auth.GET("/users/search", s.SearchUsers)
	auth.GET("/badges", s.Badges)
}
