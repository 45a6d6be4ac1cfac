package middleware

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/kiwi-persona/internal/queue"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
)

type AppUser struct {
	UserID      string
	Role        string
	Permissions []string
}

// App holds the shared collaborators of all requests.
//
// Source is the document collection ranked by POST /api/rank. Queue is
// optional; without it jobs cannot be enqueued. KeyFunc verifies bearer
// JWTs. When neither KeyFunc nor MasterAPIKey is set, authentication is
// disabled.
type App struct {
	Runner         queue.Runner
	Source         loader.DocumentSource
	Queue          queue.Publisher
	KeyFunc        jwt.Keyfunc
	MasterAPIKey   string
	MasterUserRole string
	TopK           int
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
