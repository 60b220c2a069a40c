package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"chama-ledger/internal/auth"
)

const actorKey = "chama.actor"

// Auth requires a bearer token and stores the actor it names on the context.
func Auth(secret []byte, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			a, err := auth.ParseToken(secret, strings.TrimSpace(raw))
			if err != nil {
				log.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			SetActor(c, a)
			return next(c)
		}
	}
}

func SetActor(c echo.Context, a auth.Actor) { c.Set(actorKey, a) }

// ActorFrom returns the actor stored by Auth.
func ActorFrom(c echo.Context) (auth.Actor, bool) {
	a, ok := c.Get(actorKey).(auth.Actor)
	return a, ok && a.MemberID != ""
}
