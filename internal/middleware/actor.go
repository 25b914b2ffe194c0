package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/moyustudio/teamup-board/backend/internal/models"
)

// ResolveActor attaches a best-effort interaction identity to the request:
// "user:<handle>" when a valid bearer token is present, otherwise
// "ip:<client-address>". Invalid or missing tokens degrade to the network
// identity instead of failing the request, so anonymous likes still work.
// The fallback is a dedup key, not a security boundary.
func ResolveActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if handle, ok := bearerHandle(c); ok {
				c.Set(HandleContextKey, handle)
				c.Set(ActorContextKey, "user:"+handle)
			} else {
				c.Set(ActorContextKey, "ip:"+c.RealIP())
			}
			return next(c)
		}
	}
}

func bearerHandle(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(jwtSecret()), nil
	})
	if err != nil || !token.Valid || claims.Handle == "" {
		return "", false
	}
	return claims.Handle, true
}
