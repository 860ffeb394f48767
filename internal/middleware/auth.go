package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/meetroom/reservation-service/internal/models"
)

const identityKey = "identity"

// Identity is the authenticated caller, produced once here and threaded into
// every service call. Handlers never re-derive user or role from the request.
type Identity struct {
	UserID string
	Role   models.UserRole
}

// JWTAuth validates a Bearer access token (HS256) and stores the resulting
// Identity in the request context. The secret must match the one used by the
// token issuer.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid claims")
			}

			sub, _ := claims["sub"].(string)
			if sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}
			role := models.RoleUser
			if r, _ := claims["role"].(string); r == string(models.RoleAdmin) {
				role = models.RoleAdmin
			}

			c.Set(identityKey, Identity{UserID: sub, Role: role})
			return next(c)
		}
	}
}

// RequireAdmin aborts with 403 unless the authenticated identity is an admin.
// It must run after JWTAuth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := IdentityFrom(c)
		if !ok || ident.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}

// IdentityFrom returns the Identity stored by JWTAuth, if any.
func IdentityFrom(c echo.Context) (Identity, bool) {
	ident, ok := c.Get(identityKey).(Identity)
	return ident, ok
}

// SetIdentity stores an Identity on the context. Exposed for handler tests.
func SetIdentity(c echo.Context, ident Identity) {
	c.Set(identityKey, ident)
}
