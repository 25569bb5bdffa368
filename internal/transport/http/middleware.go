package http

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
	"github.com/AlexandreFrancony/Bartending-Back/internal/util"
)

const contextIdentityKey = "auth.identity"

// RequireAuth verifies the bearer token and stores the caller identity.
// Missing or malformed headers yield 401, expired tokens 401 and any other
// verification failure 403.
func RequireAuth(tokens *util.JWTManager) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:     contextIdentityKey,
		TokenLookup:    "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: parseIdentity(tokens),
		ErrorHandler: func(c echo.Context, err error) error {
			switch {
			case errors.Is(err, util.ErrTokenExpired):
				return c.JSON(http.StatusUnauthorized, util.Error("token expired"))
			case errors.Is(err, util.ErrTokenInvalid):
				return c.JSON(http.StatusForbidden, util.Error("invalid token"))
			default:
				return c.JSON(http.StatusUnauthorized, util.Error("access token required"))
			}
		},
	})
}

// OptionalAuth attaches an identity when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(tokens *util.JWTManager) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             contextIdentityKey,
		TokenLookup:            "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc:         parseIdentity(tokens),
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

// RequireRole must run after RequireAuth.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := CurrentIdentity(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
			}
			if !identity.HasRole(role) {
				return c.JSON(http.StatusForbidden, util.Error("insufficient permissions"))
			}
			return next(c)
		}
	}
}

func CurrentIdentity(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(contextIdentityKey).(domain.Identity)
	return identity, ok
}

func parseIdentity(tokens *util.JWTManager) func(c echo.Context, auth string) (interface{}, error) {
	return func(c echo.Context, auth string) (interface{}, error) {
		claims, err := tokens.Parse(auth)
		if err != nil {
			return nil, err
		}
		return claims.Identity()
	}
}
