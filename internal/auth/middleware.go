package auth

import (
	"net/http"
	"strings"

	apperrors "github.com/LDK/javascriv-api/pkg/errors"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	jwtService *JWTService
}

func NewMiddleware(jwtService *JWTService) *Middleware {
	return &Middleware{jwtService: jwtService}
}

// RequireJWT authenticates requests with an `Authorization: Bearer` header.
func (m *Middleware) RequireJWT() echo.MiddlewareFunc {
	return m.require(extractBearerToken)
}

// RequireJWTOrQuery also accepts the token as the auth_token query parameter,
// for clients such as browser websockets that cannot set headers.
func (m *Middleware) RequireJWTOrQuery() echo.MiddlewareFunc {
	return m.require(func(c echo.Context) string {
		if token := extractBearerToken(c); token != "" {
			return token
		}
		return strings.TrimSpace(c.QueryParam(queryAuthToken))
	})
}

func (m *Middleware) require(extract func(echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extract(c)
			if token == "" {
				return respondError(c, http.StatusUnauthorized, msgMissingAuthorization)
			}

			claims, err := m.jwtService.Verify(token)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, msgInvalidOrExpiredToken)
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyUsername, claims.Username)

			return next(c)
		}
	}
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}

func GetUserID(c echo.Context) (int64, error) {
	userID := c.Get(ContextKeyUserID)
	if userID == nil {
		return 0, apperrors.Unauthorized(msgUserNotAuthenticated)
	}

	id, ok := userID.(int64)
	if !ok {
		return 0, apperrors.InternalServer(msgInvalidUserIDCtx, nil)
	}

	return id, nil
}

func GetUsername(c echo.Context) string {
	username, _ := c.Get(ContextKeyUsername).(string)
	return username
}
