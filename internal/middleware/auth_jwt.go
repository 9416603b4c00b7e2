package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bakery/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // string (uuid)
	CtxUserRoleKey = "user_role" // string
)

var errUnauthorized = errors.New("unauthorized")

// AuthJWT requires a valid bearer token issued by the auth service.
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, role, err := verifyBearer(cfg, c.Request().Header.Get("Authorization"))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, role)
			return next(c)
		}
	}
}

// OptionalAuth lets guests through. A token that is present must be valid.
func OptionalAuth(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return next(c)
			}

			userID, role, err := verifyBearer(cfg, authz)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, role)
			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated subject, if any.
func UserIDFromContext(c echo.Context) (string, bool) {
	v, ok := c.Get(CtxUserIDKey).(string)
	return v, ok && v != ""
}

func verifyBearer(cfg config.Config, authz string) (string, string, error) {
	// Bearer <token>
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "", errUnauthorized
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return "", "", errUnauthorized
	}

	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", "", errUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errUnauthorized
	}

	// sub is the auth service's user uuid
	sub, _ := claims["sub"].(string)
	if _, err := uuid.Parse(sub); err != nil {
		return "", "", errUnauthorized
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = "authenticated"
	}
	return sub, role, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
