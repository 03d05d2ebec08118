package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/ecorewards/ecorewards-backend/internal/service"
)

type AuthMiddleware struct {
	authClient *auth.Client
	users      service.UserService
}

func NewAuthMiddleware(ctx context.Context, projectID string, users service.UserService) (*AuthMiddleware, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firebase project id is not set")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{authClient: client, users: users}, nil
}

// RequireAuth verifies the bearer token and registers the identity on
// first contact so every downstream handler can assume the user row
// exists.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		token, err := m.authClient.VerifyIDToken(c.Request().Context(), tokenStr)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		}

		email, _ := token.Claims["email"].(string)
		user, err := m.users.Ensure(c.Request().Context(), token.UID, email)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		}
		if !user.IsActive {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "account_disabled"})
		}

		c.Set("uid", token.UID)
		c.Set("is_admin", user.IsAdmin)
		return next(c)
	}
}

// RequireAdmin must be chained after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isAdmin, _ := c.Get("is_admin").(bool)
		if !isAdmin {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "admin_only"})
		}
		return next(c)
	}
}

func (m *AuthMiddleware) Client() *auth.Client {
	return m.authClient
}
