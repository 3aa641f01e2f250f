package middleware

import (
	"context"
	"errors"
	"strings"

	"washtech-rental/internal/config"
	"washtech-rental/internal/core/domain"
	"washtech-rental/internal/pkg/jwt"
	"washtech-rental/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalUserID = "userID"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// RoleResolver answers the directory's current role for a user
type RoleResolver interface {
	CurrentRole(ctx context.Context, userID uint) (domain.Role, error)
}

func bearerToken(c *fiber.Ctx) string {
	// 1. Cookie first
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	// 2. Then the Authorization header
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// AuthMiddleware validates the access token and resolves the caller's role
// from the directory, so a retired user or a changed role takes effect
// without waiting for the token to expire
func AuthMiddleware(cfg *config.Config, directory RoleResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		role, err := directory.CurrentRole(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserInactive) {
				return response.Unauthorized(c, "User account is inactive")
			}
			return response.FromError(c, err, "/")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(domain.Role)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !domain.HasRole(role, allowed...) {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// AdminOnly allows admin and superadmin
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.AdminRoles...)
}

// OperatorOnly allows the operator role
func OperatorOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleOperator)
}

// ClientOnly allows the client role
func ClientOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleClient)
}

// ActorFrom returns the identity AuthMiddleware stored on the request
func ActorFrom(c *fiber.Ctx) (domain.Actor, bool) {
	userID, ok := c.Locals(LocalUserID).(uint)
	if !ok {
		return domain.Actor{}, false
	}
	role, ok := c.Locals(LocalRole).(domain.Role)
	if !ok {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: userID, Role: role}, true
}
