package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/evalink-api/internal/utils"
)

const (
	localUserID        = "user_id"
	localUserRole      = "user_role"
	localCorrelationID = "correlation_id"
)

// JWTProtected validates HS256 bearer tokens and stores the caller's id and role in
// the request locals.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if status, message := authenticate(c, secret); status != 0 {
			return utils.SendError(c, status, message)
		}
		return c.Next()
	}
}

// Authorize authenticates the caller and then requires one of roles. With no roles
// it behaves like JWTProtected.
func Authorize(secret string, roles ...string) fiber.Handler {
	allowed := roleSet(roles)

	return func(c *fiber.Ctx) error {
		if status, message := authenticate(c, secret); status != 0 {
			return utils.SendError(c, status, message)
		}
		if len(allowed) > 0 {
			if _, ok := allowed[UserRole(c)]; !ok {
				return utils.SendError(c, fiber.StatusForbidden, "Insufficient permissions")
			}
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller's id and whether one is present.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localUserID).(uint)
	return id, ok
}

// UserRole returns the authenticated caller's role, lower-cased.
func UserRole(c *fiber.Ctx) string {
	return normalizeRoleValue(c.Locals(localUserRole))
}

func authenticate(c *fiber.Ctx, secret string) (int, string) {
	authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authorization == "" {
		return fiber.StatusUnauthorized, "Authorization header missing"
	}

	const bearer = "bearer "
	if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return fiber.StatusUnauthorized, "Invalid authorization header"
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return fiber.StatusUnauthorized, "Invalid token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fiber.StatusUnauthorized, "Invalid token claims"
	}

	userID, err := userIDFromClaims(claims)
	if err != nil {
		return fiber.StatusUnauthorized, "Invalid token subject"
	}
	c.Locals(localUserID, userID)

	if role := roleFromClaims(claims); role != "" {
		c.Locals(localUserRole, role)
	}
	return 0, ""
}

func userIDFromClaims(claims jwt.MapClaims) (uint, error) {
	for _, key := range []string{"sub", "user_id", "id"} {
		if value, ok := claims[key]; ok {
			return normalizeUserID(value)
		}
	}
	return 0, fmt.Errorf("subject missing")
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type %T", value)
	}
}

func roleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		switch v := claims[key].(type) {
		case string:
			if role := strings.ToLower(strings.TrimSpace(v)); role != "" {
				return role
			}
		case []interface{}:
			for _, item := range v {
				if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
					return strings.ToLower(strings.TrimSpace(str))
				}
			}
		}
	}
	return ""
}

func roleSet(roles []string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}
	return allowed
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
