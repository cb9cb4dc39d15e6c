package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/pkg/jwt"
)

// Locals keys para la identidad en Fiber.
const (
	LocalUserID      = "user_id"
	LocalRole        = "role"
	LocalLocationIDs = "location_ids"
)

func unauthorized(c *fiber.Ctx, reason, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Code:    domain.CodeUnauthorized,
		Message: msg,
		Details: map[string]any{"reason": reason},
	})
}

// AuthMiddleware valida el Bearer Token JWT y deja usuario, rol y ubicaciones en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío")
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "token inválido o expirado")
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalLocationIDs, claims.LocationIDs)
		return c.Next()
	}
}

// RequireRole autoriza solo a los roles indicados. Debe usarse DESPUÉS de AuthMiddleware.
// Un token sin rol responde 401; un rol no permitido, 403.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return unauthorized(c, "MISSING_ROLE", "el token no contiene rol")
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    domain.CodeForbidden,
				Message: "el rol " + role + " no tiene permiso para esta acción",
			})
		}
		return c.Next()
	}
}

// RequireElevated atajo para rutas de aprobación y cierre.
func RequireElevated() fiber.Handler {
	return RequireRole(dto.RoleAdmin, dto.RoleController, dto.RoleManager)
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// GetIdentity arma la identidad que reciben los casos de uso.
func GetIdentity(c *fiber.Ctx) dto.Identity {
	locations, _ := c.Locals(LocalLocationIDs).([]string)
	return dto.Identity{
		UserID:      GetUserID(c),
		Role:        GetRole(c),
		LocationIDs: locations,
	}
}
