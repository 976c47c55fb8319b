package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
)

// RequireRole devuelve un middleware Fiber que corta la petición si el rol resuelto
// no alcanza el mínimo. Debe usarse DESPUÉS de AuthMiddleware (necesita LocalSubject).
//
// Comportamiento:
//   - sin sujeto en el contexto → ErrUnauthorized (redirección a /login).
//   - rol insuficiente → ErrForbidden (fragmento access_denied o 403).
func RequireRole(min access.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := subjectFrom(c)
		if !ok {
			return domain.ErrUnauthorized
		}
		if s.Role < min {
			requestLog(c).Warn().Int64("user_id", s.User.ID).Str("role", s.Role.String()).
				Str("path", c.Path()).Msg("acceso denegado por rol")
			return domain.ErrForbidden
		}
		return c.Next()
	}
}
