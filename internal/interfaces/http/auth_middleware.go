package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
)

// SessionCookie nombre de la cookie que lleva el JWT de sesión.
const SessionCookie = "patrimonio_session"

// Locals keys en Fiber.
const (
	LocalSubject   = "subject"
	LocalRequestID = "request_id"
	LocalLogger    = "logger"
)

// sessionToken toma el JWT de la cookie de sesión o, para clientes de API, del header
// "Authorization: Bearer <token>".
func sessionToken(c *fiber.Ctx) string {
	if tok := c.Cookies(SessionCookie); tok != "" {
		return tok
	}
	parts := strings.SplitN(c.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware valida la sesión y resuelve identidad + inventariante + rol en cada
// petición (la desactivación o un cambio de presidente tienen efecto inmediato).
// Sin sesión válida redirige a /login (HX-Redirect para htmx).
func AuthMiddleware(uc *auth.AuthUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := sessionToken(c)
		if tok == "" {
			return redirectToLogin(c)
		}
		userID, err := uc.ParseToken(tok)
		if err != nil {
			return redirectToLogin(c)
		}
		s, err := uc.Resolve(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return redirectToLogin(c)
			}
			return err
		}
		c.Locals(LocalSubject, s)
		return c.Next()
	}
}

func redirectToLogin(c *fiber.Ctx) error {
	clearSession(c)
	if isHX(c) {
		c.Set("HX-Redirect", "/login")
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	if wantsJSON(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(errorBody("UNAUTHORIZED", "sessão inválida ou expirada"))
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// subjectFrom devuelve el Subject resuelto por AuthMiddleware.
func subjectFrom(c *fiber.Ctx) (access.Subject, bool) {
	s, ok := c.Locals(LocalSubject).(access.Subject)
	return s, ok
}

// GetSubject Subject de la petición; rutas protegidas siempre lo tienen.
func GetSubject(c *fiber.Ctx) access.Subject {
	s, _ := subjectFrom(c)
	return s
}

func setSession(c *fiber.Ctx, token string, secure bool, maxAgeSeconds int) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func clearSession(c *fiber.Ctx) {
	c.ClearCookie(SessionCookie)
}
