package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
)

func errorBody(code, msg string) dto.ErrorResponse {
	return dto.ErrorResponse{Code: code, Message: msg}
}

// wantsJSON clientes de API (Accept: application/json) reciben dto.ErrorResponse.
func wantsJSON(c *fiber.Ctx) bool {
	return !isHX(c) && c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// ErrorHandler traduce los errores devueltos por los handlers:
//   - domain.ErrNotFound → 404 genérico (nunca revela registros de otro responsable)
//   - domain.ErrForbidden / ErrNotAStaffMember → 403; htmx recibe 200 con el modal de acceso
//     negado redirigido a #modal-area
//   - domain.ErrUnauthorized → login
//   - domain.ErrInvalidInput → 400 con el mensaje
//   - resto → 500 genérico, registrado con el request id
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			switch fe.Code {
			case fiber.StatusNotFound:
				return notFound(c)
			case fiber.StatusMethodNotAllowed:
				return c.Status(fe.Code).SendString("Método não permitido")
			}
			if wantsJSON(c) {
				return c.Status(fe.Code).JSON(errorBody("HTTP_ERROR", fe.Message))
			}
			return c.Status(fe.Code).SendString(fe.Message)

		case errors.Is(err, domain.ErrNotFound):
			return notFound(c)

		case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotAStaffMember):
			msg := ""
			if errors.Is(err, domain.ErrNotAStaffMember) {
				msg = "Seu usuário não está vinculado a um inventariante."
			}
			return accessDenied(c, msg)

		case errors.Is(err, domain.ErrUnauthorized):
			return redirectToLogin(c)

		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidStatus):
			if wantsJSON(c) {
				return c.Status(fiber.StatusBadRequest).JSON(errorBody("VALIDATION", err.Error()))
			}
			return renderFragment(c, fiber.StatusBadRequest, "message", messageView{Message: err.Error()})
		}

		reqID, _ := c.Locals(LocalRequestID).(string)
		log.Error().Err(err).
			Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled error")
		if wantsJSON(c) {
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody("INTERNAL", "erro interno do servidor"))
		}
		return renderFragment(c, fiber.StatusInternalServerError, "server_error", messageView{RequestID: reqID})
	}
}

func notFound(c *fiber.Ctx) error {
	if wantsJSON(c) {
		return c.Status(fiber.StatusNotFound).JSON(errorBody("NOT_FOUND", "registro não encontrado"))
	}
	return renderFragment(c, fiber.StatusNotFound, "not_found", nil)
}

func accessDenied(c *fiber.Ctx, msg string) error {
	if isHX(c) {
		c.Set("HX-Retarget", "#modal-area")
		c.Set("HX-Reswap", "innerHTML")
		return renderFragment(c, fiber.StatusOK, "access_denied", messageView{Message: msg})
	}
	if wantsJSON(c) {
		return c.Status(fiber.StatusForbidden).JSON(errorBody("FORBIDDEN", "acesso negado"))
	}
	return renderFragment(c, fiber.StatusForbidden, "access_denied", messageView{Message: msg})
}

// methodNotAllowed rutas que sólo aceptan POST/DELETE.
func methodNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, "POST, DELETE")
	return fiber.ErrMethodNotAllowed
}
