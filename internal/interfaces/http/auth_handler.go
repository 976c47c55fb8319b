package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
)

// AuthHandler login, logout y auto-registro.
type AuthHandler struct {
	uc           *auth.AuthUseCase
	allowSignup  bool
	secureCookie bool
	sessionMax   int // segundos
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, allowSignup, secureCookie bool, sessionMinutes int) *AuthHandler {
	return &AuthHandler{uc: uc, allowSignup: allowSignup, secureCookie: secureCookie, sessionMax: sessionMinutes * 60}
}

// LoginPage GET /login
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return renderPage(c, fiber.StatusOK, "Entrar", "login", loginView{AllowSignup: h.allowSignup})
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Usuário"
// @Param        password  formData  string  true  "Senha"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := bindForm(c, &in); err != nil {
		return h.loginFailed(c, fiber.StatusUnprocessableEntity, in.Username, "Informe usuário e senha.")
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			return h.loginFailed(c, fiber.StatusUnauthorized, in.Username, "Usuário ou senha inválidos.")
		case errors.Is(err, domain.ErrInactiveUser):
			return h.loginFailed(c, fiber.StatusForbidden, in.Username, "Usuário inativo.")
		}
		return err
	}
	setSession(c, out.Token, h.secureCookie, h.sessionMax)
	if wantsJSON(c) {
		return c.JSON(out)
	}
	return redirect(c, "/")
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, status int, username, msg string) error {
	if wantsJSON(c) {
		return c.Status(status).JSON(errorBody("UNAUTHORIZED", msg))
	}
	return renderPage(c, status, "Entrar", "login", loginView{Username: username, Error: msg, AllowSignup: h.allowSignup})
}

// Logout POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearSession(c)
	return redirect(c, "/login")
}

// RegisterPage GET /register (sólo con auto-registro habilitado).
func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	if !h.allowSignup {
		return fiber.ErrNotFound
	}
	return renderPage(c, fiber.StatusOK, "Criar conta", "register", registerView{})
}

// Register POST /register: identidad + inventariante "Colaborador".
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	if !h.allowSignup {
		return fiber.ErrNotFound
	}
	var in dto.RegisterRequest
	err := bindForm(c, &in)
	if err == nil {
		_, err = h.uc.Register(c.UserContext(), in)
	}
	if err != nil {
		fields, ok := formErrors(err)
		if !ok {
			return err
		}
		in.Password1, in.Password2 = "", ""
		return renderPage(c, fiber.StatusUnprocessableEntity, "Criar conta", "register", registerView{Form: in, Errors: fields})
	}
	return redirect(c, "/login")
}

// redirect 303 para navegación normal y HX-Redirect para htmx.
func redirect(c *fiber.Ctx, to string) error {
	if isHX(c) {
		c.Set("HX-Redirect", to)
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect(to, fiber.StatusSeeOther)
}
