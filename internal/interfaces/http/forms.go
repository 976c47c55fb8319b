package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// los errores se reportan con el nombre del campo del formulario
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// bindForm parsea el cuerpo (urlencoded/multipart/json) en dst y ejecuta las etiquetas
// validate. Los fallos vuelven como *domain.ValidationError por campo.
func bindForm(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.NewValidationError("__all__", "Formulário inválido.")
	}
	return validateStruct(dst)
}

func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), validationMessage(fe))
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório."
	case "max":
		return "Máximo de " + fe.Param() + " caracteres."
	case "email":
		return "Informe um e-mail válido."
	case "numeric":
		return "Informe um número."
	case "datetime":
		return "Data inválida (use AAAA-MM-DD)."
	}
	return "Valor inválido."
}

// formErrors mensajes por campo para re-renderizar el formulario; ok=false si err no es
// un error de formulario (validación o unicidad) y debe ir al ErrorHandler.
func formErrors(err error) (map[string]string, bool) {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, domain.ErrInvalidStatus) || errors.Is(err, domain.ErrPasswordMismatch) ||
		errors.Is(err, domain.ErrPasswordRequired) {
		fields := domain.FieldErrors(err)
		if len(fields) == 0 {
			fields = map[string]string{"__all__": err.Error()}
		}
		return fields, true
	}
	return nil, false
}
