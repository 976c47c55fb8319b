package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("registro não encontrado")
	ErrUnauthorized = errors.New("não autenticado")
	ErrForbidden    = errors.New("acesso negado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("registro duplicado")

	// Conflictos de unicidad: todos envuelven ErrDuplicate.
	ErrDuplicateTag              = fmt.Errorf("%w: tombo já cadastrado", ErrDuplicate)
	ErrDuplicateRegistrationCode = fmt.Errorf("%w: matrícula já cadastrada", ErrDuplicate)
	ErrUsernameTaken             = fmt.Errorf("%w: nome de usuário já existe", ErrDuplicate)

	ErrInvalidStatus    = errors.New("situação inválida")
	ErrPasswordMismatch = errors.New("as senhas não coincidem")
	ErrPasswordRequired = errors.New("senha obrigatória")
	ErrInactiveUser     = errors.New("usuário inativo")

	// ErrNotAStaffMember la identidad no tiene inventariante vinculado.
	ErrNotAStaffMember = errors.New("usuário sem inventariante vinculado")

	// ErrImportRowSkipped fila de planilha descartada (no fatal).
	ErrImportRowSkipped = errors.New("linha da planilha ignorada")
)

// ValidationError agrupa errores por campo de formulario. Nada se persiste cuando ocurre.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError crea el error con un primer campo.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add agrega (o reemplaza) el mensaje de un campo.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// Empty informa si no se registró ningún campo.
func (e *ValidationError) Empty() bool { return e == nil || len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validação: " + strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// FieldErrors devuelve los mensajes por campo si err es (o envuelve) un error de validación
// o de unicidad conocido; nil en otro caso.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Fields
	case errors.Is(err, ErrDuplicateTag):
		return map[string]string{"tag_number": ErrDuplicateTag.Error()}
	case errors.Is(err, ErrDuplicateRegistrationCode):
		return map[string]string{"registration_code": ErrDuplicateRegistrationCode.Error()}
	case errors.Is(err, ErrUsernameTaken):
		return map[string]string{"username": ErrUsernameTaken.Error()}
	case errors.Is(err, ErrInvalidStatus):
		return map[string]string{"status": ErrInvalidStatus.Error()}
	case errors.Is(err, ErrPasswordMismatch):
		return map[string]string{"password2": ErrPasswordMismatch.Error()}
	case errors.Is(err, ErrPasswordRequired):
		return map[string]string{"password1": ErrPasswordRequired.Error()}
	}
	return nil
}
