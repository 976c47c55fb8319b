package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
)

// MinPasswordLength largo mínimo aceptado.
const MinPasswordLength = 8

// HashPassword aplica las reglas de password del alta/edición y devuelve el hash bcrypt.
// Con required=false y ambos campos vacíos devuelve ("", false, nil): no cambiar el hash.
func HashPassword(password1, password2 string, required bool) (hash string, changed bool, err error) {
	if password1 == "" && password2 == "" {
		if required {
			return "", false, domain.ErrPasswordRequired
		}
		return "", false, nil
	}
	if password1 != password2 {
		return "", false, domain.ErrPasswordMismatch
	}
	if len(password1) < MinPasswordLength {
		return "", false, domain.NewValidationError("password1", "A senha deve ter pelo menos 8 caracteres.")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password1), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", false, domain.NewValidationError("password1", "Senha longa demais.")
		}
		return "", false, err
	}
	return string(b), true, nil
}

// CheckPassword compara password con el hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
