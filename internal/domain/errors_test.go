package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateErrorsWrapErrDuplicate(t *testing.T) {
	for _, err := range []error{ErrDuplicateTag, ErrDuplicateRegistrationCode, ErrUsernameTaken} {
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.ErrorIs(t, fmt.Errorf("insert: %w", err), ErrDuplicate)
	}
	assert.NotErrorIs(t, ErrDuplicateTag, ErrDuplicateRegistrationCode)
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError("tag_number", "obrigatório")
	ve.Add("value", "valor inválido")

	assert.ErrorIs(t, ve, ErrInvalidInput)
	assert.Equal(t, "validação: tag_number: obrigatório; value: valor inválido", ve.Error())
	assert.False(t, ve.Empty())

	var empty *ValidationError
	assert.True(t, empty.Empty())
}

func TestFieldErrors(t *testing.T) {
	assert.Equal(t, map[string]string{"tag_number": ErrDuplicateTag.Error()},
		FieldErrors(fmt.Errorf("create: %w", ErrDuplicateTag)))
	assert.Equal(t, "obrigatório", FieldErrors(NewValidationError("phone", "obrigatório"))["phone"])
	assert.Contains(t, FieldErrors(ErrPasswordMismatch), "password2")
	assert.Nil(t, FieldErrors(errors.New("db down")))
	assert.Nil(t, FieldErrors(ErrNotFound))
}
