package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
)

func TestHashPassword(t *testing.T) {
	t.Run("required y vacío", func(t *testing.T) {
		_, _, err := HashPassword("", "", true)
		assert.ErrorIs(t, err, domain.ErrPasswordRequired)
	})

	t.Run("opcional y vacío: sin cambios", func(t *testing.T) {
		hash, changed, err := HashPassword("", "", false)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, hash)
	})

	t.Run("no coinciden", func(t *testing.T) {
		_, _, err := HashPassword("secret-123", "secret-124", false)
		assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
	})

	t.Run("corta", func(t *testing.T) {
		_, _, err := HashPassword("abc", "abc", true)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, domain.FieldErrors(err), "password1")
	})

	t.Run("demasiado larga para bcrypt", func(t *testing.T) {
		long := strings.Repeat("x", 80)
		_, _, err := HashPassword(long, long, true)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("válida", func(t *testing.T) {
		hash, changed, err := HashPassword("secret-123", "secret-123", true)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.NotEqual(t, "secret-123", hash)
		assert.True(t, CheckPassword(hash, "secret-123"))
		assert.False(t, CheckPassword(hash, "secret-12"))
	})
}
