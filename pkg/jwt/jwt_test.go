package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/inventario-patrimonio/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "inventario-patrimonio-test"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 42, "maria", true, testIssuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	s, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.UserID)
	assert.Equal(t, "maria", s.Username)
	assert.True(t, s.Superuser)
	assert.False(t, s.ExpiresAt.IsZero())
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 1, "joao", false, testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 1, "joao", false, testIssuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestGenerate_Rechazos(t *testing.T) {
	_, err := pkgjwt.Generate("", 1, "joao", false, testIssuer, 60)
	assert.Error(t, err)

	_, err = pkgjwt.Generate(testSecret, 0, "joao", false, testIssuer, 60)
	assert.Error(t, err)
}
