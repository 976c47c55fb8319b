package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-patrimonio/internal/domain"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"R$ 1.234,56", "1234.56"},
		{"1.234", "1234"},
		{"12.345.678", "12345678"},
		{"1.5", "1.5"},
		{"1.50", "1.5"},
		{"1.2345", "1.2345"},
		{"10", "10"},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got.String(), c.in)
	}

	_, err := ParseMoney("1.234.5")
	assert.Error(t, err)
}

func TestAssetForm_ToInput_ThousandsWithoutComma(t *testing.T) {
	in, err := AssetForm{TagNumber: "7", Value: "1.234"}.ToInput()
	require.NoError(t, err)
	require.True(t, in.Value.Valid)
	assert.Equal(t, "1234.00", in.Value.Decimal.StringFixed(2))
}

func TestAssetForm_ToInput_FieldErrors(t *testing.T) {
	_, err := AssetForm{TagNumber: "0", Value: "abc"}.ToInput()
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "tag_number")
	assert.Contains(t, verr.Fields, "value")
}
