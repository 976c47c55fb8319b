package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "nao localizado", Fold("  Não   Localizado "))
	assert.Equal(t, "perda por calamidade", Fold("PERDA POR CALAMIDADE"))
	assert.Equal(t, "patrimonio", Fold("Patrimônio"))
	assert.Equal(t, "", Fold("   "))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "nao_localizado", Key("Não Localizado"))
	assert.Equal(t, "nao_localizado", Key("nao-localizado"))
	assert.Equal(t, "localizado", Key("Localizado"))
}
