// Package textnorm normaliza texto libre escrito por personas (planilhas, formularios)
// para compararlo sin importar mayúsculas ni acentos: "Não Localizado" y
// "nao localizado" producen la misma clave.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Fold quita acentos, pliega mayúsculas y colapsa espacios.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(folder.String(out)), " ")
}

// Key como Fold pero con espacios y guiones reemplazados por "_", apto para
// comparar contra códigos como "nao_localizado".
func Key(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, Fold(s))
}
