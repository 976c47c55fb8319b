// Package pagination convierte un número de página pedido por el cliente en una
// ventana acotada (offset/limit) sobre un total conocido.
//
// La página pedida nunca produce error: un valor no numérico o menor que 1 cae en
// la página 1 y un valor mayor que la última página cae en la última.
package pagination

import (
	"strconv"
	"strings"
)

// DefaultSize tamaño de página de los listados.
const DefaultSize = 5

// Page ventana de resultados ya resuelta.
type Page struct {
	Number   int
	Size     int
	Total    int
	NumPages int
}

// New resuelve la página pedida (texto crudo del query string) contra el total.
func New(requested string, total, size int) Page {
	if size <= 0 {
		size = DefaultSize
	}
	if total < 0 {
		total = 0
	}
	numPages := (total + size - 1) / size
	if numPages == 0 {
		numPages = 1
	}

	n, err := strconv.Atoi(strings.TrimSpace(requested))
	switch {
	case err != nil || n < 1:
		n = 1
	case n > numPages:
		n = numPages
	}
	return Page{Number: n, Size: size, Total: total, NumPages: numPages}
}

// Offset primer registro de la página.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Limit cantidad máxima de registros de la página.
func (p Page) Limit() int { return p.Size }

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) Previous() int     { return p.Number - 1 }
func (p Page) Next() int         { return p.Number + 1 }

// Numbers lista 1..NumPages para la barra de navegación.
func (p Page) Numbers() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
