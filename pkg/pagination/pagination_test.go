package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Fallbacks(t *testing.T) {
	cases := []struct {
		name      string
		requested string
		total     int
		want      int
	}{
		{"no numérico cae en la primera", "abc", 12, 1},
		{"vacío cae en la primera", "", 12, 1},
		{"cero cae en la primera", "0", 12, 1},
		{"negativo cae en la primera", "-3", 12, 1},
		{"más allá de la última cae en la última", "9999", 12, 3},
		{"página válida", "2", 12, 2},
		{"sin resultados", "5", 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.requested, tc.total, 5)
			assert.Equal(t, tc.want, p.Number)
		})
	}
}

func TestPage_Window(t *testing.T) {
	p := New("3", 12, 5)

	assert.Equal(t, 3, p.NumPages)
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, 5, p.Limit())
	assert.True(t, p.HasPrevious())
	assert.False(t, p.HasNext())
	assert.Equal(t, []int{1, 2, 3}, p.Numbers())
}

func TestNew_DefaultSize(t *testing.T) {
	p := New("1", 6, 0)
	assert.Equal(t, DefaultSize, p.Size)
	assert.Equal(t, 2, p.NumPages)
	assert.True(t, p.HasNext())
	assert.Equal(t, 2, p.Next())
}
