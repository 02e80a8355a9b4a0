package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"defaults", Page{}, Page{Number: 1, PerPage: DefaultPerPage}},
		{"negative page", Page{Number: -3, PerPage: 10}, Page{Number: 1, PerPage: 10}},
		{"oversized per_page", Page{Number: 2, PerPage: 500}, Page{Number: 2, PerPage: MaxPerPage}},
		{"passthrough", Page{Number: 3, PerPage: 25}, Page{Number: 3, PerPage: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 1, PerPage: 10}.Offset())
	assert.Equal(t, 10, Page{Number: 2, PerPage: 10}.Offset())
	assert.Equal(t, 40, Page{Number: 5, PerPage: 10}.Offset())
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Page{Number: 2, PerPage: 10}, 25)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 10, meta.PerPage)
	assert.Equal(t, 25, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	empty := NewMeta(Page{Number: 1, PerPage: 10}, 0)
	assert.Equal(t, 0, empty.TotalPages)
}
