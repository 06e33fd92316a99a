package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	page := NewPage(2, 10, 35, []string{"a", "b"})
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, int64(35), page.TotalItems)
	assert.Equal(t, 4, page.TotalPages)
	assert.Equal(t, []string{"a", "b"}, page.Items)

	empty := NewPage(1, 10, 0, []string{})
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, int64(0), empty.TotalItems)

	exact := NewPage(1, 10, 30, nil)
	assert.Equal(t, 3, exact.TotalPages)
}

func TestNormalizePageParams(t *testing.T) {
	page, perPage := NormalizePageParams(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPerPage, perPage)

	page, perPage = NormalizePageParams(-3, -1)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPerPage, perPage)

	page, perPage = NormalizePageParams(4, 500)
	assert.Equal(t, 4, page)
	assert.Equal(t, MaxPerPage, perPage)

	page, perPage = NormalizePageParams(2, 25)
	assert.Equal(t, 2, page)
	assert.Equal(t, 25, perPage)
}
