package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	t.Run("defaults when unset", func(t *testing.T) {
		offset, limit := PageWindow(nil, nil)
		assert.Equal(t, 0, offset)
		assert.Equal(t, defaultPageSize, limit)
	})

	t.Run("uses provided values", func(t *testing.T) {
		offset, limit := PageWindow(intPtr(40), intPtr(25))
		assert.Equal(t, 40, offset)
		assert.Equal(t, 25, limit)
	})

	t.Run("caps the limit", func(t *testing.T) {
		_, limit := PageWindow(nil, intPtr(10_000))
		assert.Equal(t, maxPageSize, limit)
	})

	t.Run("rejects negative values", func(t *testing.T) {
		offset, limit := PageWindow(intPtr(-5), intPtr(-1))
		assert.Equal(t, 0, offset)
		assert.Equal(t, defaultPageSize, limit)
	})
}
