package memory

import (
	"testing"

	"ai-studypal-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestGetOrCreateReturnsSameStorePerUser(t *testing.T) {
	registry := NewStoreRegistry(logger.NewNopLogger())

	first, created := registry.GetOrCreate("user-a")
	assert.True(t, created)

	second, created := registry.GetOrCreate("user-a")
	assert.False(t, created)
	assert.Same(t, first, second)

	other, created := registry.GetOrCreate("user-b")
	assert.True(t, created)
	assert.NotSame(t, first, other)
}

func TestDeleteDropsStore(t *testing.T) {
	registry := NewStoreRegistry(logger.NewNopLogger())

	first, _ := registry.GetOrCreate("user-a")
	registry.Delete("user-a")

	second, created := registry.GetOrCreate("user-a")
	assert.True(t, created)
	assert.NotSame(t, first, second)
}
