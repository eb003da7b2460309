package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination_PageCount(t *testing.T) {
	assert.Equal(t, 0, NewPagination(1, 20, 0).Pages)
	assert.Equal(t, 1, NewPagination(1, 20, 20).Pages)
	assert.Equal(t, 2, NewPagination(1, 20, 21).Pages)
	assert.Equal(t, 5, NewPagination(2, 3, 13).Pages)
}

func TestValidationError(t *testing.T) {
	res := ValidationError(map[string]string{"name": "name is required"})

	assert.True(t, res.Error)
	assert.False(t, res.Success)
	assert.Equal(t, "Validation failed", res.Message)
	assert.Equal(t, "name is required", res.Errors["name"])
}
