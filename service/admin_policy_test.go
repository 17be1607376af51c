package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminPolicy(t *testing.T) {
	var none *AdminPolicy
	assert.False(t, none.IsAdmin(1))

	p := NewAdminPolicy([]uint{0, 1, 7})
	assert.True(t, p.IsAdmin(1))
	assert.True(t, p.IsAdmin(7))
	assert.False(t, p.IsAdmin(0))
	assert.False(t, p.IsAdmin(2))
}
