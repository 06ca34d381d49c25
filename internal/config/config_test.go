package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBootstrapAdmin(t *testing.T) {
	cfg := Config{AdminIDs: []string{"100", "101"}}
	assert.True(t, cfg.IsBootstrapAdmin("100"))
	assert.True(t, cfg.IsBootstrapAdmin("101"))
	assert.False(t, cfg.IsBootstrapAdmin("200"))
	assert.False(t, Config{}.IsBootstrapAdmin("100"))
}
