package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DSN", "host=localhost dbname=bboard")
	t.Setenv("SESSION_KEY", "k")
	t.Setenv("TOKEN_SECRET", "s")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 2, cfg.PageSize)
	assert.Equal(t, "media", cfg.MediaDir)
}

func TestLoadPageSize(t *testing.T) {
	setRequired(t)
	t.Setenv("PAGE_SIZE", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PageSize)

	t.Setenv("PAGE_SIZE", "zero")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PAGE_SIZE", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("DSN", "")
	_, err := Load()
	assert.Error(t, err)

	setRequired(t)
	t.Setenv("SESSION_KEY", "")
	_, err = Load()
	assert.Error(t, err)

	setRequired(t)
	t.Setenv("TOKEN_SECRET", "")
	_, err = Load()
	assert.Error(t, err)
}
