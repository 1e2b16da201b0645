package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadErrorWrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	err := NewLoadError("seed.yaml", underlying)

	assert.Equal(t, "failed to load seed.yaml: boom", err.Error())
	assert.ErrorIs(t, err, underlying)
}
