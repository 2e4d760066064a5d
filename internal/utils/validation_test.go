package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/contractscan/internal/errors"
)

func TestNotEmpty(t *testing.T) {
	assert.NoError(t, NotEmpty("repository")("/repo"))

	err := NotEmpty("repository")("  ")
	assert.Error(t, err)
	assert.Equal(t, errors.ConfigurationErrorCode, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestAtLeast(t *testing.T) {
	assert.NoError(t, AtLeast("workers", 1)(4))
	assert.Error(t, AtLeast("workers", 1)(0))
}

func TestNoneBlank(t *testing.T) {
	assert.NoError(t, NoneBlank("excludeDirs")(nil))
	assert.NoError(t, NoneBlank("excludeDirs")([]string{"generated"}))
	assert.Error(t, NoneBlank("excludeDirs")([]string{"generated", ""}))
}
