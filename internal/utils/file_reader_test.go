package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/contractscan/internal/errors"
)

func TestFileReader_ReadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "UserController.java", "package com.example;\n")

	reader := NewFileReader()

	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package com.example;\n", content)
	assert.Equal(t, 1, reader.contentCache.Len())

	again, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, again)
	assert.Equal(t, 1, reader.contentCache.Len())
}

func TestFileReader_SeesUpdates(t *testing.T) {
	path := writeTempFile(t, t.TempDir(), "A.java", "class A {}")
	reader := NewFileReader()

	_, err := reader.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("class A { String name; }"), 0644))

	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class A { String name; }", content)
}

func TestFileReader_Errors(t *testing.T) {
	reader := NewFileReader()

	_, err := reader.ReadFile("")
	require.Error(t, err)

	missing := filepath.Join(t.TempDir(), "Missing.java")
	_, err = reader.ReadFile(missing)
	require.Error(t, err)
	assert.Equal(t, errors.FileExtractionErrorCode, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "Missing.java")
}

func TestFileReader_Invalidate(t *testing.T) {
	path := writeTempFile(t, t.TempDir(), "A.java", "class A {}")
	reader := NewFileReaderWithSize(8)

	_, err := reader.ReadFile(path)
	require.NoError(t, err)
	reader.InvalidateFile(path)
	assert.Equal(t, 0, reader.contentCache.Len())

	_, err = reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.contentCache.Len())
}
