package utils

import (
	"os"
	"path/filepath"

	"github.com/toyz/contractscan/internal/errors"
)

// FileReader reads source files, caching contents until the file changes
type FileReader struct {
	contentCache *FileCache[string, string]
}

// NewFileReader creates a FileReader with the default cache size
func NewFileReader() *FileReader {
	return NewFileReaderWithSize(DefaultCacheSize)
}

// NewFileReaderWithSize creates a FileReader caching at most size files
func NewFileReaderWithSize(size int) *FileReader {
	return &FileReader{contentCache: MustFileCache[string, string](size)}
}

// ReadFile reads a file and returns its contents as a string
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	if filePath == "" {
		return "", errors.New(errors.FileExtractionErrorCode, "file path cannot be empty")
	}
	cleanPath := filepath.Clean(filePath)

	if cached, ok := fr.contentCache.Get(cleanPath, cleanPath); ok {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", errors.Wrapf(errors.FileExtractionErrorCode, err, "failed to read file %s", filepath.Base(cleanPath)).
			WithLocation(errors.SourceLocation{File: cleanPath})
	}

	contentStr := string(content)
	fr.contentCache.Set(cleanPath, contentStr, cleanPath)
	return contentStr, nil
}

// InvalidateFile removes a specific file from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	fr.contentCache.Delete(filepath.Clean(filePath))
}
