package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/contractscan/internal/errors"
)

// SourceExtension is the file suffix collected by default
const SourceExtension = ".java"

// DefaultExcludedDirs are directory names never descended into
var DefaultExcludedDirs = []string{".git", "node_modules", "target", "build", ".idea", ".vscode"}

// FileFilter defines a function that determines whether a file should be collected
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(path string, info os.DirEntry) bool

// ScanOptions configures source discovery
type ScanOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
}

// SourceFileFilter collects regular files ending with ext
func SourceFileFilter(ext string) FileFilter {
	return func(path string, info os.DirEntry) bool {
		return !info.IsDir() && strings.HasSuffix(info.Name(), ext)
	}
}

// ExcludeDirectoryFilter skips the default excluded directories plus extra
func ExcludeDirectoryFilter(extra ...string) DirectoryFilter {
	skipDirs := make(map[string]bool, len(DefaultExcludedDirs)+len(extra))
	for _, name := range DefaultExcludedDirs {
		skipDirs[name] = true
	}
	for _, name := range extra {
		if name = strings.TrimSpace(name); name != "" {
			skipDirs[name] = true
		}
	}

	return func(path string, info os.DirEntry) bool {
		return !skipDirs[info.Name()]
	}
}

// DefaultScanOptions collects .java files outside the default excluded directories
func DefaultScanOptions(extraExcludes ...string) ScanOptions {
	return ScanOptions{
		FileFilter:      SourceFileFilter(SourceExtension),
		DirectoryFilter: ExcludeDirectoryFilter(extraExcludes...),
	}
}

// FileProcessor discovers source files under a repository root
type FileProcessor struct {
	fileReader  *FileReader
	diagnostics *DiagnosticSystem
}

// NewFileProcessor creates a new file processor
func NewFileProcessor(diagnostics *DiagnosticSystem) *FileProcessor {
	return NewFileProcessorWithReader(NewFileReader(), diagnostics)
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader, diagnostics *DiagnosticSystem) *FileProcessor {
	if diagnostics == nil {
		diagnostics = NewSilentDiagnostics()
	}
	return &FileProcessor{
		fileReader:  reader,
		diagnostics: diagnostics,
	}
}

// ScanSourceFiles walks root depth-first in lexical order and returns every
// matching file. Directories that cannot be read are logged and skipped;
// the scan itself never fails.
func (fp *FileProcessor) ScanSourceFiles(root string, options ScanOptions) []string {
	if options.FileFilter == nil {
		options.FileFilter = SourceFileFilter(SourceExtension)
	}
	if options.DirectoryFilter == nil {
		options.DirectoryFilter = ExcludeDirectoryFilter()
	}

	var files []string
	visited := make(map[string]bool)
	fp.scanDirectory(root, options, visited, &files)
	return files
}

func (fp *FileProcessor) scanDirectory(dir string, options ScanOptions, visited map[string]bool, files *[]string) {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if visited[real] {
			return
		}
		visited[real] = true
	}

	// os.ReadDir returns entries sorted by name
	entries, err := os.ReadDir(dir)
	if err != nil {
		wrapped := errors.WrapDirectoryReadError(dir, err)
		fp.diagnostics.WarnWith(Fields{"file": dir, "error": err.Error()}, "%s", wrapped.Message)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if options.DirectoryFilter(path, entry) {
				fp.scanDirectory(path, options, visited, files)
			}
			continue
		}
		if options.FileFilter(path, entry) {
			*files = append(*files, path)
		}
	}
}

// GetFileReader returns the underlying FileReader
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
