package errors

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
)

// Is and As forward to the standard library so callers only need this package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// WrapStructuralParseError wraps a grammar failure for one file. It is always
// recovered by falling back to the heuristic parser.
func WrapStructuralParseError(file string, cause error) *BaseError {
	return Wrap(StructuralParseErrorCode, "structural parse failed", cause).
		WithLocation(SourceLocation{File: file, Line: LineFromError(cause)})
}

// WrapFileExtractionError marks a whole file's contracts as lost.
func WrapFileExtractionError(file string, cause error) *BaseError {
	return Wrap(FileExtractionErrorCode, "failed to extract contracts", cause).
		WithLocation(SourceLocation{File: file, Line: LineFromError(cause)}).
		WithContext("file", file)
}

// WrapContractAssemblyError drops a single endpoint.
func WrapContractAssemblyError(file string, line int, method string, cause error) *BaseError {
	return Wrap(ContractAssemblyErrorCode, fmt.Sprintf("failed to build contract for method %s", method), cause).
		WithLocation(SourceLocation{File: file, Line: line}).
		WithContext("method", method)
}

// WrapDirectoryReadError reports a subtree skipped during scanning.
func WrapDirectoryReadError(dir string, cause error) *BaseError {
	return Wrap(DirectoryReadErrorCode, fmt.Sprintf("failed to read directory '%s'", dir), cause).
		WithContext("directory", dir)
}

// RepositoryError is the fail-fast error for an unusable repository root.
func RepositoryError(path, reason string) *BaseError {
	return Newf(RepositoryErrorCode, "repository '%s' %s", path, reason).
		WithContext("path", path).
		WithSuggestion("Check that the repository has been cloned and the path is readable")
}

// ConfigurationError creates a configuration error
func ConfigurationError(field, message string) *BaseError {
	return Newf(ConfigurationErrorCode, "invalid configuration '%s': %s", field, message).
		WithContext("field", field)
}

// WrapRenderError wraps failures while writing an output document
func WrapRenderError(format string, cause error) *BaseError {
	return Wrap(RenderErrorCode, fmt.Sprintf("failed to render %s output", format), cause).
		WithContext("format", format)
}

// FromPanic converts a recovered panic value into an error of the given code.
func FromPanic(code ErrorCode, recovered interface{}) *BaseError {
	if err, ok := recovered.(error); ok {
		return Wrap(code, "panic during extraction", err)
	}
	return Newf(code, "panic during extraction: %v", recovered)
}

var lineInMessage = regexp.MustCompile(`(?i)(?:line\s+|:)(\d+)(?::\d+)?`)

// LineFromError pulls a line number out of an error message such as
// "Foo.java:12:5: unexpected token" or "... at line 12". Returns 0 if absent.
func LineFromError(err error) int {
	if err == nil {
		return 0
	}
	var located ExtractionError
	if As(err, &located) && located.Location().Line > 0 {
		return located.Location().Line
	}
	m := lineInMessage.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0
	}
	return n
}
