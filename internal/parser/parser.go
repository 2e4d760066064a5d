package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/toyz/contractscan/internal/annotations"
	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/models"
	"github.com/toyz/contractscan/internal/utils"
)

// ControllerParser implements the SourceParser interface. It tries the
// structural grammar first and falls back to line-based heuristics.
type ControllerParser struct {
	grammar     *participle.Parser[compilationUnit]
	registry    annotations.AnnotationRegistry
	diagnostics *utils.DiagnosticSystem
}

var _ SourceParser = (*ControllerParser)(nil)

// NewControllerParser creates a parser using the built-in annotation registry
func NewControllerParser(diagnostics *utils.DiagnosticSystem) *ControllerParser {
	return NewControllerParserWithRegistry(annotations.DefaultRegistry(), diagnostics)
}

// NewControllerParserWithRegistry creates a parser that classifies
// annotations with registry
func NewControllerParserWithRegistry(registry annotations.AnnotationRegistry, diagnostics *utils.DiagnosticSystem) *ControllerParser {
	if diagnostics == nil {
		diagnostics = utils.NewSilentDiagnostics()
	}
	return &ControllerParser{
		grammar:     newJavaParser(),
		registry:    registry,
		diagnostics: diagnostics,
	}
}

// IsControllerCandidate is the cheap check run before any parsing
func (p *ControllerParser) IsControllerCandidate(content string) bool {
	return strings.Contains(content, MarkerRestController) || strings.Contains(content, MarkerController)
}

// ParseFile extracts controller metadata from content. Structural parse
// failures are logged at debug level and retried heuristically; only a
// heuristic failure is returned.
func (p *ControllerParser) ParseFile(content, filePath string) (*models.ControllerInfo, error) {
	if !p.IsControllerCandidate(content) {
		return nil, nil
	}

	info, err := p.parseStructural(content, filePath)
	if err == nil {
		return info, nil
	}

	p.diagnostics.DebugWith(utils.Fields{
		"file":  filePath,
		"line":  errors.LineFromError(err),
		"error": err.Error(),
	}, "structural parse failed, using heuristic parser")

	return p.parseHeuristic(content, filePath)
}

func (p *ControllerParser) parseStructural(content, filePath string) (info *models.ControllerInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, errors.WrapStructuralParseError(filePath, errors.FromPanic(errors.StructuralParseErrorCode, r))
		}
	}()
	return p.TryStructural(content, filePath)
}

func (p *ControllerParser) parseHeuristic(content, filePath string) (info *models.ControllerInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, errors.WrapFileExtractionError(filePath, errors.FromPanic(errors.FileExtractionErrorCode, r))
		}
	}()

	info, err = p.TryHeuristic(content, filePath)
	if err != nil {
		return nil, errors.WrapFileExtractionError(filePath, err)
	}
	return info, nil
}
