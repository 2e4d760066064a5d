package extractor

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/models"
	"github.com/toyz/contractscan/internal/parser"
	"github.com/toyz/contractscan/internal/schema"
	"github.com/toyz/contractscan/internal/utils"
)

// DefaultResponseWrappers are unwrapped once before a response schema lookup
var DefaultResponseWrappers = []string{"ResponseEntity", "HttpEntity"}

// Options configures an Extractor
type Options struct {
	Workers          int      // files processed concurrently, 1 means sequential
	ExcludeDirs      []string // directory names skipped in addition to the defaults
	ResponseWrappers []string // generic wrapper types around response payloads
	SchemaCacheSize  int      // located DTO declarations kept in memory
}

// DefaultOptions returns sequential extraction with the default wrappers
func DefaultOptions() Options {
	return Options{
		Workers:          1,
		ResponseWrappers: DefaultResponseWrappers,
		SchemaCacheSize:  schema.DefaultCacheSize,
	}
}

// SchemaResolver produces object schemas for named types
type SchemaResolver interface {
	GenerateSchema(className, repositoryPath, packageName string) (*models.Schema, bool)
}

// Extractor turns a repository checkout into endpoint contracts. It holds no
// per-run state, so one Extractor may serve concurrent runs.
type Extractor struct {
	processor   *utils.FileProcessor
	reader      *utils.FileReader
	parser      parser.SourceParser
	schemas     SchemaResolver
	scanOptions utils.ScanOptions
	options     Options
	diagnostics *utils.DiagnosticSystem
}

// New creates an Extractor with the default parser and schema generator
func New(opts Options, diagnostics *utils.DiagnosticSystem) *Extractor {
	if diagnostics == nil {
		diagnostics = utils.NewSilentDiagnostics()
	}
	processor := utils.NewFileProcessor(diagnostics)
	scanOptions := utils.DefaultScanOptions(opts.ExcludeDirs...)
	generator := schema.NewGenerator(processor, schema.GeneratorOptions{
		CacheSize:   opts.SchemaCacheSize,
		ScanOptions: scanOptions,
	}, diagnostics)

	return NewWithComponents(processor, parser.NewControllerParser(diagnostics), generator, opts, diagnostics)
}

// NewWithComponents creates an Extractor from explicit collaborators
func NewWithComponents(processor *utils.FileProcessor, sourceParser parser.SourceParser, schemas SchemaResolver, opts Options, diagnostics *utils.DiagnosticSystem) *Extractor {
	if diagnostics == nil {
		diagnostics = utils.NewSilentDiagnostics()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.ResponseWrappers == nil {
		opts.ResponseWrappers = DefaultResponseWrappers
	}

	return &Extractor{
		processor:   processor,
		reader:      processor.GetFileReader(),
		parser:      sourceParser,
		schemas:     schemas,
		scanOptions: utils.DefaultScanOptions(opts.ExcludeDirs...),
		options:     opts,
		diagnostics: diagnostics,
	}
}

// ExtractContracts returns every endpoint contract in the repository, in
// scanner order. Broken files and methods are logged and skipped; only an
// unusable repository root is an error.
func (e *Extractor) ExtractContracts(repositoryPath string) ([]models.ExtractedContract, error) {
	report, err := e.Run(repositoryPath)
	if err != nil {
		return nil, err
	}
	return report.Contracts, nil
}

// fileResult is the outcome of one source file
type fileResult struct {
	contracts      []models.ExtractedContract
	controller     bool
	fallback       bool
	fileFailure    *models.ExtractionFailure
	methodFailures []models.ExtractionFailure
}

// Run performs one extraction and reports what was found and skipped
func (e *Extractor) Run(repositoryPath string) (*models.ExtractionReport, error) {
	return e.RunContext(context.Background(), repositoryPath)
}

// RunContext is Run with cancellation. Files not yet started when ctx is
// done are not processed and the context error is returned.
func (e *Extractor) RunContext(ctx context.Context, repositoryPath string) (*models.ExtractionReport, error) {
	root, err := checkRepository(repositoryPath)
	if err != nil {
		e.diagnostics.Error("%v", err)
		return nil, err
	}

	report := &models.ExtractionReport{
		RunID:      uuid.NewString(),
		Repository: root,
		StartedAt:  time.Now(),
		Contracts:  []models.ExtractedContract{},
	}

	e.diagnostics.Verbose("Scanning %s (run %s)", root, report.RunID)
	files := e.processor.ScanSourceFiles(root, e.scanOptions)
	report.FilesScanned = len(files)
	e.diagnostics.Debug("Found %d source files", len(files))

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.options.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.processFile(root, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.diagnostics.Error("Extraction of %s stopped: %v", root, err)
		return nil, err
	}

	for _, res := range results {
		if res.controller {
			report.ControllersFound++
		}
		if res.fallback {
			report.StructuralFallbacks++
		}
		if res.fileFailure != nil {
			report.FileFailures = append(report.FileFailures, *res.fileFailure)
		}
		report.MethodFailures = append(report.MethodFailures, res.methodFailures...)
		report.Contracts = append(report.Contracts, res.contracts...)
	}

	report.Duration = time.Since(report.StartedAt)
	e.diagnostics.Verbose("Extracted %d contracts from %d controllers in %v",
		len(report.Contracts), report.ControllersFound, report.Duration)
	return report, nil
}

func checkRepository(repositoryPath string) (string, error) {
	if repositoryPath == "" {
		return "", errors.RepositoryError(repositoryPath, "is empty")
	}
	root, err := filepath.Abs(repositoryPath)
	if err != nil {
		return "", errors.RepositoryError(repositoryPath, "cannot be resolved").WithCause(err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", errors.RepositoryError(root, "does not exist").WithCause(err)
	}
	if !info.IsDir() {
		return "", errors.RepositoryError(root, "is not a directory")
	}
	return root, nil
}

// processFile parses one file and assembles its contracts. Any failure,
// panics included, is confined to this file.
func (e *Extractor) processFile(root, path string) (res fileResult) {
	rel := relativePath(root, path)
	defer func() {
		if r := recover(); r != nil {
			err := errors.WrapFileExtractionError(rel, errors.FromPanic(errors.FileExtractionErrorCode, r))
			res = fileResult{fileFailure: e.fileFailure(rel, err)}
		}
	}()

	content, err := e.reader.ReadFile(path)
	if err != nil {
		return fileResult{fileFailure: e.fileFailure(rel, errors.WrapFileExtractionError(rel, err))}
	}

	info, err := e.parser.ParseFile(content, path)
	if err != nil {
		return fileResult{fileFailure: e.fileFailure(rel, err)}
	}
	if info == nil {
		return fileResult{}
	}

	e.diagnostics.Debug("Controller %s in %s (%s, %d methods)", info.ClassName, rel, info.Strategy, len(info.Methods))
	res.controller = true
	res.fallback = info.Strategy == models.StrategyHeuristic
	res.contracts, res.methodFailures = e.buildContracts(root, rel, info)
	return res
}

func (e *Extractor) fileFailure(rel string, err error) *models.ExtractionFailure {
	line := errors.LineFromError(err)
	e.diagnostics.ErrorWith(utils.Fields{
		"file":  rel,
		"line":  line,
		"error": err.Error(),
	}, "Failed to parse source file: %s", rel)

	return &models.ExtractionFailure{File: rel, Line: line, Error: err.Error()}
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
