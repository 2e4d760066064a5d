package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/extractor"
	"github.com/toyz/contractscan/internal/generator"
	"github.com/toyz/contractscan/internal/models"
	"github.com/toyz/contractscan/internal/schema"
	"github.com/toyz/contractscan/internal/utils"
)

// Execute runs the command tree with args and returns the process exit code.
// An interrupt cancels a running extraction.
func Execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := NewCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		verbose, _ := cmd.PersistentFlags().GetBool("verbose")
		NewDiagnosticReporter(verbose, stderr).ReportError(err)
		return 1
	}
	return 0
}

// NewCommand builds the contractscan command tree
func NewCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "contractscan",
		Short: "Extract HTTP endpoint contracts from Spring Boot sources",
		Long: "Scans a checked-out Java repository for Spring controllers and reports every\n" +
			"endpoint with its path, parameters and request/response schemas.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.String("env-file", DefaultEnvFile, "File with CONTRACTSCAN_* settings")
	flags.Int("workers", 1, "Number of files processed concurrently")
	flags.StringSlice("exclude", nil, "Extra directory names to skip")
	flags.StringSlice("response-wrapper", nil, "Generic response wrappers to unwrap (default ResponseEntity,HttpEntity)")
	flags.Int("schema-cache-size", schema.DefaultCacheSize, "Located DTO declarations kept in memory")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.BoolP("quiet", "q", false, "Only show errors")
	flags.Bool("debug", false, "Show debug output, including parser fallbacks")

	root.AddCommand(newExtractCommand(), newSchemaCommand())
	return root
}

func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [repository]",
		Short: "Extract every endpoint contract in a repository",
		Long:  "Extract every endpoint contract in a repository. The repository defaults to CONTRACTSCAN_REPOSITORY.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExtract,
	}
	cmd.Flags().StringP("format", "f", string(generator.FormatJSON), "Output format: json, yaml, openapi")
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	cmd.Flags().String("title", generator.DefaultDocumentInfo.Title, "OpenAPI document title")
	cmd.Flags().String("api-version", generator.DefaultDocumentInfo.Version, "OpenAPI document version")
	cmd.Flags().Bool("strict", false, "Exit with an error when any file or method was skipped")
	return cmd
}

func newSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <repository> <ClassName>",
		Short: "Print the schema generated for one DTO class",
		Args:  cobra.ExactArgs(2),
		RunE:  runSchema,
	}
	cmd.Flags().StringP("format", "f", string(generator.FormatJSON), "Output format: json, yaml, openapi")
	cmd.Flags().StringP("package", "p", "", "Only consider declarations in this package")
	return cmd
}

// resolveConfig layers changed flags over LoadConfig and validates the result
func resolveConfig(cmd *cobra.Command, repository string) (*Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := LoadConfig(envFile, nil)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if repository != "" {
		cfg.Repository = repository
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags into cfg
func applyFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()
	strs := map[string]*string{
		"format":      &cfg.Format,
		"output":      &cfg.Output,
		"title":       &cfg.Title,
		"api-version": &cfg.Version,
	}
	for name, target := range strs {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return errors.ConfigurationError(name, err.Error())
		}
		*target = v
	}

	ints := map[string]*int{
		"workers":           &cfg.Workers,
		"schema-cache-size": &cfg.SchemaCacheSize,
	}
	for name, target := range ints {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return errors.ConfigurationError(name, err.Error())
		}
		*target = v
	}

	bools := map[string]*bool{
		"verbose": &cfg.Verbose,
		"quiet":   &cfg.Quiet,
		"debug":   &cfg.Debug,
		"strict":  &cfg.Strict,
	}
	for name, target := range bools {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return errors.ConfigurationError(name, err.Error())
		}
		*target = v
	}

	lists := map[string]*[]string{
		"exclude":          &cfg.ExcludeDirs,
		"response-wrapper": &cfg.ResponseWrappers,
	}
	for name, target := range lists {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetStringSlice(name)
		if err != nil {
			return errors.ConfigurationError(name, err.Error())
		}
		*target = v
	}
	return nil
}

// newDiagnostics sends all diagnostics to stderr so stdout carries only the
// rendered document
func newDiagnostics(cmd *cobra.Command, cfg *Config) *utils.DiagnosticSystem {
	errOut := cmd.ErrOrStderr()
	return utils.NewDiagnosticSystem(cfg.DiagnosticLevel()).
		WithWriters(errOut, errOut).
		WithColors(errOut == os.Stderr)
}

func runExtract(cmd *cobra.Command, args []string) error {
	var repository string
	if len(args) > 0 {
		repository = args[0]
	}
	cfg, err := resolveConfig(cmd, repository)
	if err != nil {
		return err
	}
	format, _ := generator.ParseFormat(cfg.Format)

	diagnostics := newDiagnostics(cmd, cfg)
	diagnostics.Section("Contract Extraction")
	if cfg.Verbose || cfg.Debug {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Repository: %s", cfg.Repository)
		diagnostics.List("Format: %s", format)
		diagnostics.List("Workers: %d", cfg.Workers)
	}

	report, err := extractor.New(cfg.ExtractorOptions(), diagnostics).RunContext(cmd.Context(), cfg.Repository)
	if err != nil {
		return err
	}

	info := generator.DocumentInfo{Title: cfg.Title, Version: cfg.Version}
	if err := writeOutput(cmd, cfg.Output, func(w io.Writer) error {
		return generator.Render(w, report, format, info)
	}); err != nil {
		return err
	}

	if cfg.DiagnosticLevel() >= utils.DiagnosticInfo {
		NewDiagnosticReporter(cfg.Verbose, cmd.ErrOrStderr()).ReportFailures(report)
	}
	diagnostics.Summary("Extraction Complete!", SummaryStats(report))
	if cfg.Output != "" && cfg.Output != "-" {
		diagnostics.Success("Wrote %s", cfg.Output)
	}

	if failures := failureErrors(report); cfg.Strict && !failures.IsEmpty() {
		return failures
	}
	return nil
}

// failureErrors collects the skipped files and methods of a run
func failureErrors(report *models.ExtractionReport) *errors.MultipleErrors {
	failures := errors.NewMultipleErrors()
	for _, f := range report.FileFailures {
		failures.Add(errors.New(errors.FileExtractionErrorCode, f.Error).
			WithLocation(errors.SourceLocation{File: f.File, Line: f.Line}))
	}
	for _, f := range report.MethodFailures {
		failures.Add(errors.New(errors.ContractAssemblyErrorCode, f.Error).
			WithLocation(errors.SourceLocation{File: f.File, Line: f.Line}).
			WithContext("method", f.Method))
	}
	return failures
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	format, _ := generator.ParseFormat(cfg.Format)
	packageName, _ := cmd.Flags().GetString("package")

	root, err := filepath.Abs(cfg.Repository)
	if err != nil {
		return errors.RepositoryError(cfg.Repository, "cannot be resolved").WithCause(err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return errors.RepositoryError(root, "is not a readable directory")
	}

	diagnostics := newDiagnostics(cmd, cfg)
	generatorOpts := schema.GeneratorOptions{
		CacheSize:   cfg.SchemaCacheSize,
		ScanOptions: utils.DefaultScanOptions(cfg.ExcludeDirs...),
	}
	schemas := schema.NewGenerator(utils.NewFileProcessor(diagnostics), generatorOpts, diagnostics)

	s, ok := schemas.GenerateSchema(args[1], root, packageName)
	if !ok {
		err := errors.Newf(errors.ConfigurationErrorCode, "no declaration of '%s' found in %s", args[1], root).
			WithContext("class", args[1])
		if packageName != "" {
			err = err.WithContext("package", packageName).
				WithSuggestion("Check the package name or omit --package to search every package")
		}
		return err
	}
	return generator.RenderSchema(cmd.OutOrStdout(), s, format)
}

// writeOutput renders to stdout or to the configured file, creating its
// directory as needed
func writeOutput(cmd *cobra.Command, output string, render func(io.Writer) error) error {
	if output == "" || output == "-" {
		return render(cmd.OutOrStdout())
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return errors.WrapRenderError(output, err)
	}
	file, err := os.Create(output)
	if err != nil {
		return errors.WrapRenderError(output, err)
	}
	if err := render(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.WrapRenderError(output, err)
	}
	return nil
}
