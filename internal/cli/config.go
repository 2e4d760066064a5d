package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/extractor"
	"github.com/toyz/contractscan/internal/generator"
	"github.com/toyz/contractscan/internal/schema"
	"github.com/toyz/contractscan/internal/utils"
)

// EnvPrefix prefixes every environment variable read by LoadConfig
const EnvPrefix = "CONTRACTSCAN_"

// DefaultEnvFile is read when present; a missing file is not an error
const DefaultEnvFile = ".env"

// Config holds the configuration for a contractscan run
type Config struct {
	// Repository is the root of the checked-out source tree
	Repository string

	// Format is the output format: json, yaml or openapi
	Format string

	// Output is the destination file; empty or "-" means stdout
	Output string

	// Workers is the number of files processed concurrently
	Workers int

	// ExcludeDirs are directory names skipped in addition to the defaults
	ExcludeDirs []string

	// ResponseWrappers are generic types unwrapped before response schema lookup
	ResponseWrappers []string

	// SchemaCacheSize bounds the located-DTO cache
	SchemaCacheSize int

	// Title and Version fill the OpenAPI info block
	Title   string
	Version string

	// Verbose, Quiet and Debug select the diagnostic level
	Verbose bool
	Quiet   bool
	Debug   bool

	// Strict fails the run when any file or method was skipped
	Strict bool
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		Format:           string(generator.FormatJSON),
		Workers:          1,
		ResponseWrappers: append([]string(nil), extractor.DefaultResponseWrappers...),
		SchemaCacheSize:  schema.DefaultCacheSize,
		Title:            generator.DefaultDocumentInfo.Title,
		Version:          generator.DefaultDocumentInfo.Version,
	}
}

// LookupFunc reads one environment variable
type LookupFunc func(key string) (string, bool)

// LoadConfig layers the env file and then the process environment over the
// defaults. The env file never overrides a variable that is already set.
// A nil lookup reads the process environment.
func LoadConfig(envFile string, lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	fileValues, err := godotenv.Read(envFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.ConfigurationError("env-file", err.Error()).WithCause(err)
		}
		fileValues = map[string]string{}
	}

	get := func(name string) (string, bool) {
		key := EnvPrefix + name
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.applyEnv(get); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(get LookupFunc) error {
	strs := map[string]*string{
		"REPOSITORY": &c.Repository,
		"FORMAT":     &c.Format,
		"OUTPUT":     &c.Output,
		"TITLE":      &c.Title,
		"VERSION":    &c.Version,
	}
	for name, target := range strs {
		if v, ok := get(name); ok {
			*target = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"WORKERS":           &c.Workers,
		"SCHEMA_CACHE_SIZE": &c.SchemaCacheSize,
	}
	for name, target := range ints {
		v, ok := get(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.ConfigurationError(EnvPrefix+name, "must be an integer").WithCause(err)
		}
		*target = n
	}

	bools := map[string]*bool{
		"VERBOSE": &c.Verbose,
		"QUIET":   &c.Quiet,
		"DEBUG":   &c.Debug,
		"STRICT":  &c.Strict,
	}
	for name, target := range bools {
		v, ok := get(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.ConfigurationError(EnvPrefix+name, "must be a boolean").WithCause(err)
		}
		*target = b
	}

	lists := map[string]*[]string{
		"EXCLUDE_DIRS":      &c.ExcludeDirs,
		"RESPONSE_WRAPPERS": &c.ResponseWrappers,
	}
	for name, target := range lists {
		if v, ok := get(name); ok {
			*target = splitList(v)
		}
	}
	return nil
}

// splitList splits a comma separated value, dropping blank entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first invalid setting as a configuration error
func (c *Config) Validate() error {
	if err := utils.NotEmpty("repository")(c.Repository); err != nil {
		return err
	}
	if _, err := generator.ParseFormat(c.Format); err != nil {
		return err
	}
	if err := utils.AtLeast("workers", 1)(c.Workers); err != nil {
		return err
	}
	if err := utils.AtLeast("schema-cache-size", 1)(c.SchemaCacheSize); err != nil {
		return err
	}
	if err := utils.NoneBlank("exclude")(c.ExcludeDirs); err != nil {
		return err
	}
	if err := utils.NoneBlank("response-wrapper")(c.ResponseWrappers); err != nil {
		return err
	}
	if c.Quiet && (c.Verbose || c.Debug) {
		return errors.ConfigurationError("quiet", "cannot be combined with verbose or debug")
	}
	return nil
}

// ExtractorOptions converts the configuration for the extractor
func (c *Config) ExtractorOptions() extractor.Options {
	return extractor.Options{
		Workers:          c.Workers,
		ExcludeDirs:      c.ExcludeDirs,
		ResponseWrappers: c.ResponseWrappers,
		SchemaCacheSize:  c.SchemaCacheSize,
	}
}

// DiagnosticLevel maps the verbosity switches to a level
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Debug:
		return utils.DiagnosticDebug
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}
