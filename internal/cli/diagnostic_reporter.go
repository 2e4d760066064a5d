package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting and run summaries
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to out
func NewDiagnosticReporter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     out,
	}
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err with its code, location, context and suggestions
// when it carries them
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.out, "\nERROR: Contract Extraction Failed\n")
	fmt.Fprintf(r.out, "=================================\n\n")

	var multi *errors.MultipleErrors
	var extractionErr errors.ExtractionError
	switch {
	case errors.As(err, &multi):
		fmt.Fprintf(r.out, "Problems found: %d\n\n", multi.Count())
		for _, e := range multi.Errors {
			r.reportExtractionError(e)
		}
	case errors.As(err, &extractionErr):
		r.reportExtractionError(extractionErr)
	default:
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	}
}

func (r *DiagnosticReporter) reportExtractionError(err errors.ExtractionError) {
	title := errorTitle(err.ErrorCode())
	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))

	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc.String())
	}

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		fmt.Fprintf(r.out, "Suggestions:\n")
		for i, suggestion := range suggestions {
			fmt.Fprintf(r.out, "   %d. %s\n", i+1, suggestion)
		}
		fmt.Fprintf(r.out, "\n")
	}

	if r.verbose {
		r.printErrorChain(err)
	}
}

func errorTitle(code errors.ErrorCode) string {
	switch code {
	case errors.RepositoryErrorCode:
		return "Repository Error"
	case errors.ConfigurationErrorCode:
		return "Configuration Error"
	case errors.RenderErrorCode:
		return "Output Error"
	case errors.FileExtractionErrorCode:
		return "File Extraction Error"
	case errors.ContractAssemblyErrorCode:
		return "Contract Assembly Error"
	case errors.StructuralParseErrorCode:
		return "Structural Parse Error"
	case errors.DirectoryReadErrorCode:
		return "Directory Read Error"
	default:
		return "Unknown Error"
	}
}

// printContext prints context entries sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	var current error = err
	for ; current != nil; level++ {
		fmt.Fprintf(r.out, "    %d. %s\n", level, current.Error())
		unwrapper, ok := current.(interface{ Unwrap() error })
		if !ok {
			break
		}
		current = unwrapper.Unwrap()
	}
	fmt.Fprintf(r.out, "\n")
}

// ReportFailures lists every skipped file and method of a run
func (r *DiagnosticReporter) ReportFailures(report *models.ExtractionReport) {
	for _, f := range report.FileFailures {
		r.ReportWarning(fmt.Sprintf("skipped file %s: %s", failureLocation(f), f.Error))
	}
	for _, f := range report.MethodFailures {
		r.ReportWarning(fmt.Sprintf("skipped method %s at %s: %s", f.Method, failureLocation(f), f.Error))
	}
}

func failureLocation(f models.ExtractionFailure) string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}

// SummaryStats returns the figures printed after a run
func SummaryStats(report *models.ExtractionReport) map[string]interface{} {
	return map[string]interface{}{
		"Run":                  report.RunID,
		"Files scanned":        report.FilesScanned,
		"Controllers found":    report.ControllersFound,
		"Contracts extracted":  len(report.Contracts),
		"Structural fallbacks": report.StructuralFallbacks,
		"Files skipped":        len(report.FileFailures),
		"Methods skipped":      len(report.MethodFailures),
		"Duration":             report.Duration.Round(time.Millisecond).String(),
	}
}
