package generator

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/models"
)

// Format names an output format
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatOpenAPI Format = "openapi"
)

// Formats lists the supported output formats
var Formats = []Format{FormatJSON, FormatYAML, FormatOpenAPI}

// ParseFormat maps a user-supplied name to a Format. Matching ignores case
// and surrounding whitespace; "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "openapi", "oas", "openapi3":
		return FormatOpenAPI, nil
	}
	return "", errors.ConfigurationError("format", "unsupported format "+name).
		WithSuggestion("Use one of: json, yaml, openapi")
}

// DocumentInfo carries metadata for formats that have a document header
type DocumentInfo struct {
	Title   string
	Version string
}

// DefaultDocumentInfo is used when no title or version is configured
var DefaultDocumentInfo = DocumentInfo{Title: "Extracted API", Version: "0.0.0"}

// NewRenderer returns the renderer for format
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatYAML:
		return yamlRenderer{}, nil
	case FormatOpenAPI:
		return openAPIRenderer{}, nil
	}
	return nil, errors.ConfigurationError("format", "unsupported format "+string(format))
}

// Render writes report to w in the given format
func Render(w io.Writer, report *models.ExtractionReport, format Format, info DocumentInfo) error {
	renderer, err := NewRenderer(format)
	if err != nil {
		return err
	}
	if report == nil {
		return errors.WrapRenderError(string(format), errors.New(errors.RenderErrorCode, "report cannot be nil"))
	}
	if info.Title == "" {
		info.Title = DefaultDocumentInfo.Title
	}
	if info.Version == "" {
		info.Version = DefaultDocumentInfo.Version
	}
	return renderer.Render(w, report, info)
}

type jsonRenderer struct{}

func (jsonRenderer) Format() Format { return FormatJSON }

func (jsonRenderer) Render(w io.Writer, report *models.ExtractionReport, _ DocumentInfo) error {
	return encodeJSON(w, FormatJSON, report)
}

type yamlRenderer struct{}

func (yamlRenderer) Format() Format { return FormatYAML }

func (yamlRenderer) Render(w io.Writer, report *models.ExtractionReport, _ DocumentInfo) error {
	return encodeYAML(w, FormatYAML, report)
}

// RenderSchema writes a single object schema. The openapi format writes it
// as an OpenAPI schema object.
func RenderSchema(w io.Writer, s *models.Schema, format Format) error {
	if s == nil {
		return errors.WrapRenderError(string(format), errors.New(errors.RenderErrorCode, "schema cannot be nil"))
	}
	switch format {
	case FormatJSON:
		return encodeJSON(w, format, s)
	case FormatYAML:
		return encodeYAML(w, format, s)
	case FormatOpenAPI:
		return encodeJSON(w, format, convertSchema(s))
	}
	return errors.ConfigurationError("format", "unsupported format "+string(format))
}

func encodeJSON(w io.Writer, format Format, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.WrapRenderError(string(format), err)
	}
	return nil
}

func encodeYAML(w io.Writer, format Format, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return errors.WrapRenderError(string(format), err)
	}
	if err := encoder.Close(); err != nil {
		return errors.WrapRenderError(string(format), err)
	}
	return nil
}
