package generator

import (
	"io"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/toyz/contractscan/internal/models"
	"github.com/toyz/contractscan/internal/schema"
)

// OpenAPIVersion is the version string written into generated documents
const OpenAPIVersion = "3.0.3"

type openAPIRenderer struct{}

func (openAPIRenderer) Format() Format { return FormatOpenAPI }

func (openAPIRenderer) Render(w io.Writer, report *models.ExtractionReport, info DocumentInfo) error {
	return encodeJSON(w, FormatOpenAPI, BuildDocument(report, info))
}

// BuildDocument converts extracted contracts into an OpenAPI 3 document.
// When two contracts share a method and path the first one is kept.
func BuildDocument(report *models.ExtractionReport, info DocumentInfo) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:   info.Title,
			Version: info.Version,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, contract := range report.Contracts {
		item := doc.Paths.Value(contract.Path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(contract.Path, item)
		}
		if item.GetOperation(contract.HTTPMethod) != nil {
			continue
		}
		item.SetOperation(contract.HTTPMethod, buildOperation(contract))
	}
	return doc
}

func buildOperation(contract models.ExtractedContract) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = contract.Name
	op.Extensions = map[string]interface{}{
		"x-source-file":           contract.SourceFile,
		"x-source-type":           string(contract.SourceType),
		"x-extraction-confidence": contract.ExtractionConfidence,
	}
	if contract.SourceLine > 0 {
		op.Extensions["x-source-line"] = contract.SourceLine
	}

	if params := contract.Parameters; params != nil {
		addParameters(op, params.Path, openapi3.NewPathParameter)
		addParameters(op, params.Query, openapi3.NewQueryParameter)
		addParameters(op, params.Header, openapi3.NewHeaderParameter)
		addParameters(op, params.Cookie, openapi3.NewCookieParameter)

		if body := params.Body; body != nil {
			bodySchema := typeSchema(body.Type)
			if contract.RequestSchema != nil {
				bodySchema = convertSchema(contract.RequestSchema)
			}
			op.RequestBody = &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().
					WithRequired(body.Required).
					WithJSONSchema(bodySchema),
			}
		}
	}

	response := openapi3.NewResponse().WithDescription("OK")
	if contract.ResponseSchema != nil {
		response = response.WithJSONSchema(convertSchema(contract.ResponseSchema))
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{Value: response}),
	)
	return op
}

// addParameters appends one bucket in name order
func addParameters(op *openapi3.Operation, bucket map[string]models.ParameterInfo, newParameter func(string) *openapi3.Parameter) {
	names := make([]string, 0, len(bucket))
	for name := range bucket {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := bucket[name]
		param := newParameter(name)
		if param.In != openapi3.ParameterInPath {
			param.Required = info.Required
		}
		s := typeSchema(info.Type)
		if v, ok := defaultValue(info.DefaultValue, schema.NormalizeType(info.Type)); ok {
			s.Default = v
		}
		param.Schema = s.NewRef()
		op.AddParameter(param)
	}
}

// defaultValue converts a declared default to the parameter's schema type.
// Defaults that do not parse as that type are dropped.
func defaultValue(raw, schemaType string) (interface{}, bool) {
	if raw == "" {
		return nil, false
	}
	switch schemaType {
	case schema.TypeBoolean:
		v, err := strconv.ParseBool(raw)
		return v, err == nil
	case schema.TypeInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		return v, err == nil
	case schema.TypeNumber:
		v, err := strconv.ParseFloat(raw, 64)
		return v, err == nil
	case schema.TypeString:
		return raw, true
	}
	return nil, false
}

// typeSchema describes a declared Java type without looking up its fields
func typeSchema(javaType string) *openapi3.Schema {
	return &openapi3.Schema{
		Type:   &openapi3.Types{schema.NormalizeType(javaType)},
		Format: schema.TypeFormat(javaType),
	}
}

func convertSchema(s *models.Schema) *openapi3.Schema {
	out := &openapi3.Schema{
		Type:     &openapi3.Types{s.Type},
		Format:   s.Format,
		Required: s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(openapi3.Schemas, len(s.Properties))
		for name, property := range s.Properties {
			out.Properties[name] = convertSchema(property).NewRef()
		}
	}
	return out
}
