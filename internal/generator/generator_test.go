package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/models"
)

func sampleReport() *models.ExtractionReport {
	userSchema := &models.Schema{
		Type: "object",
		Properties: map[string]*models.Schema{
			"id":        {Type: "integer"},
			"name":      {Type: "string"},
			"createdAt": {Type: "string", Format: "date-time"},
		},
		Required: []string{"name"},
	}

	return &models.ExtractionReport{
		RunID:            "run-1",
		Repository:       "/repo",
		FilesScanned:     3,
		ControllersFound: 1,
		Contracts: []models.ExtractedContract{
			{
				Name:       "GETapiv1usersid",
				HTTPMethod: "GET",
				Path:       "/api/v1/users/{id}",
				Parameters: &models.Parameters{
					Path:  map[string]models.ParameterInfo{"id": {Name: "id", Type: "Long", Required: true}},
					Query: map[string]models.ParameterInfo{"verbose": {Name: "verbose", Type: "boolean", DefaultValue: "false"}},
				},
				ResponseSchema:       userSchema,
				SourceFile:           "src/UserController.java",
				SourceLine:           13,
				SourceType:           models.SourceTypeAnnotation,
				ExtractionConfidence: models.AnnotationConfidence,
			},
			{
				Name:       "POSTapiv1users",
				HTTPMethod: "POST",
				Path:       "/api/v1/users",
				Parameters: &models.Parameters{
					Header: map[string]models.ParameterInfo{"X-Trace": {Name: "X-Trace", Type: "String"}},
					Body:   &models.ParameterInfo{Name: "request", Type: "CreateUserDto", Required: true},
				},
				RequestSchema: &models.Schema{
					Type:       "object",
					Properties: map[string]*models.Schema{"name": {Type: "string"}},
					Required:   []string{"name"},
				},
				ResponseSchema:       userSchema,
				SourceFile:           "src/UserController.java",
				SourceLine:           18,
				SourceType:           models.SourceTypeAnnotation,
				ExtractionConfidence: models.AnnotationConfidence,
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{" JSON ", FormatJSON},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"openapi", FormatOpenAPI},
		{"OAS", FormatOpenAPI},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.Equal(t, errors.ConfigurationErrorCode, errors.CodeOf(err))
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatJSON, DocumentInfo{}))

	var decoded models.ExtractionReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport().Contracts, decoded.Contracts)
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Contains(t, buf.String(), `"httpMethod": "GET"`)
	assert.NotContains(t, buf.String(), "fileFailures")
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatYAML, DocumentInfo{}))

	var decoded models.ExtractionReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport().Contracts, decoded.Contracts)
	assert.True(t, strings.HasPrefix(buf.String(), "runId: run-1\n"))
}

func TestRender_Errors(t *testing.T) {
	var buf bytes.Buffer

	err := Render(&buf, sampleReport(), Format("xml"), DocumentInfo{})
	assert.Equal(t, errors.ConfigurationErrorCode, errors.CodeOf(err))

	err = Render(&buf, nil, FormatJSON, DocumentInfo{})
	assert.Equal(t, errors.RenderErrorCode, errors.CodeOf(err))
	assert.Zero(t, buf.Len())
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(sampleReport(), DocumentInfo{Title: "Users", Version: "1.2.0"})

	assert.Equal(t, OpenAPIVersion, doc.OpenAPI)
	assert.Equal(t, "Users", doc.Info.Title)
	assert.Equal(t, 2, doc.Paths.Len())

	get := doc.Paths.Value("/api/v1/users/{id}").Get
	require.NotNil(t, get)
	assert.Equal(t, "GETapiv1usersid", get.OperationID)
	assert.Equal(t, 13, get.Extensions["x-source-line"])
	require.Len(t, get.Parameters, 2)

	id := get.Parameters[0].Value
	assert.Equal(t, openapi3.ParameterInPath, id.In)
	assert.True(t, id.Required)
	assert.True(t, id.Schema.Value.Type.Is(openapi3.TypeInteger))

	verbose := get.Parameters[1].Value
	assert.Equal(t, openapi3.ParameterInQuery, verbose.In)
	assert.False(t, verbose.Required)
	assert.Equal(t, false, verbose.Schema.Value.Default)

	ok := get.Responses.Status(200)
	require.NotNil(t, ok)
	response := ok.Value.Content.Get("application/json").Schema.Value
	assert.Equal(t, []string{"name"}, response.Required)
	assert.Equal(t, "date-time", response.Properties["createdAt"].Value.Format)

	post := doc.Paths.Value("/api/v1/users").Post
	require.NotNil(t, post)
	require.NotNil(t, post.RequestBody)
	assert.True(t, post.RequestBody.Value.Required)
	body := post.RequestBody.Value.Content.Get("application/json").Schema.Value
	assert.Contains(t, body.Properties, "name")
	require.Len(t, post.Parameters, 1)
	assert.Equal(t, openapi3.ParameterInHeader, post.Parameters[0].Value.In)
}

func TestBuildDocument_DuplicateOperationKeepsFirst(t *testing.T) {
	report := sampleReport()
	duplicate := report.Contracts[0]
	duplicate.SourceFile = "src/Other.java"
	report.Contracts = append(report.Contracts, duplicate)

	doc := BuildDocument(report, DefaultDocumentInfo)
	assert.Equal(t, "src/UserController.java", doc.Paths.Value("/api/v1/users/{id}").Get.Extensions["x-source-file"])
}

func TestRender_OpenAPIIsValid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatOpenAPI, DocumentInfo{Title: "Users"}))

	loaded, err := openapi3.NewLoader().LoadFromData(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Users", loaded.Info.Title)
	assert.Equal(t, DefaultDocumentInfo.Version, loaded.Info.Version)
	assert.NoError(t, loaded.Validate(context.Background()))
}

func TestDefaultValue(t *testing.T) {
	tests := []struct {
		raw, schemaType string
		want            interface{}
		ok              bool
	}{
		{"10", "integer", int64(10), true},
		{"1.5", "number", 1.5, true},
		{"true", "boolean", true, true},
		{"asc", "string", "asc", true},
		{"lots", "integer", nil, false},
		{"", "string", nil, false},
		{"x", "object", nil, false},
	}
	for _, tt := range tests {
		got, ok := defaultValue(tt.raw, tt.schemaType)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestRenderSchema(t *testing.T) {
	s := sampleReport().Contracts[0].ResponseSchema

	var buf bytes.Buffer
	require.NoError(t, RenderSchema(&buf, s, FormatJSON))
	var decoded models.Schema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *s, decoded)

	buf.Reset()
	require.NoError(t, RenderSchema(&buf, s, FormatYAML))
	assert.Contains(t, buf.String(), "type: object\n")

	buf.Reset()
	require.NoError(t, RenderSchema(&buf, s, FormatOpenAPI))
	var oas openapi3.Schema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &oas))
	assert.True(t, oas.Type.Is(openapi3.TypeObject))
	assert.Equal(t, "date-time", oas.Properties["createdAt"].Value.Format)

	assert.Equal(t, errors.RenderErrorCode, errors.CodeOf(RenderSchema(&buf, nil, FormatJSON)))
}
