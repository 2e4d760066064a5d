package models

// ExtractedContract is one HTTP endpoint found in source
type ExtractedContract struct {
	Name                 string      `json:"name" yaml:"name"`
	HTTPMethod           string      `json:"httpMethod" yaml:"httpMethod"`
	Path                 string      `json:"path" yaml:"path"`
	Parameters           *Parameters `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestSchema        *Schema     `json:"requestSchema,omitempty" yaml:"requestSchema,omitempty"`
	ResponseSchema       *Schema     `json:"responseSchema,omitempty" yaml:"responseSchema,omitempty"`
	SourceFile           string      `json:"sourceFile" yaml:"sourceFile"`
	SourceLine           int         `json:"sourceLine,omitempty" yaml:"sourceLine,omitempty"`
	SourceType           SourceType  `json:"sourceType" yaml:"sourceType"`
	ExtractionConfidence float64     `json:"extractionConfidence,omitempty" yaml:"extractionConfidence,omitempty"`
}

// Parameters groups bound parameters by binding source
type Parameters struct {
	Path   map[string]ParameterInfo `json:"path,omitempty" yaml:"path,omitempty"`
	Query  map[string]ParameterInfo `json:"query,omitempty" yaml:"query,omitempty"`
	Header map[string]ParameterInfo `json:"header,omitempty" yaml:"header,omitempty"`
	Cookie map[string]ParameterInfo `json:"cookie,omitempty" yaml:"cookie,omitempty"`
	Body   *ParameterInfo           `json:"body,omitempty" yaml:"body,omitempty"`
}

// IsEmpty reports whether no bucket was populated
func (p *Parameters) IsEmpty() bool {
	return p == nil ||
		(len(p.Path) == 0 && len(p.Query) == 0 && len(p.Header) == 0 && len(p.Cookie) == 0 && p.Body == nil)
}

// ParameterInfo is one bound parameter or body
type ParameterInfo struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	Required     bool   `json:"required" yaml:"required"`
	DefaultValue string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// Schema is a normalized JSON-Schema-like description of a payload type
type Schema struct {
	Type       string             `json:"type" yaml:"type"`
	Format     string             `json:"format,omitempty" yaml:"format,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`
}
