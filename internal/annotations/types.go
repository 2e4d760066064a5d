package annotations

import (
	"fmt"
	"strings"
)

// AnnotationKind groups annotations by the role they play in extraction
type AnnotationKind int

const (
	UnknownKind AnnotationKind = iota
	StereotypeKind
	MappingKind
	BindingKind
	ValidationKind
)

// String returns the string representation of the annotation kind
func (k AnnotationKind) String() string {
	switch k {
	case StereotypeKind:
		return "stereotype"
	case MappingKind:
		return "mapping"
	case BindingKind:
		return "binding"
	case ValidationKind:
		return "validation"
	default:
		return "unknown"
	}
}

// SourceLocation represents the position of an annotation in source text
type SourceLocation struct {
	Offset int // byte offset of '@'
	Line   int // 1-based line
}

// Annotation is one '@Name(...)' occurrence
type Annotation struct {
	Name      string         // simple name, package qualifier dropped
	Qualified string         // name as written
	Args      string         // text between the parentheses, empty when absent
	HasArgs   bool           // parentheses were present
	Location  SourceLocation // where the '@' sits
	End       int            // byte offset just past the annotation
}

// Raw returns the annotation as it would be written in source
func (a Annotation) Raw() string {
	if !a.HasArgs {
		return "@" + a.Qualified
	}
	return fmt.Sprintf("@%s(%s)", a.Qualified, a.Args)
}

// Arguments parses the annotation's argument list
func (a Annotation) Arguments() Arguments {
	if !a.HasArgs {
		return Arguments{Named: map[string]Value{}}
	}
	return ParseArguments(a.Args)
}

// Value is one annotation element value
type Value struct {
	Raw      string   // source text, whitespace-normalized
	Elements []string // one entry for scalars, one per member for arrays; literals unquoted
	Quoted   bool     // every element is a string literal
}

// First returns the first element, or the raw text for empty arrays
func (v Value) First() string {
	if len(v.Elements) > 0 {
		return v.Elements[0]
	}
	return v.Raw
}

// Arguments is a parsed annotation argument list
type Arguments struct {
	Positional []Value
	Named      map[string]Value
}

// Get returns the first named element present among keys
func (a Arguments) Get(keys ...string) (Value, bool) {
	for _, key := range keys {
		if v, ok := a.Named[key]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// String returns the first string literal bound to one of keys, falling back
// to the first positional string literal.
func (a Arguments) String(keys ...string) (string, bool) {
	if v, ok := a.Get(keys...); ok && v.Quoted {
		return v.First(), true
	}
	if len(a.Positional) > 0 && a.Positional[0].Quoted {
		return a.Positional[0].First(), true
	}
	return "", false
}

// Path returns the mapping path: value= or path= first, then the first
// positional string literal, then empty.
func (a Arguments) Path() string {
	path, _ := a.String("value", "path")
	return path
}

// Bool returns the boolean literal bound to key
func (a Arguments) Bool(key string) (bool, bool) {
	v, ok := a.Named[key]
	if !ok {
		return false, false
	}
	switch strings.TrimSpace(v.First()) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// RequestMethod returns the HTTP verb named by method=, if any
func (a Arguments) RequestMethod() (string, bool) {
	v, ok := a.Named["method"]
	if !ok || len(v.Elements) == 0 {
		return "", false
	}
	return HTTPMethodFromConstant(v.Elements[0])
}

// HTTPMethodFromConstant maps 'RequestMethod.POST' (or 'POST') to "POST"
func HTTPMethodFromConstant(constant string) (string, bool) {
	name := SimpleName(strings.TrimSpace(constant))
	switch name {
	case "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE":
		return name, true
	}
	return "", false
}
