package parser

import (
	"regexp"
	"strings"

	"github.com/toyz/contractscan/internal/annotations"
	"github.com/toyz/contractscan/internal/models"
)

var methodNamePattern = regexp.MustCompile(`([\p{L}_$][\p{L}\p{N}_$]*)\s*\(`)

// ExtractParameters parses the parameter list of a method signature into
// bound parameters, in declaration order. Parameters without a binding
// annotation are dropped.
func ExtractParameters(signature string) []models.MethodParameterInfo {
	list, ok := parameterList(signature)
	if !ok {
		return nil
	}

	var params []models.MethodParameterInfo
	for _, segment := range annotations.SplitTopLevel(annotations.NormalizeWhitespace(list), ',') {
		if param, ok := bindSegment(segment); ok {
			params = append(params, param)
		}
	}
	return params
}

// parameterList returns the text between the method name's '(' and its
// matching ')'
func parameterList(signature string) (string, bool) {
	signature = annotations.BlankComments(signature)
	skip := annotationSpans(signature)

	for _, loc := range methodNamePattern.FindAllStringSubmatchIndex(signature, -1) {
		nameStart := loc[2]
		if inSpans(nameStart, skip) || (nameStart > 0 && signature[nameStart-1] == '@') {
			continue
		}
		open := loc[1] - 1
		end := annotations.MatchingParen(signature, open)
		if end < 0 {
			return "", false
		}
		return signature[open+1 : end], true
	}
	return "", false
}

type span struct{ start, end int }

func annotationSpans(text string) []span {
	found := annotations.FindAnnotations(text)
	spans := make([]span, 0, len(found))
	for _, a := range found {
		spans = append(spans, span{a.Location.Offset, a.End})
	}
	return spans
}

func inSpans(offset int, spans []span) bool {
	for _, s := range spans {
		if offset >= s.start && offset < s.end {
			return true
		}
	}
	return false
}

// splitLeadingAnnotations peels annotations and 'final' off the front of a
// declaration fragment
func splitLeadingAnnotations(text string) ([]annotations.Annotation, string) {
	var found []annotations.Annotation
	rest := strings.TrimSpace(text)
	for {
		switch {
		case strings.HasPrefix(rest, "@"):
			a, ok := annotations.ParseAnnotationAt(rest, 0)
			if !ok {
				return found, rest
			}
			found = append(found, a)
			rest = strings.TrimSpace(rest[a.End:])
		case strings.HasPrefix(rest, "final "):
			rest = strings.TrimSpace(strings.TrimPrefix(rest, "final "))
		default:
			return found, rest
		}
	}
}

// parseSegment splits one parameter declaration into annotations, type and name
func parseSegment(segment string) ([]annotations.Annotation, string, string, bool) {
	found, rest := splitLeadingAnnotations(segment)
	typ, remainder := annotations.ReadTypeToken(rest)
	if typ == "" {
		return nil, "", "", false
	}

	name, _ := annotations.ReadTypeToken(remainder)
	name = strings.TrimRight(name, "[]")
	if !annotations.IsIdentifier(name) {
		return nil, "", "", false
	}
	return found, typ, name, true
}

// bindSegment classifies one parameter declaration by its first binding annotation
func bindSegment(segment string) (models.MethodParameterInfo, bool) {
	found, typ, name, ok := parseSegment(segment)
	if !ok {
		return models.MethodParameterInfo{}, false
	}
	return bindParameter(found, typ, name)
}

func bindParameter(found []annotations.Annotation, typ, name string) (models.MethodParameterInfo, bool) {
	for _, a := range found {
		binding, ok := models.ParseBindingAnnotation(a.Name)
		if !ok {
			continue
		}

		args := a.Arguments()
		param := models.MethodParameterInfo{
			Name:       name,
			Type:       typ,
			Annotation: binding,
			Required:   true,
		}

		switch binding {
		case models.BindingRequestBody:
			// always required
		case models.BindingPathVariable:
			param.BindingName = explicitName(args)
		default:
			param.BindingName = explicitName(args)
			if required, ok := args.Bool(ParamRequired); ok && !required {
				param.Required = false
			}
			if v, ok := args.Named[ParamDefaultValue]; ok && v.Quoted {
				param.DefaultValue = v.First()
			}
		}
		return param, true
	}
	return models.MethodParameterInfo{}, false
}

// explicitName reads name= or value=, then a positional string literal
func explicitName(args annotations.Arguments) string {
	name, ok := args.String(ParamName, ParamValue)
	if !ok || strings.TrimSpace(name) == "" {
		return ""
	}
	return name
}
