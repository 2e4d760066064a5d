package parser

import (
	"strings"

	"github.com/toyz/contractscan/internal/annotations"
	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/models"
)

// TryStructural parses content with the Java declaration grammar and reads
// controller metadata from the tree. Any grammar error is returned so the
// caller can fall back to TryHeuristic.
func (p *ControllerParser) TryStructural(content, filePath string) (*models.ControllerInfo, error) {
	unit, err := p.grammar.ParseString(filePath, content)
	if err != nil {
		return nil, errors.WrapStructuralParseError(filePath, err)
	}

	// offsets stay valid, comments inside parameter slices disappear
	clean := annotations.BlankComments(content)

	for _, decl := range unit.Types {
		if decl.Spec == nil || decl.Spec.Class == nil || decl.Spec.Class.Kind != "class" {
			continue
		}
		classAnnotations := p.resolve(clean, decl.Annotations)
		if !p.hasStereotype(classAnnotations) {
			continue
		}

		info := &models.ControllerInfo{
			ClassName: decl.Spec.Class.Name,
			FilePath:  filePath,
			Imports:   structuralImports(unit),
			Strategy:  models.StrategyStructural,
		}
		if unit.Package != nil {
			info.PackageName = strings.Join(unit.Package.Name, ".")
		}
		for _, a := range classAnnotations {
			if a.Name == annotations.RequestMappingSchema.Name {
				info.BasePath = a.Arguments().Path()
				break
			}
		}

		info.Methods = p.collectMethods(clean, decl.Spec.Class.Body)
		return info, nil
	}

	return nil, nil
}

// resolve re-reads grammar annotation nodes with the lexical annotation reader
// so both strategies see identical names and arguments
func (p *ControllerParser) resolve(content string, uses []*annotationUse) []annotations.Annotation {
	resolved := make([]annotations.Annotation, 0, len(uses))
	for _, use := range uses {
		if a, ok := annotations.ParseAnnotationAt(content, use.Pos.Offset); ok {
			resolved = append(resolved, a)
		}
	}
	return resolved
}

func structuralImports(unit *compilationUnit) []string {
	var imports []string
	for _, imp := range unit.Imports {
		if imp.Static {
			continue
		}
		path := strings.Join(imp.Path, ".")
		if imp.Wildcard {
			path += ".*"
		}
		imports = append(imports, path)
	}
	return imports
}

// collectMethods walks a class body in source order, nested classes included
func (p *ControllerParser) collectMethods(content string, body *classBody) []models.ControllerMethodInfo {
	if body == nil {
		return nil
	}

	var methods []models.ControllerMethodInfo
	for _, m := range body.Members {
		decl := m.Decl
		if decl == nil {
			continue
		}
		if decl.Type != nil && decl.Type.Class != nil {
			methods = append(methods, p.collectMethods(content, decl.Type.Class.Body)...)
			continue
		}
		if decl.Method == nil || decl.Method.Method == nil {
			continue
		}

		uses := decl.Annotations
		if decl.Method.Type != nil {
			uses = append(append([]*annotationUse{}, uses...), decl.Method.Type.Annotations...)
		}
		for _, a := range p.resolve(content, uses) {
			schema, ok := p.registry.Lookup(a.Name)
			if !ok || schema.Kind != annotations.MappingKind {
				continue
			}
			methods = append(methods, p.structuralMethod(content, decl.Method, a, schema))
		}
	}
	return methods
}

func (p *ControllerParser) structuralMethod(content string, decl *methodOrField, a annotations.Annotation, schema annotations.AnnotationSchema) models.ControllerMethodInfo {
	args := a.Arguments()
	method := models.ControllerMethodInfo{
		Name:       decl.Name,
		HTTPMethod: schema.HTTPMethod,
		ReturnType: models.VoidType,
	}
	if schema.Name == annotations.RequestMappingSchema.Name {
		if verb, ok := args.RequestMethod(); ok {
			method.HTTPMethod = verb
		}
	}
	if a.HasArgs {
		method.Path = args.Path()
	}

	typeText := strings.TrimRight(slice(content, decl.Type.Pos.Offset, decl.Type.EndPos.Offset), " \t\r\n")
	_, rest := splitLeadingAnnotations(typeText)
	if typ, _ := annotations.ReadTypeToken(rest); typ != "" {
		method.ReturnType = typ
	}
	method.LineNumber = annotations.LineAt(content, decl.Type.Pos.Offset+len(typeText)-len(rest))

	for _, fp := range decl.Method.Params.Params {
		segment := annotations.NormalizeWhitespace(slice(content, fp.Pos.Offset, fp.EndPos.Offset))
		if param, ok := bindSegment(strings.TrimSpace(segment)); ok {
			method.Parameters = append(method.Parameters, param)
		}
	}
	return method
}

func slice(content string, start, end int) string {
	if start < 0 || end > len(content) || start >= end {
		return ""
	}
	return content[start:end]
}
