package extractor

import (
	"strings"

	"github.com/toyz/contractscan/internal/annotations"
	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/models"
	"github.com/toyz/contractscan/internal/parser"
	"github.com/toyz/contractscan/internal/schema"
	"github.com/toyz/contractscan/internal/utils"
)

// buildContracts assembles one contract per method. A failing method is
// logged and skipped without affecting its siblings.
func (e *Extractor) buildContracts(root, rel string, info *models.ControllerInfo) ([]models.ExtractedContract, []models.ExtractionFailure) {
	var contracts []models.ExtractedContract
	var failures []models.ExtractionFailure

	for _, method := range info.Methods {
		contract, err := e.safeBuildContract(root, rel, info, method)
		if err != nil {
			e.diagnostics.WarnWith(utils.Fields{
				"file":   rel,
				"line":   method.LineNumber,
				"method": method.Name,
				"error":  err.Error(),
			}, "Failed to extract contract from method: %s", method.Name)

			failures = append(failures, models.ExtractionFailure{
				File:   rel,
				Line:   method.LineNumber,
				Method: method.Name,
				Error:  err.Error(),
			})
			continue
		}
		contracts = append(contracts, contract)
	}
	return contracts, failures
}

func (e *Extractor) safeBuildContract(root, rel string, info *models.ControllerInfo, method models.ControllerMethodInfo) (contract models.ExtractedContract, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WrapContractAssemblyError(rel, method.LineNumber, method.Name,
				errors.FromPanic(errors.ContractAssemblyErrorCode, r))
		}
	}()
	return e.buildContract(root, rel, info, method)
}

func (e *Extractor) buildContract(root, rel string, info *models.ControllerInfo, method models.ControllerMethodInfo) (models.ExtractedContract, error) {
	if method.Name == "" {
		return models.ExtractedContract{}, errors.WrapContractAssemblyError(rel, method.LineNumber, method.Name,
			errors.Newf(errors.ContractAssemblyErrorCode, "no method declaration within %d lines of the mapping annotation", parser.SignatureWindow))
	}

	fullPath := JoinPaths(info.BasePath, method.Path)
	params, bodies := dispatch(method.Parameters)
	if bodies > 1 {
		e.diagnostics.WarnWith(utils.Fields{
			"file":   rel,
			"line":   method.LineNumber,
			"method": method.Name,
		}, "%d request bodies declared, keeping the last one", bodies)
	}

	contract := models.ExtractedContract{
		Name:                 ContractName(method.HTTPMethod, fullPath),
		HTTPMethod:           method.HTTPMethod,
		Path:                 fullPath,
		SourceFile:           rel,
		SourceLine:           method.LineNumber,
		SourceType:           models.SourceTypeAnnotation,
		ExtractionConfidence: models.AnnotationConfidence,
	}
	if !params.IsEmpty() {
		contract.Parameters = params
	}

	if params.Body != nil {
		contract.RequestSchema = e.resolveSchema(root, annotations.StripGenerics(params.Body.Type), info)
	}
	if method.ReturnType != "" && method.ReturnType != models.VoidType {
		contract.ResponseSchema = e.resolveSchema(root, e.payloadType(method.ReturnType), info)
	}
	return contract, nil
}

// dispatch sorts bound parameters into buckets and counts body parameters.
// Later parameters overwrite earlier ones with the same key.
func dispatch(params []models.MethodParameterInfo) (*models.Parameters, int) {
	out := &models.Parameters{}
	bodies := 0

	put := func(bucket *map[string]models.ParameterInfo, p models.MethodParameterInfo, required bool) {
		if *bucket == nil {
			*bucket = make(map[string]models.ParameterInfo)
		}
		(*bucket)[p.Key()] = models.ParameterInfo{
			Name:         p.Key(),
			Type:         p.Type,
			Required:     required,
			DefaultValue: p.DefaultValue,
		}
	}

	for _, p := range params {
		switch p.Annotation {
		case models.BindingPathVariable:
			put(&out.Path, p, true)
		case models.BindingRequestParam:
			put(&out.Query, p, p.Required)
		case models.BindingRequestHeader:
			put(&out.Header, p, p.Required)
		case models.BindingCookieValue:
			put(&out.Cookie, p, p.Required)
		case models.BindingRequestBody:
			bodies++
			out.Body = &models.ParameterInfo{
				Name:     p.Name,
				Type:     p.Type,
				Required: true,
			}
		}
	}
	return out, bodies
}

// payloadType removes one response wrapper and the generic arguments
func (e *Extractor) payloadType(returnType string) string {
	return annotations.StripGenerics(annotations.UnwrapGeneric(returnType, e.options.ResponseWrappers))
}

// resolveSchema looks typeName up in the packages it could come from:
// an explicit import, the controller's own package, then wildcard imports.
// Non-object types have no schema.
func (e *Extractor) resolveSchema(root, typeName string, info *models.ControllerInfo) *models.Schema {
	if e.schemas == nil || typeName == "" || schema.NormalizeType(typeName) != schema.TypeObject {
		return nil
	}
	for _, pkg := range candidatePackages(typeName, info) {
		if s, ok := e.schemas.GenerateSchema(typeName, root, pkg); ok {
			return s
		}
	}
	return nil
}

func candidatePackages(typeName string, info *models.ControllerInfo) []string {
	if annotations.Qualifier(typeName) != "" {
		return []string{""}
	}

	var explicit, wildcard []string
	for _, imp := range info.Imports {
		if pkg, ok := strings.CutSuffix(imp, ".*"); ok {
			wildcard = append(wildcard, pkg)
			continue
		}
		if annotations.SimpleName(imp) == typeName {
			explicit = append(explicit, annotations.Qualifier(imp))
		}
	}

	seen := make(map[string]bool)
	var candidates []string
	for _, group := range [][]string{explicit, {info.PackageName}, wildcard} {
		for _, pkg := range group {
			if seen[pkg] {
				continue
			}
			seen[pkg] = true
			candidates = append(candidates, pkg)
		}
	}
	return candidates
}
