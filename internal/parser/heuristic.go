package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/toyz/contractscan/internal/annotations"
	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/models"
)

var (
	classDeclPattern   = regexp.MustCompile(`(?m)^\s*(?:(?:public|protected|private|abstract|final|static|sealed|non-sealed|strictfp)\s+)*class\s+([\p{L}_$][\p{L}\p{N}_$]*)`)
	classTokenPattern  = regexp.MustCompile(`\bclass\s+[\p{L}_$]`)
	packagePattern     = regexp.MustCompile(`(?m)^\s*package\s+([\p{L}\p{N}_$.]+)\s*;`)
	importPattern      = regexp.MustCompile(`(?m)^\s*import\s+(static\s+)?([\p{L}\p{N}_$.]+(?:\.\*)?)\s*;`)
	visibilityPattern  = regexp.MustCompile(`^(?:public|protected|private)\s`)
	declarationPattern = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{N}_$.<>,?\[\] ]*\s+([\p{L}_$][\p{L}\p{N}_$]*)\s*\(`)
)

// statement keywords that can look like 'Type name(' at the start of a line
var statementKeywords = map[string]bool{
	"return": true, "new": true, "throw": true, "if": true, "else": true,
	"for": true, "while": true, "switch": true, "case": true, "do": true,
	"try": true, "catch": true, "assert": true, "yield": true,
}

// TryHeuristic extracts controller metadata with line and pattern matching.
// It tolerates input the grammar rejects, such as truncated files, and only
// fails when a method signature never closes.
func (p *ControllerParser) TryHeuristic(content, filePath string) (*models.ControllerInfo, error) {
	clean := annotations.BlankComments(content)
	found := annotations.FindAnnotations(clean)

	if !p.hasStereotype(found) {
		return nil, nil
	}

	classMatch := classDeclPattern.FindStringSubmatch(clean)
	if classMatch == nil {
		return nil, nil
	}

	lines := strings.Split(clean, "\n")
	info := &models.ControllerInfo{
		ClassName: classMatch[1],
		FilePath:  filePath,
		Imports:   heuristicImports(clean),
		Strategy:  models.StrategyHeuristic,
	}
	if m := packagePattern.FindStringSubmatch(clean); m != nil {
		info.PackageName = m[1]
	}

	byLine := make(map[int][]annotations.Annotation)
	for _, a := range found {
		byLine[a.Location.Line] = append(byLine[a.Location.Line], a)
	}

	basePathSet := false
	for i := range lines {
		lineAnnotations := byLine[i+1]
		if len(lineAnnotations) == 0 {
			continue
		}

		for _, schema := range annotations.MappingSchemas {
			for _, a := range lineAnnotations {
				if a.Name != schema.Name {
					continue
				}

				if schema.Name == annotations.RequestMappingSchema.Name && isClassLevel(lines, i) {
					if !basePathSet {
						info.BasePath = a.Arguments().Path()
						basePathSet = true
					}
					continue
				}

				method, err := p.heuristicMethod(clean, lines, a, schema)
				if err != nil {
					return nil, err
				}
				info.Methods = append(info.Methods, method)
			}
		}
	}

	return info, nil
}

func (p *ControllerParser) hasStereotype(found []annotations.Annotation) bool {
	for _, a := range found {
		if p.registry.IsKind(a.Name, annotations.StereotypeKind) {
			return true
		}
	}
	return false
}

// isClassLevel reports whether a class declaration follows within the window
func isClassLevel(lines []string, index int) bool {
	end := index + ClassLevelWindow
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[index:end] {
		if classTokenPattern.MatchString(line) {
			return true
		}
	}
	return false
}

func heuristicImports(text string) []string {
	var imports []string
	for _, m := range importPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			continue
		}
		imports = append(imports, m[2])
	}
	return imports
}

func (p *ControllerParser) heuristicMethod(text string, lines []string, a annotations.Annotation, schema annotations.AnnotationSchema) (models.ControllerMethodInfo, error) {
	args := a.Arguments()
	method := models.ControllerMethodInfo{
		HTTPMethod: schema.HTTPMethod,
		ReturnType: models.VoidType,
		LineNumber: a.Location.Line + 1,
	}
	if schema.Name == annotations.RequestMappingSchema.Name {
		if verb, ok := args.RequestMethod(); ok {
			method.HTTPMethod = verb
		}
	}
	if a.HasArgs {
		method.Path = args.Path()
	}

	signature, line, err := captureSignature(text, lines, a)
	if err != nil {
		return method, err
	}
	if signature == "" {
		return method, nil
	}

	method.LineNumber = line
	method.Name = methodName(signature)
	method.ReturnType = returnType(signature)
	method.Parameters = ExtractParameters(signature)
	return method, nil
}

// captureSignature finds the declaration following annotation a and collects
// lines until its parameter list closes. The returned line is 1-based.
func captureSignature(text string, lines []string, a annotations.Annotation) (string, int, error) {
	// search starts right after the annotation, which may span several lines
	startLine := annotations.LineAt(text, a.End) - 1
	first := text[a.End:]
	if idx := strings.IndexByte(first, '\n'); idx >= 0 {
		first = first[:idx]
	}
	candidate := func(i int) string {
		if i == startLine {
			return first
		}
		return lines[i]
	}

	limit := a.Location.Line - 1 + SignatureWindow
	if limit > len(lines) {
		limit = len(lines)
	}

	found, fallback := -1, -1
	for i := startLine; i < limit; i++ {
		_, rest := splitLeadingAnnotations(candidate(i))
		if !strings.Contains(rest, "(") {
			continue
		}
		if visibilityPattern.MatchString(rest) {
			found = i
			break
		}
		if fallback < 0 && looksLikeDeclaration(rest) {
			fallback = i
		}
	}
	if found < 0 {
		found = fallback
	}
	if found < 0 {
		return "", 0, nil
	}

	_, signature := splitLeadingAnnotations(candidate(found))
	depth := parenDepth(signature)
	for i := found + 1; depth > 0 && i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		signature += " " + trimmed
		depth += parenDepth(trimmed)
	}
	if depth > 0 {
		return "", 0, errors.Newf(errors.FileExtractionErrorCode,
			"unterminated parameter list for method %s at line %d", methodName(signature), found+1).
			WithLocation(errors.SourceLocation{Line: found + 1})
	}
	return signature, found + 1, nil
}

func looksLikeDeclaration(line string) bool {
	m := declarationPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	first := strings.Fields(line)[0]
	if idx := strings.IndexAny(first, "<(["); idx >= 0 {
		first = first[:idx]
	}
	return !statementKeywords[first] && !statementKeywords[m[1]]
}

// parenDepth counts '(' minus ')' outside literals
func parenDepth(s string) int {
	depth := 0
	inString := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString != 0:
			if c == '\\' {
				i++
			} else if c == inString {
				inString = 0
			}
		case c == '"' || c == '\'':
			inString = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		}
	}
	return depth
}

// methodName returns the identifier before the parameter list
func methodName(signature string) string {
	skip := annotationSpans(signature)
	for _, loc := range methodNamePattern.FindAllStringSubmatchIndex(signature, -1) {
		if inSpans(loc[2], skip) || (loc[2] > 0 && signature[loc[2]-1] == '@') {
			continue
		}
		return signature[loc[2]:loc[3]]
	}
	return ""
}

// returnType reads the type that follows the modifiers. Constructors and
// unparseable declarations yield void.
func returnType(signature string) string {
	rest := signature
	for {
		rest = strings.TrimSpace(rest)
		switch {
		case strings.HasPrefix(rest, "@"):
			_, rest = splitLeadingAnnotations(rest)
			continue
		case strings.HasPrefix(rest, "<"):
			// type parameters of a generic method
			end := annotations.MatchingParen(rest, 0)
			if end < 0 {
				return models.VoidType
			}
			rest = rest[end+1:]
			continue
		}

		// modifiers are matched on the bare word so "public <T>" is not
		// read as one type token
		if word := leadingWord(rest); isModifier(word) {
			rest = rest[len(word):]
			continue
		}

		word, remainder := annotations.ReadTypeToken(rest)
		if word == "" || strings.HasPrefix(strings.TrimSpace(remainder), "(") {
			return models.VoidType
		}
		return word
	}
}

// leadingWord returns the identifier at the start of s
func leadingWord(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$'
	})
	if end < 0 {
		return s
	}
	return s[:end]
}

func isModifier(word string) bool {
	for _, v := range visibilityModifiers {
		if word == v {
			return true
		}
	}
	return declarationModifiers[word]
}
