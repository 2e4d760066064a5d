package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/toyz/contractscan/internal/annotations"
	"github.com/toyz/contractscan/internal/models"
	"github.com/toyz/contractscan/internal/utils"
)

// DefaultCacheSize bounds the located-declaration cache
const DefaultCacheSize = 512

// AnnotationWindow is how many lines above a field declaration are searched
// for its annotations
const AnnotationWindow = 2

var (
	packagePattern = regexp.MustCompile(`(?m)^\s*package\s+([\p{L}\p{N}_$.]+)\s*;`)
	fieldPattern   = regexp.MustCompile(`(?m)(?:^|[;{}\s])(public|protected|private)\s`)
)

// field modifiers that may follow the visibility modifier
var fieldModifiers = map[string]bool{
	"final":     true,
	"transient": true,
	"volatile":  true,
}

// Generator locates DTO declarations in a repository and turns them into
// object schemas. Safe for concurrent use.
type Generator struct {
	processor   *utils.FileProcessor
	reader      *utils.FileReader
	registry    annotations.AnnotationRegistry
	scanOptions utils.ScanOptions
	located     *utils.FileCache[string, *models.DtoClassInfo]
	diagnostics *utils.DiagnosticSystem
}

// GeneratorOptions configures a Generator
type GeneratorOptions struct {
	CacheSize   int
	ScanOptions utils.ScanOptions
}

// NewGenerator creates a schema generator that discovers files with processor
func NewGenerator(processor *utils.FileProcessor, opts GeneratorOptions, diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewSilentDiagnostics()
	}
	if processor == nil {
		processor = utils.NewFileProcessor(diagnostics)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.ScanOptions.FileFilter == nil || opts.ScanOptions.DirectoryFilter == nil {
		opts.ScanOptions = utils.DefaultScanOptions()
	}

	return &Generator{
		processor:   processor,
		reader:      processor.GetFileReader(),
		registry:    annotations.DefaultRegistry(),
		scanOptions: opts.ScanOptions,
		located:     utils.MustFileCache[string, *models.DtoClassInfo](opts.CacheSize),
		diagnostics: diagnostics,
	}
}

// GenerateSchema returns the object schema of className. When packageName is
// set only files declaring exactly that package are considered; a qualified
// className brings its own package. Types that cannot be located yield false.
func (g *Generator) GenerateSchema(className, repositoryPath, packageName string) (*models.Schema, bool) {
	info, ok := g.Locate(className, repositoryPath, packageName)
	if !ok {
		return nil, false
	}
	return BuildSchema(info), true
}

// Locate finds the first declaration of className in scanner order
func (g *Generator) Locate(className, repositoryPath, packageName string) (*models.DtoClassInfo, bool) {
	className = annotations.StripGenerics(className)
	if qualifier := annotations.Qualifier(className); qualifier != "" {
		className = annotations.SimpleName(className)
		packageName = qualifier
	}
	if !annotations.IsIdentifier(className) {
		return nil, false
	}

	key := cacheKey(repositoryPath, packageName, className)
	if info, _, ok := g.located.Lookup(key); ok {
		return info, true
	}

	declaration := declarationPattern(className)
	for _, path := range g.processor.ScanSourceFiles(repositoryPath, g.scanOptions) {
		content, err := g.reader.ReadFile(path)
		if err != nil {
			g.diagnostics.DebugWith(utils.Fields{"file": path, "error": err.Error()}, "skipping unreadable file")
			continue
		}
		if !declaration.MatchString(content) {
			continue
		}

		info, ok := ExtractDtoInfo(content, path, className, g.registry)
		if !ok {
			continue
		}
		if packageName != "" && info.PackageName != packageName {
			continue
		}

		g.located.Set(key, info, path)
		return info, true
	}
	return nil, false
}

func cacheKey(repositoryPath, packageName, className string) string {
	return fmt.Sprintf("%s|%s|%s", repositoryPath, packageName, className)
}

func declarationPattern(className string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:class|record)\s+` + regexp.QuoteMeta(className) + `\b`)
}

// ExtractDtoInfo reads the fields of the class or record named className
// from content
func ExtractDtoInfo(content, filePath, className string, registry annotations.AnnotationRegistry) (*models.DtoClassInfo, bool) {
	clean := annotations.BlankComments(content)

	loc := declarationPattern(className).FindStringIndex(clean)
	if loc == nil {
		return nil, false
	}

	info := &models.DtoClassInfo{
		ClassName: className,
		FilePath:  filePath,
	}
	if m := packagePattern.FindStringSubmatch(clean); m != nil {
		info.PackageName = m[1]
	}

	i := loc[1]
	// skip type parameters
	for i < len(clean) && (clean[i] == ' ' || clean[i] == '\t' || clean[i] == '\n' || clean[i] == '\r') {
		i++
	}
	if i < len(clean) && clean[i] == '<' {
		if end := annotations.MatchingParen(clean, i); end >= 0 {
			i = end + 1
		}
	}

	isRecord := strings.HasPrefix(clean[loc[0]:], "record")
	if isRecord {
		open := strings.IndexByte(clean[i:], '(')
		if open < 0 {
			return nil, false
		}
		open += i
		end := annotations.MatchingParen(clean, open)
		if end < 0 {
			return nil, false
		}
		info.Fields = recordComponents(clean, open+1, end, registry)
		i = end + 1
	}

	open := strings.IndexByte(clean[i:], '{')
	if open < 0 {
		return info, isRecord
	}
	open += i
	end := annotations.MatchingParen(clean, open)
	if end < 0 {
		end = len(clean)
	}

	info.Fields = append(info.Fields, classFields(clean, open+1, end, registry)...)
	return info, true
}

// recordComponents reads the component list between start and end
func recordComponents(text string, start, end int, registry annotations.AnnotationRegistry) []models.DtoFieldInfo {
	var fields []models.DtoFieldInfo
	offset := start
	for _, raw := range splitKeepingOffsets(text[start:end]) {
		segment := strings.TrimSpace(raw.text)
		if segment == "" {
			continue
		}
		found := annotations.FindAnnotations(segment)
		rest := segment
		if len(found) > 0 {
			rest = segment[found[len(found)-1].End:]
		}
		typ, remainder := annotations.ReadTypeToken(rest)
		name, _ := annotations.ReadTypeToken(remainder)
		if typ == "" || !annotations.IsIdentifier(name) {
			continue
		}
		fields = append(fields, newField(name, typ, found, registry, annotations.LineAt(text, offset+raw.offset)))
	}
	return fields
}

type piece struct {
	text   string
	offset int
}

// splitKeepingOffsets splits at top-level commas, remembering where each
// piece starts
func splitKeepingOffsets(s string) []piece {
	var pieces []piece
	start := 0
	for _, part := range annotations.SplitTopLevel(s, ',') {
		idx := strings.Index(s[start:], part)
		if idx < 0 {
			idx = 0
		}
		pieces = append(pieces, piece{text: part, offset: start + idx})
		start += idx + len(part)
	}
	return pieces
}

// classFields reads instance field declarations directly inside a class body
func classFields(text string, start, end int, registry annotations.AnnotationRegistry) []models.DtoFieldInfo {
	body := blankNested(text[start:end])

	var fields []models.DtoFieldInfo
	for _, m := range fieldPattern.FindAllStringSubmatchIndex(body, -1) {
		visibility := m[2]
		rest := body[m[3]:]

		static := false
		for {
			if trimmed := strings.TrimSpace(rest); strings.HasPrefix(trimmed, "@") {
				a, ok := annotations.ParseAnnotationAt(trimmed, 0)
				if !ok {
					break
				}
				rest = trimmed[a.End:]
				continue
			}
			word, remainder := annotations.ReadTypeToken(rest)
			if word == "static" {
				static = true
			} else if !fieldModifiers[word] {
				break
			}
			rest = remainder
		}

		typ, remainder := annotations.ReadTypeToken(rest)
		name, after := annotations.ReadTypeToken(remainder)
		name = strings.TrimRight(name, "[]")
		after = strings.TrimSpace(after)
		if static || typ == "" || !annotations.IsIdentifier(name) || after == "" || !strings.ContainsRune(";=,", rune(after[0])) {
			continue
		}

		found := fieldAnnotations(body, visibility, len(body)-len(remainder))
		line := annotations.LineAt(text, start+visibility)
		fields = append(fields, newField(name, typ, found, registry, line))
	}
	return fields
}

// fieldAnnotations returns the annotations between the end of the previous
// member and the field name, looking back at most AnnotationWindow lines.
// Braces and line breaks inside annotation arguments belong to the annotation.
func fieldAnnotations(body string, declStart, nameStart int) []annotations.Annotation {
	windowStart := declStart
	for lines, depth := 0, 0; windowStart > 0; windowStart-- {
		c := body[windowStart-1]
		switch {
		case c == ')':
			depth++
		case c == '(' && depth > 0:
			depth--
		case depth > 0:
		case c == ';' || c == '}' || c == '{':
			return annotations.FindAnnotations(body[windowStart:nameStart])
		case c == '\n':
			if lines == AnnotationWindow {
				return annotations.FindAnnotations(body[windowStart:nameStart])
			}
			lines++
		}
	}
	return annotations.FindAnnotations(body[windowStart:nameStart])
}

func newField(name, typ string, found []annotations.Annotation, registry annotations.AnnotationRegistry, line int) models.DtoFieldInfo {
	field := models.DtoFieldInfo{
		Name:        name,
		Type:        typ,
		Annotations: annotations.Names(found),
		Line:        line,
	}
	for _, a := range found {
		if registry.IsKind(a.Name, annotations.ValidationKind) {
			field.Required = true
			break
		}
	}
	return field
}

// blankNested replaces everything inside nested braces with spaces, keeping
// newlines, so only top-level members remain visible
func blankNested(body string) string {
	out := []byte(body)
	depth := 0
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case c == '"' || c == '\'':
			end := skipQuoted(body, i)
			for j := i; j < end; j++ {
				if out[j] != '\n' {
					out[j] = ' '
				}
			}
			i = end - 1
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case depth > 0 && c != '\n':
			out[i] = ' '
		}
	}
	return string(out)
}

func skipQuoted(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(s)
}

// BuildSchema converts located DTO fields into an object schema
func BuildSchema(info *models.DtoClassInfo) *models.Schema {
	schema := &models.Schema{
		Type:       TypeObject,
		Properties: make(map[string]*models.Schema, len(info.Fields)),
	}
	for _, field := range info.Fields {
		schema.Properties[field.Name] = &models.Schema{
			Type:   NormalizeType(field.Type),
			Format: TypeFormat(field.Type),
		}
		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}
	return schema
}
