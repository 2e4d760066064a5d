package annotations

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FindAnnotations returns every annotation in text, in source order. String
// literals and comments are skipped; '@interface' declarations are not
// annotations.
func FindAnnotations(text string) []Annotation {
	var found []Annotation
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '"' || c == '\'':
			i = skipLiteral(text, i) - 1
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			if nl := strings.IndexByte(text[i:], '\n'); nl >= 0 {
				i += nl
			} else {
				i = len(text)
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			if end := strings.Index(text[i+2:], "*/"); end >= 0 {
				i += 2 + end + 1
			} else {
				i = len(text)
			}
		case c == '@':
			if a, ok := readAnnotation(text, i); ok {
				found = append(found, a)
				i = a.End - 1
			}
		}
	}
	return found
}

// ParseAnnotationAt reads the annotation whose '@' is at offset
func ParseAnnotationAt(text string, offset int) (Annotation, bool) {
	if offset < 0 || offset >= len(text) || text[offset] != '@' {
		return Annotation{}, false
	}
	return readAnnotation(text, offset)
}

func readAnnotation(text string, at int) (Annotation, bool) {
	i := skipSpaces(text, at+1)
	start := i
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isIdentRune(r) && r != '.' {
			break
		}
		i += size
	}
	qualified := text[start:i]
	if qualified == "" || qualified == "interface" {
		return Annotation{}, false
	}
	if r, _ := utf8.DecodeRuneInString(qualified); unicode.IsDigit(r) {
		return Annotation{}, false
	}

	a := Annotation{
		Name:      SimpleName(strings.Trim(qualified, ".")),
		Qualified: qualified,
		Location:  SourceLocation{Offset: at, Line: LineAt(text, at)},
		End:       i,
	}

	j := skipSpaces(text, i)
	if j < len(text) && text[j] == '(' {
		if end := MatchingParen(text, j); end >= 0 {
			a.Args = strings.TrimSpace(text[j+1 : end])
			a.HasArgs = true
			a.End = end + 1
		}
	}
	return a, true
}

// Names returns the simple names of annotations, in order
func Names(list []Annotation) []string {
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.Name)
	}
	return names
}
